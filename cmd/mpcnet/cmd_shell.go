package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/difegue/mpcnet/internal/conn"
	"github.com/difegue/mpcnet/internal/metrics"
	"github.com/difegue/mpcnet/internal/protocol"
	"github.com/difegue/mpcnet/internal/ui"
)

const shellPrompt = "mpd> "

type ShellCmd struct {
	MetricsAddr string `help:"Serve Prometheus metrics on this address, e.g. localhost:9101"`
}

func (c *ShellCmd) Run(ctx context.Context, g *Globals) error {
	if c.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		g.metrics = metrics.New(metrics.WithRegistry(reg))
		srv, addr, err := serveMetrics(c.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer srv.Close()
		ui.PrintInfo(fmt.Sprintf("Metrics on http://%s/metrics", addr))
	}

	paths, err := getPaths()
	if err != nil {
		return err
	}
	cl, done, err := g.connect(ctx)
	if err != nil {
		return err
	}
	defer done()

	editor := NewLineEditor(paths.History)
	defer editor.Close()

	if editor.IsInteractive() {
		ui.PrintInfo(fmt.Sprintf("Connected (protocol %s). Type quit to leave.", cl.ServerVersion()))
	}
	return runShell(ctx, g, cl, editor)
}

// serveMetrics exposes reg over HTTP until the returned server is closed.
func serveMetrics(addr string, reg *prometheus.Registry) (*http.Server, string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	return srv, ln.Addr().String(), nil
}

type lineReader interface {
	GetLine(prompt string) (string, error)
}

type rawClient interface {
	Connect(ctx context.Context) error
	State() conn.State
	Raw(ctx context.Context, lines ...string) (*protocol.Response, error)
}

// runShell sends every input line as one raw command and prints the reply
// until quit, end of input or cancellation. Errors are printed, not
// returned; a broken connection is re-established on the next line.
func runShell(ctx context.Context, g *Globals, cl rawClient, in lineReader) error {
	for ctx.Err() == nil {
		line, err := in.GetLine(shellPrompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case strings.HasPrefix(line, "command_list"):
			ui.PrintWarning("Command lists are not supported here; use: mpcnet batch")
			continue
		}

		if cl.State() == conn.StateDisconnected {
			if err := cl.Connect(ctx); err != nil {
				ui.PrintError(describe(err))
				continue
			}
			ui.PrintInfo("Reconnected")
		}

		resp, err := cl.Raw(ctx, line)
		if err != nil {
			ui.PrintError(describe(err))
			continue
		}
		if g.yaml() {
			if err := ui.WriteYAML(ui.Output, ui.RecordNode(resp.Pairs)); err != nil {
				return err
			}
			continue
		}
		ui.PrintRecord(resp.Pairs)
	}
	return nil
}

// describe renders err the way the CLI would report it on exit.
func describe(err error) string {
	var exitErr *ExitError
	if errors.As(mapError(err), &exitErr) {
		return exitErr.Message
	}
	return err.Error()
}
