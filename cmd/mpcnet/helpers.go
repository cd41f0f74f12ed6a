package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/difegue/mpcnet/internal/client"
	"github.com/difegue/mpcnet/internal/command"
	"github.com/difegue/mpcnet/internal/config"
	"github.com/difegue/mpcnet/internal/logging"
	"github.com/difegue/mpcnet/internal/metrics"
	"github.com/difegue/mpcnet/internal/protocol"
	"github.com/difegue/mpcnet/internal/ui"
)

// Globals holds the flags shared by every command.
type Globals struct {
	Host     string        `short:"H" help:"Daemon host, unix socket path, or password@host. Overrides $MPD_HOST."`
	Port     int           `short:"p" help:"Daemon port. Overrides $MPD_PORT."`
	Password string        `help:"Daemon password."`
	Timeout  time.Duration `help:"Per-command timeout, e.g. 10s."`
	Format   string        `short:"f" enum:"text,yaml" default:"text" help:"Output format (text, yaml)."`
	Config   string        `type:"path" help:"Settings file (default ~/.mpcnet/config.yaml)."`
	LogLevel string        `help:"Log level (debug, info, warn, error)."`

	// metrics is set by commands that expose a metrics endpoint.
	metrics *metrics.Metrics
}

func getPaths() (*config.Paths, error) {
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("get paths: %w", err)
	}
	return paths, nil
}

// settings layers the settings file, the environment and the flags over
// the defaults, in that order.
func (g *Globals) settings(paths *config.Paths, getenv func(string) string) (*config.Settings, error) {
	path := g.Config
	if path == "" {
		path = paths.Config
	}
	s, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := s.ApplyEnv(getenv); err != nil {
		return nil, err
	}

	if g.Host != "" {
		s.SetHost(g.Host)
	}
	if g.Port != 0 {
		s.Port = g.Port
	}
	if g.Password != "" {
		s.Password = g.Password
	}
	if g.Timeout != 0 {
		s.CommandTimeout = g.Timeout
	}
	if g.LogLevel != "" {
		s.LogLevel = g.LogLevel
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// connect resolves settings, opens the log file and connects a client.
// The returned func closes both.
func (g *Globals) connect(ctx context.Context) (*client.Client, func(), error) {
	paths, err := getPaths()
	if err != nil {
		return nil, nil, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("create directories: %w", err)
	}

	s, err := g.settings(paths, os.Getenv)
	if err != nil {
		return nil, nil, err
	}
	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	logWriter := logging.NewRotatingWriter(logging.DefaultConfig(paths.Log))
	cl, err := dial(ctx, s, logWriter, level, g.metrics)
	if err != nil {
		logWriter.Close()
		return nil, nil, err
	}
	return cl, func() {
		cl.Close()
		logWriter.Close()
	}, nil
}

func dial(ctx context.Context, s *config.Settings, logWriter io.Writer, level slog.Level, m *metrics.Metrics) (*client.Client, error) {
	network, address := s.Target()
	cl := client.New(network, address, client.Options{
		Password: s.Password,
		Timeout:  s.CommandTimeout,
		Logger:   logging.NewLogger(logWriter, level),
		Metrics:  m,
	})

	dialCtx := ctx
	if s.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.DialTimeout)
		defer cancel()
	}
	if err := cl.Connect(dialCtx); err != nil {
		if protocol.IsProtocolError(err) {
			return nil, mapError(err)
		}
		return nil, errDaemonUnreachable(address, err)
	}
	return cl, nil
}

// yaml reports whether structured output was requested.
func (g *Globals) yaml() bool {
	return g.Format == "yaml"
}

// printRecords renders songs as YAML or as a numbered list.
func (g *Globals) printRecords(records []command.Record) error {
	if g.yaml() {
		return ui.WriteYAML(ui.Output, ui.RecordsNode(records))
	}
	ui.PrintSongs(records)
	return nil
}

// printValues renders plain values as YAML or as a titled list.
func (g *Globals) printValues(title string, values []string) error {
	if g.yaml() {
		if values == nil {
			values = []string{}
		}
		return ui.WriteYAML(ui.Output, values)
	}
	ui.PrintValues(title, values)
	return nil
}

// parseWindow parses "start:end" or "start:" into a window. An empty
// string means no window.
func parseWindow(s string) (command.Window, error) {
	if s == "" {
		return command.NoWindow, nil
	}
	startStr, endStr, ok := strings.Cut(s, ":")
	if !ok {
		return command.Window{}, fmt.Errorf("window %q: want start:end", s)
	}
	start, err := strconv.Atoi(startStr)
	if err != nil || start < 0 {
		return command.Window{}, fmt.Errorf("window %q: invalid start", s)
	}
	end := -1
	if endStr != "" {
		end, err = strconv.Atoi(endStr)
		if err != nil || end < start {
			return command.Window{}, fmt.Errorf("window %q: invalid end", s)
		}
	}
	return command.Window{Start: start, End: end}, nil
}
