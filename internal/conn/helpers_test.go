package conn

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/bassosimone/netstub"
	"github.com/bassosimone/slogstub"
	"github.com/stretchr/testify/require"

	"github.com/difegue/mpcnet/internal/protocol"
)

const testGreeting = "OK MPD 0.23.5\n"

// fakeDaemon serves scripted responses over in-memory pipes. Every dial
// creates a fresh session.
type fakeDaemon struct {
	greeting string
	handle   func(req []string) string
	wrap     func(net.Conn) net.Conn

	mu       sync.Mutex
	requests [][]string
	dials    int
}

func newFakeDaemon(handle func(req []string) string) *fakeDaemon {
	return &fakeDaemon{greeting: testGreeting, handle: handle}
}

func (d *fakeDaemon) dialer() *netstub.FuncDialer {
	return &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			client, server := net.Pipe()
			d.mu.Lock()
			d.dials++
			d.mu.Unlock()
			go d.serve(server)
			if d.wrap != nil {
				return d.wrap(client), nil
			}
			return client, nil
		},
	}
}

func (d *fakeDaemon) serve(nc net.Conn) {
	defer nc.Close()
	if _, err := io.WriteString(nc, d.greeting); err != nil {
		return
	}
	r := bufio.NewReader(nc)
	for {
		req, err := readRequest(r)
		if err != nil {
			return
		}
		d.mu.Lock()
		d.requests = append(d.requests, req)
		d.mu.Unlock()
		if _, err := io.WriteString(nc, d.handle(req)); err != nil {
			return
		}
	}
}

func (d *fakeDaemon) received() [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([][]string(nil), d.requests...)
}

// readRequest reads one command, or one whole command list.
func readRequest(r *bufio.Reader) ([]string, error) {
	var req []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimSuffix(line, "\n")
		req = append(req, line)
		switch {
		case len(req) == 1 && line != protocol.CommandListBegin && line != protocol.CommandListOKBegin:
			return req, nil
		case line == protocol.CommandListEnd:
			return req, nil
		}
	}
}

// echoHandler answers "echo X" with "value: X" and everything else with OK.
func echoHandler(req []string) string {
	if arg, ok := strings.CutPrefix(req[0], "echo "); ok {
		return "value: " + arg + "\nOK\n"
	}
	return "OK\n"
}

// connectTo returns a connected Conn served by d.
func connectTo(t *testing.T, d *fakeDaemon, cfg *Config) *Conn {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Dialer = d.dialer()
	c := New("tcp", "mpd.test:6600", cfg)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { c.Disconnect() })
	return c
}

// newCapturingLogger returns a logger that captures all log records into
// the returned slice.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var (
		mu      sync.Mutex
		records []slog.Record
	)
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			mu.Lock()
			records = append(records, record)
			mu.Unlock()
			return nil
		},
	}
	return slog.New(handler), &records
}

// scriptedConn returns a stub connection that reads from script and counts
// writes.
func scriptedConn(script string, writes *int) *netstub.FuncConn {
	r := strings.NewReader(script)
	return &netstub.FuncConn{
		ReadFunc: r.Read,
		WriteFunc: func(b []byte) (int, error) {
			*writes++
			return len(b), nil
		},
		CloseFunc:      func() error { return nil },
		LocalAddrFunc:  func() net.Addr { return &net.TCPAddr{} },
		RemoteAddrFunc: func() net.Addr { return &net.TCPAddr{} },
	}
}
