package conn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bassosimone/netstub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/difegue/mpcnet/internal/protocol"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "busy", StateBusy.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestConnect(t *testing.T) {
	d := newFakeDaemon(echoHandler)
	c := connectTo(t, d, nil)

	assert.Equal(t, StateConnected, c.State())
	assert.Equal(t, "0.23.5", c.ServerVersion())
	assert.Equal(t, "tcp", c.Network())
	assert.Equal(t, "mpd.test:6600", c.Address())

	t.Run("twice", func(t *testing.T) {
		assert.ErrorIs(t, c.Connect(context.Background()), ErrAlreadyConnected)
	})
}

func TestConnectFailures(t *testing.T) {
	tests := []struct {
		name   string
		dialer *netstub.FuncDialer
		wantOp string
		wantIs error
	}{
		{
			name: "dial error",
			dialer: &netstub.FuncDialer{
				DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
					return nil, errors.New("connection refused")
				},
			},
			wantOp: "dial",
		},
		{
			name: "bad greeting",
			dialer: &netstub.FuncDialer{
				DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
					var writes int
					return scriptedConn("HELLO\n", &writes), nil
				},
			},
			wantOp: "handshake",
			wantIs: protocol.ErrBadGreeting,
		},
		{
			name: "eof before greeting",
			dialer: &netstub.FuncDialer{
				DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
					var writes int
					return scriptedConn("", &writes), nil
				},
			},
			wantOp: "handshake",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New("tcp", "mpd.test:6600", &Config{Dialer: tt.dialer})

			err := c.Connect(context.Background())

			var ce *ConnectionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantOp, ce.Op)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.Equal(t, StateDisconnected, c.State())
		})
	}
}

func TestSend(t *testing.T) {
	d := newFakeDaemon(echoHandler)
	c := connectTo(t, d, nil)

	resp, err := c.Send(context.Background(), "echo hello")
	require.NoError(t, err)
	value, _ := resp.Get("value")
	assert.Equal(t, "hello", value)
	assert.Equal(t, StateConnected, c.State())

	t.Run("batch is one request", func(t *testing.T) {
		_, err := c.Send(context.Background(),
			protocol.CommandListOKBegin, "play", "next", protocol.CommandListEnd)
		require.NoError(t, err)

		got := d.received()
		assert.Equal(t, []string{"command_list_ok_begin", "play", "next", "command_list_end"}, got[len(got)-1])
	})

	t.Run("invalid lines are rejected locally", func(t *testing.T) {
		before := len(d.received())
		for _, lines := range [][]string{nil, {""}, {"status\nplay"}, {"ping", "a\rb"}} {
			_, err := c.Send(context.Background(), lines...)
			assert.ErrorIs(t, err, ErrInvalidLine)
		}
		assert.Len(t, d.received(), before)
		assert.Equal(t, StateConnected, c.State())
	})
}

func TestSendNotConnected(t *testing.T) {
	c := New("tcp", "mpd.test:6600", nil)

	_, err := c.Send(context.Background(), "ping")

	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSendAckKeepsConnection(t *testing.T) {
	d := newFakeDaemon(func(req []string) string {
		if req[0] == "play 99" {
			return "ACK [2@0] {play} Bad song index\n"
		}
		return "OK\n"
	})
	c := connectTo(t, d, nil)

	_, err := c.Send(context.Background(), "play 99")

	var perr *protocol.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Code)
	assert.Equal(t, 0, perr.Index)
	assert.Equal(t, "play", perr.Command)
	assert.Equal(t, "Bad song index", perr.Message)
	assert.False(t, IsConnectionError(err))
	assert.Equal(t, StateConnected, c.State())

	_, err = c.Send(context.Background(), "ping")
	assert.NoError(t, err)
}

func TestSendFramingErrorBreaksConnection(t *testing.T) {
	var writes int
	dialer := &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return scriptedConn(testGreeting+"this is not a pair\n", &writes), nil
		},
	}
	c := New("tcp", "mpd.test:6600", &Config{Dialer: dialer})
	require.NoError(t, c.Connect(context.Background()))

	_, err := c.Send(context.Background(), "status")
	assert.True(t, IsConnectionError(err))
	assert.True(t, protocol.IsFramingError(err))
	assert.Equal(t, StateDisconnected, c.State())
	assert.Equal(t, 1, writes)

	_, err = c.Send(context.Background(), "status")
	assert.True(t, IsConnectionError(err))
	assert.True(t, protocol.IsFramingError(err))
	assert.Equal(t, 1, writes)
}

func TestSendEOFBreaksConnection(t *testing.T) {
	var writes int
	dialer := &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return scriptedConn(testGreeting+"volume: 5\n", &writes), nil
		},
	}
	c := New("tcp", "mpd.test:6600", &Config{Dialer: dialer})
	require.NoError(t, c.Connect(context.Background()))

	_, err := c.Send(context.Background(), "status")

	assert.True(t, IsConnectionError(err))
	assert.Equal(t, StateDisconnected, c.State())
}

// Concurrent callers each receive their own response, and no request is
// written before the previous response was fully read.
func TestSendConcurrentNoInterleave(t *testing.T) {
	var (
		evmu   sync.Mutex
		events []string
	)
	record := func(kind string, b []byte) {
		evmu.Lock()
		events = append(events, kind+string(b))
		evmu.Unlock()
	}

	d := newFakeDaemon(echoHandler)
	d.wrap = func(nc net.Conn) net.Conn {
		return &netstub.FuncConn{
			ReadFunc: func(b []byte) (int, error) {
				n, err := nc.Read(b)
				record("R", b[:n])
				return n, err
			},
			WriteFunc: func(b []byte) (int, error) {
				record("W", b)
				return nc.Write(b)
			},
			CloseFunc:       nc.Close,
			LocalAddrFunc:   nc.LocalAddr,
			RemoteAddrFunc:  nc.RemoteAddr,
			SetDeadlineFunc: nc.SetDeadline,
		}
	}
	c := connectTo(t, d, nil)

	const callers = 20
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := c.Send(context.Background(), fmt.Sprintf("echo %d", i))
			if assert.NoError(t, err) {
				value, _ := resp.Get("value")
				assert.Equal(t, fmt.Sprint(i), value)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, d.received(), callers)

	evmu.Lock()
	defer evmu.Unlock()
	awaiting := false
	var pending strings.Builder
	for _, ev := range events {
		switch ev[0] {
		case 'W':
			require.False(t, awaiting, "request written before previous response completed")
			awaiting = true
			pending.Reset()
		case 'R':
			pending.WriteString(ev[1:])
			if strings.HasSuffix(pending.String(), "\nOK\n") {
				awaiting = false
			}
		}
	}
	assert.False(t, awaiting)
}

// slowDaemon blocks every "slow" request until release is called, and
// reports on started when it begins handling one.
func slowDaemon(t *testing.T) (d *fakeDaemon, started chan struct{}, release func()) {
	started = make(chan struct{}, 8)
	unblock := make(chan struct{})
	var once sync.Once
	release = func() { once.Do(func() { close(unblock) }) }
	t.Cleanup(release)
	d = newFakeDaemon(func(req []string) string {
		if req[0] == "slow" {
			started <- struct{}{}
			<-unblock
		}
		return "OK\n"
	})
	return d, started, release
}

func waitStarted(t *testing.T, started chan struct{}) {
	t.Helper()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("request never reached the daemon")
	}
}

// A queued caller that gives up is removed without touching the wire.
func TestSendCancelQueued(t *testing.T) {
	d, started, release := slowDaemon(t)
	c := connectTo(t, d, nil)

	first := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "slow")
		first <- err
	}()
	waitStarted(t, started)

	ctx, cancel := context.WithCancel(context.Background())
	queued := make(chan error, 1)
	go func() {
		_, err := c.Send(ctx, "ping")
		queued <- err
	}()
	waitQueued(t, &c.lock, 1)

	cancel()
	err := <-queued
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsConnectionError(err))

	release()
	require.NoError(t, <-first)
	assert.Equal(t, StateConnected, c.State())

	_, err = c.Send(context.Background(), "echo after")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"slow"}, {"echo after"}}, d.received())
}

// Cancelling a request on the wire breaks the connection for every caller
// until the next Connect.
func TestSendCancelInFlight(t *testing.T) {
	d, started, _ := slowDaemon(t)
	c := connectTo(t, d, nil)

	ctx, cancel := context.WithCancel(context.Background())
	inflight := make(chan error, 1)
	go func() {
		_, err := c.Send(ctx, "slow")
		inflight <- err
	}()
	waitStarted(t, started)

	queued := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "ping")
		queued <- err
	}()
	waitQueued(t, &c.lock, 1)

	cancel()

	err := <-inflight
	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, context.Canceled)

	err = <-queued
	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, StateDisconnected, c.State())
	assert.Len(t, d.received(), 1)

	t.Run("reconnect", func(t *testing.T) {
		require.NoError(t, c.Connect(context.Background()))
		_, err := c.Send(context.Background(), "ping")
		require.NoError(t, err)
		assert.Equal(t, 2, d.dials)
	})
}

func TestSendDeadlineBreaksConnection(t *testing.T) {
	d, _, _ := slowDaemon(t)
	c := connectTo(t, d, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Send(ctx, "slow")

	assert.True(t, IsConnectionError(err))
	assert.Equal(t, StateDisconnected, c.State())
}

func TestDisconnect(t *testing.T) {
	d, started, _ := slowDaemon(t)
	c := connectTo(t, d, nil)

	inflight := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "slow")
		inflight <- err
	}()
	waitStarted(t, started)

	queued := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), "ping")
		queued <- err
	}()
	waitQueued(t, &c.lock, 1)

	require.NoError(t, c.Disconnect())

	err := <-inflight
	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, ErrClosed)

	err = <-queued
	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, ErrClosed)

	assert.Equal(t, StateDisconnected, c.State())

	t.Run("idempotent", func(t *testing.T) {
		assert.NoError(t, c.Disconnect())
		assert.NoError(t, c.Close())
	})
}

func TestDisconnectAfterBreak(t *testing.T) {
	var writes int
	dialer := &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return scriptedConn(testGreeting+"garbage\n", &writes), nil
		},
	}
	c := New("tcp", "mpd.test:6600", &Config{Dialer: dialer})
	require.NoError(t, c.Connect(context.Background()))
	_, _ = c.Send(context.Background(), "status")

	require.NoError(t, c.Disconnect())

	_, err := c.Send(context.Background(), "status")
	assert.ErrorIs(t, err, ErrClosed)
}

// Disconnect while the greeting is still pending wins over the handshake.
func TestDisconnectDuringConnect(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() { server.Close() })
	dialed := make(chan struct{})
	dialer := &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			close(dialed)
			return client, nil
		},
	}
	c := New("tcp", "mpd.test:6600", &Config{Dialer: dialer})

	connected := make(chan error, 1)
	go func() {
		connected <- c.Connect(context.Background())
	}()
	select {
	case <-dialed:
	case <-time.After(2 * time.Second):
		t.Fatal("Connect never dialed")
	}

	require.NoError(t, c.Disconnect())
	go io.WriteString(server, testGreeting)

	err := <-connected
	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, StateDisconnected, c.State())

	_, err = c.Send(context.Background(), "status")
	assert.ErrorIs(t, err, ErrClosed)
}

// A reply read in full is returned even when ctx is cancelled right after.
func TestSendKeepsReplyCompletedBeforeCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writes int
	nc := scriptedConn(testGreeting+"value: late\nOK\n", &writes)
	nc.WriteFunc = func(b []byte) (int, error) {
		cancel()
		return len(b), nil
	}
	dialer := &netstub.FuncDialer{
		DialContextFunc: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nc, nil
		},
	}
	c := New("tcp", "mpd.test:6600", &Config{Dialer: dialer})
	require.NoError(t, c.Connect(context.Background()))

	resp, err := c.Send(ctx, "echo late")

	require.NoError(t, err)
	value, _ := resp.Get("value")
	assert.Equal(t, "late", value)
}

func TestStateChanges(t *testing.T) {
	var (
		mu     sync.Mutex
		states []State
	)
	d := newFakeDaemon(echoHandler)
	c := connectTo(t, d, &Config{
		OnStateChange: func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		},
	})

	_, err := c.Send(context.Background(), "ping")
	require.NoError(t, err)
	require.NoError(t, c.Disconnect())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{StateConnected, StateBusy, StateConnected, StateDisconnected}, states)
}

func TestLogging(t *testing.T) {
	logger, records := newCapturingLogger()
	d := newFakeDaemon(echoHandler)
	c := connectTo(t, d, &Config{Logger: logger})

	_, err := c.Send(context.Background(), protocol.CommandListOKBegin, "status", protocol.CommandListEnd)
	require.NoError(t, err)
	require.NoError(t, c.Disconnect())

	var messages []string
	for _, r := range *records {
		messages = append(messages, r.Message)
	}
	assert.Equal(t, []string{"connectStart", "connectDone", "roundTripStart", "roundTripDone", "closeDone"}, messages)

	spanIDs := map[string]string{}
	for _, r := range *records {
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "spanID" {
				spanIDs[r.Message] = a.Value.String()
			}
			if a.Key == "command" {
				assert.Equal(t, "status", a.Value.String())
			}
			return true
		})
	}
	assert.Equal(t, spanIDs["connectStart"], spanIDs["connectDone"])
	assert.Equal(t, spanIDs["roundTripStart"], spanIDs["roundTripDone"])
	assert.NotEqual(t, spanIDs["connectStart"], spanIDs["roundTripStart"])
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "find", commandName([]string{`find "((Artist == \"A\"))"`}))
	assert.Equal(t, "status", commandName([]string{protocol.CommandListBegin, "status", protocol.CommandListEnd}))
	assert.Equal(t, protocol.CommandListOKBegin, commandName([]string{protocol.CommandListOKBegin}))
}
