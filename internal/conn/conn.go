// Package conn manages the single long-lived session with the daemon.
//
// A Conn serializes exchanges through a FIFO exclusive section: at most one
// request is on the wire at a time, and callers are served in arrival order.
// Cancelling a queued caller removes it from the queue. Cancelling a caller
// whose request is already on the wire makes the connection unusable, since
// the unread response would otherwise be attributed to the next caller.
package conn

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/bassosimone/errclass"
	"github.com/bassosimone/runtimex"
	"github.com/bassosimone/safeconn"
	"github.com/google/uuid"

	"github.com/difegue/mpcnet/internal/protocol"
)

// State is the lifecycle state of a Conn.
type State int

const (
	// StateDisconnected means there is no usable socket.
	StateDisconnected State = iota
	// StateConnected means the socket is idle and ready.
	StateConnected
	// StateBusy means a request is on the wire.
	StateBusy
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnected:
		return "connected"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Dialer abstracts the [*net.Dialer] behavior.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Config holds the collaborators of a Conn. All fields are optional.
type Config struct {
	// Dialer opens the socket. Defaults to [*net.Dialer].
	Dialer Dialer

	// Logger receives lifecycle events at Info and per-request events at
	// Debug. Defaults to a discarding logger.
	Logger *slog.Logger

	// ErrClassifier maps errors to short labels for logging. Defaults to
	// errclass.New.
	ErrClassifier func(error) string

	// TimeNow returns the current time. Defaults to time.Now.
	TimeNow func() time.Time

	// OnStateChange is called with the new state on every transition, while
	// internal locks are held. It must not call back into the Conn.
	OnStateChange func(State)
}

// Conn is a connection to the daemon. It is safe for concurrent use.
type Conn struct {
	network string
	address string

	dialer        Dialer
	logger        *slog.Logger
	classify      func(error) string
	timeNow       func() time.Time
	onStateChange func(State)

	lock fifoLock

	mu      sync.Mutex
	state   State
	netConn net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	version string
	cause   error

	// abort interrupts the Connect in progress, if any.
	abort   context.CancelCauseFunc
	aborted bool
}

// New returns a disconnected Conn for the given network ("tcp" or "unix")
// and address. A nil cfg selects the defaults.
func New(network, address string, cfg *Config) *Conn {
	if cfg == nil {
		cfg = &Config{}
	}
	c := &Conn{
		network:       network,
		address:       address,
		dialer:        cfg.Dialer,
		logger:        cfg.Logger,
		classify:      cfg.ErrClassifier,
		timeNow:       cfg.TimeNow,
		onStateChange: cfg.OnStateChange,
	}
	if c.dialer == nil {
		c.dialer = &net.Dialer{}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.classify == nil {
		c.classify = errclass.New
	}
	if c.timeNow == nil {
		c.timeNow = time.Now
	}
	return c
}

// Network returns the configured network.
func (c *Conn) Network() string { return c.network }

// Address returns the configured address.
func (c *Conn) Address() string { return c.address }

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ServerVersion returns the protocol version from the last greeting.
func (c *Conn) ServerVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Connect dials the daemon and validates its greeting. It may be called
// again after the connection was closed or broken.
func (c *Conn) Connect(ctx context.Context) error {
	if err := c.lock.Lock(ctx); err != nil {
		return &ConnectionError{Op: "connect", Err: err}
	}
	defer c.lock.Unlock()

	ctx, abort := context.WithCancelCause(ctx)
	defer abort(nil)

	c.mu.Lock()
	live := c.state != StateDisconnected
	if !live {
		c.abort = abort
		c.aborted = false
	}
	c.mu.Unlock()
	if live {
		return ErrAlreadyConnected
	}
	defer func() {
		c.mu.Lock()
		c.abort = nil
		c.mu.Unlock()
	}()

	spanID := newSpanID()
	t0 := c.timeNow()
	deadline, _ := ctx.Deadline()
	c.logger.Info(
		"connectStart",
		slog.Time("deadline", deadline),
		slog.String("protocol", c.network),
		slog.String("remoteAddr", c.address),
		slog.String("spanID", spanID),
		slog.Time("t", t0),
	)

	nc, err := c.dialer.DialContext(ctx, c.network, c.address)
	if err != nil {
		err = c.abortedOr(err)
		c.logConnectDone(spanID, t0, deadline, nil, "", err)
		return &ConnectionError{Op: "dial", Err: err}
	}

	reader := bufio.NewReader(nc)
	version, err := c.handshake(ctx, nc, reader)
	if err != nil {
		nc.Close()
		err = c.abortedOr(err)
		c.logConnectDone(spanID, t0, deadline, nc, "", err)
		return &ConnectionError{Op: "handshake", Err: err}
	}

	c.mu.Lock()
	if c.aborted {
		c.mu.Unlock()
		nc.Close()
		c.logConnectDone(spanID, t0, deadline, nc, "", ErrClosed)
		return &ConnectionError{Op: "connect", Err: ErrClosed}
	}
	c.netConn = nc
	c.reader = reader
	c.writer = bufio.NewWriter(nc)
	c.version = version
	c.cause = nil
	c.setStateLocked(StateConnected)
	c.mu.Unlock()

	c.logConnectDone(spanID, t0, deadline, nc, version, nil)
	return nil
}

// abortedOr returns ErrClosed when Disconnect interrupted the current
// Connect, and err otherwise.
func (c *Conn) abortedOr(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.aborted {
		return ErrClosed
	}
	return err
}

func (c *Conn) handshake(ctx context.Context, nc net.Conn, r *bufio.Reader) (string, error) {
	stop := context.AfterFunc(ctx, func() {
		nc.Close()
	})
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(deadline)
		defer nc.SetDeadline(time.Time{})
	}

	line, err := r.ReadString('\n')
	if err != nil {
		if ctxErr := context.Cause(ctx); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	return protocol.ParseGreeting(line)
}

// Send writes the request lines and reads one full response.
//
// A *protocol.Error reports a command the daemon refused; the connection
// stays usable. A *ConnectionError reports that the connection is broken
// or closed; every later Send fails the same way until Connect succeeds.
// If ctx is done before the caller's turn, Send returns ctx.Err() and the
// connection is unaffected.
func (c *Conn) Send(ctx context.Context, lines ...string) (*protocol.Response, error) {
	if len(lines) == 0 {
		return nil, ErrInvalidLine
	}
	for _, line := range lines {
		if line == "" || strings.ContainsAny(line, "\r\n") {
			return nil, ErrInvalidLine
		}
	}

	if err := c.lock.Lock(ctx); err != nil {
		return nil, err
	}
	defer c.lock.Unlock()

	c.mu.Lock()
	if c.state != StateConnected {
		err := c.unusableLocked()
		c.mu.Unlock()
		return nil, err
	}
	nc, reader, writer := c.netConn, c.reader, c.writer
	c.setStateLocked(StateBusy)
	c.mu.Unlock()

	name := commandName(lines)
	spanID := newSpanID()
	t0 := c.timeNow()
	c.logger.Debug(
		"roundTripStart",
		slog.String("command", name),
		slog.Int("lines", len(lines)),
		slog.String("spanID", spanID),
		slog.Time("t", t0),
	)

	// settled and interrupted are guarded by c.mu. Once the round trip has
	// settled, a late cancellation no longer touches the socket.
	var settled, interrupted bool
	stop := context.AfterFunc(ctx, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !settled {
			interrupted = true
			c.markBrokenLocked(nc, context.Cause(ctx))
		}
	})
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline {
		_ = nc.SetDeadline(deadline)
	}

	resp, err := roundTrip(writer, reader, lines)

	c.mu.Lock()
	settled = true
	cut := interrupted
	c.mu.Unlock()
	stop()

	switch {
	case cut && err != nil && !protocol.IsProtocolError(err):
		err = &ConnectionError{Op: "send", Err: context.Cause(ctx)}
		c.logRoundTripDone(spanID, name, t0, err)
		return nil, err
	case cut:
		// The reply was complete before the socket was closed.
	case err == nil, protocol.IsProtocolError(err):
		if hasDeadline {
			_ = nc.SetDeadline(time.Time{})
		}
		c.release(nc)
	default:
		err = &ConnectionError{Op: "send", Err: c.markBroken(nc, err)}
	}
	c.logRoundTripDone(spanID, name, t0, err)
	return resp, err
}

func roundTrip(w *bufio.Writer, r *bufio.Reader, lines []string) (*protocol.Response, error) {
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return nil, err
		}
		if err := w.WriteByte('\n'); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return protocol.ReadResponse(r)
}

// Disconnect closes the socket. Queued callers fail with ErrClosed, and a
// Connect in progress fails with ErrClosed instead of installing its socket.
// It is safe to call more than once.
func (c *Conn) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.abort != nil {
		c.aborted = true
		c.cause = ErrClosed
		c.abort(ErrClosed)
	}
	if c.netConn == nil {
		if c.cause != nil {
			c.cause = ErrClosed
		}
		return nil
	}
	err := c.netConn.Close()
	c.dropLocked(ErrClosed)
	c.logger.Info(
		"closeDone",
		slog.Any("err", err),
		slog.String("errClass", c.classify(err)),
		slog.String("remoteAddr", c.address),
		slog.Time("t", c.timeNow()),
	)
	return err
}

// Close implements [io.Closer].
func (c *Conn) Close() error {
	return c.Disconnect()
}

// release returns a busy connection to the idle state.
func (c *Conn) release(nc net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.netConn == nc && c.state == StateBusy {
		c.setStateLocked(StateConnected)
	}
}

// markBroken closes nc and records cause, unless nc was already dropped.
// It returns the cause later callers will observe.
func (c *Conn) markBroken(nc net.Conn, cause error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markBrokenLocked(nc, cause)
}

func (c *Conn) markBrokenLocked(nc net.Conn, cause error) error {
	if c.netConn != nc {
		if c.cause != nil {
			return c.cause
		}
		return cause
	}
	nc.Close()
	c.dropLocked(cause)
	c.logger.Info(
		"connectionBroken",
		slog.Any("err", cause),
		slog.String("errClass", c.classify(cause)),
		slog.String("remoteAddr", c.address),
		slog.Time("t", c.timeNow()),
	)
	return cause
}

func (c *Conn) dropLocked(cause error) {
	c.netConn = nil
	c.reader = nil
	c.writer = nil
	c.cause = cause
	c.setStateLocked(StateDisconnected)
}

func (c *Conn) unusableLocked() error {
	if c.cause == nil {
		return &ConnectionError{Op: "send", Err: ErrNotConnected}
	}
	return &ConnectionError{Op: "send", Err: c.cause}
}

func (c *Conn) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.onStateChange != nil {
		c.onStateChange(s)
	}
}

func (c *Conn) logConnectDone(spanID string, t0, deadline time.Time, nc net.Conn, version string, err error) {
	c.logger.Info(
		"connectDone",
		slog.Time("deadline", deadline),
		slog.Any("err", err),
		slog.String("errClass", c.classify(err)),
		slog.String("localAddr", safeconn.LocalAddr(nc)),
		slog.String("protocol", c.network),
		slog.String("remoteAddr", c.address),
		slog.String("serverVersion", version),
		slog.String("spanID", spanID),
		slog.Time("t0", t0),
		slog.Time("t", c.timeNow()),
	)
}

func (c *Conn) logRoundTripDone(spanID, name string, t0 time.Time, err error) {
	c.logger.Debug(
		"roundTripDone",
		slog.String("command", name),
		slog.Any("err", err),
		slog.String("errClass", c.classify(err)),
		slog.String("spanID", spanID),
		slog.Time("t0", t0),
		slog.Time("t", c.timeNow()),
	)
}

// commandName names a request for logging. Batches are named after their
// first inner command.
func commandName(lines []string) string {
	first := lines[0]
	if (first == protocol.CommandListBegin || first == protocol.CommandListOKBegin) && len(lines) > 1 {
		first = lines[1]
	}
	name, _, _ := strings.Cut(first, " ")
	return name
}

// newSpanID returns a UUIDv7 identifying one connect or round trip.
func newSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
