// Package client provides the command pipeline used to talk to the daemon.
//
// A Client owns one connection. Run encodes a command, performs one
// exclusive round trip and decodes the result; RunBatch does the same for
// a command list. Every round trip is logged, traced and measured.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/difegue/mpcnet/internal/command"
	"github.com/difegue/mpcnet/internal/conn"
	"github.com/difegue/mpcnet/internal/metrics"
	"github.com/difegue/mpcnet/internal/protocol"
)

const tracerName = "github.com/difegue/mpcnet/internal/client"

// Options configures a Client. All fields are optional.
type Options struct {
	// Password is sent right after the greeting when non-empty.
	Password string

	// Timeout bounds each round trip, including time spent queued.
	// Zero means no bound beyond the caller's context.
	Timeout time.Duration

	// Dialer opens the socket. Defaults to [*net.Dialer].
	Dialer conn.Dialer

	// Logger receives pipeline and connection events.
	Logger *slog.Logger

	// Metrics records round trips and state. Nil disables metrics.
	Metrics *metrics.Metrics

	// Tracer creates one span per round trip. Defaults to the global
	// OpenTelemetry tracer provider.
	Tracer trace.Tracer
}

// Client runs commands against the daemon. It is safe for concurrent use;
// round trips are served one at a time in arrival order.
type Client struct {
	conn     *conn.Conn
	password string
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

// New creates a disconnected client for network ("tcp" or "unix") and
// address.
func New(network, address string, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	c := &Client{
		password: opts.Password,
		timeout:  opts.Timeout,
		logger:   logger,
		metrics:  opts.Metrics,
		tracer:   tracer,
	}
	c.conn = conn.New(network, address, &conn.Config{
		Dialer:        opts.Dialer,
		Logger:        logger,
		OnStateChange: opts.Metrics.SetState,
	})
	return c
}

// Connect opens the connection and authenticates when a password is set.
func (c *Client) Connect(ctx context.Context) error {
	err := c.conn.Connect(ctx)
	if err == nil && c.password != "" {
		if _, err = Run(ctx, c, command.Password(c.password)); err != nil {
			c.conn.Disconnect()
			err = fmt.Errorf("authenticate: %w", err)
		}
	}
	c.metrics.ObserveConnect(err)
	return err
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	return c.conn.Disconnect()
}

// State returns the connection state.
func (c *Client) State() conn.State {
	return c.conn.State()
}

// ServerVersion returns the protocol version announced by the daemon.
func (c *Client) ServerVersion() string {
	return c.conn.ServerVersion()
}

// Run sends cmd and decodes its response.
func Run[T any](ctx context.Context, c *Client, cmd command.Command[T]) (T, error) {
	var zero T
	line := cmd.Encode()
	resp, err := c.roundTrip(ctx, command.Name(line), []string{line})
	if err != nil {
		return zero, err
	}
	v, err := cmd.Decode(resp)
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", command.Name(line), err)
	}
	return v, nil
}

// RunBatch sends the batch as one ok-list and decodes each segment into
// its command's destination. An ACK from any element fails the whole
// batch; its Index names the failing element.
func (c *Client) RunBatch(ctx context.Context, b *command.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	resp, err := c.roundTrip(ctx, protocol.CommandListOKBegin, b.Lines())
	if err != nil {
		return err
	}
	return b.Decode(resp)
}

// Raw sends pre-encoded lines and returns the undecoded response.
func (c *Client) Raw(ctx context.Context, lines ...string) (*protocol.Response, error) {
	name := protocol.CommandListOKBegin
	if len(lines) > 0 {
		name = command.Name(lines[0])
	}
	return c.roundTrip(ctx, name, lines)
}

func (c *Client) roundTrip(ctx context.Context, name string, lines []string) (*protocol.Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ctx, span := c.tracer.Start(ctx, "mpd."+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("mpd.command", name),
			attribute.Int("mpd.lines", len(lines)),
			attribute.String("net.peer.name", c.conn.Address()),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.conn.Send(ctx, lines...)
	elapsed := time.Since(start)

	c.metrics.ObserveRoundTrip(name, elapsed, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn("command failed",
			slog.String("command", name),
			slog.Duration("elapsed", elapsed),
			slog.String("outcome", metrics.Outcome(err)),
			slog.Any("err", err),
		)
		return nil, err
	}
	span.SetAttributes(attribute.Int("mpd.pairs", resp.Len()))
	span.SetStatus(codes.Ok, "")
	return resp, nil
}
