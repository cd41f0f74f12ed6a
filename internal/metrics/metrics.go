// Package metrics exposes Prometheus collectors for daemon round trips and
// connection state.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/difegue/mpcnet/internal/conn"
	"github.com/difegue/mpcnet/internal/filter"
	"github.com/difegue/mpcnet/internal/protocol"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "mpcnet").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for round trip duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "mpcnet",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Outcome labels for round trips and connects.
const (
	OutcomeOK         = "ok"
	OutcomeAck        = "ack"
	OutcomeConnection = "connection"
	OutcomeCanceled   = "canceled"
	OutcomeInvalid    = "invalid"
	OutcomeError      = "error"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	acksTotal       *prometheus.CounterVec
	connectsTotal   *prometheus.CounterVec
	connectionState *prometheus.GaugeVec
}

// New registers the collectors with the configured registry.
//
// Metrics collected:
//   - mpcnet_requests_total: round trips by command and outcome
//   - mpcnet_request_duration_seconds: round trip duration by command
//   - mpcnet_acks_total: daemon ACKs by command and code
//   - mpcnet_connects_total: connection attempts by outcome
//   - mpcnet_connection_state: 1 for the current connection state, 0 otherwise
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	m := &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "requests_total",
			Help:        "Total number of round trips with the daemon",
			ConstLabels: config.ConstLabels,
		}, []string{"command", "outcome"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "request_duration_seconds",
			Help:        "Round trip duration in seconds, including time queued",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"command"}),

		acksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "acks_total",
			Help:        "Total number of ACK responses by code",
			ConstLabels: config.ConstLabels,
		}, []string{"command", "code"}),

		connectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "connects_total",
			Help:        "Total number of connection attempts",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		connectionState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "connection_state",
			Help:        "Current connection state (1 for the active state)",
			ConstLabels: config.ConstLabels,
		}, []string{"state"}),
	}
	m.SetState(conn.StateDisconnected)
	return m
}

// ObserveRoundTrip records one round trip.
func (m *Metrics) ObserveRoundTrip(command string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(command).Observe(d.Seconds())
	m.requestsTotal.WithLabelValues(command, Outcome(err)).Inc()

	var perr *protocol.Error
	if errors.As(err, &perr) {
		m.acksTotal.WithLabelValues(command, ackCode(perr.Code)).Inc()
	}
}

// ObserveConnect records one connection attempt.
func (m *Metrics) ObserveConnect(err error) {
	if m == nil {
		return
	}
	m.connectsTotal.WithLabelValues(Outcome(err)).Inc()
}

// SetState marks s as the current connection state.
func (m *Metrics) SetState(s conn.State) {
	if m == nil {
		return
	}
	for _, st := range []conn.State{conn.StateDisconnected, conn.StateConnected, conn.StateBusy} {
		v := 0.0
		if st == s {
			v = 1
		}
		m.connectionState.WithLabelValues(st.String()).Set(v)
	}
}

// Outcome maps an error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case protocol.IsProtocolError(err):
		return OutcomeAck
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		if conn.IsConnectionError(err) {
			return OutcomeConnection
		}
		return OutcomeCanceled
	case conn.IsConnectionError(err):
		return OutcomeConnection
	case filter.IsValidationError(err), errors.Is(err, conn.ErrInvalidLine):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func ackCode(code int) string {
	switch code {
	case protocol.AckNotList:
		return "not_list"
	case protocol.AckArg:
		return "arg"
	case protocol.AckPassword:
		return "password"
	case protocol.AckPermission:
		return "permission"
	case protocol.AckUnknown:
		return "unknown"
	case protocol.AckNoExist:
		return "no_exist"
	case protocol.AckPlaylistMax:
		return "playlist_max"
	case protocol.AckSystem:
		return "system"
	case protocol.AckPlaylistLoad:
		return "playlist_load"
	case protocol.AckUpdateAlready:
		return "update_already"
	case protocol.AckPlayerSync:
		return "player_sync"
	case protocol.AckExist:
		return "exist"
	default:
		return "other"
	}
}
