package conn

import (
	"errors"
	"fmt"
)

// Sentinel errors for the connection lifecycle.
var (
	// ErrClosed indicates the connection was closed with Disconnect.
	ErrClosed = errors.New("connection closed")

	// ErrNotConnected indicates Send before the first Connect.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected indicates Connect on a live connection.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrInvalidLine indicates a request line that would corrupt framing.
	ErrInvalidLine = errors.New("request line must be non-empty and must not contain a newline")
)

// ConnectionError indicates the connection is unusable.
type ConnectionError struct {
	Op  string // dial, handshake, send
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err means the connection is unusable.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
