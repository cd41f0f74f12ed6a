package main

import (
	"errors"
	"fmt"

	"github.com/difegue/mpcnet/internal/conn"
	"github.com/difegue/mpcnet/internal/filter"
	"github.com/difegue/mpcnet/internal/protocol"
)

// Exit codes for CLI commands.
const (
	exitSuccess           = 0
	exitError             = 1
	exitDaemonUnreachable = 2
	exitProtocolError     = 3
	exitInvalidFilter     = 4
)

// ExitError represents an error that should cause the process to exit with a specific code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func errDaemonUnreachable(address string, cause error) *ExitError {
	return &ExitError{
		Code:    exitDaemonUnreachable,
		Message: fmt.Sprintf("Cannot reach the daemon at %s: %v\nSet MPD_HOST/MPD_PORT or use --host/--port.", address, cause),
	}
}

func errConnectionLost(cause error) *ExitError {
	return &ExitError{
		Code:    exitDaemonUnreachable,
		Message: fmt.Sprintf("Connection to the daemon lost: %v", cause),
	}
}

func errProtocol(ack *protocol.Error) *ExitError {
	return &ExitError{
		Code:    exitProtocolError,
		Message: fmt.Sprintf("Daemon refused '%s': %s", ack.Command, ack.Message),
	}
}

func errInvalidFilter(cause error) *ExitError {
	return &ExitError{
		Code:    exitInvalidFilter,
		Message: fmt.Sprintf("Invalid filter: %v", cause),
	}
}

// mapError converts engine errors to user-friendly exit errors.
func mapError(err error) error {
	var ack *protocol.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ack):
		return errProtocol(ack)
	case filter.IsValidationError(err):
		return errInvalidFilter(err)
	case conn.IsConnectionError(err), protocol.IsFramingError(err):
		return errConnectionLost(err)
	}
	return err
}
