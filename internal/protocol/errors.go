package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrBadGreeting indicates the peer did not greet like the daemon does.
var ErrBadGreeting = errors.New("unexpected greeting")

// ErrDecoderFinished indicates a line was fed after the terminator.
var ErrDecoderFinished = errors.New("response already terminated")

// Error is a failure reported by the daemon with an ACK line.
// The connection stays usable after an Error.
type Error struct {
	Code    int
	Index   int    // Position of the failing command within a batch, as sent by the daemon
	Command string // Name of the failing command
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("ack [%d@%d] {%s} %s", e.Code, e.Index, e.Command, e.Message)
}

// Well-known ACK codes.
const (
	AckNotList       = 1
	AckArg           = 2
	AckPassword      = 3
	AckPermission    = 4
	AckUnknown       = 5
	AckNoExist       = 50
	AckPlaylistMax   = 51
	AckSystem        = 52
	AckPlaylistLoad  = 53
	AckUpdateAlready = 54
	AckPlayerSync    = 55
	AckExist         = 56
)

// IsProtocolError reports whether err carries a daemon ACK.
func IsProtocolError(err error) bool {
	var pe *Error
	return errors.As(err, &pe)
}

// FramingError indicates a line that fits none of the response grammar.
// The byte stream can no longer be trusted after a FramingError.
type FramingError struct {
	Line string
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("malformed response line %q", e.Line)
}

// IsFramingError reports whether err is a framing violation.
func IsFramingError(err error) bool {
	var fe *FramingError
	return errors.As(err, &fe)
}

var ackPattern = regexp.MustCompile(`^ACK \[(\d+)@(\d+)\] \{([^}]*)\} ?(.*)$`)

// ParseAck parses an ACK line into an Error. A line that does not follow
// the ACK grammar yields a FramingError.
func ParseAck(line string) (*Error, error) {
	m := ackPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, &FramingError{Line: line}
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, &FramingError{Line: line}
	}
	index, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, &FramingError{Line: line}
	}
	return &Error{
		Code:    code,
		Index:   index,
		Command: m[3],
		Message: m[4],
	}, nil
}
