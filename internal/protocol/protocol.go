// Package protocol defines the line-oriented wire format spoken by the
// music player daemon.
//
// Protocol Format:
//
//	Greeting (Server -> Client):  OK MPD <version>\n
//	Request:                      <command> [arg ...]\n
//	Data line:                    <key>: <value>\n
//	Success:                      OK\n
//	List element boundary:        list_OK\n
//	Failure:                      ACK [<code>@<index>] {<command>} <message>\n
//
// Batches are wrapped between command_list_begin (or command_list_ok_begin)
// and command_list_end, each on its own line.
package protocol

import (
	"fmt"
	"strings"
)

// Terminators and batch markers.
const (
	OK        = "OK"
	ListOK    = "list_OK"
	AckPrefix = "ACK "

	CommandListBegin   = "command_list_begin"
	CommandListOKBegin = "command_list_ok_begin"
	CommandListEnd     = "command_list_end"

	// GreetingPrefix is what the daemon sends immediately after accept.
	GreetingPrefix = "OK MPD "

	// PairSeparator splits a data line into key and value.
	PairSeparator = ": "
)

// DefaultPort is the daemon's well-known TCP port.
const DefaultPort = 6600

// MaxLineLength bounds one response line, newline included. Longer lines
// are framing errors.
const MaxLineLength = 1 << 20

// argEscaper escapes a free-form argument for a double-quoted token.
var argEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Quote wraps a free-form argument in double quotes, escaping backslashes
// and double quotes.
func Quote(arg string) string {
	return `"` + argEscaper.Replace(arg) + `"`
}

// ParseGreeting validates the greeting line and returns the protocol
// version it announces.
func ParseGreeting(line string) (string, error) {
	line = strings.TrimSuffix(line, "\n")
	if !strings.HasPrefix(line, GreetingPrefix) {
		return "", fmt.Errorf("%w: %q", ErrBadGreeting, line)
	}
	version := strings.TrimSpace(strings.TrimPrefix(line, GreetingPrefix))
	if version == "" {
		return "", fmt.Errorf("%w: missing version", ErrBadGreeting)
	}
	return version, nil
}

// WrapList frames request lines as one batch. With ok set, the daemon
// acknowledges every element with list_OK.
func WrapList(lines []string, ok bool) []string {
	begin := CommandListBegin
	if ok {
		begin = CommandListOKBegin
	}
	out := make([]string, 0, len(lines)+2)
	out = append(out, begin)
	out = append(out, lines...)
	out = append(out, CommandListEnd)
	return out
}
