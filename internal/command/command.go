// Package command maps typed parameters onto request lines and response
// pairs onto typed results.
//
// Every command is a pure data-to-data mapping: it never touches the
// connection. The pipeline in internal/client sends Encode's line and hands
// the decoded response back to Decode.
package command

import (
	"strconv"
	"strings"

	"github.com/difegue/mpcnet/internal/protocol"
)

// Command is a request whose response decodes into a T.
type Command[T any] interface {
	Encode() string
	Decode(resp *protocol.Response) (T, error)
}

// DecodeFunc interprets a response as a T.
type DecodeFunc[T any] func(resp *protocol.Response) (T, error)

// Window restricts the cardinality of a result to [Start, End).
type Window struct {
	Start int
	End   int
}

// NoWindow leaves results unrestricted.
var NoWindow = Window{Start: -1, End: -1}

// String renders the window token value, e.g. "0:10". An open end renders
// as "start:".
func (w Window) String() string {
	if w.End < 0 {
		return strconv.Itoa(w.Start) + ":"
	}
	return strconv.Itoa(w.Start) + ":" + strconv.Itoa(w.End)
}

// Descriptor is the generic Command: a name, pre-escaped argument tokens,
// an optional window and a result decoder.
type Descriptor[T any] struct {
	Name    string
	Args    []string
	Window  Window
	Decoder DecodeFunc[T]
}

// New returns a descriptor without window.
func New[T any](name string, decoder DecodeFunc[T], args ...string) Descriptor[T] {
	return Descriptor[T]{Name: name, Args: args, Window: NoWindow, Decoder: decoder}
}

// WithWindow returns a copy restricted to the given window.
func (d Descriptor[T]) WithWindow(w Window) Descriptor[T] {
	d.Window = w
	return d
}

// Encode renders the request line without its trailing newline.
func (d Descriptor[T]) Encode() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	for _, arg := range d.Args {
		if arg == "" {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(arg)
	}
	if d.Window.Start >= 0 {
		sb.WriteString(" window ")
		sb.WriteString(d.Window.String())
	}
	return sb.String()
}

// Decode interprets the response with the descriptor's decoder.
func (d Descriptor[T]) Decode(resp *protocol.Response) (T, error) {
	if d.Decoder == nil {
		var zero T
		return zero, nil
	}
	return d.Decoder(resp)
}

// Name returns the command word of an encoded line.
func Name(line string) string {
	name, _, _ := strings.Cut(line, " ")
	return name
}
