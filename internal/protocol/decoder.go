package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DecoderState is the state of a Decoder.
type DecoderState int

const (
	// StateReadingPairs accepts data lines and list boundaries.
	StateReadingPairs DecoderState = iota
	// StateDone means a success terminator was seen.
	StateDone
	// StateFailed means an ACK or a framing violation was seen.
	StateFailed
)

func (s DecoderState) String() string {
	switch s {
	case StateReadingPairs:
		return "reading"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Decoder accumulates the lines of a single response.
// A Decoder is used for one response and then discarded.
type Decoder struct {
	state    DecoderState
	pairs    []Pair
	segment  []Pair
	segments [][]Pair
	err      error
}

// NewDecoder returns a decoder ready for the first line.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// State returns the current state.
func (d *Decoder) State() DecoderState {
	return d.state
}

// Feed consumes one line, with or without its trailing newline.
//
// It returns a *Error when the line is an ACK and a *FramingError when the
// line fits no production of the grammar. Both move the decoder to
// StateFailed.
func (d *Decoder) Feed(line string) error {
	if d.state != StateReadingPairs {
		return ErrDecoderFinished
	}
	line = strings.TrimSuffix(line, "\n")

	switch {
	case line == OK:
		d.state = StateDone
		if len(d.segments) > 0 && len(d.segment) > 0 {
			d.segments = append(d.segments, d.segment)
			d.segment = nil
		}
		return nil

	case line == ListOK:
		d.segments = append(d.segments, d.segment)
		d.segment = nil
		return nil

	case strings.HasPrefix(line, AckPrefix):
		ack, err := ParseAck(line)
		if err != nil {
			return d.fail(err)
		}
		return d.fail(ack)
	}

	key, value, ok := strings.Cut(line, PairSeparator)
	if !ok || key == "" {
		return d.fail(&FramingError{Line: line})
	}
	p := Pair{Key: key, Value: value}
	d.pairs = append(d.pairs, p)
	d.segment = append(d.segment, p)
	return nil
}

func (d *Decoder) fail(err error) error {
	d.state = StateFailed
	d.err = err
	return err
}

// Response returns the finished response. It fails unless the decoder
// reached StateDone.
func (d *Decoder) Response() (*Response, error) {
	switch d.state {
	case StateDone:
		return &Response{Pairs: d.pairs, Segments: d.segments}, nil
	case StateFailed:
		return nil, d.err
	default:
		return nil, fmt.Errorf("response incomplete")
	}
}

// ReadResponse reads lines from r until the response terminates.
//
// Errors from r are returned unchanged; a stream that ends in the middle of
// a line reports io.ErrUnexpectedEOF. A line longer than MaxLineLength is a
// FramingError.
func ReadResponse(r *bufio.Reader) (*Response, error) {
	d := NewDecoder()
	for d.State() == StateReadingPairs {
		line, err := readLine(r)
		if err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		if err := d.Feed(line); err != nil {
			return nil, err
		}
	}
	return d.Response()
}

// readLine reads one newline-terminated line of at most MaxLineLength bytes.
func readLine(r *bufio.Reader) (string, error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if len(buf)+len(chunk) > MaxLineLength {
			head := append(buf, chunk...)
			return "", &FramingError{Line: string(head[:64]) + "..."}
		}
		buf = append(buf, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return string(buf), err
	}
}
