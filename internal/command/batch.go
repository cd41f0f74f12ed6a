package command

import (
	"fmt"

	"github.com/difegue/mpcnet/internal/protocol"
)

// Batch collects commands sent together as one ok-list. Each command gets
// its own list_OK segment back, decoded by that command.
type Batch struct {
	entries []batchEntry
}

type batchEntry struct {
	line   string
	decode func(resp *protocol.Response) error
}

// AddTo appends cmd to the batch. When dst is non-nil it receives the decoded
// result after a successful round trip.
func AddTo[T any](b *Batch, cmd Command[T], dst *T) {
	b.entries = append(b.entries, batchEntry{
		line: cmd.Encode(),
		decode: func(resp *protocol.Response) error {
			v, err := cmd.Decode(resp)
			if err != nil {
				return err
			}
			if dst != nil {
				*dst = v
			}
			return nil
		},
	})
}

// AddLine appends a pre-encoded line whose result is ignored.
func (b *Batch) AddLine(line string) {
	b.entries = append(b.entries, batchEntry{
		line:   line,
		decode: func(*protocol.Response) error { return nil },
	})
}

// Len returns the number of commands in the batch.
func (b *Batch) Len() int {
	return len(b.entries)
}

// Commands returns the encoded command lines, without framing.
func (b *Batch) Commands() []string {
	lines := make([]string, len(b.entries))
	for i, e := range b.entries {
		lines[i] = e.line
	}
	return lines
}

// Lines returns the request lines framed as an ok-list.
func (b *Batch) Lines() []string {
	return protocol.WrapList(b.Commands(), true)
}

// Decode hands every list_OK segment to the command that produced it.
func (b *Batch) Decode(resp *protocol.Response) error {
	if len(resp.Segments) != len(b.entries) {
		return fmt.Errorf("batch: got %d acknowledgements for %d commands",
			len(resp.Segments), len(b.entries))
	}
	for i, e := range b.entries {
		if err := e.decode(resp.Segment(i)); err != nil {
			return fmt.Errorf("batch element %d (%s): %w", i, Name(e.line), err)
		}
	}
	return nil
}
