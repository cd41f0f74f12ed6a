package protocol

import (
	"bufio"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func read(t *testing.T, raw string) (*Response, error) {
	t.Helper()
	return ReadResponse(bufio.NewReader(strings.NewReader(raw)))
}

func TestReadResponse(t *testing.T) {
	t.Run("pairs then OK", func(t *testing.T) {
		resp, err := read(t, "file: a.mp3\nTitle: X\nfile: b.mp3\nTitle: Y\nOK\n")
		if err != nil {
			t.Fatalf("ReadResponse() error = %v", err)
		}
		want := []Pair{
			{"file", "a.mp3"}, {"Title", "X"},
			{"file", "b.mp3"}, {"Title", "Y"},
		}
		if !reflect.DeepEqual(resp.Pairs, want) {
			t.Errorf("Pairs = %v, want %v", resp.Pairs, want)
		}
		if len(resp.Segments) != 0 {
			t.Errorf("Segments = %v, want none", resp.Segments)
		}
	})

	t.Run("empty OK", func(t *testing.T) {
		resp, err := read(t, "OK\n")
		if err != nil {
			t.Fatalf("ReadResponse() error = %v", err)
		}
		if resp.Len() != 0 {
			t.Errorf("Len() = %d, want 0", resp.Len())
		}
	})

	t.Run("value keeps later separators", func(t *testing.T) {
		resp, err := read(t, "Title: Act II: Finale\nOK\n")
		if err != nil {
			t.Fatalf("ReadResponse() error = %v", err)
		}
		if v, _ := resp.Get("Title"); v != "Act II: Finale" {
			t.Errorf("Title = %q, want %q", v, "Act II: Finale")
		}
	})

	t.Run("empty value", func(t *testing.T) {
		resp, err := read(t, "Comment: \nOK\n")
		if err != nil {
			t.Fatalf("ReadResponse() error = %v", err)
		}
		if v, ok := resp.Get("Comment"); !ok || v != "" {
			t.Errorf("Comment = %q, %v, want empty, true", v, ok)
		}
	})

	t.Run("ACK surfaces a protocol error", func(t *testing.T) {
		_, err := read(t, "ACK [2@0] {play} song doesn't exist\n")

		var pe *Error
		if !errors.As(err, &pe) {
			t.Fatalf("ReadResponse() error = %v, want *Error", err)
		}
		want := &Error{Code: 2, Index: 0, Command: "play", Message: "song doesn't exist"}
		if !reflect.DeepEqual(pe, want) {
			t.Errorf("error = %+v, want %+v", pe, want)
		}
	})

	t.Run("unsplittable line is a framing error", func(t *testing.T) {
		_, err := read(t, "volume 50\nOK\n")
		if !IsFramingError(err) {
			t.Fatalf("ReadResponse() error = %v, want FramingError", err)
		}
	})

	t.Run("truncated stream", func(t *testing.T) {
		_, err := read(t, "volume: 50\nOK")
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("ReadResponse() error = %v, want io.ErrUnexpectedEOF", err)
		}
	})

	t.Run("stops at the terminator", func(t *testing.T) {
		r := bufio.NewReader(strings.NewReader("volume: 50\nOK\nstate: play\nOK\n"))

		first, err := ReadResponse(r)
		if err != nil {
			t.Fatalf("first ReadResponse() error = %v", err)
		}
		second, err := ReadResponse(r)
		if err != nil {
			t.Fatalf("second ReadResponse() error = %v", err)
		}
		if v, _ := first.Get("volume"); v != "50" {
			t.Errorf("first volume = %q", v)
		}
		if v, _ := second.Get("state"); v != "play" {
			t.Errorf("second state = %q", v)
		}
	})
}

func TestReadResponse_OKList(t *testing.T) {
	t.Run("segments split at list_OK", func(t *testing.T) {
		resp, err := read(t, "volume: 50\nlist_OK\nlist_OK\nfile: a.mp3\nTitle: X\nlist_OK\nOK\n")
		if err != nil {
			t.Fatalf("ReadResponse() error = %v", err)
		}
		if len(resp.Segments) != 3 {
			t.Fatalf("len(Segments) = %d, want 3", len(resp.Segments))
		}
		if v, _ := resp.Segment(0).Get("volume"); v != "50" {
			t.Errorf("segment 0 volume = %q", v)
		}
		if resp.Segment(1).Len() != 0 {
			t.Errorf("segment 1 Len = %d, want 0", resp.Segment(1).Len())
		}
		if v, _ := resp.Segment(2).Get("Title"); v != "X" {
			t.Errorf("segment 2 Title = %q", v)
		}
		if resp.Len() != 3 {
			t.Errorf("Len() = %d, want 3", resp.Len())
		}
	})

	t.Run("ACK in the middle of a batch", func(t *testing.T) {
		_, err := read(t, "list_OK\nACK [50@1] {add} No such directory\n")

		var pe *Error
		if !errors.As(err, &pe) {
			t.Fatalf("ReadResponse() error = %v, want *Error", err)
		}
		if pe.Index != 1 || pe.Command != "add" {
			t.Errorf("error = %+v, want index 1 command add", pe)
		}
	})
}

func TestReadResponse_LineLength(t *testing.T) {
	t.Run("line at the limit", func(t *testing.T) {
		value := strings.Repeat("a", MaxLineLength-len("Lyrics: \n"))
		resp, err := read(t, "Lyrics: "+value+"\nOK\n")
		if err != nil {
			t.Fatalf("ReadResponse() error = %v", err)
		}
		if v, _ := resp.Get("Lyrics"); len(v) != len(value) {
			t.Errorf("len(Lyrics) = %d, want %d", len(v), len(value))
		}
	})

	t.Run("line over the limit is a framing error", func(t *testing.T) {
		value := strings.Repeat("a", MaxLineLength)
		_, err := read(t, "Lyrics: "+value+"\nOK\n")
		if !IsFramingError(err) {
			t.Fatalf("ReadResponse() error = %v, want FramingError", err)
		}
	})

	t.Run("unterminated oversized stream", func(t *testing.T) {
		_, err := read(t, strings.Repeat("a", MaxLineLength+1))
		if !IsFramingError(err) {
			t.Fatalf("ReadResponse() error = %v, want FramingError", err)
		}
	})
}

func TestDecoder_States(t *testing.T) {
	d := NewDecoder()
	if d.State() != StateReadingPairs {
		t.Fatalf("initial State = %v", d.State())
	}
	if _, err := d.Response(); err == nil {
		t.Error("Response() before terminator should fail")
	}

	if err := d.Feed("state: play\n"); err != nil {
		t.Fatalf("Feed(pair) error = %v", err)
	}
	if err := d.Feed("OK\n"); err != nil {
		t.Fatalf("Feed(OK) error = %v", err)
	}
	if d.State() != StateDone {
		t.Errorf("State = %v, want done", d.State())
	}
	if err := d.Feed("state: stop\n"); !errors.Is(err, ErrDecoderFinished) {
		t.Errorf("Feed after OK error = %v, want ErrDecoderFinished", err)
	}

	failed := NewDecoder()
	if err := failed.Feed("garbage"); !IsFramingError(err) {
		t.Fatalf("Feed(garbage) error = %v", err)
	}
	if failed.State() != StateFailed {
		t.Errorf("State = %v, want failed", failed.State())
	}
	if _, err := failed.Response(); !IsFramingError(err) {
		t.Errorf("Response() error = %v, want FramingError", err)
	}
}

func TestDecoder_RejectsEmptyKey(t *testing.T) {
	d := NewDecoder()
	if err := d.Feed(": value"); !IsFramingError(err) {
		t.Errorf("Feed(empty key) error = %v, want FramingError", err)
	}
}
