package main

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/difegue/mpcnet/internal/conn"
	"github.com/difegue/mpcnet/internal/protocol"
)

// scriptedInput returns its lines in order, then io.EOF.
type scriptedInput struct {
	lines   []string
	prompts int
}

func (s *scriptedInput) GetLine(prompt string) (string, error) {
	s.prompts++
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

// fakeRawClient answers from a map of canned responses; unknown commands
// get an ACK.
type fakeRawClient struct {
	state    conn.State
	replies  map[string][]protocol.Pair
	sent     []string
	connects int
	breakOn  string
}

func (f *fakeRawClient) Connect(ctx context.Context) error {
	f.connects++
	f.state = conn.StateConnected
	return nil
}

func (f *fakeRawClient) State() conn.State { return f.state }

func (f *fakeRawClient) Raw(ctx context.Context, lines ...string) (*protocol.Response, error) {
	line := lines[0]
	f.sent = append(f.sent, line)
	if line == f.breakOn {
		f.state = conn.StateDisconnected
		return nil, &conn.ConnectionError{Op: "send", Err: io.EOF}
	}
	pairs, ok := f.replies[line]
	if !ok {
		return nil, &protocol.Error{Code: protocol.AckUnknown, Command: line, Message: "unknown command"}
	}
	return protocol.NewResponse(pairs...), nil
}

func TestRunShell(t *testing.T) {
	buf := captureOutput(t)
	cl := &fakeRawClient{
		state:   conn.StateConnected,
		replies: map[string][]protocol.Pair{"status": {{Key: "state", Value: "play"}}},
	}
	in := &scriptedInput{lines: []string{"", "  status  ", "bogus", "command_list_begin", "quit", "status"}}

	if err := runShell(context.Background(), &Globals{Format: "text"}, cl, in); err != nil {
		t.Fatalf("runShell() error = %v", err)
	}

	if !slices.Equal(cl.sent, []string{"status", "bogus"}) {
		t.Errorf("sent = %v, want [status bogus]", cl.sent)
	}
	output := buf.String()
	for _, want := range []string{"state: play", "Daemon refused 'bogus': unknown command", "mpcnet batch"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if in.prompts != 5 {
		t.Errorf("prompts = %d, want 5", in.prompts)
	}
}

func TestRunShell_ReconnectsAfterBreak(t *testing.T) {
	buf := captureOutput(t)
	cl := &fakeRawClient{
		state:   conn.StateConnected,
		replies: map[string][]protocol.Pair{"ping": nil},
		breakOn: "idle",
	}
	in := &scriptedInput{lines: []string{"idle", "ping"}}

	if err := runShell(context.Background(), &Globals{Format: "text"}, cl, in); err != nil {
		t.Fatalf("runShell() error = %v", err)
	}

	if cl.connects != 1 {
		t.Errorf("connects = %d, want 1", cl.connects)
	}
	if !slices.Equal(cl.sent, []string{"idle", "ping"}) {
		t.Errorf("sent = %v", cl.sent)
	}
	output := buf.String()
	if !strings.Contains(output, "Connection to the daemon lost") || !strings.Contains(output, "Reconnected") {
		t.Errorf("output = %q", output)
	}
}

func TestRunShell_YAML(t *testing.T) {
	buf := captureOutput(t)
	cl := &fakeRawClient{
		state:   conn.StateConnected,
		replies: map[string][]protocol.Pair{"getvol": {{Key: "volume", Value: "30"}}},
	}

	err := runShell(context.Background(), &Globals{Format: "yaml"}, cl, &scriptedInput{lines: []string{"getvol"}})
	if err != nil {
		t.Fatalf("runShell() error = %v", err)
	}
	if buf.String() != "volume: \"30\"\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRunShell_StopsWhenCanceled(t *testing.T) {
	captureOutput(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := &scriptedInput{lines: []string{"status"}}

	if err := runShell(ctx, &Globals{}, &fakeRawClient{}, in); err != nil {
		t.Fatalf("runShell() error = %v", err)
	}
	if in.prompts != 0 {
		t.Errorf("prompts = %d, want 0", in.prompts)
	}
}

type failingInput struct{ err error }

func (f failingInput) GetLine(string) (string, error) { return "", f.err }

func TestRunShell_InputError(t *testing.T) {
	wantErr := errors.New("terminal gone")

	err := runShell(context.Background(), &Globals{}, &fakeRawClient{}, failingInput{wantErr})
	if !errors.Is(err, wantErr) {
		t.Errorf("runShell() error = %v, want %v", err, wantErr)
	}
}
