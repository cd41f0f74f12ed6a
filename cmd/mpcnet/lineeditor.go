package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"

	"github.com/difegue/mpcnet/internal/ui"
)

// historySize is the maximum number of history entries to retain.
const historySize = 500

// LineEditor reads shell input. On a terminal it uses readline with
// persistent history; otherwise (piped input, or inside Emacs) it reads
// plain lines from stdin.
type LineEditor struct {
	interactive bool
	rl          *readline.Instance
	scanner     *bufio.Scanner
}

// NewLineEditor creates a LineEditor, keeping history in historyPath when
// running interactively.
func NewLineEditor(historyPath string) *LineEditor {
	isInteractive := term.IsTerminal(int(os.Stdin.Fd())) &&
		os.Getenv("INSIDE_EMACS") == ""

	if !isInteractive {
		return &LineEditor{scanner: bufio.NewScanner(os.Stdin)}
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyPath,
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
		AutoComplete:           newShellCompleter(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return &LineEditor{scanner: bufio.NewScanner(os.Stdin)}
	}
	return &LineEditor{interactive: true, rl: rl}
}

// GetLine reads one line after showing prompt. Ctrl-C and Ctrl-D both end
// input with io.EOF.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if !le.interactive {
		if !le.scanner.Scan() {
			if err := le.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return le.scanner.Text(), nil
	}

	le.rl.SetPrompt(ui.Cyan(prompt))
	line, err := le.rl.Readline()
	if err == readline.ErrInterrupt {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		le.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

// IsInteractive reports whether input comes from a terminal.
func (le *LineEditor) IsInteractive() bool {
	return le.interactive
}

// Close saves history and releases the terminal. It is safe to call twice.
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}
