package vm

import (
	"os"
	"strings"

	"github.com/peterh/liner"
)

// LineInput buffers one whole terminal line at a time and serves it to
// the "in" opcode byte-by-byte, including the trailing newline. Lines
// beginning with "!" are intercepted as control-channel commands
// before ever reaching the buffer, so the program never observes them.
//
// Backed by github.com/peterh/liner rather than a bare bufio.Reader so
// !history has real line history to persist.
type LineInput struct {
	state   *liner.State
	buf     []byte
	console *Console
}

// NewLineInput creates a line source bound to console, loading any
// prior history from historyPath if it exists.
func NewLineInput(console *Console, historyPath string) *LineInput {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			state.ReadHistory(f)
			f.Close()
		}
	}
	return &LineInput{state: state, console: console}
}

// Close releases the underlying terminal state.
func (li *LineInput) Close() error {
	return li.state.Close()
}

// ReadByte implements ByteSource. It pulls a new line only when the
// current one is exhausted, intercepting "!" commands at that boundary
// and never in the middle of an outstanding buffered line.
func (li *LineInput) ReadByte() (byte, error) {
	for len(li.buf) == 0 {
		if li.console.haltRequested {
			return 0, ErrOperatorHalt
		}
		line, err := li.state.Prompt("")
		if err != nil {
			return 0, err
		}
		if strings.TrimSpace(line) != "" {
			li.state.AppendHistory(line)
		}
		if strings.HasPrefix(line, "!") {
			li.console.handleControl(line)
			if li.console.haltRequested {
				return 0, ErrOperatorHalt
			}
			continue
		}
		li.buf = append([]byte(line), '\n')
	}
	b := li.buf[0]
	li.buf = li.buf[1:]
	return b, nil
}
