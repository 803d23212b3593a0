package vm

import (
	"errors"
	"strconv"
)

// ErrOperatorHalt is returned by a ByteSource when the operator has
// issued !halt/!kill at a line boundary. It unwinds through the "in"
// opcode as a clean Halted outcome, never a Failed one.
var ErrOperatorHalt = errors.New("vm: halt requested by operator")

// ErrControlCommand marks a malformed control-channel command. It is
// never fatal: it is reported to the operator and the console keeps
// running.
type ErrControlCommand struct {
	Line string
	Err  error
}

func (e *ErrControlCommand) Error() string {
	return "vm: control command " + strconv.Quote(e.Line) + ": " + e.Err.Error()
}

func (e *ErrControlCommand) Unwrap() error { return e.Err }
