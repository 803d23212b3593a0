package vm

import (
	"errors"
	"io"

	"github.com/golang/glog"
)

// ByteSource serves one input byte at a time to the "in" opcode. The
// control channel's line buffering lives behind this interface so the
// VM core never knows about "!"-prefixed commands.
type ByteSource interface {
	ReadByte() (byte, error)
}

// instruction is one row of the fixed opcode dispatch table. branches
// is true for the five opcodes that set PC themselves (jmp, jt, jf,
// call, ret) plus halt; every other opcode is auto-advanced by 1+argc
// cells after a Continue result.
type instruction struct {
	name     string
	argc     int
	branches bool
	exec     func(vm *VM, pc uint16, args [3]uint16) Outcome
}

// VM is a single virtual machine instance: registers, stack, the loaded
// image, and the I/O surfaces it talks to. All state lives here instead
// of in package-level globals, so cmd/vm's control channel can hold a
// single borrowed *VM.
type VM struct {
	Image *Image
	Reg   [NumRegisters]uint16
	Stack []uint16
	PC    uint16

	Out io.Writer
	In  ByteSource
}

// New constructs a VM over the given image. Out defaults to nothing;
// callers set Out/In before calling Run or Step.
func New(img *Image) *VM {
	return &VM{Image: img}
}

var dispatch [22]instruction

func init() {
	dispatch = [22]instruction{
		0:  {"halt", 0, true, (*VM).opHalt},
		1:  {"set", 2, false, (*VM).opSet},
		2:  {"push", 1, false, (*VM).opPush},
		3:  {"pop", 1, false, (*VM).opPop},
		4:  {"eq", 3, false, (*VM).opEq},
		5:  {"gt", 3, false, (*VM).opGt},
		6:  {"jmp", 1, true, (*VM).opJmp},
		7:  {"jt", 2, true, (*VM).opJt},
		8:  {"jf", 2, true, (*VM).opJf},
		9:  {"add", 3, false, (*VM).opAdd},
		10: {"mult", 3, false, (*VM).opMult},
		11: {"mod", 3, false, (*VM).opMod},
		12: {"and", 3, false, (*VM).opAnd},
		13: {"or", 3, false, (*VM).opOr},
		14: {"not", 2, false, (*VM).opNot},
		15: {"rmem", 2, false, (*VM).opRmem},
		16: {"wmem", 2, false, (*VM).opWmem},
		17: {"call", 1, true, (*VM).opCall},
		18: {"ret", 0, true, (*VM).opRet},
		19: {"out", 1, false, (*VM).opOut},
		20: {"in", 1, false, (*VM).opIn},
		21: {"noop", 0, false, (*VM).opNoop},
	}
}

// Step fetches, decodes, and executes a single instruction at the
// current PC, advancing it per the opcode's semantics.
func (vm *VM) Step() Outcome {
	pc := vm.PC
	opcode := vm.Image.Cells[pc]
	if opcode > 21 {
		return failedOutcome(UnknownOpcode, pc, opcode)
	}
	instr := dispatch[opcode]
	var args [3]uint16
	for i := 0; i < instr.argc; i++ {
		args[i] = vm.Image.Cells[pc+1+uint16(i)]
	}
	if glog.V(2) {
		glog.Infof("vm: pc=%04x op=%-4s args=%v", pc, instr.name, args[:instr.argc])
	}
	out := instr.exec(vm, pc, args)
	if out.Status == Continue && !instr.branches {
		vm.PC = pc + 1 + uint16(instr.argc)
	}
	return out
}

// Run steps the VM until it halts or fails.
func (vm *VM) Run() Outcome {
	for {
		out := vm.Step()
		if out.Status != Continue {
			return out
		}
	}
}

// resolveValue reads an operand's numeric value: the literal itself, or
// the named register's contents. An out-of-range cell is a fatal
// InvalidOperand.
func (vm *VM) resolveValue(raw, pc uint16) (uint16, Outcome) {
	op := Classify(raw)
	switch op.Kind {
	case Literal:
		return op.Value, continueOutcome()
	case Register:
		return vm.Reg[op.Value], continueOutcome()
	default:
		return 0, failedOutcome(InvalidOperand, pc, raw)
	}
}

// destIndex resolves an operand that must name a write destination:
// only a register classification is acceptable.
func (vm *VM) destIndex(raw, pc uint16) (uint16, Outcome) {
	op := Classify(raw)
	if op.Kind != Register {
		return 0, failedOutcome(InvalidOperand, pc, raw)
	}
	return op.Value, continueOutcome()
}

func (vm *VM) opHalt(pc uint16, args [3]uint16) Outcome {
	return haltedOutcome()
}

func (vm *VM) opSet(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	vm.Reg[a] = b
	return continueOutcome()
}

func (vm *VM) opPush(pc uint16, args [3]uint16) Outcome {
	a, out := vm.resolveValue(args[0], pc)
	if out.Status == Failed {
		return out
	}
	vm.Stack = append(vm.Stack, a)
	return continueOutcome()
}

func (vm *VM) opPop(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	if len(vm.Stack) == 0 {
		return failedOutcome(StackUnderflow, pc, args[0])
	}
	v := vm.Stack[len(vm.Stack)-1]
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	vm.Reg[a] = v
	return continueOutcome()
}

func (vm *VM) opEq(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	c, out := vm.resolveValue(args[2], pc)
	if out.Status == Failed {
		return out
	}
	if b == c {
		vm.Reg[a] = 1
	} else {
		vm.Reg[a] = 0
	}
	return continueOutcome()
}

func (vm *VM) opGt(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	c, out := vm.resolveValue(args[2], pc)
	if out.Status == Failed {
		return out
	}
	if b > c {
		vm.Reg[a] = 1
	} else {
		vm.Reg[a] = 0
	}
	return continueOutcome()
}

func (vm *VM) opJmp(pc uint16, args [3]uint16) Outcome {
	a, out := vm.resolveValue(args[0], pc)
	if out.Status == Failed {
		return out
	}
	vm.PC = a
	return continueOutcome()
}

func (vm *VM) opJt(pc uint16, args [3]uint16) Outcome {
	a, out := vm.resolveValue(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	if a != 0 {
		vm.PC = b
	} else {
		vm.PC = pc + 3
	}
	return continueOutcome()
}

func (vm *VM) opJf(pc uint16, args [3]uint16) Outcome {
	a, out := vm.resolveValue(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	if a == 0 {
		vm.PC = b
	} else {
		vm.PC = pc + 3
	}
	return continueOutcome()
}

func (vm *VM) opAdd(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	c, out := vm.resolveValue(args[2], pc)
	if out.Status == Failed {
		return out
	}
	vm.Reg[a] = (b + c) % 32768
	return continueOutcome()
}

func (vm *VM) opMult(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	c, out := vm.resolveValue(args[2], pc)
	if out.Status == Failed {
		return out
	}
	vm.Reg[a] = uint16((uint32(b) * uint32(c)) % 32768)
	return continueOutcome()
}

func (vm *VM) opMod(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	c, out := vm.resolveValue(args[2], pc)
	if out.Status == Failed {
		return out
	}
	if c == 0 {
		return failedOutcome(InvalidOperand, pc, args[2])
	}
	vm.Reg[a] = b % c
	return continueOutcome()
}

func (vm *VM) opAnd(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	c, out := vm.resolveValue(args[2], pc)
	if out.Status == Failed {
		return out
	}
	vm.Reg[a] = b & c
	return continueOutcome()
}

func (vm *VM) opOr(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	c, out := vm.resolveValue(args[2], pc)
	if out.Status == Failed {
		return out
	}
	vm.Reg[a] = b | c
	return continueOutcome()
}

func (vm *VM) opNot(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	vm.Reg[a] = (^b) & 0x7FFF
	return continueOutcome()
}

func (vm *VM) opRmem(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	vm.Reg[a] = vm.Image.Cells[b]
	return continueOutcome()
}

func (vm *VM) opWmem(pc uint16, args [3]uint16) Outcome {
	a, out := vm.resolveValue(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, out := vm.resolveValue(args[1], pc)
	if out.Status == Failed {
		return out
	}
	vm.Image.Cells[a] = b
	return continueOutcome()
}

func (vm *VM) opCall(pc uint16, args [3]uint16) Outcome {
	a, out := vm.resolveValue(args[0], pc)
	if out.Status == Failed {
		return out
	}
	vm.Stack = append(vm.Stack, pc+2)
	vm.PC = a
	return continueOutcome()
}

func (vm *VM) opRet(pc uint16, args [3]uint16) Outcome {
	if len(vm.Stack) == 0 {
		return haltedOutcome()
	}
	target := vm.Stack[len(vm.Stack)-1]
	vm.Stack = vm.Stack[:len(vm.Stack)-1]
	vm.PC = target
	return continueOutcome()
}

func (vm *VM) opOut(pc uint16, args [3]uint16) Outcome {
	a, out := vm.resolveValue(args[0], pc)
	if out.Status == Failed {
		return out
	}
	if vm.Out != nil {
		if _, err := vm.Out.Write([]byte{byte(a)}); err != nil {
			return failedOutcome(IOFailure, pc, a)
		}
	}
	return continueOutcome()
}

func (vm *VM) opIn(pc uint16, args [3]uint16) Outcome {
	a, out := vm.destIndex(args[0], pc)
	if out.Status == Failed {
		return out
	}
	b, err := vm.In.ReadByte()
	if err != nil {
		if errors.Is(err, ErrOperatorHalt) {
			return haltedOutcome()
		}
		return failedOutcome(IOFailure, pc, 0)
	}
	vm.Reg[a] = uint16(b)
	return continueOutcome()
}

func (vm *VM) opNoop(pc uint16, args [3]uint16) Outcome {
	return continueOutcome()
}
