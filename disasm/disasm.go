// Package disasm lifts a loaded program image into an annotated,
// human-readable listing. It consumes only the image and never follows
// a jump; it decodes and advances strictly by each instruction's own
// argument count, one instruction at a time, in isolation from the
// next.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/synacor-vm/synacor/vm"
)

// Record is one decoded line of the listing.
type Record struct {
	Addr     uint16
	Cells    []uint16
	Mnemonic string
	Comment  string
	// BlockEnd marks that a blank separator line follows this record,
	// after a halt, jmp, or ret, separating control-flow basic blocks.
	BlockEnd bool
}

type opcodeInfo struct {
	name    string
	argc    int
	comment func(args []uint16) string
}

func operandStr(cell uint16) string {
	op := vm.Classify(cell)
	switch op.Kind {
	case vm.Register:
		return fmt.Sprintf("reg[%d]", op.Value)
	case vm.Literal:
		return fmt.Sprintf("%04x", op.Value)
	default:
		return fmt.Sprintf("invalid(%04x)", cell)
	}
}

var table = [22]opcodeInfo{
	0: {"halt", 0, func(a []uint16) string { return "halt" }},
	1: {"set", 2, func(a []uint16) string {
		return fmt.Sprintf("%s = %s", operandStr(a[0]), operandStr(a[1]))
	}},
	2: {"push", 1, func(a []uint16) string { return fmt.Sprintf("push %s", operandStr(a[0])) }},
	3: {"pop", 1, func(a []uint16) string { return fmt.Sprintf("%s = pop()", operandStr(a[0])) }},
	4: {"eq", 3, func(a []uint16) string {
		return fmt.Sprintf("%s = (%s == %s) ? 1 : 0", operandStr(a[0]), operandStr(a[1]), operandStr(a[2]))
	}},
	5: {"gt", 3, func(a []uint16) string {
		return fmt.Sprintf("%s = (%s > %s) ? 1 : 0", operandStr(a[0]), operandStr(a[1]), operandStr(a[2]))
	}},
	6: {"jmp", 1, func(a []uint16) string { return fmt.Sprintf("PC = %s", operandStr(a[0])) }},
	7: {"jt", 2, func(a []uint16) string {
		return fmt.Sprintf("if %s != 0: PC = %s", operandStr(a[0]), operandStr(a[1]))
	}},
	8: {"jf", 2, func(a []uint16) string {
		return fmt.Sprintf("if %s == 0: PC = %s", operandStr(a[0]), operandStr(a[1]))
	}},
	9: {"add", 3, func(a []uint16) string {
		return fmt.Sprintf("%s = (%s + %s) %% 32768", operandStr(a[0]), operandStr(a[1]), operandStr(a[2]))
	}},
	10: {"mult", 3, func(a []uint16) string {
		return fmt.Sprintf("%s = (%s * %s) %% 32768", operandStr(a[0]), operandStr(a[1]), operandStr(a[2]))
	}},
	11: {"mod", 3, func(a []uint16) string {
		return fmt.Sprintf("%s = %s mod %s", operandStr(a[0]), operandStr(a[1]), operandStr(a[2]))
	}},
	12: {"and", 3, func(a []uint16) string {
		return fmt.Sprintf("%s = %s & %s", operandStr(a[0]), operandStr(a[1]), operandStr(a[2]))
	}},
	13: {"or", 3, func(a []uint16) string {
		return fmt.Sprintf("%s = %s | %s", operandStr(a[0]), operandStr(a[1]), operandStr(a[2]))
	}},
	14: {"not", 2, func(a []uint16) string {
		return fmt.Sprintf("%s = ~%s & 7fff", operandStr(a[0]), operandStr(a[1]))
	}},
	15: {"rmem", 2, func(a []uint16) string {
		return fmt.Sprintf("%s = mem[%s]", operandStr(a[0]), operandStr(a[1]))
	}},
	16: {"wmem", 2, func(a []uint16) string {
		return fmt.Sprintf("mem[%s] = %s", operandStr(a[0]), operandStr(a[1]))
	}},
	17: {"call", 1, func(a []uint16) string { return fmt.Sprintf("push(next); PC = %s", operandStr(a[0])) }},
	18: {"ret", 0, func(a []uint16) string { return "PC = pop()" }},
	19: {"out", 1, func(a []uint16) string { return fmt.Sprintf("putc(%s)", operandStr(a[0])) }},
	20: {"in", 1, func(a []uint16) string { return fmt.Sprintf("%s = getc()", operandStr(a[0])) }},
	21: {"noop", 0, func(a []uint16) string { return "" }},
}

// Disassemble linearly decodes every cell of img.Cells[:img.Size] into a
// Record. A cell whose value is outside 0..21 where an opcode is
// expected becomes a single-cell "data" record.
func Disassemble(img *vm.Image) []Record {
	var records []Record
	addr := 0
	for addr < img.Size {
		cell := img.Cells[addr]
		if cell > 21 {
			records = append(records, Record{
				Addr:     uint16(addr),
				Cells:    []uint16{cell},
				Mnemonic: "data",
				Comment:  fmt.Sprintf("%04x", cell),
			})
			addr++
			continue
		}
		info := table[cell]
		args := make([]uint16, info.argc)
		for i := 0; i < info.argc; i++ {
			if addr+1+i < img.Size {
				args[i] = img.Cells[addr+1+i]
			}
		}
		cells := append([]uint16{cell}, args...)
		rec := Record{
			Addr:     uint16(addr),
			Cells:    cells,
			Mnemonic: info.name,
			Comment:  info.comment(args),
			BlockEnd: info.name == "halt" || info.name == "jmp" || info.name == "ret",
		}
		records = append(records, rec)
		addr += 1 + info.argc
	}
	return records
}

func cellsHex(cells []uint16) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprintf("%02x%02x", byte(c), byte(c>>8))
	}
	return strings.Join(parts, " ")
}

// String renders a record as "<hex addr> | <hex bytes> | <mnemonic> |
// <pseudo-comment>".
func (r Record) String() string {
	return fmt.Sprintf("%04x | %s | %s | %s", r.Addr, cellsHex(r.Cells), r.Mnemonic, r.Comment)
}

// mnemonicColor and commentColor emit escapes only when stdout is a
// terminal; color.New's *Color.Fprint is a plain passthrough otherwise
// (the package checks stdout, not w, and disables escapes for a
// non-tty), so a listing redirected to a file stays byte-clean text.
var (
	mnemonicColor = color.New(color.FgCyan, color.Bold)
	commentColor  = color.New(color.FgHiBlack)
)

// WriteListing renders every record to w, one line each, with a blank
// separator line after every BlockEnd record.
func WriteListing(w io.Writer, records []Record) {
	for _, r := range records {
		fmt.Fprintf(w, "%04x | %s | ", r.Addr, cellsHex(r.Cells))
		mnemonicColor.Fprint(w, r.Mnemonic)
		fmt.Fprint(w, " | ")
		commentColor.Fprintln(w, r.Comment)
		if r.BlockEnd {
			fmt.Fprintln(w)
		}
	}
}
