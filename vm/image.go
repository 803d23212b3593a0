package vm

import (
	"fmt"
	"io"
	"os"
)

// Synacor programs address up to 32768 cells and expose 8 general
// purpose registers aliased onto the top of the operand space.
const (
	MemorySize   = 1 << 15
	NumRegisters = 8
	registerBase = uint16(MemorySize)
	registerTop  = registerBase + NumRegisters - 1
)

// OperandKind classifies a raw cell value the way the architecture
// defines it: a literal, a register alias, or an out-of-range value
// that no valid instruction should ever encode.
type OperandKind int

const (
	Literal OperandKind = iota
	Register
	Invalid
)

// Operand is the result of classifying a single cell.
type Operand struct {
	Kind  OperandKind
	Value uint16 // the literal value, or the register index when Kind == Register
}

// Classify implements the operand classification function shared by the
// VM and the disassembler: 0..32767 is a literal, 32768..32775 is a
// register index, everything else is invalid.
func Classify(cell uint16) Operand {
	switch {
	case cell <= 32767:
		return Operand{Kind: Literal, Value: cell}
	case cell <= registerTop:
		return Operand{Kind: Register, Value: cell - registerBase}
	default:
		return Operand{Kind: Invalid, Value: cell}
	}
}

// Image is the loaded program: a fixed-size cell array. It is never
// resized after Load; wmem and the control channel's poke mutate cells
// in place.
type Image struct {
	Cells [MemorySize]uint16
	// Size is the number of cells actually populated by the loaded
	// file; cells beyond it are zero and still addressable.
	Size int
}

// Load decodes a little-endian stream of 16-bit cells. No validation of
// cell values is performed here: an instruction whose operand happens
// to fall outside 0..32775 is still loaded, so that disassembling a
// region that is actually data never fails.
func Load(data []byte) (*Image, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("vm: image has odd length %d bytes", len(data))
	}
	cells := len(data) / 2
	if cells > MemorySize {
		return nil, fmt.Errorf("vm: image has %d cells, exceeds the %d-cell address space", cells, MemorySize)
	}
	img := &Image{Size: cells}
	for i := 0; i < cells; i++ {
		img.Cells[i] = uint16(data[2*i]) | uint16(data[2*i+1])<<8
	}
	return img, nil
}

// LoadFile reads the named file and decodes it with Load.
func LoadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vm: %w", err)
	}
	return Load(data)
}

// Dump serializes the current memory image byte-exactly back to w, for
// the control channel's !dump command.
func (img *Image) Dump(w io.Writer) error {
	buf := make([]byte, 2*MemorySize)
	for i, c := range img.Cells {
		buf[2*i] = byte(c)
		buf[2*i+1] = byte(c >> 8)
	}
	_, err := w.Write(buf)
	return err
}

// DumpFile writes the image to the named file, truncating it if present.
func (img *Image) DumpFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("vm: %w", err)
	}
	defer f.Close()
	return img.Dump(f)
}
