package disasm

import (
	"strings"
	"testing"

	"github.com/synacor-vm/synacor/vm"
)

func imageOf(cells ...uint16) *vm.Image {
	img := &vm.Image{Size: len(cells)}
	copy(img.Cells[:], cells)
	return img
}

// TestBlockSeparation checks that a jmp at address 0 yields a record
// at address 0 and a blank line before the record at address 2.
func TestBlockSeparation(t *testing.T) {
	img := imageOf(6, 10, 21)
	records := Disassemble(img)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Addr != 0 || !records[0].BlockEnd {
		t.Fatalf("record[0] = %+v, want addr 0 with BlockEnd", records[0])
	}
	if records[1].Addr != 2 {
		t.Fatalf("record[1].Addr = %d, want 2", records[1].Addr)
	}

	var buf strings.Builder
	WriteListing(&buf, records)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (record, blank, record): %q", len(lines), buf.String())
	}
	if lines[1] != "" {
		t.Fatalf("expected a blank separator line, got %q", lines[1])
	}
}

func TestDataRecordForOutOfRangeOpcode(t *testing.T) {
	img := imageOf(9999, 0)
	records := Disassemble(img)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Mnemonic != "data" {
		t.Fatalf("records[0].Mnemonic = %q, want data", records[0].Mnemonic)
	}
	if records[1].Addr != 1 {
		t.Fatalf("records[1].Addr = %d, want 1 (data records advance by one)", records[1].Addr)
	}
}

func TestAddPseudoComment(t *testing.T) {
	img := imageOf(9, 32768, 32769, 1)
	records := Disassemble(img)
	want := "reg[0] = (reg[1] + 0001) % 32768"
	if records[0].Comment != want {
		t.Fatalf("comment = %q, want %q", records[0].Comment, want)
	}
}

func TestOperandClassificationRoundTrip(t *testing.T) {
	img := imageOf(1, 32768, 5, 0)
	records := Disassemble(img)
	if records[0].Mnemonic != "set" {
		t.Fatalf("mnemonic = %q, want set", records[0].Mnemonic)
	}
	if !strings.Contains(records[0].Comment, "reg[0]") {
		t.Fatalf("comment %q should classify 32768 as reg[0]", records[0].Comment)
	}
}
