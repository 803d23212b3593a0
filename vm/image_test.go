package vm

import (
	"bytes"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		cell uint16
		kind OperandKind
		val  uint16
	}{
		{0, Literal, 0},
		{32767, Literal, 32767},
		{32768, Register, 0},
		{32775, Register, 7},
		{32776, Invalid, 32776},
		{65535, Invalid, 65535},
	}
	for _, c := range cases {
		op := Classify(c.cell)
		if op.Kind != c.kind || op.Value != c.val {
			t.Errorf("Classify(%d) = %+v, want {%v %d}", c.cell, op, c.kind, c.val)
		}
	}
}

func TestLoadOddLength(t *testing.T) {
	if _, err := Load([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected an error for an odd-length image")
	}
}

func TestLoadLittleEndian(t *testing.T) {
	img, err := Load([]byte{0x09, 0x00, 0x00, 0x80, 0x01, 0x80})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint16{9, 32768, 32769}
	for i, w := range want {
		if img.Cells[i] != w {
			t.Errorf("cell %d = %04x, want %04x", i, img.Cells[i], w)
		}
	}
	if img.Size != 3 {
		t.Errorf("Size = %d, want 3", img.Size)
	}
}

func TestDumpRoundTrip(t *testing.T) {
	img, err := Load([]byte{0x09, 0x00, 0x00, 0x80, 0x01, 0x80})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := img.Dump(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Load(buf.Bytes()[:6])
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if got.Cells[i] != img.Cells[i] {
			t.Errorf("round-trip cell %d = %04x, want %04x", i, got.Cells[i], img.Cells[i])
		}
	}
}
