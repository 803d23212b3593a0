// Package integration runs the VM end to end the way the nes package's
// own integration test ran a full console and diffed its rendered
// output against a golden fixture — here the "frame" is the program's
// captured character output rather than a pixel buffer.
package integration

import (
	"bytes"
	"testing"

	"github.com/synacor-vm/synacor/vm"
)

// assembleHelloWorld builds a tiny program image directly, cell by
// cell, rather than loading a file fixture: one `out` per character of
// "hi\n" followed by `halt`.
func assembleHelloWorld() *vm.Image {
	cells := []uint16{
		19, uint16('h'), // out 'h'
		19, uint16('i'), // out 'i'
		19, uint16('\n'), // out '\n'
		0, // halt
	}
	img := &vm.Image{Size: len(cells)}
	copy(img.Cells[:], cells)
	return img
}

func TestHelloWorld(t *testing.T) {
	img := assembleHelloWorld()
	machine := vm.New(img)
	var out bytes.Buffer
	machine.Out = &out

	outcome := machine.Run()
	if outcome.Status != vm.Halted {
		t.Fatalf("Run() ended with %+v, want a clean halt", outcome)
	}
	if got, want := out.String(), "hi\n"; got != want {
		t.Fatalf("captured output = %q, want %q", got, want)
	}
}
