// Command disasm renders a program image as an annotated listing to
// stdout.
package main

import (
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/synacor-vm/synacor/disasm"
	"github.com/synacor-vm/synacor/vm"
)

func main() {
	filename := flag.String("f", "", "program image to disassemble")
	flag.Parse()
	if *filename == "" {
		glog.Fatalln("usage: disasm -f <program-image>")
	}

	img, err := vm.LoadFile(*filename)
	if err != nil {
		glog.Fatalln(err)
	}

	records := disasm.Disassemble(img)
	disasm.WriteListing(os.Stdout, records)
}
