// Command vm loads a Synacor program image and runs it through an
// interactive console.
package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/synacor-vm/synacor/vm"
)

func main() {
	filename := flag.String("f", "", "program image to load")
	historyFile := flag.String("history", "", "path to persist console input history (optional)")
	flag.Parse()
	if *filename == "" {
		glog.Fatalln("usage: vm -f <program-image>")
	}

	img, err := vm.LoadFile(*filename)
	if err != nil {
		glog.Fatalln(err)
	}

	console := vm.NewConsole(img, *historyFile)
	defer console.Close()

	if outcome := console.Run(); outcome.Status == vm.Failed {
		glog.Fatalln(outcome.Error())
	}
}
