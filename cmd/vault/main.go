// Command vault searches the vault's 4x4 grid and prints the resulting
// cardinal command sequence, one per line.
package main

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/synacor-vm/synacor/vault"
)

func main() {
	moves, err := vault.Solve()
	if err != nil {
		glog.Fatalln(err)
	}
	for _, name := range vault.Names(moves) {
		fmt.Println(name)
	}
}
