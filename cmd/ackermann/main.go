// Command ackermann searches for the teleporter's confirmation seed
// and prints it.
package main

import (
	"flag"
	"fmt"

	"github.com/golang/glog"

	"github.com/synacor-vm/synacor/ackermann"
)

func main() {
	iterative := flag.Bool("iterative", false, "use the explicit-stack evaluator instead of recursion")
	flag.Parse()

	solve := ackermann.Solve
	if *iterative {
		solve = ackermann.SolveIterative
	}

	seed, err := solve()
	if err != nil {
		glog.Fatalln(err)
	}
	fmt.Println(seed)
}
