// Command mips2c reads a single MIPS32 assembly function from a .s file
// and prints the translation core's C-like reconstruction of its body.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
