package main

import (
	"os"

	"github.com/libship/libship"
)

func main() {
	os.Exit(libship.RunCLI(os.Stdout, os.Stderr, os.Args[1:]))
}
