package main

import (
	"fmt"
	"os"

	"github.com/denniswebb/fwfacts/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fwfacts: %v\n", err)
		os.Exit(1)
	}
}
