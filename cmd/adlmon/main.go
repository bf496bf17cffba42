//go:build !ios && !android && (amd64 || arm64)

// Command adlmon lists AMD adapters and watches their fan and temperature
// sensors through ADL.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
