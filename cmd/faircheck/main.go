package main

import (
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Run completed, including runs with dropped pairs
	ExitError   = 1 // Input, configuration or strict-mode failure
)

func main() {
	if err := execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
