//go:build !wasm

package core

import (
	"fmt"
	"os"
	"runtime/debug"
)

// HandleCrash restores the host and prints the stack trace, then exits
func HandleCrash(r any) {
	if r == nil {
		return
	}

	runCrashCleanup()

	fmt.Fprintf(os.Stderr, "\n\x1b[31mCRASH DETECTED: %v\x1b[0m\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\n%s\n", debug.Stack())

	os.Exit(1)
}
