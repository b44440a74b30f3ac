// Package core carries process-level helpers shared by the hosts
package core

import (
	"log/slog"
	"sync/atomic"
)

// crashCleanup restores host state (terminal, audio) before a crash report
var crashCleanup atomic.Pointer[func()]

// SetCrashCleanup registers fn to run once before the crash report is printed
func SetCrashCleanup(fn func()) {
	if fn == nil {
		crashCleanup.Store(nil)
		return
	}
	crashCleanup.Store(&fn)
}

func runCrashCleanup() {
	if fn := crashCleanup.Swap(nil); fn != nil {
		(*fn)()
	}
}

// Go runs fn in a new goroutine; a panic goes through HandleCrash
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}

// Recover is deferred around calls into collaborators
// A panic is logged and swallowed so the caller keeps running
func Recover(logger *slog.Logger, who string) {
	if r := recover(); r != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("collaborator panic", "collaborator", who, "panic", r)
	}
}
