// Package vaultlog provides a process-wide structured logger for the
// vault engine: a mutex-guarded lazy-initialised slog.Logger writing
// JSON to stderr. The vault never logs passwords, derived keys, share
// values, or document contents -- only operation names, vault paths,
// and error classes.
package vaultlog

import (
	"log/slog"
	"os"
	"sync"
)

var (
	logger      *slog.Logger
	loggerMutex sync.Mutex
	level       = new(slog.LevelVar)
)

// Log returns the process-wide structured logger, initialising it on
// first use.
func Log() *slog.Logger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if logger != nil {
		return logger
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	return logger
}

// SetLevel adjusts the minimum level the logger emits. Safe to call
// before or after the first Log() call.
func SetLevel(l slog.Level) {
	level.Set(l)
}
