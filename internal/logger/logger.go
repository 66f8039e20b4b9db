// Package logger writes Folio's diagnostic output to stderr. Debug, info and
// warning lines appear only with --verbose; errors are always written.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

var (
	verbose atomic.Bool

	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetVerbose toggles verbose output.
func SetVerbose(v bool) { verbose.Store(v) }

// IsVerbose reports whether verbose output is on.
func IsVerbose() bool { return verbose.Load() }

// SetOutput redirects all log lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

func write(always bool, format string, args ...any) {
	if !always && !verbose.Load() {
		return
	}
	line := fmt.Sprintf(format, args...)
	mu.Lock()
	defer mu.Unlock()
	_, _ = io.WriteString(out, line)
}

// Debug logs step-level detail such as batch numbers.
func Debug(format string, args ...any) { write(false, "[DEBUG] "+format+"\n", args...) }

// Info logs a completed step.
func Info(format string, args ...any) { write(false, "[INFO] "+format+"\n", args...) }

// Warn logs a recovered problem.
func Warn(format string, args ...any) { write(false, "[WARN] "+format+"\n", args...) }

// Error logs a failure regardless of verbosity.
func Error(format string, args ...any) { write(true, "[ERROR] "+format+"\n", args...) }

// Section starts a titled block of verbose output.
func Section(name string) { write(false, "\n=== %s ===\n", name) }
