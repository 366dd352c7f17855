// Package colors provides color output utilities.
package colors

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Color constants
const (
	Red    = "\033[0;31m"
	Green  = "\033[0;32m"
	Yellow = "\033[1;33m"
	Blue   = "\033[0;34m"
	Cyan   = "\033[0;36m"
	Reset  = "\033[0m"
)

const checkmark = "✓"

// DebugEnv enables debug output when set to "1" or "true".
const DebugEnv = "ADVISING_NOTIFY_DEBUG"

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var (
	debugEnabled    = false
	inErrorHandling = false
	errorMutex      sync.RWMutex
	logger          Logger
	loggerMu        sync.RWMutex
)

func init() {
	if val := os.Getenv(DebugEnv); val == "true" || val == "1" {
		debugEnabled = true
	}
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	debugEnabled = enabled
}

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool {
	return debugEnabled
}

// SetLogger sets the structured logger to mirror console output.
func SetLogger(l Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

func currentLogger() Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// errorFallback logs an error message without using colors to avoid recursion.
func errorFallback(msg string) {
	// Direct write to stderr, ignore errors
	fmt.Fprintf(os.Stderr, "%s\n", msg)
}

// line describes how one kind of console message is rendered and mirrored.
type line struct {
	kind   string
	stdout bool
	format string
	mirror func(l Logger, msg string)
}

var (
	errorLine = line{"error", false, Red + "Error:" + Reset + " %s" + Reset + "\n",
		func(l Logger, msg string) { l.Error(msg) }}
	successLine = line{"success", true, Green + checkmark + Reset + " %s" + Reset + "\n",
		func(l Logger, msg string) { l.Info(msg, "type", "success") }}
	warningLine = line{"warning", false, Yellow + "Warning:" + Reset + " %s" + Reset + "\n",
		func(l Logger, msg string) { l.Warn(msg) }}
	infoLine = line{"info", true, Blue + "%s" + Reset + "\n",
		func(l Logger, msg string) { l.Info(msg) }}
	logInfoLine = line{"log info", false, Blue + "%s" + Reset + "\n",
		func(l Logger, msg string) { l.Info(msg) }}
	debugLine = line{"debug", false, Cyan + "Debug:" + Reset + " %s" + Reset + "\n",
		func(l Logger, msg string) { l.Debug(msg) }}
)

func (ln line) emit(msgs []string) {
	msg := strings.Join(msgs, " ")
	if l := currentLogger(); l != nil {
		ln.mirror(l, msg)
	}
	var w io.Writer = os.Stderr
	if ln.stdout {
		w = os.Stdout
	}
	if _, err := fmt.Fprintf(w, ln.format, msg); err != nil {
		ln.reportWriteFailure(err)
	}
}

// reportWriteFailure reports a failed console write once; nested failures
// go straight to stderr.
func (ln line) reportWriteFailure(err error) {
	errorMutex.RLock()
	alreadyHandling := inErrorHandling
	errorMutex.RUnlock()

	text := "failed to print " + ln.kind + " message: " + err.Error()
	if alreadyHandling {
		errorFallback("Error: " + text)
		return
	}

	errorMutex.Lock()
	inErrorHandling = true
	errorMutex.Unlock()
	defer func() {
		errorMutex.Lock()
		inErrorHandling = false
		errorMutex.Unlock()
	}()
	if ln.kind == "warning" {
		Error(text)
		return
	}
	Warning(text)
}

// Error outputs an error message to stderr.
func Error(msgs ...string) { errorLine.emit(msgs) }

// Success outputs a success message to stdout.
func Success(msgs ...string) { successLine.emit(msgs) }

// Warning outputs a warning message to stderr.
func Warning(msgs ...string) { warningLine.emit(msgs) }

// Info outputs an informational message to stdout.
func Info(msgs ...string) { infoLine.emit(msgs) }

// LogInfo outputs a log informational message to stderr.
func LogInfo(msgs ...string) { logInfoLine.emit(msgs) }

// Debug outputs a debug message to stderr if debug is enabled.
func Debug(msgs ...string) {
	if !debugEnabled {
		return
	}
	debugLine.emit(msgs)
}
