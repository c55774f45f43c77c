// Package debug writes an opt-in trace log for diagnosing live TUI sessions.
package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	logFile *os.File
	logPath string
)

// Enable opens the trace log at path, creating parent directories as needed.
// Enabling an already enabled logger is a no-op.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	logFile = f
	logPath = path
	write("--- dokita trace opened %s ---", time.Now().Format(time.RFC3339))
	return nil
}

// Disable closes the trace log; logging calls become no-ops again.
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return
	}
	write("--- dokita trace closed ---")
	logFile.Close()
	logFile = nil
}

// IsEnabled reports whether the trace log is open.
func IsEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return logFile != nil
}

// LogPath returns the trace log location, empty when never enabled.
func LogPath() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Log writes one formatted line when the trace log is open.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	write(format, args...)
}

// write appends a timestamped line and flushes it so the log can be tailed
// while the TUI runs. Caller holds the lock.
func write(format string, args ...any) {
	if logFile == nil {
		return
	}
	stamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(logFile, "[%s] %s\n", stamp, fmt.Sprintf(format, args...))
	logFile.Sync()
}

// Event records a component event.
func Event(component, eventType string, details string) {
	Log("[%s] %s: %s", component, eventType, details)
}

// Error records a component error with what was being attempted.
func Error(component string, err error, context string) {
	Log("[%s] ERROR: %s - %v", component, context, err)
}
