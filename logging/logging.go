package logging

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

var (
	debugLogger = slog.New(slog.DiscardHandler)
	logFile     *os.File
	mu          sync.Mutex
	isSetup     bool
)

// SetupLogger initializes the debug logger with the specified log file.
// Records are written as JSON lines.
func SetupLogger(logFilePath string, level slog.Level) error {
	mu.Lock()
	defer mu.Unlock()

	// Check if logger is already set up
	if isSetup {
		return nil
	}

	var err error
	logFile, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	debugLogger = slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level}))
	debugLogger.Info("tagfinder debug log started", "at", time.Now().Format(time.RFC3339))

	isSetup = true
	return nil
}

// SetLogger replaces the active logger. Used by tests to capture records.
func SetLogger(logger *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debugLogger = logger
}

// CloseLogger closes the log file
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		debugLogger.Info("tagfinder debug log closed", "at", time.Now().Format(time.RFC3339))
		logFile.Close()
		logFile = nil
		isSetup = false
		debugLogger = slog.New(slog.DiscardHandler)
	}
}

func logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return debugLogger
}

// LogInfo logs an information message
func LogInfo(msg string, args ...any) {
	logger().Info(msg, args...)
}

// DebugLog logs a message at debug level
func DebugLog(msg string, args ...any) {
	logger().Debug(msg, args...)
}

// LogError logs an error message
func LogError(msg string, args ...any) {
	logger().Error(msg, args...)
}

// LogWarning logs a warning message
func LogWarning(msg string, args ...any) {
	logger().Warn(msg, args...)
}

// LogImageProcessed logs when an image is processed
func LogImageProcessed(path string, success bool, err error) {
	if success {
		logger().Debug("processed", "path", path)
		return
	}
	logger().Error("failed", "path", path, "error", err)
}
