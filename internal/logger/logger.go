// Package logger writes the run log of a reconciliation cycle. Every worker
// process appends to the same file under the output directory, so each file
// line carries the worker tag; the console only shows what an operator
// watching one worker needs.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger writes to the console and to the shared run log
type Logger struct {
	consoleLogger *log.Logger
	fileLogger    *log.Logger
	logFile       *os.File
	verbose       bool
	minLevel      Level
	worker        string
}

var globalLogger *Logger

// Init opens the run log for appending and routes INFO and above to
// consoleOutput. With verbose, DEBUG lines (per-product check detail) reach
// the console as well; they always reach the file.
func Init(consoleOutput io.Writer, logFilePath string, verbose bool) error {
	// Create log directory if it doesn't exist
	logDir := filepath.Dir(logFilePath)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	// Open log file
	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	// Create loggers
	consoleLogger := log.New(consoleOutput, "", 0) // No prefix for clean console output
	fileLogger := log.New(logFile, "", log.LstdFlags)

	minLevel := LevelInfo
	if verbose {
		minLevel = LevelDebug
	}

	globalLogger = &Logger{
		consoleLogger: consoleLogger,
		fileLogger:    fileLogger,
		logFile:       logFile,
		verbose:       verbose,
		minLevel:      minLevel,
	}

	return nil
}

// SetWorker tags every file line with the worker index so logs of parallel
// check processes appending to one file can be told apart
func SetWorker(index string) {
	if globalLogger == nil {
		return
	}
	if index == "" {
		globalLogger.worker = ""
		return
	}
	globalLogger.worker = fmt.Sprintf("[w%s] ", index)
}

// Close closes the log file
func Close() {
	if globalLogger != nil && globalLogger.logFile != nil {
		globalLogger.logFile.Close()
	}
}

// Debug logs a debug message (file only, unless verbose)
func Debug(format string, args ...interface{}) {
	if globalLogger == nil {
		return
	}
	globalLogger.log(LevelDebug, format, args...)
}

// Info logs an info message (console + file)
func Info(format string, args ...interface{}) {
	if globalLogger == nil {
		fmt.Printf(format+"\n", args...)
		return
	}
	globalLogger.log(LevelInfo, format, args...)
}

// Warn logs a warning message (console + file)
func Warn(format string, args ...interface{}) {
	if globalLogger == nil {
		fmt.Printf("WARN: "+format+"\n", args...)
		return
	}
	globalLogger.log(LevelWarn, format, args...)
}

// Error logs an error message (console + file)
func Error(format string, args ...interface{}) {
	if globalLogger == nil {
		fmt.Printf("ERROR: "+format+"\n", args...)
		return
	}
	globalLogger.log(LevelError, format, args...)
}

// log handles the actual logging logic
func (l *Logger) log(level Level, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	// Always log to file with timestamp and level (regardless of minLevel)
	l.fileLogger.Printf("[%s] %s%s", level.String(), l.worker, message)

	// Only log to console if level >= minLevel
	if level < l.minLevel {
		return
	}

	// Log to console based on level
	switch level {
	case LevelDebug:
		if l.verbose {
			l.consoleLogger.Printf("[DEBUG] %s", message)
		}
	case LevelInfo:
		l.consoleLogger.Printf("%s", message) // Clean output for INFO
	case LevelWarn:
		l.consoleLogger.Printf("⚠️  %s", message)
	case LevelError:
		l.consoleLogger.Printf("❌ %s", message)
	}
}

// LogCheckError records a product check that could not finish (file only).
// The console shows a one-line warning; details stay in the run log.
func LogCheckError(row int, product string, err error) {
	if globalLogger == nil {
		return
	}
	globalLogger.fileLogger.Printf("[CHECK_ERROR] %sRow: %d, Product: %s, Error: %v", globalLogger.worker, row, product, err)
	Debug("Check error on row %d: %v", row, err)
}

// LogFinding records one note filed for a product (file only), giving the
// run log an audit trail of what each worker reported
func LogFinding(productID int, category, message string) {
	if globalLogger == nil {
		return
	}
	globalLogger.fileLogger.Printf("[FINDING] %sProduct: %d, %s: %s", globalLogger.worker, productID, category, message)
}

// GetLogFilePath returns the path to the current log file
func GetLogFilePath() string {
	if globalLogger != nil && globalLogger.logFile != nil {
		return globalLogger.logFile.Name()
	}
	return ""
}
