// Package logger provides leveled logging with support for debug, info, warn, and error levels.
// It wraps the standard log package for text output and emits one JSON object
// per line when the json format is selected.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// Level represents a logging level
type Level int

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual human review.
	WarnLevel
	// ErrorLevel logs are high-priority. If an application is running smoothly, it shouldn't generate any error-level logs.
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// ParseLevel converts a configuration string into a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// Logger provides leveled logging
type Logger struct {
	level  Level
	json   bool
	logger *log.Logger
	mu     sync.Mutex
	out    io.Writer
}

var (
	// Global logger instance
	defaultLogger *Logger
)

type jsonLine struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

// Init initializes the default logger with the specified level and format.
// Unknown levels fall back to info.
func Init(level string, format string) {
	initWithWriter(level, format, os.Stderr)
}

// SetOutput redirects the default logger, keeping its level and format.
func SetOutput(w io.Writer) {
	if defaultLogger == nil {
		initWithWriter("info", "text", w)
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.out = w
	defaultLogger.logger.SetOutput(w)
}

func initWithWriter(level, format string, w io.Writer) {
	l, _ := ParseLevel(level)

	// Set log flags based on format
	flags := log.LstdFlags | log.Lmicroseconds
	if strings.ToLower(format) == "text" {
		flags |= log.Lshortfile
	}

	defaultLogger = &Logger{
		level:  l,
		json:   strings.ToLower(format) == "json",
		logger: log.New(w, "", flags),
		out:    w,
	}
}

func (l *Logger) output(level Level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.json {
		_ = l.logger.Output(3, fmt.Sprintf("[%s] %s", level, msg))
		return
	}

	line, err := json.Marshal(jsonLine{
		Time:    time.Now().UTC().Format(time.RFC3339Nano),
		Level:   strings.ToLower(level.String()),
		Message: msg,
	})
	if err != nil {
		_ = l.logger.Output(3, fmt.Sprintf("[%s] %s", level, msg))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(append(line, '\n'))
}

func enabled(level Level) bool {
	return defaultLogger != nil && defaultLogger.level <= level
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) {
	if enabled(DebugLevel) {
		defaultLogger.output(DebugLevel, format, args...)
	}
}

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) {
	if enabled(InfoLevel) {
		defaultLogger.output(InfoLevel, format, args...)
	}
}

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) {
	if enabled(WarnLevel) {
		defaultLogger.output(WarnLevel, format, args...)
	}
}

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) {
	if enabled(ErrorLevel) {
		defaultLogger.output(ErrorLevel, format, args...)
	}
}

// Fatal logs a message at ErrorLevel and exits
func Fatal(format string, args ...interface{}) {
	if defaultLogger != nil {
		defaultLogger.output(ErrorLevel+1, format, args...)
	} else {
		log.Printf("[FATAL] "+format, args...)
	}
	os.Exit(1)
}
