// Package logger provides the leveled, structured logger used by all
// assetmanifest commands. Output goes to stderr so manifest JSON written to
// stdout stays machine-readable.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level is the severity of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
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
		return "UNKNOWN"
	}
}

// ParseLevel maps a flag value to a Level. Unknown values default to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Config holds the logger configuration.
type Config struct {
	Level    Level
	UseColor bool
	JSON     bool
}

// Logger writes leveled entries to a single destination.
type Logger struct {
	config Config
	out    *log.Logger
}

// The package-level logger works before Initialize is called, so warnings
// from library use outside the CLI are never dropped.
var defaultLogger = New(Config{Level: InfoLevel}, os.Stderr)

// Initialize sets up the package-level logger. Safe to call more than once;
// the last configuration wins.
func Initialize(config Config) {
	defaultLogger = New(config, os.Stderr)
}

// New builds a Logger writing to w.
func New(config Config, w io.Writer) *Logger {
	return &Logger{config: config, out: log.New(w, "", 0)}
}

// Field is one structured key/value attached to an entry.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field      { return Field{Key: key, Value: value} }
func Int(key string, value int) Field     { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }
func Err(err error) Field                 { return Field{Key: "error", Value: err.Error()} }

type entry struct {
	Time    time.Time              `json:"time"`
	Level   string                 `json:"level"`
	Message string                 `json:"message"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Log writes one entry if it passes the configured level.
func (l *Logger) Log(level Level, message string, fields ...Field) {
	if level < l.config.Level {
		return
	}

	e := entry{Time: time.Now(), Level: level.String(), Message: message}
	if len(fields) > 0 {
		e.Fields = make(map[string]interface{}, len(fields))
		for _, f := range fields {
			e.Fields[f.Key] = f.Value
		}
	}

	if l.config.JSON {
		b, _ := json.Marshal(e)
		l.out.Print(string(b))
		return
	}
	l.out.Print(l.formatPretty(e))
}

func (l *Logger) formatPretty(e entry) string {
	var b strings.Builder
	b.WriteString(e.Time.Format("2006-01-02 15:04:05"))

	level := e.Level
	if l.config.UseColor {
		switch e.Level {
		case "DEBUG":
			level = "\033[36mDEBUG\033[0m"
		case "INFO":
			level = "\033[32mINFO\033[0m"
		case "WARN":
			level = "\033[33mWARN\033[0m"
		case "ERROR":
			level = "\033[31mERROR\033[0m"
		}
	}
	fmt.Fprintf(&b, " [%s] %s", level, e.Message)

	if len(e.Fields) > 0 {
		b.WriteString(" {")
		first := true
		for k, v := range e.Fields {
			if !first {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, v)
			first = false
		}
		b.WriteString("}")
	}
	return b.String()
}

// Convenience functions on the default logger.

func Debug(message string, fields ...Field) {
	defaultLogger.Log(DebugLevel, message, fields...)
}

func Info(message string, fields ...Field) {
	defaultLogger.Log(InfoLevel, message, fields...)
}

func Warn(message string, fields ...Field) {
	defaultLogger.Log(WarnLevel, message, fields...)
}

func Error(message string, fields ...Field) {
	defaultLogger.Log(ErrorLevel, message, fields...)
}

// SetOutput redirects the default logger, used by tests to capture output.
func SetOutput(w io.Writer) {
	defaultLogger.out.SetOutput(w)
}
