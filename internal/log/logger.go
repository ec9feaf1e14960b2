// Package log is a small leveled logger writing to stderr and, optionally,
// to a rotated log file.
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes each entry to a terminal writer, colored when enabled, and
// to a file writer that never receives color codes.
type Logger struct {
	mu       *sync.Mutex
	terminal io.Writer
	file     io.Writer

	Name  string
	Level LogLevel

	TimeFormat string
	File       string
	NoColor    bool
	JSON       bool
	NoTerminal bool
	Rotation   *LoggerRotation
}

type LoggerRotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

// NewLogger creates a logger writing to stderr unless noTerminal is set, and
// to file when it is not empty. Colors are turned off when stderr is not a
// terminal.
func NewLogger(name string, level LogLevel, file string, noTerminal bool) *Logger {
	l := &Logger{
		mu:         &sync.Mutex{},
		Name:       name,
		Level:      level,
		File:       file,
		NoTerminal: noTerminal,
		NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),

		TimeFormat: "2006-01-02 15:04:05",
		Rotation: &LoggerRotation{
			MaxSize:    16,
			MaxBackups: 3,
			MaxAge:     14,
			Compress:   false,
		},
	}

	l.setupWriter()

	return l
}

// New returns a logger that writes to w without colors. It is mostly useful
// in tests.
func New(w io.Writer, level LogLevel) *Logger {
	return &Logger{
		mu:         &sync.Mutex{},
		file:       w,
		Level:      level,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, Error+1)
}

func (l *Logger) setupWriter() {
	if !l.NoTerminal {
		l.terminal = os.Stderr
	}

	if l.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.Rotation.MaxSize,
			MaxBackups: l.Rotation.MaxBackups,
			MaxAge:     l.Rotation.MaxAge,
			Compress:   l.Rotation.Compress,
		}
	}
}

// write sends plain to the file writer, and colored to the terminal writer
// unless colors are off.
func (l *Logger) write(colored, plain string) {
	if l.terminal != nil {
		if l.NoColor {
			io.WriteString(l.terminal, plain)
		} else {
			io.WriteString(l.terminal, colored)
		}
	}
	if l.file != nil {
		io.WriteString(l.file, plain)
	}
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if l == nil || level < l.Level {
		return
	}

	timestamp := time.Now().Format(l.TimeFormat)
	formattedMsg := fmt.Sprintf(msg, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.JSON {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Message:   formattedMsg,
		}
		if l.Name != "" {
			entry.Service = l.Name
		}

		jsonBytes, _ := json.Marshal(entry)
		line := string(jsonBytes) + "\n"
		l.write(line, line)
		return
	}

	prefix := fmt.Sprintf("[%s] %-5s", timestamp, level)
	if l.Name != "" {
		prefix = fmt.Sprintf("%s [%s]", prefix, l.Name)
	}

	l.write(
		fmt.Sprintf("%s %s\n", Colorize(level, prefix), formattedMsg),
		fmt.Sprintf("%s %s\n", prefix, formattedMsg),
	)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(Debug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(Info, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(Warn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(Error, msg, args...)
}

// Named returns a child logger sharing the same writers.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	if l.Name != "" {
		name = fmt.Sprintf("%s/%s", l.Name, name)
	}
	return &Logger{
		mu:       l.mu,
		terminal: l.terminal,
		file:     l.file,

		Name:  name,
		Level: l.Level,

		TimeFormat: l.TimeFormat,
		File:       l.File,
		NoColor:    l.NoColor,
		NoTerminal: l.NoTerminal,
		JSON:       l.JSON,
		Rotation:   l.Rotation,
	}
}
