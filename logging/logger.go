// Package logging provides the leveled diagnostic log of the parser and the decoder.
//
// A Logger is created once by the caller and handed to every component that
// reports diagnostics; there is no process-wide level. Diagnostics are kept
// apart from the rendered output document.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Logger provides level-related logging functions
type Logger interface {
	LevelEnabled(level Level) bool

	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// ConsoleLogger writes one "LEVEL: message" line per event.
type ConsoleLogger struct {
	out      io.Writer
	level    Level
	colorize bool
}

var _ Logger = (*ConsoleLogger)(nil)

// NewConsoleLogger creates a logger printing events at or above level to out.
// The level prefix is colored when out is a terminal.
func NewConsoleLogger(out io.Writer, level Level) *ConsoleLogger {
	l := &ConsoleLogger{out: out, level: level}
	if f, ok := out.(*os.File); ok {
		l.colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return l
}

func (l *ConsoleLogger) LevelEnabled(level Level) bool {
	return level >= l.level && l.level != NONE
}

func (l *ConsoleLogger) Debug(format string, v ...any) {
	l.log(DEBUG, format, v...)
}

func (l *ConsoleLogger) Info(format string, v ...any) {
	l.log(INFO, format, v...)
}

func (l *ConsoleLogger) Warn(format string, v ...any) {
	l.log(WARN, format, v...)
}

func (l *ConsoleLogger) Error(format string, v ...any) {
	l.log(ERROR, format, v...)
}

func (l *ConsoleLogger) log(level Level, format string, v ...any) {
	if !l.LevelEnabled(level) {
		return
	}
	prefix := strings.ToUpper(level.String())
	if l.colorize {
		prefix = levelToColor[level] + prefix + colorReset
	}
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}
	_, _ = fmt.Fprintf(l.out, "%s: %s\n", prefix, msg)
}

type discardLogger struct{}

func (discardLogger) LevelEnabled(Level) bool { return false }
func (discardLogger) Debug(string, ...any)    {}
func (discardLogger) Info(string, ...any)     {}
func (discardLogger) Warn(string, ...any)     {}
func (discardLogger) Error(string, ...any)    {}

// Discard is a Logger that drops every event.
var Discard Logger = discardLogger{}
