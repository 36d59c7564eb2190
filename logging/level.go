package logging

import "strings"

// Level is the level of the logger
type Level int

const (
	UNDEFINED Level = iota
	TRACE
	DEBUG
	INFO
	WARN
	ERROR
	NONE
)

var toString = map[Level]string{
	UNDEFINED: "undefined",

	TRACE: "trace",
	DEBUG: "debug",
	INFO:  "info",
	WARN:  "warn",
	ERROR: "error",

	NONE: "none",
}

var toLevel = map[string]Level{
	"undefined": UNDEFINED,

	"trace":   TRACE,
	"debug":   DEBUG,
	"info":    INFO,
	"warn":    WARN,
	"warning": WARN,
	"error":   ERROR,

	"none": NONE,
}

// ANSI color codes of the level prefix
var levelToColor = map[Level]string{
	TRACE: "\x1b[1;36m",
	DEBUG: "\x1b[1;34m",
	INFO:  "\x1b[1;32m",
	WARN:  "\x1b[1;33m",
	ERROR: "\x1b[1;31m",
}

const colorReset = "\x1b[0m"

func (l Level) String() string {
	s, ok := toString[l]
	if ok {
		return s
	}
	return "info"
}

// LevelFromString takes a level string and returns a Level
func LevelFromString(level string) Level {
	if l, ok := toLevel[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return INFO
}
