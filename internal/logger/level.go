package logger

import "strings"

// Level is the severity of a log line.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelStyles = [...]struct {
	name  string
	color string
}{
	DEBUG: {"DEBUG", "\033[36m"},
	INFO:  {"INFO", "\033[32m"},
	WARN:  {"WARN", "\033[33m"},
	ERROR: {"ERROR", "\033[31m"},
}

func (l Level) String() string {
	if l < DEBUG || l > ERROR {
		return "UNKNOWN"
	}
	return levelStyles[l].name
}

// label pads the level name to a fixed width, optionally wrapped in its ANSI color.
func (l Level) label(color bool) string {
	name := l.String()
	name += strings.Repeat(" ", 5-len(name))
	if !color || l < DEBUG || l > ERROR {
		return name
	}
	return levelStyles[l].color + name + "\033[0m"
}

// ParseLevel parses a level name case-insensitively. Unknown names map to INFO.
func ParseLevel(s string) Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return WARN
	}
	for lvl, style := range levelStyles {
		if style.name == s {
			return Level(lvl)
		}
	}
	return INFO
}
