// Package presentation turns battle events into something a person can follow:
// colored battle-log text, structured log lines, or a recorded event list.
package presentation

import (
	"fmt"
	"strings"
)

// ANSI escape codes used by the battle log.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightWhite  = "\033[97m"
)

// Palette colors text when enabled and passes it through unchanged otherwise.
type Palette struct {
	Enabled bool
}

// Colorize wraps text with color and a reset suffix.
//
// Precondition: color must be a valid ANSI escape sequence.
func (p Palette) Colorize(color, text string) string {
	if !p.Enabled {
		return text
	}
	return color + text + Reset
}

// Colorf formats its arguments and colors the result.
func (p Palette) Colorf(color, format string, args ...any) string {
	return p.Colorize(color, fmt.Sprintf(format, args...))
}

// StripANSI removes every \033[...m sequence from s.
func StripANSI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\033' && i+1 < len(s) && s[i+1] == '[' {
			if end := strings.IndexByte(s[i+2:], 'm'); end >= 0 {
				i += end + 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
