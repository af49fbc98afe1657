package main

import (
	"io"
	"os"

	"github.com/opal-lang/arborist/runtime/parser"
)

// Re-export color constants from the parser package for convenience
const (
	ColorReset  = parser.ColorReset
	ColorRed    = parser.ColorRed
	ColorGreen  = parser.ColorGreen
	ColorYellow = parser.ColorYellow
	ColorBlue   = parser.ColorBlue
	ColorCyan   = parser.ColorCyan
	ColorGray   = parser.ColorGray
)

// Colorize wraps text in ANSI color codes if color is enabled
func Colorize(text, color string, useColor bool) string {
	return parser.Colorize(text, color, useColor)
}

// ShouldUseColor determines if color output should be used for w.
// Respects --no-color flag and NO_COLOR environment variable.
func ShouldUseColor(noColorFlag bool, w io.Writer) bool {
	if noColorFlag {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
