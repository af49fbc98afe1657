package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrorFormatter renders parse errors as source snippets with a caret under
// the offending character
type ErrorFormatter struct {
	Color   bool // ANSI colors
	Compact bool // Single location line instead of the framed snippet
	Verbose bool // Append the stack of open calls
}

// Format renders err. Errors that are not *ParseError render as a single
// line. Format never panics, whatever offset the error carries.
func (f ErrorFormatter) Format(err error) string {
	if err == nil {
		return ""
	}
	pe, ok := AsParseError(err)
	if !ok {
		return fmt.Sprintf("%s %s\n", f.paint("Error:", ColorRed+ColorBold), err.Error())
	}

	line, col := position(pe.Source, pe.Offset)
	text, prefix := sourceLine(pe.Source, pe.Offset)

	width := max(2, len(strconv.Itoa(line)))
	gutter := strings.Repeat(" ", width+1) + "|"
	caret := f.paint("^", ColorRed) + " " + caretLabel(pe.Kind)

	var b strings.Builder
	if f.Compact {
		fmt.Fprintf(&b, "%d:%d: %s: %s\n", line, col, pe.Kind, pe.Message)
		fmt.Fprintf(&b, "%*d | %s\n", width, line, text)
		fmt.Fprintf(&b, "%s %s%s\n", gutter, caretPad(prefix), caret)
		if pe.Hint != "" {
			fmt.Fprintf(&b, "%s %s\n", strings.Repeat(" ", width), pe.Hint)
		}
		return b.String()
	}

	fmt.Fprintf(&b, "%s %s: %s\n", f.paint("Error:", ColorRed+ColorBold), pe.Kind, pe.Message)
	fmt.Fprintf(&b, "%s %d:%d (offset %d)\n", f.paint(strings.Repeat(" ", width)+"-->", ColorBlue), line, col, pe.Offset)
	fmt.Fprintf(&b, "%s\n", f.paint(gutter, ColorBlue))
	fmt.Fprintf(&b, "%s %s\n", f.paint(fmt.Sprintf("%*d |", width, line), ColorBlue), text)
	fmt.Fprintf(&b, "%s %s%s\n", f.paint(gutter, ColorBlue), caretPad(prefix), caret)

	notes := f.notes(pe)
	if len(notes) > 0 {
		fmt.Fprintf(&b, "%s\n", f.paint(gutter, ColorBlue))
		for _, note := range notes {
			fmt.Fprintf(&b, "%s %s\n", strings.Repeat(" ", width+1)+f.paint("=", ColorCyan), note)
		}
	}
	return b.String()
}

func (f ErrorFormatter) notes(pe *ParseError) []string {
	var notes []string
	if pe.Hint != "" {
		notes = append(notes, "Hint: "+pe.Hint)
	}
	if len(pe.Suggestions) > 0 {
		notes = append(notes, "Did you mean: "+strings.Join(pe.Suggestions, ", ")+"?")
	}
	if f.Verbose && len(pe.Trace) > 0 {
		notes = append(notes, "Trace:")
		for _, fr := range pe.Trace {
			notes = append(notes, fmt.Sprintf("  in %s at offset %d (%d of %d arguments validated)",
				fr.Callable, fr.Offset, fr.Validated, fr.Arity))
		}
	}
	return notes
}

func (f ErrorFormatter) paint(text, color string) string {
	return Colorize(text, color, f.Color)
}

func caretLabel(kind ErrorKind) string {
	switch kind {
	case KindUnmatchedDelimiter:
		return "never closed"
	case KindUnknownCallable:
		return "unknown name"
	case KindUnrecognizedLiteral:
		return "not a number"
	case KindSignatureMismatch:
		return "in this call"
	case KindNestingTooDeep:
		return "too deep"
	default:
		return "here"
	}
}

// position converts a byte offset into a 1-based line and rune column.
// Offsets outside the source clamp to its bounds.
func position(src string, offset int) (line, column int) {
	offset = clamp(offset, len(src))
	before := src[:offset]
	line = 1 + strings.Count(before, "\n")
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return line, utf8.RuneCountInString(before[lineStart:]) + 1
}

// sourceLine returns the line holding offset (without its terminator) and
// the part of that line before the offset
func sourceLine(src string, offset int) (text, prefix string) {
	offset = clamp(offset, len(src))
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	lineEnd := len(src)
	if i := strings.IndexByte(src[offset:], '\n'); i >= 0 {
		lineEnd = offset + i
	}
	text = strings.TrimSuffix(src[lineStart:lineEnd], "\r")
	prefix = src[lineStart:offset]
	if len(prefix) > len(text) {
		prefix = text
	}
	return text, prefix
}

// caretPad turns the text before the caret into padding, keeping tabs so the
// caret lines up under the same terminal column
func caretPad(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func clamp(offset, n int) int {
	if offset < 0 {
		return 0
	}
	if offset > n {
		return n
	}
	return offset
}
