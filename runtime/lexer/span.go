// Package lexer provides the span utilities of the expression language: pure
// functions over a source string and a byte offset that locate delimiters,
// token ends and callable names, and classify bare literals.
//
// None of these functions allocate beyond the strings they return, and none
// of them fail: "not found" is reported as -1 so that callers decide which
// error applies.
package lexer

import (
	"errors"
	"strconv"

	"github.com/opal-lang/arborist/core/invariant"
	"github.com/opal-lang/arborist/core/types"
)

// Delimiters pairs every structural '(' and '"' of a source with its
// closing partner. It is built in one left-to-right pass, so locating a
// call's end or counting its arguments never rescans nested text.
type Delimiters struct {
	src        string
	closing    []int // Partner of the opener at each offset, or -1
	strayQuote int   // First quote that never closes, or -1
}

// MatchDelimiters scans src once. Quoted regions are skipped, so parentheses
// inside string literals are not structural. A quote that never closes
// swallows the rest of the source.
func MatchDelimiters(src string) *Delimiters {
	d := &Delimiters{src: src, closing: make([]int, len(src)), strayQuote: -1}
	for i := range d.closing {
		d.closing[i] = -1
	}

	var open []int
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case OpenParen:
			open = append(open, i)
		case CloseParen:
			if n := len(open); n > 0 {
				d.closing[open[n-1]] = i
				open = open[:n-1]
			}
		case Quote:
			end := FindClosingQuote(src, i)
			if end < 0 {
				d.strayQuote = i
				return d
			}
			d.closing[i] = end
			i = end
		}
	}
	return d
}

// ClosingBracket returns the offset of the ')' matching the '(' at open.
// If there is no match it returns -1; strayQuote is then the offset of a
// quote left open after the '(', or -1 if every quote closed.
func (d *Delimiters) ClosingBracket(open int) (closeAt, strayQuote int) {
	invariant.InRange(open, 0, len(d.src)-1, "open")
	invariant.Precondition(d.src[open] == OpenParen, "offset %d is %q, not '('", open, d.src[open])

	if end := d.closing[open]; end >= 0 {
		return end, -1
	}
	return -1, d.strayQuote
}

// ClosingQuote returns the offset of the '"' closing the literal opened at
// open, or -1.
func (d *Delimiters) ClosingQuote(open int) int {
	invariant.InRange(open, 0, len(d.src)-1, "open")
	invariant.Precondition(d.src[open] == Quote, "offset %d is %q, not '\"'", open, d.src[open])

	return d.closing[open]
}

// FindClosingQuote returns the offset of the '"' closing the literal opened
// at open, or -1. There are no escape sequences.
func FindClosingQuote(src string, open int) int {
	invariant.InRange(open, 0, len(src)-1, "open")
	invariant.Precondition(src[open] == Quote, "offset %d is %q, not '\"'", open, src[open])

	for i := open + 1; i < len(src); i++ {
		if src[i] == Quote {
			return i
		}
	}
	return -1
}

// FindEndOfArgument returns the exclusive end of the bare token starting at
// start: the nearer of the next whitespace and the next ')', or len(src).
func FindEndOfArgument(src string, start int) int {
	i := start
	for i < len(src) {
		ch := src[i]
		if ch < 128 && isTokenStop[ch] {
			break
		}
		i++
	}
	return i
}

// NextWord returns the callable name starting at start. A name ends at
// whitespace, a parenthesis or a quote; it may be empty.
func NextWord(src string, start int) string {
	i := start
	for i < len(src) {
		ch := src[i]
		if ch < 128 && isNameStop[ch] {
			break
		}
		i++
	}
	return src[start:i]
}

// SkipSpace returns the first offset at or after i that is not whitespace,
// without passing limit.
func SkipSpace(src string, i, limit int) int {
	for i < limit && IsSpace(src[i]) {
		i++
	}
	return i
}

// ClassifyLiteral reports whether text is an integer or float literal.
// Anything else, including empty text, infinities and NaN, is Unresolved.
func ClassifyLiteral(text string) types.TypeTag {
	if text == "" {
		return types.Unresolved
	}

	sawDigit := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch >= 128 || !isNumberPart[ch] {
			return types.Unresolved
		}
		if isDigit[ch] {
			sawDigit = true
		}
	}
	if !sawDigit {
		return types.Unresolved
	}

	if _, err := strconv.ParseInt(text, 10, 64); err == nil {
		return types.Integer
	}
	// Out-of-range values still have float syntax
	if _, err := strconv.ParseFloat(text, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		return types.Float
	}
	return types.Unresolved
}

// NameStart returns the offset of the callable name in the call opened at
// open: the first non-space byte after the '(', without passing closeAt.
func NameStart(src string, open, closeAt int) int {
	return SkipSpace(src, open+1, closeAt)
}

// CountArguments counts the top-level argument tokens of the call whose '('
// is at open and whose matching ')' is at closeAt. The callable name is not
// an argument; a nested call or a quoted string counts as one argument
// whatever it contains. Only the call's own text is scanned.
func (d *Delimiters) CountArguments(open, closeAt int) int {
	src := d.src
	invariant.Precondition(open < closeAt && closeAt < len(src), "call span [%d, %d] out of order", open, closeAt)

	i := NameStart(src, open, closeAt)
	i += len(NextWord(src, i))
	count := 0
	for {
		i = SkipSpace(src, i, closeAt)
		if i >= closeAt {
			return count
		}

		next := i + 1
		switch Classify(src[i]) {
		case ClassOpen, ClassQuote:
			end := d.closing[i]
			if end < 0 || end > closeAt {
				return count + 1
			}
			next = end + 1
		default:
			next = max(FindEndOfArgument(src, i), i+1)
		}

		count++
		invariant.Invariant(next > i, "argument scan must advance (stuck at %d)", i)
		i = next
	}
}
