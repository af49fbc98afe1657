package lexer

// ASCII character lookup tables for fast classification.
//
// Use inline bounds-checked lookups:
//
//	if ch < 128 && isWhitespace[ch] { ... }
//
// Bytes >= 128 belong to multi-byte UTF-8 sequences. They are never
// structural and always count as token content.
var (
	isWhitespace [128]bool // Space, tab, newline, carriage return, form feed, vertical tab
	isDigit      [128]bool // 0-9
	isNumberPart [128]bool // Digits, sign, decimal point, exponent marker
	isNameStop   [128]bool // Bytes that end a callable name
	isTokenStop  [128]bool // Bytes that end a bare literal
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)

		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
		isDigit[i] = '0' <= ch && ch <= '9'
		isNumberPart[i] = isDigit[i] || ch == '+' || ch == '-' || ch == '.' || ch == 'e' || ch == 'E'

		// A bare literal runs to the next whitespace or enclosing ')'
		isTokenStop[i] = isWhitespace[i] || ch == CloseParen

		// A callable name additionally stops at the start of a nested form
		isNameStop[i] = isTokenStop[i] || ch == OpenParen || ch == Quote
	}
}

// Structural delimiters
const (
	OpenParen  = '('
	CloseParen = ')'
	Quote      = '"'
)

// Class is the syntactic category of the byte that begins an argument
type Class uint8

const (
	ClassBare  Class = iota // Anything else: a bare literal
	ClassSpace              // Separator, carries no type
	ClassOpen               // '(' begins a nested call
	ClassClose              // ')' ends the enclosing call
	ClassQuote              // '"' begins a string literal
)

var classNames = [...]string{
	ClassBare:  "bare",
	ClassSpace: "space",
	ClassOpen:  "open",
	ClassClose: "close",
	ClassQuote: "quote",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// Classify returns the category of ch
func Classify(ch byte) Class {
	switch {
	case ch < 128 && isWhitespace[ch]:
		return ClassSpace
	case ch == OpenParen:
		return ClassOpen
	case ch == CloseParen:
		return ClassClose
	case ch == Quote:
		return ClassQuote
	default:
		return ClassBare
	}
}

// IsSpace reports whether ch separates arguments
func IsSpace(ch byte) bool {
	return ch < 128 && isWhitespace[ch]
}
