// Package types defines the value categories of the expression language and
// the registry of callable signatures the parser resolves calls against.
package types

import (
	"fmt"
	"strings"
)

// TypeTag is the value category of an expression: a literal's own kind or a
// callable's declared return type.
type TypeTag uint8

const (
	// Unresolved is the sentinel failure value. It is never a valid argument.
	Unresolved TypeTag = iota
	String
	Integer
	Float
	Boolean
	Void
)

var tagNames = [...]string{
	Unresolved: "unresolved",
	String:     "string",
	Integer:    "integer",
	Float:      "float",
	Boolean:    "boolean",
	Void:       "void",
}

// String returns the canonical lower-case name of the tag
func (t TypeTag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("TypeTag(%d)", int(t))
}

// IsResolved reports whether the tag carries a real value category
func (t TypeTag) IsResolved() bool {
	return t != Unresolved && int(t) < len(tagNames)
}

// IsArgument reports whether a value of this tag may be passed to a callable
func (t TypeTag) IsArgument() bool {
	return t.IsResolved() && t != Void
}

// IsNumeric reports whether the tag is one of the numeric literal kinds
func (t TypeTag) IsNumeric() bool {
	return t == Integer || t == Float
}

// ParseTypeTag maps a manifest spelling to its tag.
// Accepted aliases follow common host-language names (int, double, bool).
func ParseTypeTag(s string) (TypeTag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string", "str":
		return String, nil
	case "int", "integer", "long":
		return Integer, nil
	case "float", "double", "number":
		return Float, nil
	case "bool", "boolean":
		return Boolean, nil
	case "void":
		return Void, nil
	default:
		return Unresolved, fmt.Errorf("unknown type %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (t TypeTag) MarshalText() ([]byte, error) {
	if !t.IsResolved() {
		return nil, fmt.Errorf("cannot encode %s type tag", t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *TypeTag) UnmarshalText(text []byte) error {
	tag, err := ParseTypeTag(string(text))
	if err != nil {
		return err
	}
	*t = tag
	return nil
}
