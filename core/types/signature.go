package types

import (
	"fmt"
	"strings"
)

// Signature describes one accepted parameter pattern of a callable
type Signature struct {
	Name        string    // Callable name as written after '('
	Params      []TypeTag // Fixed positional parameters
	Variadic    TypeTag   // Trailing repeated parameter (Unresolved = none)
	Returns     TypeTag   // Declared result type
	Description string
}

// IsVariadic reports whether the signature accepts trailing repeated arguments
func (s Signature) IsVariadic() bool {
	return s.Variadic != Unresolved
}

// String renders the signature as name(p1, p2, v...) -> r
func (s Signature) String() string {
	parts := make([]string, 0, len(s.Params)+1)
	for _, p := range s.Params {
		parts = append(parts, p.String())
	}
	if s.IsVariadic() {
		parts = append(parts, s.Variadic.String()+"...")
	}
	return fmt.Sprintf("%s(%s) -> %s", s.Name, strings.Join(parts, ", "), s.Returns)
}

// Match scores how well the ordered argument tags fit this signature.
// It returns the number of widening conversions used and false when the
// arguments are incompatible.
func (s Signature) Match(args []TypeTag) (int, bool) {
	if len(args) < len(s.Params) {
		return 0, false
	}
	if len(args) > len(s.Params) && !s.IsVariadic() {
		return 0, false
	}

	cost := 0
	for i, arg := range args {
		want := s.Variadic
		if i < len(s.Params) {
			want = s.Params[i]
		}
		c, ok := assignable(arg, want)
		if !ok {
			return 0, false
		}
		cost += c
	}
	return cost, true
}

// assignable reports whether a value of tag got can fill a parameter of tag
// want, and at what conversion cost. Integer widens to Float.
func assignable(got, want TypeTag) (int, bool) {
	if !got.IsArgument() || !want.IsArgument() {
		return 0, false
	}
	if got == want {
		return 0, true
	}
	if got == Integer && want == Float {
		return 1, true
	}
	return 0, false
}

// Validate checks a signature for internal consistency
func (s Signature) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.ContainsAny(s.Name, " \t\r\n()\"") {
		return fmt.Errorf("name %q contains whitespace or a delimiter", s.Name)
	}
	for i, p := range s.Params {
		if !p.IsArgument() {
			return fmt.Errorf("%s: parameter %d has non-argument type %s", s.Name, i, p)
		}
	}
	if s.IsVariadic() && !s.Variadic.IsArgument() {
		return fmt.Errorf("%s: variadic parameter has non-argument type %s", s.Name, s.Variadic)
	}
	if !s.Returns.IsResolved() {
		return fmt.Errorf("%s: return type must be set", s.Name)
	}
	return nil
}

// SignatureBuilder provides a fluent API for building signatures
type SignatureBuilder struct {
	sig Signature
}

// NewSignature starts a signature for the named callable
func NewSignature(name string) *SignatureBuilder {
	return &SignatureBuilder{sig: Signature{Name: name}}
}

// Description sets the human-readable description
func (b *SignatureBuilder) Description(desc string) *SignatureBuilder {
	b.sig.Description = desc
	return b
}

// Param appends positional parameters in order
func (b *SignatureBuilder) Param(tags ...TypeTag) *SignatureBuilder {
	b.sig.Params = append(b.sig.Params, tags...)
	return b
}

// Variadic accepts zero or more trailing arguments of the given tag
func (b *SignatureBuilder) Variadic(tag TypeTag) *SignatureBuilder {
	b.sig.Variadic = tag
	return b
}

// Returns sets the declared result type
func (b *SignatureBuilder) Returns(tag TypeTag) *SignatureBuilder {
	b.sig.Returns = tag
	return b
}

// Build returns the constructed signature
func (b *SignatureBuilder) Build() Signature {
	sig := b.sig
	sig.Params = append([]TypeTag(nil), b.sig.Params...)
	return sig
}
