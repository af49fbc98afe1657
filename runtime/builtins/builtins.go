// Package builtins provides the stock callables available when no registry
// manifest is given. Importing the package registers them in types.Global().
package builtins

import (
	"github.com/opal-lang/arborist/core/types"
)

// Register the stock callables on package import
func init() {
	types.Global().MustRegister(Signatures()...)
}

// Signatures returns every stock overload, grouped by family
func Signatures() []types.Signature {
	var sigs []types.Signature
	sigs = append(sigs, arithmetic()...)
	sigs = append(sigs, text()...)
	sigs = append(sigs, logic()...)
	return sigs
}

// Registry returns a fresh registry holding only the stock callables
func Registry() *types.Registry {
	return types.NewRegistry().MustRegister(Signatures()...)
}

// numeric builds the integer and float overloads of a binary operator
func numeric(name, desc string) []types.Signature {
	return []types.Signature{
		types.NewSignature(name).Description(desc).
			Param(types.Integer, types.Integer).Returns(types.Integer).Build(),
		types.NewSignature(name).Description(desc).
			Param(types.Float, types.Float).Returns(types.Float).Build(),
	}
}
