package builtins

import (
	"github.com/opal-lang/arborist/core/types"
)

func text() []types.Signature {
	return []types.Signature{
		types.NewSignature("concat").Description("Joins two strings").
			Param(types.String, types.String).Returns(types.String).Build(),
		types.NewSignature("join").Description("Joins strings with a separator").
			Param(types.String).Variadic(types.String).Returns(types.String).Build(),
		types.NewSignature("length").Description("Number of characters in a string").
			Param(types.String).Returns(types.Integer).Build(),
		types.NewSignature("upper").Description("Upper-cases a string").
			Param(types.String).Returns(types.String).Build(),
		types.NewSignature("lower").Description("Lower-cases a string").
			Param(types.String).Returns(types.String).Build(),
		types.NewSignature("substr").Description("Characters from start up to end").
			Param(types.String, types.Integer, types.Integer).Returns(types.String).Build(),
		types.NewSignature("repeat").Description("Repeats a string n times").
			Param(types.String, types.Integer).Returns(types.String).Build(),
		types.NewSignature("str").Description("Formats a number").
			Param(types.Integer).Returns(types.String).Build(),
		types.NewSignature("str").Description("Formats a number").
			Param(types.Float).Returns(types.String).Build(),
		types.NewSignature("print").Description("Writes a string to standard output").
			Param(types.String).Returns(types.Void).Build(),
	}
}
