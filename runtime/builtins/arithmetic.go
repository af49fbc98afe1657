package builtins

import (
	"github.com/opal-lang/arborist/core/types"
)

func arithmetic() []types.Signature {
	var sigs []types.Signature
	sigs = append(sigs, numeric("add", "Adds two numbers")...)
	sigs = append(sigs, numeric("sub", "Subtracts the second number from the first")...)
	sigs = append(sigs, numeric("mult", "Multiplies two numbers")...)
	sigs = append(sigs, numeric("div", "Divides the first number by the second")...)
	sigs = append(sigs, numeric("max", "Returns the larger of two numbers")...)
	sigs = append(sigs, numeric("min", "Returns the smaller of two numbers")...)

	return append(sigs,
		types.NewSignature("mod").Description("Remainder of integer division").
			Param(types.Integer, types.Integer).Returns(types.Integer).Build(),
		types.NewSignature("neg").Description("Negates a number").
			Param(types.Integer).Returns(types.Integer).Build(),
		types.NewSignature("neg").Description("Negates a number").
			Param(types.Float).Returns(types.Float).Build(),
		types.NewSignature("sum").Description("Adds any number of integers").
			Variadic(types.Integer).Returns(types.Integer).Build(),
		types.NewSignature("sum").Description("Adds any number of numbers").
			Variadic(types.Float).Returns(types.Float).Build(),
		types.NewSignature("now").Description("Current Unix time in seconds").
			Returns(types.Integer).Build(),
	)
}
