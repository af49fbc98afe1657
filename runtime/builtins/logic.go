package builtins

import (
	"github.com/opal-lang/arborist/core/types"
)

func logic() []types.Signature {
	sigs := []types.Signature{
		types.NewSignature("not").Description("Logical negation").
			Param(types.Boolean).Returns(types.Boolean).Build(),
		types.NewSignature("and").Description("True when every argument is true").
			Param(types.Boolean).Variadic(types.Boolean).Returns(types.Boolean).Build(),
		types.NewSignature("or").Description("True when any argument is true").
			Param(types.Boolean).Variadic(types.Boolean).Returns(types.Boolean).Build(),
	}

	for _, tag := range []types.TypeTag{types.Integer, types.Float, types.String, types.Boolean} {
		sigs = append(sigs, types.NewSignature("equals").Description("Reports whether two values are equal").
			Param(tag, tag).Returns(types.Boolean).Build())
	}
	for _, name := range []string{"lt", "gt"} {
		sigs = append(sigs,
			types.NewSignature(name).Description("Compares two numbers").
				Param(types.Integer, types.Integer).Returns(types.Boolean).Build(),
			types.NewSignature(name).Description("Compares two numbers").
				Param(types.Float, types.Float).Returns(types.Boolean).Build(),
		)
	}
	for _, tag := range []types.TypeTag{types.Integer, types.Float, types.String} {
		sigs = append(sigs, types.NewSignature("if").Description("Picks the second or third argument").
			Param(types.Boolean, tag, tag).Returns(tag).Build())
	}
	return sigs
}
