package parser

import (
	"io"
	"strings"
	"testing"
)

// Benchmark suite for engine performance.
//
// - BenchmarkParse: both strategies across expression shapes
// - BenchmarkValidate: checking without growing a tree
// - BenchmarkFingerprint: canonical encoding plus hashing

func benchScenarios() map[string]string {
	wide := "(sum" + strings.Repeat(" 1", 500) + ")"
	deep := strings.Repeat("(sum ", 200) + "1" + strings.Repeat(")", 200)
	return map[string]string{
		"literal":  "42",
		"simple":   "(add 5 5)",
		"nested":   "(add (mult 5 5) (mult 5 5))",
		"strings":  `(concat "hello (there)" (concat "a" "b"))`,
		"wide":     wide,
		"deep":     deep,
		"mixed":    `(sum 5 5 6 7 8 (length "hello there") 4 (length "world order") 5 4 3)`,
	}
}

func BenchmarkParse(b *testing.B) {
	reg := testRegistry()
	for name, input := range benchScenarios() {
		for _, strategy := range strategies {
			b.Run(name+"/"+strategy.String(), func(b *testing.B) {
				opts := []ParserOpt{WithStrategy(strategy), WithDiagnostics(io.Discard), WithLogger(quietLogger)}
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := Parse(input, reg, opts...); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkValidate(b *testing.B) {
	reg := testRegistry()
	for name, input := range benchScenarios() {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Validate(input, reg, WithDiagnostics(io.Discard), WithLogger(quietLogger)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFingerprint(b *testing.B) {
	tree, err := parseQuiet("(sum" + strings.Repeat(" (add 1 2)", 200) + ")")
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tree.Fingerprint(); err != nil {
			b.Fatal(err)
		}
	}
}
