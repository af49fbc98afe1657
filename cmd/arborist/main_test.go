package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/opal-lang/arborist/core/types"
	"github.com/opal-lang/arborist/runtime/parser"
)

const greetManifest = `
version: v1.0.0
callables:
  - name: greet
    description: says hello
    params: [string]
    returns: string
  - name: twice
    params: [integer]
    returns: integer
`

// runCLI runs the command line with an empty config directory and color off
func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	var stdout, stderr bytes.Buffer
	full := append([]string{"--config-dir", t.TempDir()}, args...)
	code := run(context.Background(), full, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCheckArguments(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "check", "(add 1 2)", `(concat "a" "b")`, "2.5")
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "ok integer\nok string\nok float\n", stdout)
	assert.Empty(t, stderr)
}

func TestCheckFailure(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "check", "(add 1 2)", "(add 1 2")
	assert.Equal(t, ExitParseError, code)
	assert.Equal(t, "ok integer\n", stdout)
	assert.Contains(t, stderr, "never closed")
	assert.Contains(t, stderr, "Error: 1 of 2 expressions failed")
}

func TestCheckFromStdin(t *testing.T) {
	input := "; arithmetic\n(add 1 2)\n\n  (length \"ab\")  \n(nope 1)\n"
	code, stdout, stderr := runCLI(t, input, "check", "-f", "-", "--jobs", "2")
	assert.Equal(t, ExitParseError, code)
	assert.Equal(t, "<stdin>:2: ok integer\n<stdin>:4: ok integer\n", stdout)
	assert.Contains(t, stderr, "<stdin>:5: Error:")
	assert.Contains(t, stderr, "unknown name")
}

func TestCheckFromFileKeepsOrder(t *testing.T) {
	var b strings.Builder
	var want strings.Builder
	for i := 1; i <= 50; i++ {
		if i%2 == 0 {
			fmt.Fprintf(&b, "(add %d %d)\n", i, i)
			fmt.Fprintf(&want, "%s:%d: ok integer\n", "exprs.txt", i)
		} else {
			fmt.Fprintf(&b, "(str %d.5)\n", i)
			fmt.Fprintf(&want, "%s:%d: ok string\n", "exprs.txt", i)
		}
	}

	dir := t.TempDir()
	writeFile(t, dir, "exprs.txt", b.String())
	t.Chdir(dir)

	code, stdout, stderr := runCLI(t, "", "check", "-f", "exprs.txt", "-j", "8")
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, want.String(), stdout)
}

func TestCheckUsageErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"no expressions", []string{"check"}, ExitInvalidArguments, "no expressions to check"},
		{"both sources", []string{"check", "-f", "x.txt", "(add 1 2)"}, ExitInvalidArguments, "both as arguments and with -f"},
		{"unknown flag", []string{"check", "--bogus"}, ExitInvalidArguments, "unknown flag"},
		{"missing file", []string{"check", "-f", filepath.Join(os.TempDir(), "arborist-missing.txt")}, ExitIOError, "error opening file"},
		{"negative depth", []string{"--max-depth", "-1", "check", "1"}, ExitInvalidArguments, "--max-depth"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "", tt.args...)
			assert.Equal(t, tt.code, code)
			assert.Contains(t, stderr, tt.stderr)
		})
	}
}

func TestMaxDepthFlag(t *testing.T) {
	code, _, stderr := runCLI(t, "", "--max-depth", "2", "check", "(neg (neg (neg 1)))")
	assert.Equal(t, ExitParseError, code)
	assert.Contains(t, stderr, "too deep")

	code, stdout, _ := runCLI(t, "", "--max-depth", "3", "check", "(neg (neg (neg 1)))")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "ok integer\n", stdout)
}

func TestRegistryFlag(t *testing.T) {
	path := writeFile(t, t.TempDir(), "callables.yml", greetManifest)

	code, stdout, stderr := runCLI(t, "", "--registry", path, "check", `(greet "x")`, "(twice 2)")
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "ok string\nok integer\n", stdout)

	// Built-ins are not part of a manifest registry
	code, _, _ = runCLI(t, "", "--registry", path, "check", "(add 1 2)")
	assert.Equal(t, ExitParseError, code)
}

func TestRegistryOverBuiltins(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "callables.yml", greetManifest)

	code, stdout, stderr := runCLI(t, "", "--registry", path, "--builtins", "check", `(greet (str (add 1 2)))`, "(twice 2)")
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "ok string\nok integer\n", stdout)

	writeFile(t, dir, "arborist.yml", "registry: callables.yml\nbuiltins: true\n")
	code, stdout, _ = runCLI(t, "", "--config-dir", dir, "check", "(twice (neg 2))")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "ok integer\n", stdout)

	clash := writeFile(t, dir, "clash.yml", "version: v1.0.0\ncallables:\n  - name: add\n    params: [int, int]\n    returns: int\n")
	code, _, stderr = runCLI(t, "", "--registry", clash, "--builtins", "check", "1")
	assert.Equal(t, ExitRegistryError, code)
	assert.Contains(t, stderr, "duplicate overload add(integer, integer) -> integer")
}

func TestRegistryLoadFailure(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yml", "version: v9.0.0\ncallables: []\n")

	code, _, stderr := runCLI(t, "", "--registry", bad, "check", "1")
	assert.Equal(t, ExitRegistryError, code)
	assert.Contains(t, stderr, "bad.yml")

	code, _, _ = runCLI(t, "", "--registry", filepath.Join(dir, "absent.yml"), "check", "1")
	assert.Equal(t, ExitRegistryError, code)
}

func TestProjectConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "callables.yml", greetManifest)
	writeFile(t, dir, "arborist.yml", "registry: callables.yml\nmaxDepth: 1\ntwoPass: true\n")

	code, stdout, stderr := runCLI(t, "", "--config-dir", dir, "check", `(greet "x")`)
	assert.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "ok string\n", stdout)

	code, _, stderr = runCLI(t, "", "--config-dir", dir, "check", `(greet (greet "x"))`)
	assert.Equal(t, ExitParseError, code, "maxDepth comes from the config")
	assert.Contains(t, stderr, "too deep")

	code, stdout, _ = runCLI(t, "", "--config-dir", dir, "--max-depth", "5", "check", `(greet (greet "x"))`)
	assert.Equal(t, ExitSuccess, code, "flags override the config")
	assert.Equal(t, "ok string\n", stdout)

	code, stdout, _ = runCLI(t, "", "--config-dir", dir, "tree", "--telemetry", `(greet "x")`)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "greet -> string")
}

func TestInvalidProjectConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "arborist.yml", "jobs: -2\n")

	code, _, stderr := runCLI(t, "", "--config-dir", dir, "check", "1")
	assert.Equal(t, ExitInvalidArguments, code)
	assert.Contains(t, stderr, "config:")
}

func TestTreeCommand(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "tree", `( add (mult 2 3) (length "ab"))`)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, `add -> integer
├─ mult -> integer
│  ├─ 2 : integer
│  └─ 3 : integer
└─ length -> integer
   └─ "ab" : string
`, stdout)

	code, stdout, _ = runCLI(t, "", "tree", "--format", "sexpr", "(add   1\n\t2)")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "(add 1 2)\n", stdout)

	code, stdout, _ = runCLI(t, "(neg 4)\n", "tree", "--format", "sexpr", "-")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "(neg 4)\n", stdout)
}

func TestTreeFingerprint(t *testing.T) {
	_, first, _ := runCLI(t, "", "tree", "--format", "sexpr", "--fingerprint", "(add 1 2)")
	_, second, _ := runCLI(t, "", "--two-pass", "tree", "--format", "sexpr", "--fingerprint", "( add 1  2 )")

	lines := strings.Split(strings.TrimSpace(first), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "blake2b:"))
	assert.Equal(t, first, second, "strategy and whitespace do not change the fingerprint")
}

func TestTreeTelemetry(t *testing.T) {
	code, _, stderr := runCLI(t, "", "--two-pass", "tree", "--telemetry", "(add (neg 1) 2)")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stderr, "two-pass: nodes=4 calls=2 depth=2")
}

func TestTreeErrors(t *testing.T) {
	code, stdout, stderr := runCLI(t, "", "tree", `(add 1 "x")`)
	assert.Equal(t, ExitParseError, code)
	assert.Empty(t, stdout)
	assert.Equal(t, 1, strings.Count(stderr, "Error:"), "the diagnostic is printed once")
	assert.Contains(t, stderr, "Hint:")

	code, _, stderr = runCLI(t, "", "tree", "--format", "json", "1")
	assert.Equal(t, ExitInvalidArguments, code)
	assert.Contains(t, stderr, `unknown format "json"`)

	code, _, _ = runCLI(t, "", "tree")
	assert.Equal(t, ExitInvalidArguments, code)
}

func TestVerboseTrace(t *testing.T) {
	code, _, stderr := runCLI(t, "", "--verbose", "check", `(add 1 (neg "x"))`)
	assert.Equal(t, ExitParseError, code)
	assert.Contains(t, stderr, "Trace:")
	assert.Contains(t, stderr, "in add at offset 0")
}

func TestSignaturesCommand(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "signatures", "add")
	require.Equal(t, ExitSuccess, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "add(integer, integer) -> integer"))
	assert.True(t, strings.HasPrefix(lines[1], "add(float, float) -> float"))

	code, stdout, _ = runCLI(t, "", "sigs", "--format", "yaml", "add", "neg")
	require.Equal(t, ExitSuccess, code)
	var m types.Manifest
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &m))
	assert.Len(t, m.Callables, 4)

	code, stdout, _ = runCLI(t, "", "signatures", "--format", "json")
	require.Equal(t, ExitSuccess, code)
	_, err := types.ParseManifest([]byte(stdout))
	assert.NoError(t, err, "listed manifests load back")
}

func TestSignaturesUnknown(t *testing.T) {
	code, _, stderr := runCLI(t, "", "signatures", "ad")
	assert.Equal(t, ExitInvalidArguments, code)
	assert.Contains(t, stderr, `unknown callable "ad"`)
	assert.Contains(t, stderr, "Hint: Did you mean: add")
}

func TestExitCode(t *testing.T) {
	pe := &parser.ParseError{Kind: parser.KindMalformedInput, Message: "bad"}
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("unknown command"), ExitInvalidArguments},
		{"parse", pe, ExitParseError},
		{"wrapped parse", fmt.Errorf("checking: %w", pe), ExitParseError},
		{"explicit", withExit(ExitIOError, errors.New("disk")), ExitIOError},
		{"registry", fmt.Errorf("setup: %w", withExit(ExitRegistryError, errors.New("x"))), ExitRegistryError},
		{"cli", &CLIError{Message: "x"}, ExitInvalidArguments},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestFormatError(t *testing.T) {
	var buf bytes.Buffer
	FormatError(&buf, &CLIError{Message: "no input", Details: "nothing was read", Hint: "Pass a file"}, false)
	assert.Equal(t, "Error: no input\n\nnothing was read\nHint: Pass a file\n", buf.String())

	buf.Reset()
	FormatError(&buf, reported(ExitParseError, errors.New("shown already")), false)
	assert.Empty(t, buf.String())

	buf.Reset()
	FormatError(&buf, errors.New("boom"), true)
	assert.Equal(t, ColorRed+"Error: "+ColorReset+"boom\n", buf.String())
}

func TestShouldUseColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.False(t, ShouldUseColor(true, os.Stdout))
	assert.False(t, ShouldUseColor(false, &bytes.Buffer{}), "only terminals get color")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ShouldUseColor(false, os.Stdout))
}

func TestScanExpressions(t *testing.T) {
	exprs, err := scanExpressions(strings.NewReader("1\n;; skip\n\n\t(neg 2)\r\n"), "in")
	require.NoError(t, err)
	assert.Equal(t, []expression{
		{label: "in:1", source: "1"},
		{label: "in:4", source: "(neg 2)"},
	}, exprs)
}
