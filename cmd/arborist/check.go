package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/opal-lang/arborist/core/types"
	"github.com/opal-lang/arborist/runtime/parser"
)

// expression is one input to check; label is empty for command-line input
type expression struct {
	label  string
	source string
}

type checkResult struct {
	tag types.TypeTag
	err error
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		file string
		jobs int
	)

	cmd := &cobra.Command{
		Use:   "check [EXPR...]",
		Short: "Validate expressions and print their types",
		Long: `Validate each expression against the registry.

Expressions come from the arguments or from -f FILE, one per line. Blank
lines and lines starting with ';' are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("jobs") && a.cfg.Jobs > 0 {
				jobs = a.cfg.Jobs
			}
			exprs, err := a.collect(args, file)
			if err != nil {
				return err
			}
			return a.check(cmd.Context(), exprs, jobs)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Read expressions from FILE, one per line ('-' for stdin)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "Expressions checked in parallel")
	return cmd
}

// collect gathers expressions from the arguments or a file, never both
func (a *app) collect(args []string, file string) ([]expression, error) {
	switch {
	case file != "" && len(args) > 0:
		return nil, &CLIError{
			Message: "expressions given both as arguments and with -f",
			Hint:    "Use one source of expressions",
		}
	case file != "":
		return a.readExpressions(file)
	case len(args) == 0:
		return nil, &CLIError{
			Message: "no expressions to check",
			Hint:    "Pass expressions as arguments or use -f FILE",
		}
	}

	exprs := make([]expression, len(args))
	for i, arg := range args {
		exprs[i] = expression{source: arg}
	}
	return exprs, nil
}

func (a *app) readExpressions(file string) ([]expression, error) {
	reader, name, closeFunc, err := a.openInput(file)
	if err != nil {
		return nil, withExit(ExitIOError, err)
	}
	defer func() { _ = closeFunc() }()

	exprs, err := scanExpressions(reader, name)
	if err != nil {
		return nil, withExit(ExitIOError, fmt.Errorf("reading %s: %w", name, err))
	}
	return exprs, nil
}

// openInput opens file, or the command's stdin when file is "-"
func (a *app) openInput(file string) (io.Reader, string, func() error, error) {
	if file == "-" {
		return a.stdin, "<stdin>", func() error { return nil }, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, "", nil, fmt.Errorf("error opening file %s: %w", file, err)
	}
	return f, file, f.Close, nil
}

// scanExpressions reads one expression per line, skipping blank lines and
// ';' comments
func scanExpressions(r io.Reader, name string) ([]expression, error) {
	var exprs []expression
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		exprs = append(exprs, expression{
			label:  fmt.Sprintf("%s:%d", name, line),
			source: text,
		})
	}
	return exprs, scanner.Err()
}

// check validates exprs with up to jobs workers and reports results in
// input order
func (a *app) check(ctx context.Context, exprs []expression, jobs int) error {
	results, err := a.checkAll(ctx, exprs, jobs)
	if err != nil {
		return err
	}

	failed := 0
	for i, res := range results {
		prefix := ""
		if exprs[i].label != "" {
			prefix = exprs[i].label + ": "
		}
		if res.err != nil {
			failed++
			_, _ = fmt.Fprint(a.stderr, prefix+a.diagnostic(res.err))
			continue
		}
		_, _ = fmt.Fprintf(a.stdout, "%sok %s\n", prefix, res.tag)
	}

	if failed > 0 {
		return withExit(ExitParseError, fmt.Errorf("%d of %d expressions failed", failed, len(exprs)))
	}
	return nil
}

func (a *app) checkAll(ctx context.Context, exprs []expression, jobs int) ([]checkResult, error) {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]checkResult, len(exprs))
	opts := a.parserOpts()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, expr := range exprs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tree, err := parser.Parse(expr.source, a.registry, opts...)
			results[i] = checkResult{tag: tree.Type(), err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
