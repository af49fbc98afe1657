package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opal-lang/arborist/runtime/parser"
)

func newTreeCmd(a *app) *cobra.Command {
	var (
		format      string
		fingerprint bool
		telemetry   bool
	)

	cmd := &cobra.Command{
		Use:   "tree EXPR",
		Short: "Print the typed tree of an expression ('-' reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "tree" && format != "sexpr" {
				return &CLIError{
					Message: fmt.Sprintf("unknown format %q", format),
					Hint:    "Use --format tree or --format sexpr",
				}
			}

			source := args[0]
			if source == "-" {
				data, err := io.ReadAll(a.stdin)
				if err != nil {
					return withExit(ExitIOError, fmt.Errorf("reading stdin: %w", err))
				}
				source = strings.TrimSpace(string(data))
			}

			opts := a.parserOpts()
			if telemetry {
				opts = append(opts, parser.WithTelemetry())
			}
			tree, err := parser.Parse(source, a.registry, opts...)
			if err != nil {
				_, _ = fmt.Fprint(a.stderr, a.diagnostic(err))
				return reported(ExitParseError, err)
			}

			switch format {
			case "tree":
				parser.FormatTree(a.stdout, tree, ShouldUseColor(a.noColor, a.stdout))
			case "sexpr":
				_, _ = fmt.Fprintln(a.stdout, tree.String())
			}

			if fingerprint {
				sum, err := tree.FingerprintString()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(a.stdout, sum)
			}
			if telemetry && tree.Telemetry != nil {
				t := tree.Telemetry
				_, _ = fmt.Fprintf(a.stderr, "%s: nodes=%d calls=%d depth=%d time=%s\n",
					tree.Strategy, t.Nodes, t.Calls, t.MaxDepth, t.Duration)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "tree", "Output format: tree or sexpr")
	cmd.Flags().BoolVar(&fingerprint, "fingerprint", false, "Print the canonical tree fingerprint")
	cmd.Flags().BoolVar(&telemetry, "telemetry", false, "Print parse counters to stderr")
	return cmd
}
