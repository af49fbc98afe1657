package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/opal-lang/arborist/core/types"
)

func newSignaturesCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "signatures [NAME...]",
		Aliases: []string{"sigs"},
		Short:   "List the callables in the registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.selectCallables(args)
			if err != nil {
				return err
			}

			switch format {
			case "text":
				a.printSignatures(reg)
				return nil
			case "yaml":
				data, err := yaml.Marshal(types.ManifestOf(reg))
				if err != nil {
					return err
				}
				_, _ = a.stdout.Write(data)
				return nil
			case "json":
				data, err := json.MarshalIndent(types.ManifestOf(reg), "", "  ")
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(a.stdout, string(data))
				return nil
			}
			return &CLIError{
				Message: fmt.Sprintf("unknown format %q", format),
				Hint:    "Use --format text, yaml or json",
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, yaml or json")
	return cmd
}

// selectCallables narrows the registry to names, or returns it whole
func (a *app) selectCallables(names []string) (*types.Registry, error) {
	if len(names) == 0 {
		return a.registry, nil
	}

	reg := types.NewRegistry()
	for _, name := range names {
		overloads := a.registry.Overloads(name)
		if len(overloads) == 0 {
			err := &CLIError{Message: fmt.Sprintf("unknown callable %q", name)}
			if similar := a.registry.Suggest(name, 3); len(similar) > 0 {
				err.Hint = "Did you mean: " + strings.Join(similar, ", ") + "?"
			}
			return nil, err
		}
		for _, sig := range overloads {
			if err := reg.Register(sig); err != nil {
				return nil, err
			}
		}
	}
	return reg, nil
}

func (a *app) printSignatures(reg *types.Registry) {
	useColor := ShouldUseColor(a.noColor, a.stdout)

	width := 0
	for _, name := range reg.Names() {
		for _, sig := range reg.Overloads(name) {
			width = max(width, len(sig.String()))
		}
	}

	for _, name := range reg.Names() {
		for _, sig := range reg.Overloads(name) {
			text := sig.String()
			pad := strings.Repeat(" ", width-len(text))
			if sig.Description == "" {
				_, _ = fmt.Fprintln(a.stdout, Colorize(text, ColorCyan, useColor))
				continue
			}
			_, _ = fmt.Fprintf(a.stdout, "%s%s  %s\n",
				Colorize(text, ColorCyan, useColor), pad, Colorize(sig.Description, ColorGray, useColor))
		}
	}
}
