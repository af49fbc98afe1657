// Command arborist validates nested call expressions against a typed
// callable registry.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opal-lang/arborist/core/types"
	"github.com/opal-lang/arborist/internal/config"
	"github.com/opal-lang/arborist/runtime/builtins"
	"github.com/opal-lang/arborist/runtime/parser"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries the global flags and everything derived from them
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	registryPath string
	configDir    string
	verbose      bool
	debug        bool
	noColor      bool
	withBuiltins bool
	twoPass      bool
	maxDepth     int

	cfg      *config.ProjectConfig
	registry *types.Registry
}

// run executes the CLI and returns the process exit code
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr, cfg: &config.ProjectConfig{}}

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		FormatError(stderr, err, a.useColor())
	}
	return exitCode(err)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "arborist [command]",
		Short:         "Validate nested call expressions against a typed registry",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.registryPath, "registry", "r", "", "Registry manifest (YAML or JSON); defaults to the built-in callables")
	rootCmd.PersistentFlags().StringVar(&a.configDir, "config-dir", ".", "Directory searched for arborist.yml")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Include the call trace in diagnostics")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&a.withBuiltins, "builtins", false, "Layer the registry manifest over the built-in callables")
	rootCmd.PersistentFlags().BoolVar(&a.twoPass, "two-pass", false, "Build the tree in a second pass after validation")
	rootCmd.PersistentFlags().IntVar(&a.maxDepth, "max-depth", parser.DefaultMaxDepth, "Maximum call nesting (0 for no limit)")
	_ = rootCmd.PersistentFlags().MarkHidden("config-dir")

	rootCmd.AddCommand(
		newCheckCmd(a),
		newTreeCmd(a),
		newSignaturesCmd(a),
		newReplCmd(a),
		newWatchCmd(a),
	)
	return rootCmd
}

// setup merges project config under the flags and loads the registry
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return withExit(ExitInvalidArguments, fmt.Errorf("config: %w", err))
	}
	a.cfg = cfg

	flags := cmd.Flags()
	if !flags.Changed("registry") && cfg.Registry != "" {
		a.registryPath = cfg.Registry
	}
	if !flags.Changed("max-depth") && cfg.MaxDepth > 0 {
		a.maxDepth = cfg.MaxDepth
	}
	if a.maxDepth < 0 {
		return withExit(ExitInvalidArguments, fmt.Errorf("--max-depth must not be negative, got %d", a.maxDepth))
	}
	a.verbose = a.verbose || cfg.Verbose
	a.noColor = a.noColor || cfg.NoColor
	a.twoPass = a.twoPass || cfg.TwoPass
	a.withBuiltins = a.withBuiltins || cfg.Builtins

	a.logger().Debug("configuration loaded",
		"config", cfg.Path,
		"registry", a.registryPath,
		"strategy", a.strategy().String(),
		"maxDepth", a.maxDepth)

	reg, err := a.loadRegistry()
	if err != nil {
		return withExit(ExitRegistryError, err)
	}
	a.registry = reg
	return nil
}

func (a *app) loadRegistry() (*types.Registry, error) {
	if a.registryPath == "" {
		return builtins.Registry(), nil
	}
	reg, err := types.LoadManifestFile(a.registryPath)
	if err != nil || !a.withBuiltins {
		return reg, err
	}

	base := builtins.Registry()
	if err := base.Merge(reg); err != nil {
		return nil, fmt.Errorf("%s: %w", a.registryPath, err)
	}
	return base, nil
}

func (a *app) strategy() parser.Strategy {
	if a.twoPass {
		return parser.StrategyTwoPass
	}
	return parser.StrategySinglePass
}

func (a *app) useColor() bool {
	return ShouldUseColor(a.noColor, a.stderr)
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) == 0 && attr.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return attr
		},
	}))
}

// parserOpts builds engine options from the global flags. Diagnostics are
// rendered by the commands themselves so concurrent checks never interleave.
func (a *app) parserOpts(extra ...parser.ParserOpt) []parser.ParserOpt {
	opts := []parser.ParserOpt{
		parser.WithStrategy(a.strategy()),
		parser.WithVerbose(a.verbose),
		parser.WithColor(a.useColor()),
		parser.WithMaxDepth(a.maxDepth),
		parser.WithDiagnostics(nil),
		parser.WithLogger(a.logger()),
	}
	return append(opts, extra...)
}

// diagnostic renders a parse failure the way the engine would
func (a *app) diagnostic(err error) string {
	return parser.ErrorFormatter{Color: a.useColor(), Verbose: a.verbose}.Format(err)
}

// reported marks err as already shown to the user
func reported(code int, err error) error {
	return &exitError{code: code, err: err, silent: true}
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
