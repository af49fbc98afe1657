package parser

import (
	"io"
	"log/slog"
	"os"
)

// DefaultMaxDepth bounds call nesting unless WithMaxDepth overrides it
const DefaultMaxDepth = 10000

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// Strategy selects how validation and tree growth interleave
type Strategy int

const (
	// StrategySinglePass grows nodes while validating; the tree is complete
	// the moment validation succeeds.
	StrategySinglePass Strategy = iota
	// StrategyTwoPass validates first, then rebuilds the tree from the
	// validated text and resolves return types bottom-up.
	StrategyTwoPass
)

func (s Strategy) String() string {
	if s == StrategyTwoPass {
		return "two-pass"
	}
	return "single-pass"
}

// ParserConfig holds parser configuration
type ParserConfig struct {
	strategy    Strategy
	verbose     bool
	color       bool
	telemetry   bool
	maxDepth    int
	diagnostics io.Writer
	logger      *slog.Logger
}

func newConfig(opts []ParserOpt) *ParserConfig {
	c := &ParserConfig{
		maxDepth:    DefaultMaxDepth,
		diagnostics: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = defaultLogger()
	}
	if c.diagnostics == nil {
		c.diagnostics = io.Discard
	}
	return c
}

// WithStrategy selects single-pass or two-pass tree construction
func WithStrategy(s Strategy) ParserOpt {
	return func(c *ParserConfig) {
		c.strategy = s
	}
}

// WithVerbose adds the internal call trace to rendered diagnostics.
// It never changes parse results.
func WithVerbose(verbose bool) ParserOpt {
	return func(c *ParserConfig) {
		c.verbose = verbose
	}
}

// WithColor renders diagnostics with ANSI colors
func WithColor(color bool) ParserOpt {
	return func(c *ParserConfig) {
		c.color = color
	}
}

// WithTelemetry records node counts, depth and timing on the tree
func WithTelemetry() ParserOpt {
	return func(c *ParserConfig) {
		c.telemetry = true
	}
}

// WithMaxDepth caps call nesting; n <= 0 removes the cap
func WithMaxDepth(n int) ParserOpt {
	return func(c *ParserConfig) {
		c.maxDepth = n
	}
}

// WithDiagnostics sets where failures are rendered before being returned.
// Defaults to stderr; nil discards them.
func WithDiagnostics(w io.Writer) ParserOpt {
	return func(c *ParserConfig) {
		c.diagnostics = w
	}
}

// WithLogger sets the debug trace logger
func WithLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		c.logger = logger
	}
}

// defaultLogger logs to stderr at debug level when ARBORIST_DEBUG is set
func defaultLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("ARBORIST_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Timestamps and levels are noise in a trace
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}
