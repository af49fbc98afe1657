package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/opal-lang/arborist/runtime/parser"
)

const (
	historyFile = ".arborist_history"
	promptMain  = "arborist> "
	promptCont  = "      ... "
)

const replHelp = `Enter an expression to see its type.
  :tree    toggle the typed tree display
  :sigs    list the registry
  :help    show this help
  :quit    exit (Ctrl-D also works)
`

// prompter reads one line of input; *liner.State satisfies it
type prompter interface {
	Prompt(prompt string) (string, error)
}

// replSession holds state that lives across REPL inputs
type replSession struct {
	app      *app
	showTree bool
}

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Check expressions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.repl(cmd.Context())
		},
	}
}

func (a *app) repl(ctx context.Context) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer func() { _ = ln.Close() }()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	session := &replSession{app: a}
	return session.loop(ctx, ln, ln.AppendHistory)
}

// loop reads and evaluates inputs until EOF, :quit or cancellation
func (s *replSession) loop(ctx context.Context, in prompter, remember func(string)) error {
	_, _ = fmt.Fprintln(s.app.stdout, "Type :help for commands.")
	for ctx.Err() == nil {
		src, ok := s.read(in)
		if !ok {
			_, _ = fmt.Fprintln(s.app.stdout)
			return nil
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if quit := s.command(trimmed); quit {
				return nil
			}
			continue
		}

		if s.eval(trimmed) && remember != nil {
			remember(strings.ReplaceAll(trimmed, "\n", " "))
		}
	}
	return nil
}

// read collects lines until the input is no longer waiting on a closing
// delimiter. Reports false at end of input.
func (s *replSession) read(in prompter) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			// An empty continuation line submits what we have
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src only fails for want of a closing
// delimiter
func incomplete(src string) bool {
	_, err := parser.Build(src, parser.WithDiagnostics(nil), parser.WithMaxDepth(0), parser.WithLogger(discardLogger))
	return errors.Is(err, parser.ErrUnmatchedDelimiter)
}

// command runs a ':' command and reports whether the REPL should exit
func (s *replSession) command(input string) bool {
	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		_, _ = fmt.Fprint(s.app.stdout, replHelp)
	case ":tree":
		s.showTree = !s.showTree
		state := "off"
		if s.showTree {
			state = "on"
		}
		_, _ = fmt.Fprintf(s.app.stdout, "tree display %s\n", state)
	case ":sigs":
		reg, err := s.app.selectCallables(fields[1:])
		if err != nil {
			FormatError(s.app.stderr, err, s.app.useColor())
			return false
		}
		s.app.printSignatures(reg)
	default:
		_, _ = fmt.Fprintf(s.app.stdout, "unknown command %s. Type :help for commands.\n", fields[0])
	}
	return false
}

// eval checks one expression and reports whether it was accepted
func (s *replSession) eval(src string) bool {
	tree, err := parser.Parse(src, s.app.registry, s.app.parserOpts()...)
	if err != nil {
		_, _ = fmt.Fprint(s.app.stderr, s.app.diagnostic(err))
		return false
	}

	useColor := ShouldUseColor(s.app.noColor, s.app.stdout)
	if s.showTree {
		parser.FormatTree(s.app.stdout, tree, useColor)
		return true
	}
	_, _ = fmt.Fprintf(s.app.stdout, "%s %s\n", Colorize("=>", ColorGray, useColor), tree.Type())
	return true
}
