package parser

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opal-lang/arborist/core/invariant"
	"github.com/opal-lang/arborist/core/types"
	"github.com/opal-lang/arborist/runtime/lexer"
)

// Parse validates source against lookup and returns its fully resolved tree.
// Any failure aborts the whole parse: the diagnostic is rendered to the
// configured writer and a *ParseError is returned with no partial tree.
func Parse(source string, lookup types.Lookup, opts ...ParserOpt) (*Tree, error) {
	invariant.NotNil(lookup, "lookup")
	config := newConfig(opts)

	var start time.Time
	if config.telemetry {
		start = time.Now()
	}

	var tree *Tree
	var err error
	switch config.strategy {
	case StrategyTwoPass:
		tree, err = parseTwoPass(source, lookup, config)
	default:
		tree, err = parseSinglePass(source, lookup, config)
	}
	if err != nil {
		report(config, err)
		return nil, err
	}

	if config.telemetry {
		tree.Telemetry = measure(tree)
		tree.Telemetry.Duration = time.Since(start)
	}
	return tree, nil
}

// Validate checks source against lookup without growing a tree and returns
// the type of the top-level expression.
func Validate(source string, lookup types.Lookup, opts ...ParserOpt) (types.TypeTag, error) {
	invariant.NotNil(lookup, "lookup")
	config := newConfig(opts)

	e := newEngine(source, lookup, false, config)
	span, err := e.run()
	if err != nil {
		report(config, err)
		return types.Unresolved, err
	}
	return span.Type, nil
}

func parseSinglePass(source string, lookup types.Lookup, config *ParserConfig) (*Tree, error) {
	e := newEngine(source, lookup, true, config)
	if _, err := e.run(); err != nil {
		return nil, err
	}

	tree := &Tree{Source: source, Root: e.root, Strategy: StrategySinglePass}
	tree.finish()
	return tree, nil
}

func parseTwoPass(source string, lookup types.Lookup, config *ParserConfig) (*Tree, error) {
	e := newEngine(source, lookup, false, config)
	if _, err := e.run(); err != nil {
		return nil, err
	}

	tree, err := build(source, config)
	invariant.Invariant(err == nil, "validated source failed to replay: %v", err)
	tree.Strategy = StrategyTwoPass
	if err := tree.ResolveReturnTypes(lookup); err != nil {
		return nil, err
	}
	return tree, nil
}

// report renders err to the diagnostic writer. Rendering is observational
// and never fails the parse.
func report(config *ParserConfig, err error) {
	f := ErrorFormatter{Color: config.color, Verbose: config.verbose}
	_, _ = fmt.Fprint(config.diagnostics, f.Format(err))
}

// frame is one call whose '(' has been read and whose arguments are still
// being validated. It replaces a native stack frame of the recursive walk.
type frame struct {
	name   string
	open   int // Offset of '('
	close  int // Offset of the matching ')'
	cursor int // Next offset to scan for an argument
	arity  int
	args   []types.TypeTag
	node   *Node // nil unless growing
}

// engine validates one top-level expression, optionally growing its tree.
// A nil lookup replays structure only: names are not checked and call types
// stay Unresolved.
type engine struct {
	src      string
	lookup   types.Lookup
	grow     bool
	maxDepth int
	logger   *slog.Logger
	delims   *lexer.Delimiters

	stack []*frame
	root  *Node
}

func newEngine(src string, lookup types.Lookup, grow bool, config *ParserConfig) *engine {
	return &engine{
		src:      src,
		lookup:   lookup,
		grow:     grow,
		maxDepth: config.maxDepth,
		logger:   config.logger,
		delims:   lexer.MatchDelimiters(src),
		stack:    make([]*frame, 0, 8),
	}
}

// run validates the single expression in src and returns its span.
// Leading and trailing whitespace is incidental.
func (e *engine) run() (Span, error) {
	start := lexer.SkipSpace(e.src, 0, len(e.src))
	if start == len(e.src) {
		return Span{}, e.fail(KindMalformedInput, 0, "", "empty input: expected one expression")
	}

	var result Span
	delivered := false
	deliver := func(span Span, node *Node) {
		if len(e.stack) == 0 {
			result, delivered = span, true
			e.root = node
			return
		}
		top := e.stack[len(e.stack)-1]
		top.args = append(top.args, span.Type)
		if e.grow {
			top.node.Children = append(top.node.Children, node)
		}
		top.cursor = span.End + 1
	}

	for !delivered {
		pos, boundary := start, len(e.src)-1
		if len(e.stack) > 0 {
			top := e.stack[len(e.stack)-1]
			pos = lexer.SkipSpace(e.src, top.cursor, top.close)
			if pos == top.close {
				span, node, err := e.closeCall()
				if err != nil {
					return Span{}, err
				}
				deliver(span, node)
				continue
			}
			boundary = top.close - 1
		}

		prev := len(e.stack)
		span, node, opened, err := e.argument(pos, boundary)
		if err != nil {
			return Span{}, err
		}
		if opened {
			invariant.Invariant(len(e.stack) == prev+1, "opening a call must push a frame")
			continue
		}
		deliver(span, node)
	}

	if rest := lexer.SkipSpace(e.src, result.End+1, len(e.src)); rest < len(e.src) {
		if err := e.unclosed(rest); err != nil {
			return Span{}, err
		}
		return Span{}, e.fail(KindMalformedInput, rest, "",
			"unexpected text after the expression; input must hold exactly one expression")
	}
	return result, nil
}

// unclosed reports an opening delimiter at pos that never closes. Trailing
// text is malformed, but an unmatched '(' or '"' is the more specific error.
func (e *engine) unclosed(pos int) error {
	switch lexer.Classify(e.src[pos]) {
	case lexer.ClassOpen:
		if closeAt, strayQuote := e.delims.ClosingBracket(pos); closeAt < 0 {
			if strayQuote >= 0 {
				return e.fail(KindUnmatchedDelimiter, strayQuote, "", "string literal is never closed")
			}
			return e.fail(KindUnmatchedDelimiter, pos, "", "'(' has no matching ')'")
		}
	case lexer.ClassQuote:
		if e.delims.ClosingQuote(pos) < 0 {
			return e.fail(KindUnmatchedDelimiter, pos, "", "string literal is never closed")
		}
	}
	return nil
}

// argument classifies the argument beginning at pos, which must not be
// whitespace. A '(' pushes a frame and reports opened; literals are validated
// and returned with their span.
func (e *engine) argument(pos, boundary int) (span Span, node *Node, opened bool, err error) {
	invariant.Precondition(!lexer.IsSpace(e.src[pos]), "argument must start on a non-space (offset %d)", pos)

	switch lexer.Classify(e.src[pos]) {
	case lexer.ClassOpen:
		return Span{}, nil, true, e.openCall(pos, boundary)

	case lexer.ClassQuote:
		end := e.delims.ClosingQuote(pos)
		if end < 0 || end > boundary {
			return Span{}, nil, false, e.fail(KindUnmatchedDelimiter, pos, "",
				"string literal is never closed")
		}
		span = Span{Start: pos, End: end, Type: types.String}
		return span, e.leaf(span), false, nil

	default:
		end := lexer.FindEndOfArgument(e.src, pos)
		if end == pos {
			return Span{}, nil, false, e.fail(KindUnrecognizedLiteral, pos, "",
				"unexpected ')' with no open call")
		}
		text := e.src[pos:end]
		tag := lexer.ClassifyLiteral(text)
		if !tag.IsResolved() {
			return Span{}, nil, false, e.fail(KindUnrecognizedLiteral, pos, "",
				fmt.Sprintf("%q is neither an integer nor a float", text))
		}
		span = Span{Start: pos, End: end - 1, Type: tag}
		return span, e.leaf(span), false, nil
	}
}

func (e *engine) leaf(span Span) *Node {
	if !e.grow {
		return nil
	}
	return &Node{
		Kind: NodeLeaf,
		Text: e.src[span.Start : span.End+1],
		Type: span.Type,
		Span: span,
	}
}

// openCall checks the call opened at pos and pushes its frame
func (e *engine) openCall(pos, boundary int) error {
	closeAt, strayQuote := e.delims.ClosingBracket(pos)
	if closeAt < 0 && strayQuote >= 0 {
		return e.fail(KindUnmatchedDelimiter, strayQuote, "", "string literal is never closed")
	}
	if closeAt < 0 || closeAt > boundary {
		return e.fail(KindUnmatchedDelimiter, pos, "", "'(' has no matching ')'")
	}

	nameAt := lexer.NameStart(e.src, pos, closeAt)
	name := lexer.NextWord(e.src, nameAt)
	if name == "" {
		return e.fail(KindUnknownCallable, pos, "", "missing callable name after '('")
	}
	if e.lookup != nil && !e.lookup.Exists(name) {
		return e.fail(KindUnknownCallable, pos, name, fmt.Sprintf("%q is not a registered callable", name))
	}
	if e.maxDepth > 0 && len(e.stack) >= e.maxDepth {
		return e.fail(KindNestingTooDeep, pos, name,
			fmt.Sprintf("calls nest deeper than the limit of %d", e.maxDepth))
	}

	f := &frame{
		name:   name,
		open:   pos,
		close:  closeAt,
		cursor: nameAt + len(name),
		arity:  e.delims.CountArguments(pos, closeAt),
	}
	f.args = make([]types.TypeTag, 0, f.arity)
	if e.grow {
		f.node = &Node{
			Kind:     NodeCall,
			Text:     name,
			Arity:    f.arity,
			Children: make([]*Node, 0, f.arity),
		}
	}
	e.stack = append(e.stack, f)

	e.logger.Debug("open call", "name", name, "offset", pos, "arity", f.arity, "depth", len(e.stack))
	return nil
}

// closeCall resolves the innermost frame once all its arguments are typed
func (e *engine) closeCall() (Span, *Node, error) {
	f := e.stack[len(e.stack)-1]
	invariant.Invariant(len(f.args) == f.arity,
		"call %q at %d validated %d arguments but counted %d", f.name, f.open, len(f.args), f.arity)

	span := Span{Start: f.open, End: f.close, Type: types.Unresolved}
	if e.lookup != nil {
		sig, err := e.lookup.Resolve(f.name, f.args)
		if err != nil {
			pe := e.fail(KindSignatureMismatch, f.open, f.name,
				fmt.Sprintf("%s does not accept (%s)", f.name, tagList(f.args)))
			pe.cause = err
			pe.Hint = overloadHint(e.lookup, f.name)
			return Span{}, nil, pe
		}
		span.Type = sig.Returns
		if f.node != nil {
			f.node.Signature = &sig
		}
	}

	e.stack = e.stack[:len(e.stack)-1]
	e.logger.Debug("close call", "name", f.name, "offset", f.open, "length", span.Len(), "type", span.Type.String())

	if f.node == nil {
		return span, nil, nil
	}
	f.node.Type = span.Type
	f.node.Span = span
	return span, f.node, nil
}

// fail builds the error for the current state, capturing the open frames
func (e *engine) fail(kind ErrorKind, offset int, callable, message string) *ParseError {
	pe := &ParseError{
		Kind:     kind,
		Message:  message,
		Source:   e.src,
		Offset:   offset,
		Callable: callable,
	}
	for i := len(e.stack) - 1; i >= 0; i-- {
		f := e.stack[i]
		pe.Trace = append(pe.Trace, TraceFrame{
			Callable:  f.name,
			Offset:    f.open,
			Validated: len(f.args),
			Arity:     f.arity,
		})
	}
	if kind == KindUnknownCallable && callable != "" {
		if s, ok := e.lookup.(suggester); ok {
			pe.Suggestions = s.Suggest(callable, 3)
		}
	}

	e.logger.Debug("parse failed", "kind", kind.String(), "offset", offset, "depth", len(e.stack))
	return pe
}

// suggester is implemented by lookups that can propose close names
type suggester interface {
	Suggest(name string, limit int) []string
}

// overloader is implemented by lookups that can list a name's signatures
type overloader interface {
	Overloads(name string) []types.Signature
}

func overloadHint(lookup types.Lookup, name string) string {
	o, ok := lookup.(overloader)
	if !ok {
		return ""
	}
	sigs := o.Overloads(name)
	if len(sigs) == 0 {
		return ""
	}
	parts := make([]string, len(sigs))
	for i, sig := range sigs {
		parts[i] = sig.String()
	}
	return "expected " + strings.Join(parts, " or ")
}

func tagList(tags []types.TypeTag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
