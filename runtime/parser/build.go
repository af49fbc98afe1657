package parser

import (
	"errors"
	"fmt"

	"github.com/opal-lang/arborist/core/invariant"
	"github.com/opal-lang/arborist/core/types"
)

// Build replays the structure of source into a tree without consulting a
// registry. Literals are typed and checked; call nodes keep Unresolved types
// until ResolveReturnTypes runs. Failures are returned, not rendered.
func Build(source string, opts ...ParserOpt) (*Tree, error) {
	return build(source, newConfig(opts))
}

func build(source string, config *ParserConfig) (*Tree, error) {
	e := newEngine(source, nil, true, config)
	if _, err := e.run(); err != nil {
		return nil, err
	}
	return &Tree{Source: source, Root: e.root}, nil
}

// ResolveReturnTypes assigns every call its return type, children before
// parents, by resolving the call's name against its children's types.
// On failure the tree is left partially typed and must be discarded.
func (t *Tree) ResolveReturnTypes(lookup types.Lookup) error {
	invariant.NotNil(lookup, "lookup")
	if t.Root == nil {
		return &ParseError{Kind: KindMalformedInput, Message: "tree has no root", Source: t.Source}
	}

	type item struct {
		node *Node
		next int // Next child to descend into
	}
	stack := []item{{node: t.Root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.Children) {
			child := top.node.Children[top.next]
			top.next++
			if child.IsCall() {
				stack = append(stack, item{node: child})
			}
			continue
		}

		n := top.node
		stack = stack[:len(stack)-1]
		if !n.IsCall() {
			continue
		}

		args := make([]types.TypeTag, len(n.Children))
		for i, child := range n.Children {
			args[i] = child.Type
		}
		sig, err := lookup.Resolve(n.Text, args)
		if err != nil {
			pe := &ParseError{
				Kind:     KindSignatureMismatch,
				Message:  fmt.Sprintf("%s does not accept (%s)", n.Text, tagList(args)),
				Source:   t.Source,
				Offset:   n.Span.Start,
				Callable: n.Text,
				Hint:     overloadHint(lookup, n.Text),
				cause:    err,
			}
			if errors.Is(err, types.ErrUnknownCallable) {
				pe.Kind = KindUnknownCallable
				pe.Message = fmt.Sprintf("%q is not a registered callable", n.Text)
				pe.Hint = ""
			}
			for i := len(stack) - 1; i >= 0; i-- {
				anc := stack[i].node
				pe.Trace = append(pe.Trace, TraceFrame{
					Callable:  anc.Text,
					Offset:    anc.Span.Start,
					Validated: stack[i].next - 1,
					Arity:     anc.Arity,
				})
			}
			return pe
		}
		n.Type = sig.Returns
		n.Span.Type = sig.Returns
		n.Signature = &sig
	}

	t.finish()
	return nil
}

// finish checks the resolved-tree contract and freezes the tree
func (t *Tree) finish() {
	t.Walk(func(n *Node, _ int) bool {
		invariant.Postcondition(n.Type.IsResolved(), "node %q at %d left unresolved", n.Text, n.Span.Start)
		invariant.Postcondition(n.Type == n.Span.Type, "node %q at %d: span type %s differs from node type %s",
			n.Text, n.Span.Start, n.Span.Type, n.Type)
		if n.IsCall() {
			invariant.Postcondition(n.Arity == len(n.Children), "call %q at %d has arity %d but %d children",
				n.Text, n.Span.Start, n.Arity, len(n.Children))
		}
		return true
	})
	t.resolved = true
}

// measure counts the tree for telemetry
func measure(t *Tree) *Telemetry {
	tm := &Telemetry{}
	t.Walk(func(n *Node, depth int) bool {
		tm.Nodes++
		if n.IsCall() {
			tm.Calls++
			tm.MaxDepth = max(tm.MaxDepth, depth+1)
		}
		return true
	})
	return tm
}
