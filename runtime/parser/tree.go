package parser

import (
	"strings"
	"time"

	"github.com/opal-lang/arborist/core/types"
)

// Span is an inclusive byte range of the source plus the resolved type of the
// expression it covers.
type Span struct {
	Start int
	End   int
	Type  types.TypeTag
}

// Len returns the number of bytes covered
func (s Span) Len() int {
	return s.End - s.Start + 1
}

// NodeKind distinguishes literals from calls
type NodeKind uint8

const (
	NodeLeaf NodeKind = iota // Literal: quoted string or bare number
	NodeCall                 // Callable application: (name args...)
)

func (k NodeKind) String() string {
	if k == NodeCall {
		return "call"
	}
	return "leaf"
}

// Node is one expression of the tree. Children are owned by their parent.
type Node struct {
	Kind      NodeKind
	Text      string           // Literal text (quotes included) or callable name
	Type      types.TypeTag    // Literal kind or resolved return type
	Arity     int              // Top-level argument tokens in the call's span
	Children  []*Node          // Arguments in source order (calls only)
	Span      Span             // Where the expression sits in the source
	Signature *types.Signature // Overload the call resolved to (calls only)
}

// IsCall reports whether the node is a callable application
func (n *Node) IsCall() bool {
	return n.Kind == NodeCall
}

// String renders the node in canonical form: single spaces between a call's
// name and its arguments, literals verbatim.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if !n.IsCall() {
		b.WriteString(n.Text)
		return
	}
	b.WriteByte('(')
	b.WriteString(n.Text)
	for _, child := range n.Children {
		b.WriteByte(' ')
		child.write(b)
	}
	b.WriteByte(')')
}

// Telemetry holds per-parse counters (nil unless WithTelemetry is set)
type Telemetry struct {
	Nodes    int           // Nodes in the tree
	Calls    int           // Call nodes
	MaxDepth int           // Deepest call nesting (top-level call = 1)
	Duration time.Duration // Wall time of the whole parse
}

// Tree is the validated structure of one top-level expression
type Tree struct {
	Source    string
	Root      *Node
	Strategy  Strategy
	Telemetry *Telemetry
	resolved  bool
}

// Type returns the root expression's type
func (t *Tree) Type() types.TypeTag {
	if t == nil || t.Root == nil {
		return types.Unresolved
	}
	return t.Root.Type
}

// Resolved reports whether every call carries its return type
func (t *Tree) Resolved() bool {
	return t.resolved
}

// String re-serializes the tree; parsing the result yields an isomorphic tree
func (t *Tree) String() string {
	if t == nil || t.Root == nil {
		return ""
	}
	return t.Root.String()
}

// Walk visits every node in pre-order with its depth (root = 0). Returning
// false from fn skips that node's children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	if t == nil || t.Root == nil {
		return
	}

	type item struct {
		node  *Node
		depth int
	}
	stack := []item{{t.Root, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.node, it.depth) {
			continue
		}
		// Push in reverse so children pop in source order
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], it.depth + 1})
		}
	}
}

// Calls returns the call nodes in pre-order
func (t *Tree) Calls() []*Node {
	var calls []*Node
	t.Walk(func(n *Node, _ int) bool {
		if n.IsCall() {
			calls = append(calls, n)
		}
		return true
	})
	return calls
}
