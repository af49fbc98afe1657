package parser

import (
	"fmt"
	"io"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"
)

// Colorize wraps text in ANSI color codes if color is enabled
func Colorize(text, color string, useColor bool) string {
	if !useColor {
		return text
	}
	return color + text + ColorReset
}

// FormatTree renders a tree with box-drawing characters, one node per line:
//
//	add -> integer
//	├─ 5 : integer
//	└─ mult -> integer
//	   ├─ 2 : integer
//	   └─ 3 : integer
func FormatTree(w io.Writer, tree *Tree, useColor bool) {
	if tree == nil || tree.Root == nil {
		_, _ = fmt.Fprintln(w, "(empty tree)")
		return
	}

	type item struct {
		node   *Node
		indent string // Prefix inherited from ancestors
		branch string // Connector for this node
	}
	stack := []item{{node: tree.Root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		_, _ = fmt.Fprintf(w, "%s%s%s\n", it.indent, it.branch, renderNode(it.node, useColor))

		childIndent := it.indent
		switch it.branch {
		case "├─ ":
			childIndent += "│  "
		case "└─ ":
			childIndent += "   "
		}
		for i := len(it.node.Children) - 1; i >= 0; i-- {
			branch := "├─ "
			if i == len(it.node.Children)-1 {
				branch = "└─ "
			}
			stack = append(stack, item{node: it.node.Children[i], indent: childIndent, branch: branch})
		}
	}
}

// renderNode renders one node's label
func renderNode(n *Node, useColor bool) string {
	if n.IsCall() {
		name := Colorize(n.Text, ColorBlue, useColor)
		return fmt.Sprintf("%s -> %s", name, Colorize(n.Type.String(), ColorCyan, useColor))
	}
	color := ColorYellow
	if n.Type.IsNumeric() {
		color = ColorGreen
	}
	return fmt.Sprintf("%s : %s", Colorize(n.Text, color, useColor), Colorize(n.Type.String(), ColorGray, useColor))
}
