package directive

import (
	"github.com/yuin/goldmark/ast"
)

// KindDirective is the node kind of a parsed leaf directive.
var KindDirective = ast.NewNodeKind("Directive")

// KindRawHTML is the node kind of literal markup produced by a directive
// handler.
var KindRawHTML = ast.NewNodeKind("DirectiveRawHTML")

// Node is a leaf directive such as $map(Tokyo Tower). Source holds the
// directive line as written so unhandled directives can be echoed back.
type Node struct {
	ast.BaseBlock
	Name   string
	Args   Attributes
	Source string
}

var (
	_ ast.Node = (*Node)(nil)
	_ ast.Node = (*RawHTML)(nil)
)

// NewNode returns a directive node.
func NewNode(name string, attrs Attributes) *Node {
	return &Node{Name: name, Args: attrs}
}

func (n *Node) Kind() ast.NodeKind {
	return KindDirective
}

func (n *Node) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Name": n.Name,
		"Args": n.Args.String(),
	}, nil)
}

// RawHTML is a block that renders its HTML verbatim.
type RawHTML struct {
	ast.BaseBlock
	HTML string
}

// NewRawHTML returns a node rendering html as-is.
func NewRawHTML(html string) *RawHTML {
	return &RawHTML{HTML: html}
}

func (n *RawHTML) Kind() ast.NodeKind {
	return KindRawHTML
}

func (n *RawHTML) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"HTML": n.HTML}, nil)
}

// Replace swaps node for replacement at the same position under the same
// parent.
func Replace(node ast.Node, replacement ast.Node) {
	parent := node.Parent()
	if parent == nil {
		return
	}
	parent.ReplaceChild(parent, node, replacement)
}

// Collect walks the tree and returns every directive node in document order.
func Collect(doc ast.Node) []*Node {
	var nodes []*Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if directive, ok := n.(*Node); ok {
			nodes = append(nodes, directive)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return nodes
}
