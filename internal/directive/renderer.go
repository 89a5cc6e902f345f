package directive

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

type nodeRenderer struct{}

// NewRenderer renders RawHTML nodes verbatim and echoes directives no
// handler claimed as an escaped paragraph.
func NewRenderer() renderer.NodeRenderer {
	return &nodeRenderer{}
}

func (r *nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindRawHTML, r.renderRawHTML)
	reg.Register(KindDirective, r.renderDirective)
}

func (r *nodeRenderer) renderRawHTML(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	raw := n.(*RawHTML)
	_, _ = w.WriteString(raw.HTML)
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

func (r *nodeRenderer) renderDirective(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	node := n.(*Node)
	_, _ = w.WriteString("<p>")
	_, _ = w.Write(util.EscapeHTML([]byte(node.Source)))
	_, _ = w.WriteString("</p>\n")
	return ast.WalkSkipChildren, nil
}
