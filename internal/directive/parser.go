package directive

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var leafPattern = regexp.MustCompile(`^\$([A-Za-z][A-Za-z0-9_-]*)\((.*)\)$`)

type blockParser struct{}

// NewParser returns a block parser for leaf directives written alone on a
// line: $name(attributes).
func NewParser() parser.BlockParser {
	return &blockParser{}
}

func (b *blockParser) Trigger() []byte {
	return []byte{'$'}
}

func (b *blockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	if w, _ := util.IndentWidth(line, reader.LineOffset()); w > 3 {
		return nil, parser.NoChildren
	}
	trimmed := bytes.TrimSpace(line)
	match := leafPattern.FindSubmatch(trimmed)
	if match == nil {
		return nil, parser.NoChildren
	}

	node := NewNode(string(match[1]), ParseAttributes(string(match[2])))
	node.Source = string(trimmed)
	reader.Advance(segment.Len() - 1)
	return node, parser.NoChildren
}

func (b *blockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	return parser.Close
}

func (b *blockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *blockParser) CanInterruptParagraph() bool {
	return true
}

func (b *blockParser) CanAcceptIndentedLine() bool {
	return false
}
