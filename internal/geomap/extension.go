package geomap

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-mapdirective/internal/directive"
)

type extender struct {
	transformer *Transformer
}

// NewExtension registers the directive parser and the map transformer.
func NewExtension(transformer *Transformer) goldmark.Extender {
	if transformer == nil {
		transformer = NewTransformer()
	}
	return &extender{transformer: transformer}
}

func (e *extender) Extend(m goldmark.Markdown) {
	directive.Extension.Extend(m)
	m.Parser().AddOptions(
		parser.WithASTTransformers(util.Prioritized(e.transformer, 100)),
	)
}
