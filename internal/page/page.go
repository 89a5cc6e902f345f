// Package page wraps rendered Markdown in a standalone HTML document that
// loads Leaflet, ready to be used as a display surface.
package page

import (
	"bytes"
	"html/template"
	"path"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-mapdirective/internal/surface/htmldoc"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// Assets are the stylesheet and script a page links for Leaflet.
type Assets struct {
	LeafletCSS string
	LeafletJS  string
}

var shell = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
{{- if .Assets.LeafletCSS}}
<link rel="stylesheet" href="{{.Assets.LeafletCSS}}">
{{- end}}
{{- if .Assets.LeafletJS}}
<script src="{{.Assets.LeafletJS}}"></script>
{{- end}}
</head>
<body>
</body>
</html>
`))

type shellData struct {
	Title  string
	Assets Assets
}

// NewDocument returns an empty page surface titled title.
func NewDocument(title string, assets Assets) (*htmldoc.Document, error) {
	var buf bytes.Buffer
	if err := shell.Execute(&buf, shellData{Title: title, Assets: assets}); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "render page shell")
	}
	return htmldoc.Parse(&buf)
}

// Title picks the front matter title, falling back to the file name.
func Title(doc *interfaces.Document) string {
	if doc == nil {
		return ""
	}
	if title := strings.TrimSpace(doc.FrontMatter.Title); title != "" {
		return title
	}
	base := path.Base(doc.FilePath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// FileName is the slugged output name for doc, e.g. "tokyo-trip.html".
func FileName(doc *interfaces.Document) string {
	name := Title(doc)
	if normalized, err := slug.Normalize(name); err == nil && normalized != "" {
		name = normalized
	}
	if name == "" {
		name = "index"
	}
	return name + ".html"
}
