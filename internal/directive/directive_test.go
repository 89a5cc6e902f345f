package directive

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

func TestParseAttributes(t *testing.T) {
	cases := []struct {
		raw  string
		want Attributes
	}{
		{"Tokyo Tower", Attributes{{Key: "Tokyo Tower"}}},
		{"latitude=48.8584, longitude=2.2945", Attributes{{"latitude", "48.8584"}, {"longitude", "2.2945"}}},
		{`label="Paris, France", zoom=3`, Attributes{{"label", "Paris, France"}, {"zoom", "3"}}},
		{`"Shibuya, Tokyo"`, Attributes{{Key: "Shibuya, Tokyo"}}},
		{`note='it\'s here'`, Attributes{{"note", "it's here"}}},
		{"a=1, , a=2", Attributes{{"a", "2"}}},
		{"", nil},
		{"  ", nil},
	}
	for _, tc := range cases {
		got := ParseAttributes(tc.raw)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseAttributes(%q) = %#v, want %#v", tc.raw, got, tc.want)
		}
	}
}

func TestAttributesAccessors(t *testing.T) {
	attrs := ParseAttributes("Tokyo Tower, latitude=35.6")
	first, ok := attrs.First()
	if !ok || first.Key != "Tokyo Tower" {
		t.Fatalf("expected first key Tokyo Tower, got %#v", first)
	}
	if v, ok := attrs.Get("latitude"); !ok || v != "35.6" {
		t.Fatalf("expected latitude 35.6, got %q %v", v, ok)
	}
	if attrs.Has("longitude") {
		t.Fatal("unexpected longitude attribute")
	}
	if !reflect.DeepEqual(attrs.Keys(), []string{"Tokyo Tower", "latitude"}) {
		t.Fatalf("unexpected keys %v", attrs.Keys())
	}
	if attrs.Map()["latitude"] != "35.6" {
		t.Fatalf("unexpected map %v", attrs.Map())
	}
}

func parseDocument(t *testing.T, source string) ast.Node {
	t.Helper()
	md := goldmark.New(goldmark.WithExtensions(Extension))
	return md.Parser().Parse(text.NewReader([]byte(source)))
}

func TestParserProducesDirectiveNodes(t *testing.T) {
	doc := parseDocument(t, "# Trip\n\n$map(Tokyo Tower)\n\ntext\n\n$map(latitude=48.8584, longitude=2.2945)\n")

	nodes := Collect(doc)
	if len(nodes) != 2 {
		t.Fatalf("expected 2 directives, got %d", len(nodes))
	}
	if nodes[0].Name != "map" || nodes[0].Source != "$map(Tokyo Tower)" {
		t.Fatalf("unexpected first node %#v", nodes[0])
	}
	if v, _ := nodes[1].Args.Get("longitude"); v != "2.2945" {
		t.Fatalf("expected longitude attribute, got %q", v)
	}
}

func TestDirectiveNodeKeepsGoldmarkAttributes(t *testing.T) {
	doc := parseDocument(t, "$map(Kyoto, zoom=4)\n")
	nodes := Collect(doc)
	if len(nodes) != 1 {
		t.Fatalf("expected 1 directive, got %d", len(nodes))
	}

	var node ast.Node = nodes[0]
	if node.Kind() != KindDirective {
		t.Fatalf("unexpected kind %v", node.Kind())
	}
	node.SetAttributeString("class", []byte("geomap"))
	if value, ok := node.AttributeString("class"); !ok || string(value.([]byte)) != "geomap" {
		t.Fatalf("expected goldmark attribute to round trip, got %v %v", value, ok)
	}
	if len(node.Attributes()) != 1 {
		t.Fatalf("expected one goldmark attribute, got %d", len(node.Attributes()))
	}
	if !reflect.DeepEqual(nodes[0].Args.Keys(), []string{"Kyoto", "zoom"}) {
		t.Fatalf("expected directive arguments, got %v", nodes[0].Args.Keys())
	}
}

func TestParserIgnoresInlineDollar(t *testing.T) {
	doc := parseDocument(t, "costs $5 (roughly)\n\n$ not a directive\n")
	if nodes := Collect(doc); len(nodes) != 0 {
		t.Fatalf("expected no directives, got %d", len(nodes))
	}
}

func TestParserInterruptsParagraph(t *testing.T) {
	doc := parseDocument(t, "Where we met:\n$map(Shibuya)\n")
	if nodes := Collect(doc); len(nodes) != 1 {
		t.Fatalf("expected directive after paragraph line, got %d", len(nodes))
	}
}

type replaceTransformer struct{}

func (replaceTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	for _, node := range Collect(doc) {
		if node.Name == "map" {
			Replace(node, NewRawHTML(`<div id="map-x"></div>`))
		}
	}
}

func TestRendererWritesRawHTMLAndEchoesUnhandled(t *testing.T) {
	md := goldmark.New(goldmark.WithExtensions(Extension))
	var buf bytes.Buffer
	source := []byte("$map(Tokyo)\n\n$other(<b>)\n")

	doc := md.Parser().Parse(text.NewReader(source))
	replaceTransformer{}.Transform(doc.(*ast.Document), nil, nil)
	if err := md.Renderer().Render(&buf, source, doc); err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `<div id="map-x"></div>`) {
		t.Fatalf("expected raw html in output, got %s", out)
	}
	if !strings.Contains(out, "<p>$other(&lt;b&gt;)</p>") {
		t.Fatalf("expected escaped echo of unhandled directive, got %s", out)
	}
}
