package page

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

func TestNewDocumentLinksAssets(t *testing.T) {
	doc, err := NewDocument(`Trip <1>`, Assets{
		LeafletCSS: "https://unpkg.com/leaflet@1.9.4/dist/leaflet.css",
		LeafletJS:  "https://unpkg.com/leaflet@1.9.4/dist/leaflet.js",
	})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if err := doc.Load(`<div id="map-1"></div>`); err != nil {
		t.Fatalf("Load: %v", err)
	}

	out := doc.String()
	for _, want := range []string{
		`<title>Trip &lt;1&gt;</title>`,
		`<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>`,
		`<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>`,
		`<div id="map-1"></div>`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
	if found, _ := doc.HasElement(context.Background(), "map-1"); !found {
		t.Fatal("expected loaded element")
	}
}

func TestTitleAndFileName(t *testing.T) {
	withTitle := &interfaces.Document{FilePath: "notes/trip.md", FrontMatter: interfaces.FrontMatter{Title: "Tokyo Trip"}}
	if Title(withTitle) != "Tokyo Trip" {
		t.Fatalf("unexpected title %q", Title(withTitle))
	}
	if FileName(withTitle) != "tokyo-trip.html" {
		t.Fatalf("unexpected file name %q", FileName(withTitle))
	}

	untitled := &interfaces.Document{FilePath: "notes/paris.md"}
	if Title(untitled) != "paris" || FileName(untitled) != "paris.html" {
		t.Fatalf("unexpected fallback %q %q", Title(untitled), FileName(untitled))
	}
}
