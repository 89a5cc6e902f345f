package htmldoc

import (
	"context"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func TestLoadAndLookup(t *testing.T) {
	doc := New()
	ctx := context.Background()

	found, err := doc.HasElement(ctx, "map-1")
	if err != nil || found {
		t.Fatalf("expected empty document, got found=%v err=%v", found, err)
	}

	if err := doc.Load(`<p>intro</p><div id="map-1" style="height: 400px; width: 100%"></div>`); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	found, err = doc.HasElement(ctx, "map-1")
	if err != nil || !found {
		t.Fatalf("expected element after load, got found=%v err=%v", found, err)
	}
	if !strings.Contains(doc.Body(), `<div id="map-1" style="height: 400px; width: 100%"></div>`) {
		t.Fatalf("expected markup preserved, got %s", doc.Body())
	}
}

func TestSetContentReplacesChildren(t *testing.T) {
	doc := New()
	if err := doc.Load(`<div id="map-2"><span>old</span></div>`); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := doc.SetContent(context.Background(), "map-2", `<div style="color: red;">Error: nope</div>`); err != nil {
		t.Fatalf("SetContent returned error: %v", err)
	}
	inner, ok := doc.InnerHTML("map-2")
	if !ok || inner != `<div style="color: red;">Error: nope</div>` {
		t.Fatalf("unexpected inner html %q", inner)
	}

	err := doc.SetContent(context.Background(), "missing", "x")
	if !goerrors.IsCategory(err, goerrors.CategoryNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestExecAppendsScript(t *testing.T) {
	doc := New()
	if err := doc.Exec(context.Background(), "map-3", "void 0;"); err == nil {
		t.Fatalf("expected error for missing target")
	}
	if err := doc.Load(`<div id="map-3"></div>`); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := doc.Exec(context.Background(), "map-3", `L.map("map-3");`); err != nil {
		t.Fatalf("Exec returned error: %v", err)
	}

	scripts := doc.Scripts()
	if len(scripts) != 1 || scripts[0].Target != "map-3" {
		t.Fatalf("unexpected scripts %#v", scripts)
	}
	if !strings.Contains(doc.String(), `<script>L.map("map-3");</script>`) {
		t.Fatalf("expected script element in rendered document, got %s", doc.String())
	}
}

func TestElementReadySignalsOnLoad(t *testing.T) {
	doc := New()
	ready := doc.ElementReady("map-4")

	select {
	case <-ready:
		t.Fatalf("expected channel to stay open before load")
	default:
	}

	if err := doc.Load(`<div id="map-4"></div>`); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatalf("expected ready signal")
	}

	select {
	case <-doc.ElementReady("map-4"):
	default:
		t.Fatalf("expected closed channel for existing element")
	}
}

func TestCancelledContext(t *testing.T) {
	doc := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := doc.HasElement(ctx, "x"); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestParseKeepsHead(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<html><head><title>Trip</title></head><body><div id="map-5"></div></body></html>`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if doc.Head() == nil {
		t.Fatalf("expected head element")
	}
	if found, _ := doc.HasElement(context.Background(), "map-5"); !found {
		t.Fatalf("expected element from parsed body")
	}
}
