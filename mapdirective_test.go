package mapdirective_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	mapdirective "github.com/goliatone/go-mapdirective"
	markdowncmd "github.com/goliatone/go-mapdirective/internal/commands/markdown"
	"github.com/goliatone/go-mapdirective/internal/di"
	"github.com/goliatone/go-mapdirective/internal/geocode"
	"github.com/goliatone/go-mapdirective/internal/geomap"
	"github.com/goliatone/go-mapdirective/internal/surface/htmldoc"
)

type upstream struct {
	server        *httptest.Server
	nominatimHits atomic.Int32
	gsiHits       atomic.Int32
}

func newUpstream(t *testing.T, nominatim, gsi string) *upstream {
	t.Helper()
	up := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, _ *http.Request) {
		up.nominatimHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(nominatim))
	})
	mux.HandleFunc("/address-search/AddressSearch", func(w http.ResponseWriter, _ *http.Request) {
		up.gsiHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(gsi))
	})
	up.server = httptest.NewServer(mux)
	t.Cleanup(up.server.Close)
	return up
}

func newModule(t *testing.T, up *upstream, files fstest.MapFS, configure func(*mapdirective.Config)) *mapdirective.Module {
	t.Helper()
	cfg := mapdirective.DefaultConfig()
	cfg.Geocoding.PrimaryURL = up.server.URL
	cfg.Geocoding.SecondaryURL = up.server.URL
	cfg.Geocoding.RateLimit = 0
	cfg.Mount.PollInterval = 10 * time.Millisecond
	cfg.Mount.Timeout = 2 * time.Second
	if configure != nil {
		configure(&cfg)
	}
	module, err := mapdirective.New(cfg,
		di.WithFilesystem(files),
		di.WithHTTPClient(up.server.Client()),
	)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return module
}

func renderFile(t *testing.T, module *mapdirective.Module, name string) *mapdirective.RenderedPage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	page, err := module.RenderFile(ctx, name)
	if err != nil {
		t.Fatalf("RenderFile returned error: %v", err)
	}
	return page
}

func TestRenderFileMountsGeocodedAddress(t *testing.T) {
	up := newUpstream(t, `[{"lat":"35.6585805","lon":"139.7454329","display_name":"Tokyo Tower"}]`, `[]`)
	module := newModule(t, up, fstest.MapFS{
		"tokyo.md": {Data: []byte("# Trip\n\n$map(Tokyo Tower)\n")},
	}, nil)

	page := renderFile(t, module, "tokyo.md")
	if len(page.Outcomes) != 1 || page.Outcomes[0].State != geomap.StateMounted {
		t.Fatalf("expected one mounted outcome, got %+v", page.Outcomes)
	}
	if got := page.Outcomes[0].Point.Latitude; got != "35.6585805" {
		t.Fatalf("expected nominatim latitude, got %q", got)
	}
	if up.gsiHits.Load() != 0 {
		t.Fatalf("expected secondary provider to stay idle, got %d hits", up.gsiHits.Load())
	}

	html := string(page.HTML)
	for _, want := range []string{
		`<title>tokyo</title>`,
		`style="height: 400px; width: 100%"></div>`,
		`map.setView([35.6585805, 139.7454329], 13);`,
		`.bindPopup("Tokyo Tower")`,
		`.openPopup();`,
		`https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected page to contain %q\n%s", want, html)
		}
	}
}

func TestRenderFileExplicitCoordinatesSkipGeocoding(t *testing.T) {
	up := newUpstream(t, `[]`, `[]`)
	module := newModule(t, up, fstest.MapFS{
		"paris.md": {Data: []byte("$map(latitude=48.8584, longitude=2.2945)\n")},
	}, nil)

	page := renderFile(t, module, "paris.md")
	if len(page.Outcomes) != 1 || page.Outcomes[0].State != geomap.StateMounted {
		t.Fatalf("expected one mounted outcome, got %+v", page.Outcomes)
	}
	if hits := up.nominatimHits.Load() + up.gsiHits.Load(); hits != 0 {
		t.Fatalf("expected no provider requests, got %d", hits)
	}
	html := string(page.HTML)
	if !strings.Contains(html, `map.setView([48.8584, 2.2945], 13);`) {
		t.Fatalf("expected view centred on the coordinates\n%s", html)
	}
	if !strings.Contains(html, `.bindPopup("latitude")`) {
		t.Fatalf("expected popup labelled with the first key\n%s", html)
	}
}

func TestRenderFileUnknownAddressWritesError(t *testing.T) {
	up := newUpstream(t, `[]`, `[]`)
	module := newModule(t, up, fstest.MapFS{
		"nowhere.md": {Data: []byte("$map(Nowhere123xyz)\n")},
	}, nil)

	page := renderFile(t, module, "nowhere.md")
	if len(page.Outcomes) != 1 {
		t.Fatalf("expected one outcome, got %+v", page.Outcomes)
	}
	outcome := page.Outcomes[0]
	if outcome.State != geomap.StateFailed || outcome.FailedIn != geomap.StateResolving {
		t.Fatalf("expected failure while resolving, got %+v", outcome)
	}
	if !geocode.IsNotFound(outcome.Err) {
		t.Fatalf("expected not found error, got %v", outcome.Err)
	}
	if up.nominatimHits.Load() != 1 || up.gsiHits.Load() != 1 {
		t.Fatalf("expected both providers queried once, got %d/%d", up.nominatimHits.Load(), up.gsiHits.Load())
	}

	html := string(page.HTML)
	if !strings.Contains(html, `<div style="color: red;">Error: Failed to get geo point Nowhere123xyz</div>`) {
		t.Fatalf("expected error written into the container\n%s", html)
	}
	if strings.Contains(html, "L.map(") {
		t.Fatalf("expected no map to be mounted\n%s", html)
	}
}

func TestRenderFileUnknownAddressStaysSilentWithoutWriteBack(t *testing.T) {
	up := newUpstream(t, `[]`, `[]`)
	module := newModule(t, up, fstest.MapFS{
		"nowhere.md": {Data: []byte("$map(Nowhere123xyz)\n")},
	}, func(cfg *mapdirective.Config) {
		cfg.Mount.WriteBack = false
	})

	page := renderFile(t, module, "nowhere.md")
	if len(page.Outcomes) != 1 || !geocode.IsNotFound(page.Outcomes[0].Err) {
		t.Fatalf("expected not found outcome, got %+v", page.Outcomes)
	}
	html := string(page.HTML)
	if strings.Contains(html, "color: red;") || strings.Contains(html, "L.map(") {
		t.Fatalf("expected an empty placeholder\n%s", html)
	}
	if !strings.Contains(html, `style="height: 400px; width: 100%"></div>`) {
		t.Fatalf("expected placeholder to remain\n%s", html)
	}
}

func TestRenderFileUsesFrontMatterZoomAndTitle(t *testing.T) {
	up := newUpstream(t, `[]`, `[]`)
	module := newModule(t, up, fstest.MapFS{
		"trip.md": {Data: []byte("---\ntitle: Eiffel Walk\nmap_zoom: 16\n---\n$map(latitude=48.8584, longitude=2.2945)\n")},
	}, nil)

	page := renderFile(t, module, "trip.md")
	html := string(page.HTML)
	if !strings.Contains(html, `map.setView([48.8584, 2.2945], 16);`) {
		t.Fatalf("expected front matter zoom\n%s", html)
	}
	if !strings.Contains(html, `<title>Eiffel Walk</title>`) {
		t.Fatalf("expected front matter title\n%s", html)
	}
}

func TestRenderFileSynchronousErrorSchedulesNothing(t *testing.T) {
	up := newUpstream(t, `[]`, `[]`)
	module := newModule(t, up, fstest.MapFS{
		"broken.md": {Data: []byte("$map()\n")},
	}, nil)

	page := renderFile(t, module, "broken.md")
	if len(page.Outcomes) != 0 {
		t.Fatalf("expected no tasks, got %+v", page.Outcomes)
	}
	if !strings.Contains(string(page.HTML), `<div style="color: red;">Error: map directive needs an address or latitude and longitude</div>`) {
		t.Fatalf("expected inline error markup\n%s", page.HTML)
	}
}

func TestRenderMountsOnceMarkupIsLoaded(t *testing.T) {
	up := newUpstream(t, `[]`, `[]`)
	module := newModule(t, up, fstest.MapFS{}, nil)
	surface := htmldoc.New()
	ctx := context.Background()

	src := []byte("$map(latitude=1, longitude=2)\n\n$map(latitude=3, longitude=4)\n")
	rendered, err := module.Render(ctx, src, surface, mapdirective.RenderOptions{Document: "inline.md"})
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	defer rendered.Mounter.Close()

	if len(rendered.Tasks) != 2 || rendered.Tasks[0].ContainerID == rendered.Tasks[1].ContainerID {
		t.Fatalf("expected two tasks with distinct containers, got %+v", rendered.Tasks)
	}
	if len(surface.Scripts()) != 0 {
		t.Fatalf("expected nothing mounted before the markup is loaded")
	}

	if err := surface.Load(string(rendered.HTML)); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	outcomes, err := rendered.Mounter.Wait(waitCtx)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected two outcomes, got %+v", outcomes)
	}
	for _, task := range rendered.Tasks {
		if _, ok := rendered.Mounter.Viewport(task.ContainerID); !ok {
			t.Fatalf("expected viewport for %s", task.ContainerID)
		}
	}
}

func TestRenderRejectsNilSurface(t *testing.T) {
	up := newUpstream(t, `[]`, `[]`)
	module := newModule(t, up, fstest.MapFS{}, nil)
	if _, err := module.Render(context.Background(), []byte("$map(Kyoto)"), nil, mapdirective.RenderOptions{}); err == nil {
		t.Fatalf("expected error for nil surface")
	}
}

func TestRegisterCommandsRendersToOutput(t *testing.T) {
	up := newUpstream(t, `[]`, `[]`)
	module := newModule(t, up, fstest.MapFS{
		"paris.md": {Data: []byte("$map(latitude=48.8584, longitude=2.2945)\n")},
	}, func(cfg *mapdirective.Config) {
		cfg.Features.Commands = true
	})

	set, err := module.RegisterCommands(nil)
	if err != nil {
		t.Fatalf("RegisterCommands returned error: %v", err)
	}
	out := filepath.Join(t.TempDir(), "site", "paris.html")
	if err := set.Render.Execute(context.Background(), markdowncmd.RenderDocumentCommand{Path: "paris.md", Output: out}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), `map.setView([48.8584, 2.2945], 13);`) {
		t.Fatalf("expected mounted page in output\n%s", data)
	}
}

func TestRegisterCommandsRespectsFeatureGate(t *testing.T) {
	up := newUpstream(t, `[]`, `[]`)
	module := newModule(t, up, fstest.MapFS{}, nil)

	set, err := module.RegisterCommands(nil)
	if err != nil {
		t.Fatalf("RegisterCommands returned error: %v", err)
	}
	err = set.Render.Execute(context.Background(), markdowncmd.RenderDocumentCommand{Path: "paris.md"})
	if err == nil || !strings.Contains(err.Error(), "commands feature disabled") {
		t.Fatalf("expected commands feature error, got %v", err)
	}
}
