package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// fakeUpstream serves both provider endpoints from one test server and
// counts the requests each received.
type fakeUpstream struct {
	server        *httptest.Server
	nominatimHits atomic.Int32
	gsiHits       atomic.Int32

	mu         sync.Mutex
	queries    []string
	userAgents []string
}

func newFakeUpstream(t *testing.T, nominatim, gsi http.HandlerFunc) *fakeUpstream {
	t.Helper()
	up := &fakeUpstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		up.nominatimHits.Add(1)
		up.record(r)
		nominatim(w, r)
	})
	mux.HandleFunc("/address-search/AddressSearch", func(w http.ResponseWriter, r *http.Request) {
		up.gsiHits.Add(1)
		up.record(r)
		gsi(w, r)
	})
	up.server = httptest.NewServer(mux)
	t.Cleanup(up.server.Close)
	return up
}

func (f *fakeUpstream) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, r.URL.RawQuery)
	f.userAgents = append(f.userAgents, r.Header.Get("User-Agent"))
}

func (f *fakeUpstream) resolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	client := NewClient(WithHTTPClient(f.server.Client()), WithUserAgent("geomap-test/1.0"))
	primary, err := NewNominatim(f.server.URL, WithClient(client))
	if err != nil {
		t.Fatalf("NewNominatim returned error: %v", err)
	}
	secondary, err := NewGSI(f.server.URL+"/", WithClient(client))
	if err != nil {
		t.Fatalf("NewGSI returned error: %v", err)
	}
	return NewResolver(primary, secondary, opts...)
}

func respondJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func respondStatus(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}
}

type stubProvider struct {
	name   string
	points []interfaces.GeoPoint
	err    error
	calls  atomic.Int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Lookup(context.Context, string) ([]interfaces.GeoPoint, error) {
	s.calls.Add(1)
	return s.points, s.err
}
