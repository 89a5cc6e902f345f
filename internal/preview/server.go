package preview

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goerrors "github.com/goliatone/go-errors"

	markdowncmd "github.com/goliatone/go-mapdirective/internal/commands/markdown"
	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/internal/page"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

const (
	defaultMaxBody         = 1 << 20
	defaultShutdownTimeout = 5 * time.Second
)

// Renderer produces mounted pages from files or in-memory Markdown.
type Renderer interface {
	markdowncmd.PageRenderer
	RenderSource(ctx context.Context, name string, src []byte) (*markdowncmd.RenderedPage, error)
}

// Library lists the documents shown on the index.
type Library interface {
	LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error)
}

// Server is the preview HTTP API.
type Server struct {
	renderer Renderer
	library  Library
	geocoder interfaces.Geocoder
	logger   interfaces.Logger
	maxBody  int64
}

// Option mutates the Server configuration.
type Option func(*Server)

// WithLibrary enables the document index.
func WithLibrary(library Library) Option {
	return func(s *Server) {
		if library != nil {
			s.library = library
		}
	}
}

// WithGeocoder enables the geocode endpoint.
func WithGeocoder(geocoder interfaces.Geocoder) Option {
	return func(s *Server) {
		if geocoder != nil {
			s.geocoder = geocoder
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxBody caps the size of POST /api/render bodies.
func WithMaxBody(limit int64) Option {
	return func(s *Server) {
		if limit > 0 {
			s.maxBody = limit
		}
	}
}

// NewServer constructs a Server around renderer.
func NewServer(renderer Renderer, opts ...Option) (*Server, error) {
	if renderer == nil {
		return nil, errors.New("preview: renderer is nil")
	}
	s := &Server{
		renderer: renderer,
		logger:   logging.NoOp(),
		maxBody:  defaultMaxBody,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Routes returns the chi router serving every endpoint.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleIndex)
	r.Get("/docs/*", s.handleDocument)
	r.Route("/api", func(r chi.Router) {
		r.Get("/geocode", s.handleGeocode)
		r.Post("/render", s.handleRender)
	})
	return r
}

// ListenAndServe serves Routes on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("geomap.preview.listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info("geomap.preview.stopped", "addr", addr)
		return nil
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("geomap.preview.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"elapsed", time.Since(started),
		)
	})
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Documents</title>
</head>
<body>
<ul>
{{- range .}}
<li><a href="/docs/{{.Path}}">{{.Title}}</a></li>
{{- end}}
</ul>
</body>
</html>
`))

type indexEntry struct {
	Path  string
	Title string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.library == nil {
		writeError(w, r, goerrors.New("document index is not configured", goerrors.CategoryNotFound))
		return
	}
	docs, err := s.library.LoadDirectory(r.Context(), "", interfaces.LoadOptions{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries := make([]indexEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, indexEntry{Path: doc.FilePath, Title: page.Title(doc)})
	}
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, entries); err != nil {
		writeError(w, r, goerrors.Wrap(err, goerrors.CategoryInternal, "render index"))
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "*"))
	if name == "" {
		writeError(w, r, goerrors.New("document path is required", goerrors.CategoryBadInput))
		return
	}
	rendered, err := s.renderer.RenderFile(r.Context(), path.Clean(name))
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.logOutcomes(name, rendered)
	writeHTML(w, http.StatusOK, rendered.HTML)
}

type geocodeResponse struct {
	Address   string `json:"address"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	if s.geocoder == nil {
		writeError(w, r, goerrors.New("geocoding is not configured", goerrors.CategoryNotFound))
		return
	}
	address := strings.TrimSpace(r.URL.Query().Get("q"))
	if address == "" {
		writeError(w, r, goerrors.New("query parameter q is required", goerrors.CategoryBadInput).
			WithTextCode("ADDRESS_REQUIRED"))
		return
	}
	point, err := s.geocoder.Resolve(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, geocodeResponse{
		Address:   address,
		Latitude:  point.Latitude,
		Longitude: point.Longitude,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		writeError(w, r, goerrors.Wrap(err, goerrors.CategoryBadInput, "read request body"))
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeError(w, r, goerrors.New("markdown body is required", goerrors.CategoryBadInput))
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "preview.md"
	}
	rendered, err := s.renderer.RenderSource(r.Context(), name, body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.logOutcomes(name, rendered)
	writeHTML(w, http.StatusOK, rendered.HTML)
}

func (s *Server) logOutcomes(name string, rendered *markdowncmd.RenderedPage) {
	failed := 0
	for _, outcome := range rendered.Outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	s.logger.Debug("geomap.preview.rendered", "document", name, "maps", len(rendered.Outcomes), "failed", failed)
}
