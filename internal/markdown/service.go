package markdown

import (
	"context"
	"io/fs"
	"os"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"

	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// Config controls how the Markdown service discovers and parses files.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	Parser    interfaces.ParseOptions
}

// Service implements interfaces.MarkdownService for filesystem-backed documents.
type Service struct {
	cfg    Config
	parser *GoldmarkParser
	loader *Loader
	logger interfaces.Logger
}

var _ interfaces.MarkdownService = (*Service)(nil)

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	filesystem fs.FS
	extenders  []goldmark.Extender
	logger     interfaces.Logger
}

// WithFilesystem reads documents from filesystem instead of BasePath on disk.
func WithFilesystem(filesystem fs.FS) ServiceOption {
	return func(o *serviceOptions) {
		o.filesystem = filesystem
	}
}

// WithExtenders registers goldmark extenders on every render.
func WithExtenders(extenders ...goldmark.Extender) ServiceOption {
	return func(o *serviceOptions) {
		o.extenders = append(o.extenders, extenders...)
	}
}

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService constructs a Markdown service rooted at cfg.BasePath.
func NewService(cfg Config, opts ...ServiceOption) (*Service, error) {
	options := serviceOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	filesystem := options.filesystem
	if filesystem == nil {
		var err error
		filesystem, err = prepareFilesystem(cfg.BasePath)
		if err != nil {
			return nil, err
		}
	}

	return &Service{
		cfg:    cfg,
		parser: NewGoldmarkParser(cfg.Parser, options.extenders...),
		loader: NewLoader(filesystem, LoaderConfig{
			BasePath:  cfg.BasePath,
			Pattern:   cfg.Pattern,
			Recursive: cfg.Recursive,
		}),
		logger: logging.Ensure(options.logger),
	}, nil
}

// Load reads a single Markdown document relative to the configured base path.
func (s *Service) Load(ctx context.Context, path string) (*interfaces.Document, error) {
	doc, err := s.loader.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("geomap.markdown.loaded", "path", doc.FilePath, "bytes", len(doc.Body))
	return doc, nil
}

// LoadDirectory reads every Markdown document within dir.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	docs, err := s.loader.LoadDirectory(ctx, dir, opts)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("geomap.markdown.directory_loaded", "dir", dir, "documents", len(docs))
	return docs, nil
}

// Render parses Markdown bytes into HTML.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	return s.RenderWithContext(ctx, markdown, opts, nil)
}

// RenderWithContext renders with a caller owned parser context, which is how
// per document collaborators reach the AST transformers.
func (s *Service) RenderWithContext(ctx context.Context, markdown []byte, opts interfaces.ParseOptions, pc parser.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.parser.ParseWithContext(markdown, mergeParseOptions(s.cfg.Parser, opts), pc)
}

// RenderDocument converts the document body into HTML and stores it on doc.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	return s.RenderDocumentWithContext(ctx, doc, opts, nil)
}

// RenderDocumentWithContext is RenderDocument with a caller owned parser context.
func (s *Service) RenderDocumentWithContext(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions, pc parser.Context) ([]byte, error) {
	if doc == nil {
		return nil, goerrors.New("markdown service: document is nil", goerrors.CategoryBadInput)
	}
	html, err := s.RenderWithContext(ctx, doc.Body, opts, pc)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "render document "+doc.FilePath)
	}
	doc.BodyHTML = html
	return html, nil
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	return result
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "markdown service: stat base path").
			WithMetadata(map[string]any{"path": basePath})
	}
	return os.DirFS(basePath), nil
}
