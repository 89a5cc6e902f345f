package interfaces

import (
	"context"
	"time"
)

// MarkdownParser converts Markdown bytes into HTML.
type MarkdownParser interface {
	Parse(markdown []byte) ([]byte, error)
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown rendering. Names stay readable so they can
// be mapped from configuration and CLI flags.
type ParseOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// LoadOptions narrows directory discovery.
type LoadOptions struct {
	// Pattern is a glob matched against file names, "*.md" when empty.
	Pattern string
	// Recursive overrides the service default when set.
	Recursive *bool
}

// Document is a Markdown file with its front matter split off.
type Document struct {
	FilePath     string
	FrontMatter  FrontMatter
	Body         []byte
	BodyHTML     []byte
	Checksum     []byte
	LastModified time.Time
}

// FrontMatter holds the metadata read from the head of a Markdown file.
type FrontMatter struct {
	Title   string         `yaml:"title" json:"title"`
	MapZoom int            `yaml:"map_zoom" json:"map_zoom"`
	Custom  map[string]any `yaml:",inline" json:"custom"`
}

// MarkdownService loads and renders Markdown documents.
type MarkdownService interface {
	Load(ctx context.Context, path string) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
}
