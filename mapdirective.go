package mapdirective

import (
	"context"
	"path"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/yuin/goldmark/parser"

	markdowncmd "github.com/goliatone/go-mapdirective/internal/commands/markdown"
	"github.com/goliatone/go-mapdirective/internal/di"
	"github.com/goliatone/go-mapdirective/internal/geomap"
	"github.com/goliatone/go-mapdirective/internal/identity"
	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/internal/markdown"
	"github.com/goliatone/go-mapdirective/internal/page"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// MarkdownService exports the Markdown service used by the module.
type MarkdownService = *markdown.Service

// Mounter exports the deferred map mounter returned by renders.
type Mounter = *geomap.Mounter

// Outcome exports the terminal result of one map occurrence.
type Outcome = geomap.Outcome

// Task exports a scheduled map occurrence.
type Task = geomap.Task

// RenderedPage exports the result of RenderFile.
type RenderedPage = markdowncmd.RenderedPage

// Module represents the top level map directive runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Markdown returns the Markdown service with the map directive registered.
func (m *Module) Markdown() MarkdownService {
	return m.container.Markdown()
}

// Geocoder returns the address resolver.
func (m *Module) Geocoder() interfaces.Geocoder {
	return m.container.Geocoder()
}

// RenderOptions scope one render.
type RenderOptions struct {
	// Document names the source, seeding container ids and tagging logs.
	Document string
	// Zoom overrides the configured zoom when positive.
	Zoom  int
	Parse interfaces.ParseOptions
}

// Rendered is the HTML of one render and the mounter driving its maps.
type Rendered struct {
	HTML    []byte
	Tasks   []Task
	Mounter Mounter
}

// NewMounter returns a mounter over surface configured from the module
// settings. Every render owns its own mounter.
func (m *Module) NewMounter(ctx context.Context, surface interfaces.Surface, opts ...geomap.MounterOption) Mounter {
	cfg := m.container.Config
	base := []geomap.MounterOption{
		geomap.WithView(m.container.View()),
		geomap.WithPollInterval(cfg.Mount.PollInterval),
		geomap.WithTimeout(cfg.Mount.Timeout),
		geomap.WithWriteBack(cfg.Mount.WriteBack),
		geomap.WithMountLogger(logging.MountLogger(m.container.LoggerProvider())),
	}
	return geomap.NewMounter(ctx, surface, m.container.Geocoder(), append(base, opts...)...)
}

// Render converts src to HTML and starts one mount task per map directive
// against surface. The tasks poll until the markup is loaded into surface;
// callers close the returned mounter before rendering the document again.
func (m *Module) Render(ctx context.Context, src []byte, surface interfaces.Surface, opts RenderOptions) (*Rendered, error) {
	if surface == nil {
		return nil, goerrors.New("render: surface is nil", goerrors.CategoryBadInput)
	}
	mounter := m.NewMounter(ctx, surface)
	pc := m.parserContext(mounter, opts)

	html, err := m.container.Markdown().RenderWithContext(ctx, src, opts.Parse, pc)
	if err != nil {
		mounter.Close()
		return nil, err
	}
	return &Rendered{HTML: html, Tasks: geomap.TasksFrom(pc), Mounter: mounter}, nil
}

// RenderDocument renders a loaded document, taking the per document zoom
// from its front matter.
func (m *Module) RenderDocument(ctx context.Context, doc *interfaces.Document, surface interfaces.Surface) (*Rendered, error) {
	if doc == nil {
		return nil, goerrors.New("render: document is nil", goerrors.CategoryBadInput)
	}
	rendered, err := m.Render(ctx, doc.Body, surface, RenderOptions{
		Document: doc.FilePath,
		Zoom:     doc.FrontMatter.MapZoom,
	})
	if err != nil {
		return nil, err
	}
	doc.BodyHTML = rendered.HTML
	return rendered, nil
}

// RenderFile loads the Markdown file at filePath, renders it into a
// standalone page and waits for every map to mount or fail. The returned
// HTML carries the Leaflet scripts of the mounted maps.
func (m *Module) RenderFile(ctx context.Context, filePath string) (*RenderedPage, error) {
	doc, err := m.container.Markdown().Load(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return m.renderPage(ctx, doc)
}

// RenderSource is RenderFile for Markdown held in memory. name seeds the
// container ids and titles the page when the front matter has no title.
func (m *Module) RenderSource(ctx context.Context, name string, src []byte) (*RenderedPage, error) {
	doc, err := markdown.BuildDocument(name, src, time.Now())
	if err != nil {
		return nil, err
	}
	return m.renderPage(ctx, doc)
}

func (m *Module) renderPage(ctx context.Context, doc *interfaces.Document) (*RenderedPage, error) {
	cfg := m.container.Config.Preview
	surface, err := page.NewDocument(page.Title(doc), page.Assets{
		LeafletCSS: cfg.LeafletCSS,
		LeafletJS:  cfg.LeafletJS,
	})
	if err != nil {
		return nil, err
	}

	rendered, err := m.RenderDocument(ctx, doc, surface)
	if err != nil {
		return nil, err
	}
	defer rendered.Mounter.Close()

	if err := surface.Load(string(rendered.HTML)); err != nil {
		return nil, err
	}
	outcomes, err := rendered.Mounter.Wait(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "wait for maps in "+path.Base(doc.FilePath))
	}
	return &RenderedPage{HTML: []byte(surface.String()), Outcomes: outcomes}, nil
}

// RegisterCommands builds the command handlers backed by this module and
// registers them with reg when it is non nil.
func (m *Module) RegisterCommands(reg markdowncmd.CommandRegistry, opts ...markdowncmd.Option) (*markdowncmd.HandlerSet, error) {
	features := m.container.Config.Features
	return markdowncmd.RegisterCommands(
		reg,
		markdowncmd.PageRendererFunc(m.RenderFile),
		m.container.Geocoder(),
		m.container.LoggerProvider(),
		markdowncmd.FeatureGates{
			CommandsEnabled: func() bool { return features.Commands },
			CacheEnabled:    func() bool { return features.Cache },
		},
		opts...,
	)
}

func (m *Module) parserContext(mounter Mounter, opts RenderOptions) parser.Context {
	pc := parser.NewContext()
	geomap.WithScheduler(pc, mounter)
	geomap.WithContainerIDs(pc, identity.NewContainerIDs(identity.DocumentSeed(opts.Document)))
	if opts.Document != "" {
		geomap.WithDocument(pc, opts.Document)
	}
	if opts.Zoom > 0 {
		geomap.WithZoom(pc, opts.Zoom)
	}
	return pc
}
