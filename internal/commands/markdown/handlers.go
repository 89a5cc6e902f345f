package markdowncmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-mapdirective/internal/commands"
	"github.com/goliatone/go-mapdirective/internal/geomap"
	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

const (
	renderOperation = "markdown.render_document"
	warmOperation   = "geocode.warm_cache"
)

var (
	// ErrCommandsFeatureDisabled is returned when command handlers are disabled at runtime.
	ErrCommandsFeatureDisabled = errors.New("markdown command: commands feature disabled")
	// ErrCacheFeatureDisabled is returned when warming is requested without a cache.
	ErrCacheFeatureDisabled = errors.New("markdown command: cache feature disabled")
)

var (
	_ command.Commander[RenderDocumentCommand]   = (*RenderDocumentHandler)(nil)
	_ command.Commander[WarmGeocodeCacheCommand] = (*WarmGeocodeCacheHandler)(nil)
)

// RenderedPage is what a PageRenderer produces for one document.
type RenderedPage struct {
	HTML     []byte
	Outcomes []geomap.Outcome
}

// PageRenderer renders the Markdown file at path into a complete page.
type PageRenderer interface {
	RenderFile(ctx context.Context, path string) (*RenderedPage, error)
}

// PageRendererFunc adapts a function to PageRenderer.
type PageRendererFunc func(ctx context.Context, path string) (*RenderedPage, error)

// RenderFile calls f.
func (f PageRendererFunc) RenderFile(ctx context.Context, path string) (*RenderedPage, error) {
	return f(ctx, path)
}

// RenderDocumentHandler renders a document and writes the page out.
type RenderDocumentHandler struct {
	inner *commands.Handler[RenderDocumentCommand]
}

// NewRenderDocumentHandler creates a handler bound to renderer. Pages without
// an output path go to sink; a nil sink discards them.
func NewRenderDocumentHandler(renderer PageRenderer, sink io.Writer, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[RenderDocumentCommand]) *RenderDocumentHandler {
	baseLogger := logging.Ensure(logger)
	if sink == nil {
		sink = io.Discard
	}

	exec := func(ctx context.Context, msg RenderDocumentCommand) error {
		if !gates.commandsEnabled() {
			return ErrCommandsFeatureDisabled
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := renderer.RenderFile(ctx, msg.Path)
		if err != nil {
			return err
		}
		if err := writePage(msg.Output, page.HTML, sink); err != nil {
			return err
		}

		mounted, failed := countOutcomes(page.Outcomes)
		logging.WithFields(baseLogger, map[string]any{
			"maps":    len(page.Outcomes),
			"mounted": mounted,
			"failed":  failed,
			"bytes":   len(page.HTML),
		}).Info("markdown.command.render_document.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[RenderDocumentCommand]{
		commands.WithLogger[RenderDocumentCommand](baseLogger),
		commands.WithOperation[RenderDocumentCommand](renderOperation),
		commands.WithMessageFields(func(msg RenderDocumentCommand) map[string]any {
			fields := map[string]any{"path": msg.Path}
			if msg.Output != "" {
				fields["output"] = msg.Output
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[RenderDocumentCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RenderDocumentHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[RenderDocumentCommand].
func (h *RenderDocumentHandler) Execute(ctx context.Context, msg RenderDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// WarmGeocodeCacheHandler resolves addresses through the caching resolver.
type WarmGeocodeCacheHandler struct {
	inner *commands.Handler[WarmGeocodeCacheCommand]
}

// NewWarmGeocodeCacheHandler creates a handler bound to geocoder. Misses are
// logged and skipped; provider failures abort the run.
func NewWarmGeocodeCacheHandler(geocoder interfaces.Geocoder, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[WarmGeocodeCacheCommand]) *WarmGeocodeCacheHandler {
	baseLogger := logging.Ensure(logger)

	exec := func(ctx context.Context, msg WarmGeocodeCacheCommand) error {
		if !gates.commandsEnabled() {
			return ErrCommandsFeatureDisabled
		}
		if !gates.cacheEnabled() {
			return ErrCacheFeatureDisabled
		}

		var resolved, missed int
		for _, address := range msg.Addresses {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := geocoder.Resolve(ctx, address)
			switch {
			case err == nil:
				resolved++
			case goerrors.IsCategory(err, goerrors.CategoryNotFound):
				missed++
				baseLogger.Debug("markdown.command.warm_cache.miss", "address", address)
			default:
				return err
			}
		}
		logging.WithFields(baseLogger, map[string]any{
			"resolved": resolved,
			"missed":   missed,
		}).Info("markdown.command.warm_cache.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[WarmGeocodeCacheCommand]{
		commands.WithLogger[WarmGeocodeCacheCommand](baseLogger),
		commands.WithOperation[WarmGeocodeCacheCommand](warmOperation),
		commands.WithMessageFields(func(msg WarmGeocodeCacheCommand) map[string]any {
			return map[string]any{"addresses": len(msg.Addresses)}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[WarmGeocodeCacheCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &WarmGeocodeCacheHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[WarmGeocodeCacheCommand].
func (h *WarmGeocodeCacheHandler) Execute(ctx context.Context, msg WarmGeocodeCacheCommand) error {
	return h.inner.Execute(ctx, msg)
}

func writePage(output string, html []byte, sink io.Writer) error {
	if output == "" {
		if _, err := sink.Write(html); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "write page")
		}
		return nil
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "create output directory").
				WithMetadata(map[string]any{"output": output})
		}
	}
	if err := os.WriteFile(output, html, 0o644); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "write page").
			WithMetadata(map[string]any{"output": output})
	}
	return nil
}

func countOutcomes(outcomes []geomap.Outcome) (mounted, failed int) {
	for _, outcome := range outcomes {
		switch outcome.State {
		case geomap.StateMounted:
			mounted++
		case geomap.StateFailed:
			failed++
		}
	}
	return mounted, failed
}
