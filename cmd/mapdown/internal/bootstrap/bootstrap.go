package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	mapdirective "github.com/goliatone/go-mapdirective"
	"github.com/goliatone/go-mapdirective/internal/di"
	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/internal/page"
	"github.com/goliatone/go-mapdirective/internal/surface/browser"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// Options captures configuration for mapdown CLI bootstraps.
type Options struct {
	ContentDir     string
	Pattern        string
	Recursive      bool
	LogLevel       string
	LogProvider    string
	MountTimeout   time.Duration
	PreviewAddress string
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the map directive module and its Markdown service/logger.
type Module struct {
	Module  *mapdirective.Module
	Service interfaces.MarkdownService
	Logger  interfaces.Logger
}

// BuildModule constructs a module configured for rendering documents under
// ContentDir.
func BuildModule(opts Options) (*Module, error) {
	cfg := mapdirective.DefaultConfig()
	cfg.Features.Commands = true
	cfg.Markdown.BasePath = strings.TrimSpace(opts.ContentDir)
	if cfg.Markdown.BasePath == "" {
		cfg.Markdown.BasePath = "."
	}
	if trimmed := strings.TrimSpace(opts.Pattern); trimmed != "" {
		cfg.Markdown.Pattern = trimmed
	}
	cfg.Markdown.Recursive = opts.Recursive

	if level := strings.TrimSpace(opts.LogLevel); level != "" {
		cfg.Features.Logger = true
		cfg.Logging.Level = level
		if provider := strings.TrimSpace(opts.LogProvider); provider != "" {
			cfg.Logging.Provider = provider
		}
	}
	if opts.MountTimeout > 0 {
		cfg.Mount.Timeout = opts.MountTimeout
	}
	if addr := strings.TrimSpace(opts.PreviewAddress); addr != "" {
		cfg.Features.Preview = true
		cfg.Preview.Address = addr
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := mapdirective.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise map directive module: %w", err)
	}

	return &Module{
		Module:  module,
		Service: module.Markdown(),
		Logger:  logging.ModuleLogger(module.Container().LoggerProvider(), "geomap.cli"),
	}, nil
}

// RenderInBrowser renders filePath into a live browser page reached through
// cfg and returns the page markup once every map mounted or failed.
func RenderInBrowser(ctx context.Context, module *Module, filePath string, cfg browser.Config) ([]byte, error) {
	if cfg.Logger == nil {
		cfg.Logger = module.Logger
	}
	surface, err := browser.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer surface.Close()

	doc, err := module.Service.Load(ctx, filePath)
	if err != nil {
		return nil, err
	}
	preview := module.Module.Container().Config.Preview
	shell, err := page.NewDocument(page.Title(doc), page.Assets{
		LeafletCSS: preview.LeafletCSS,
		LeafletJS:  preview.LeafletJS,
	})
	if err != nil {
		return nil, err
	}

	rendered, err := module.Module.RenderDocument(ctx, doc, surface)
	if err != nil {
		return nil, err
	}
	defer rendered.Mounter.Close()

	if err := shell.Load(string(rendered.HTML)); err != nil {
		return nil, err
	}
	if err := surface.LoadHTML(ctx, shell.String()); err != nil {
		return nil, err
	}
	outcomes, err := rendered.Mounter.Wait(ctx)
	if err != nil {
		return nil, err
	}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			module.Logger.Warn("geomap.cli.map_failed", "container_id", outcome.ContainerID, "label", outcome.Label, "error", outcome.Err)
		}
	}

	markup, err := surface.HTML(ctx)
	if err != nil {
		return nil, err
	}
	return []byte("<!DOCTYPE html>\n" + markup), nil
}
