package markdowncmd

import (
	"context"
	"errors"
	"io"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-mapdirective/internal/commands"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// HandlerSet groups the handlers produced by RegisterCommands.
type HandlerSet struct {
	Render *RenderDocumentHandler
	Warm   *WarmGeocodeCacheHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	sink              io.Writer
	renderHandlerOpts []commands.HandlerOption[RenderDocumentCommand]
	warmHandlerOpts   []commands.HandlerOption[WarmGeocodeCacheCommand]
}

// WithSink sets where pages without an output path are written.
func WithSink(sink io.Writer) Option {
	return func(cfg *options) {
		cfg.sink = sink
	}
}

// WithRenderHandlerOptions forwards options to the RenderDocumentHandler constructor.
func WithRenderHandlerOptions(opts ...commands.HandlerOption[RenderDocumentCommand]) Option {
	return func(cfg *options) {
		cfg.renderHandlerOpts = append(cfg.renderHandlerOpts, opts...)
	}
}

// WithWarmHandlerOptions forwards options to the WarmGeocodeCacheHandler constructor.
func WithWarmHandlerOptions(opts ...commands.HandlerOption[WarmGeocodeCacheCommand]) Option {
	return func(cfg *options) {
		cfg.warmHandlerOpts = append(cfg.warmHandlerOpts, opts...)
	}
}

// RegisterCommands builds the handlers and registers them with reg when it is
// non nil.
func RegisterCommands(reg CommandRegistry, renderer PageRenderer, geocoder interfaces.Geocoder, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	if renderer == nil {
		return nil, errors.New("markdown command registration: renderer is nil")
	}
	if geocoder == nil {
		return nil, errors.New("markdown command registration: geocoder is nil")
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "markdown")

	renderHandler := NewRenderDocumentHandler(renderer, cfg.sink, logger, gates, cfg.renderHandlerOpts...)
	warmHandler := NewWarmGeocodeCacheHandler(geocoder, logger, gates, cfg.warmHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(renderHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(warmHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Render: renderHandler,
		Warm:   warmHandler,
	}, nil
}

// RegisterWarmCron wires the warm handler into a cron registrar. The handler
// runs with a background context.
func RegisterWarmCron(reg CronRegistrar, handler *WarmGeocodeCacheHandler, cfg command.HandlerConfig, msg WarmGeocodeCacheCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
