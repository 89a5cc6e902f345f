package di

import (
	"io/fs"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-mapdirective/internal/adapters/memory"
	"github.com/goliatone/go-mapdirective/internal/adapters/noop"
	"github.com/goliatone/go-mapdirective/internal/geocode"
	"github.com/goliatone/go-mapdirective/internal/geomap"
	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/internal/logging/console"
	"github.com/goliatone/go-mapdirective/internal/logging/gologger"
	"github.com/goliatone/go-mapdirective/internal/markdown"
	"github.com/goliatone/go-mapdirective/internal/runtimeconfig"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// Container wires module dependencies from a validated Config.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	cache          interfaces.CacheProvider
	httpClient     *http.Client
	filesystem     fs.FS

	geocoder    interfaces.Geocoder
	transformer *geomap.Transformer
	markdownSvc *markdown.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithCache supplies the cache used for geocoding results when the cache
// feature is enabled.
func WithCache(cache interfaces.CacheProvider) Option {
	return func(c *Container) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithHTTPClient sets the client both geocoding providers use.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Container) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithGeocoder replaces the Nominatim/GSI resolver.
func WithGeocoder(geocoder interfaces.Geocoder) Option {
	return func(c *Container) {
		if geocoder != nil {
			c.geocoder = geocoder
		}
	}
}

// WithFilesystem serves Markdown documents from filesystem instead of
// Config.Markdown.BasePath.
func WithFilesystem(filesystem fs.FS) Option {
	return func(c *Container) {
		if filesystem != nil {
			c.filesystem = filesystem
		}
	}
}

// NewContainer validates cfg and builds the collaborators.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration")
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCache()
	if err := c.configureGeocoder(); err != nil {
		return nil, err
	}
	c.configureTransformer()
	if err := c.configureMarkdown(); err != nil {
		return nil, err
	}

	logging.ModuleLogger(c.loggerProvider, "geomap").Debug("geomap.container.configured",
		"cache", c.Config.Features.Cache,
		"commands", c.Config.Features.Commands,
		"preview", c.Config.Features.Preview,
		"directive", c.Config.Map.DirectiveName,
	)
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "configure go-logger")
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(c.Config.Logging.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) configureCache() {
	if !c.Config.Features.Cache {
		c.cache = noop.Cache()
		return
	}
	if c.cache == nil {
		c.cache = memory.NewCache()
	}
}

func (c *Container) configureGeocoder() error {
	if c.geocoder != nil {
		return nil
	}
	opts := []geocode.Option{
		geocode.WithLogger(logging.GeocodeLogger(c.loggerProvider)),
	}
	if c.Config.Features.Cache {
		opts = append(opts, geocode.WithCache(c.cache, c.Config.Geocoding.CacheTTL))
	}
	if c.httpClient != nil {
		opts = append(opts, geocode.WithProviderHTTPClient(c.httpClient))
	}
	resolver, err := geocode.NewFromConfig(c.Config.Geocoding, opts...)
	if err != nil {
		return err
	}
	c.geocoder = resolver
	return nil
}

func (c *Container) configureTransformer() {
	c.transformer = geomap.NewTransformer(
		geomap.WithDirectiveName(c.Config.Map.DirectiveName),
		geomap.WithContainerStyle(geomap.ContainerStyle{
			Height: c.Config.Map.Height,
			Width:  c.Config.Map.Width,
		}),
		geomap.WithTransformerLogger(logging.DirectiveLogger(c.loggerProvider)),
	)
}

func (c *Container) configureMarkdown() error {
	cfg := c.Config.Markdown
	opts := []markdown.ServiceOption{
		markdown.WithExtenders(geomap.NewExtension(c.transformer)),
		markdown.WithLogger(logging.MarkdownLogger(c.loggerProvider)),
	}
	if c.filesystem != nil {
		opts = append(opts, markdown.WithFilesystem(c.filesystem))
	}
	svc, err := markdown.NewService(markdown.Config{
		BasePath:  cfg.BasePath,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
		Parser:    c.ParseOptions(),
	}, opts...)
	if err != nil {
		return err
	}
	c.markdownSvc = svc
	return nil
}

// ParseOptions maps the Markdown config onto parser options.
func (c *Container) ParseOptions() interfaces.ParseOptions {
	return interfaces.ParseOptions{
		Extensions: append([]string(nil), c.Config.Markdown.Extensions...),
		HardWraps:  c.Config.Markdown.HardWraps,
		SafeMode:   c.Config.Markdown.SafeMode,
	}
}

// LoggerProvider returns the configured provider; nil means logging is off.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Cache returns the geocoding cache (a no-op cache when disabled).
func (c *Container) Cache() interfaces.CacheProvider {
	return c.cache
}

// Geocoder returns the address resolver.
func (c *Container) Geocoder() interfaces.Geocoder {
	return c.geocoder
}

// Transformer returns the directive rewriter.
func (c *Container) Transformer() *geomap.Transformer {
	return c.transformer
}

// Markdown returns the Markdown service with the map directive registered.
func (c *Container) Markdown() *markdown.Service {
	return c.markdownSvc
}

// View returns the presentation settings shared by every viewport.
func (c *Container) View() geomap.View {
	return geomap.ViewFromConfig(c.Config.Map)
}
