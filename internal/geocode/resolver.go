package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-mapdirective/internal/logging"
	"github.com/goliatone/go-mapdirective/internal/runtimeconfig"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

const cacheKeyPrefix = "geocode:"

// Resolver turns a free-text address into a point by asking the primary
// provider first and the secondary only when the primary had no candidate.
// Provider errors are returned as-is and never trigger the fallback.
type Resolver struct {
	primary    interfaces.GeocodeProvider
	secondary  interfaces.GeocodeProvider
	logger     interfaces.Logger
	cache      interfaces.CacheProvider
	cacheTTL   time.Duration
	httpClient *http.Client
	group      singleflight.Group
}

var _ interfaces.Geocoder = (*Resolver)(nil)

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolution events.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithCache stores successful resolutions for ttl. A nil cache or a
// non-positive ttl leaves caching disabled.
func WithCache(cache interfaces.CacheProvider, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = cache
		r.cacheTTL = ttl
	}
}

// WithProviderHTTPClient sets the HTTP client used by providers built in
// NewFromConfig.
func WithProviderHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = client
	}
}

// NewResolver wires the two providers. secondary may be nil.
func NewResolver(primary, secondary interfaces.GeocodeProvider, opts ...Option) *Resolver {
	r := &Resolver{
		primary:   primary,
		secondary: secondary,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// NewFromConfig builds Nominatim and GSI providers, each with its own rate
// limiter, and returns a resolver over them.
func NewFromConfig(cfg runtimeconfig.GeocodingConfig, opts ...Option) (*Resolver, error) {
	r := NewResolver(nil, nil, opts...)

	providerOpts := func() []ProviderOption {
		client := NewClient(
			WithHTTPClient(r.httpClient),
			WithRateLimit(cfg.RateLimit, cfg.Burst),
			WithUserAgent(cfg.UserAgent),
			WithTimeout(cfg.Timeout),
		)
		return []ProviderOption{WithClient(client), WithPayloadValidation(cfg.ValidatePayloads)}
	}

	primary, err := NewNominatim(cfg.PrimaryURL, providerOpts()...)
	if err != nil {
		return nil, err
	}
	secondary, err := NewGSI(cfg.SecondaryURL, providerOpts()...)
	if err != nil {
		return nil, err
	}
	r.primary = primary
	r.secondary = secondary
	return r, nil
}

// Resolve returns the first candidate of the first provider that has one.
func (r *Resolver) Resolve(ctx context.Context, address string) (interfaces.GeoPoint, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(address) == "" {
		return interfaces.GeoPoint{}, addressRequiredError()
	}
	if r.cache == nil || r.cacheTTL <= 0 {
		return r.lookup(ctx, address)
	}

	key := cacheKeyPrefix + strings.TrimSpace(address)
	if cached, err := r.cache.Get(ctx, key); err == nil {
		if point, ok := cached.(interfaces.GeoPoint); ok {
			r.logger.Debug("geocode.resolve.cache_hit", "address", address)
			return point, nil
		}
	}

	value, err, _ := r.group.Do(key, func() (any, error) {
		point, err := r.lookup(ctx, address)
		if err != nil {
			return nil, err
		}
		if setErr := r.cache.Set(ctx, key, point, r.cacheTTL); setErr != nil {
			r.logger.Warn("geocode.resolve.cache_store_failed", "address", address, "error", setErr)
		}
		return point, nil
	})
	if err != nil {
		return interfaces.GeoPoint{}, err
	}
	return value.(interfaces.GeoPoint), nil
}

func (r *Resolver) lookup(ctx context.Context, address string) (interfaces.GeoPoint, error) {
	logger := logging.WithFields(r.logger, map[string]any{"address": address})

	if r.primary != nil {
		points, err := r.primary.Lookup(ctx, address)
		if err != nil {
			logger.Warn("geocode.resolve.provider_failed", "provider", r.primary.Name(), "error", err)
			return interfaces.GeoPoint{}, err
		}
		if len(points) > 0 {
			logger.Debug("geocode.resolve.hit", "provider", r.primary.Name(), "point", points[0])
			return points[0], nil
		}
	}

	if r.secondary != nil {
		logger.Debug("geocode.resolve.fallback", "provider", r.secondary.Name())
		points, err := r.secondary.Lookup(ctx, address)
		if err != nil {
			logger.Warn("geocode.resolve.provider_failed", "provider", r.secondary.Name(), "error", err)
			return interfaces.GeoPoint{}, err
		}
		if len(points) > 0 {
			logger.Debug("geocode.resolve.hit", "provider", r.secondary.Name(), "point", points[0])
			return points[0], nil
		}
	}

	logger.Info("geocode.resolve.not_found")
	return interfaces.GeoPoint{}, notFoundError(address)
}
