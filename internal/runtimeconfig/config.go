package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrDirectiveNameRequired = errors.New("geomap config: directive name is required")
var ErrMapZoomInvalid = errors.New("geomap config: map zoom must be between 0 and 22")
var ErrMapDimensionRequired = errors.New("geomap config: map height and width are required")
var ErrTileURLRequired = errors.New("geomap config: tile url template is required")

// ErrPollIntervalInvalid guards against busy polling loops.
var ErrPollIntervalInvalid = errors.New("geomap config: mount poll interval must be positive")
var ErrMountTimeoutInvalid = errors.New("geomap config: mount timeout must be zero or positive")

var ErrGeocoderURLInvalid = errors.New("geomap config: geocoder base url is invalid")
var ErrGeocoderUserAgentRequired = errors.New("geomap config: geocoder user agent is required")
var ErrGeocoderRateLimitInvalid = errors.New("geomap config: geocoder rate limit must be zero or positive")
var ErrGeocoderTimeoutInvalid = errors.New("geomap config: geocoder timeout must be zero or positive")

// ErrCacheFeatureRequired keeps the geocode cache behind its feature flag.
var ErrCacheFeatureRequired = errors.New("geomap config: cache feature must be enabled to configure a geocode cache ttl")
var ErrCacheTTLInvalid = errors.New("geomap config: geocode cache ttl must be zero or positive")

var ErrLoggingProviderRequired = errors.New("geomap config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("geomap config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("geomap config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("geomap config: logging format is invalid")

var ErrPreviewAddressRequired = errors.New("geomap config: preview address is required when preview feature is enabled")

// Config aggregates the knobs of the map directive pipeline: how locations
// are geocoded, how the placeholder and the Leaflet viewport look, how long
// deferred mounting may wait and how logging is wired.
type Config struct {
	Geocoding GeocodingConfig
	Map       MapConfig
	Mount     MountConfig
	Markdown  MarkdownConfig
	Logging   LoggingConfig
	Preview   PreviewConfig
	Features  Features
}

// GeocodingConfig captures the primary/secondary provider endpoints and the
// HTTP client behaviour shared by both.
type GeocodingConfig struct {
	PrimaryURL   string
	SecondaryURL string
	UserAgent    string
	Timeout      time.Duration
	// RateLimit is expressed in requests per second per provider; zero
	// disables limiting.
	RateLimit        float64
	Burst            int
	ValidatePayloads bool
	CacheTTL         time.Duration
}

// MapConfig describes the placeholder container and the Leaflet viewport.
type MapConfig struct {
	DirectiveName string
	Height        string
	Width         string
	Zoom          int
	TileURL       string
	Attribution   string
	Icon          IconConfig
}

// IconConfig mirrors Leaflet's L.icon options for the default marker.
type IconConfig struct {
	IconURL       string
	IconRetinaURL string
	ShadowURL     string
	IconSize      [2]int
	IconAnchor    [2]int
	PopupAnchor   [2]int
	TooltipAnchor [2]int
	ShadowSize    [2]int
}

// MountConfig controls the deferred mounting tasks.
type MountConfig struct {
	PollInterval time.Duration
	// Timeout bounds how long a task waits for its container; zero waits
	// until the mounter is closed.
	Timeout time.Duration
	// WriteBack renders resolving and mounting failures into the container.
	// When false those failures are only logged and reported as outcomes.
	WriteBack bool
}

// MarkdownConfig locates documents and mirrors interfaces.ParseOptions.
type MarkdownConfig struct {
	BasePath   string
	Pattern    string
	Recursive  bool
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// PreviewConfig configures the HTTP preview server.
type PreviewConfig struct {
	Address    string
	LeafletCSS string
	LeafletJS  string
}

// Features toggles optional functionality.
type Features struct {
	Cache    bool
	Logger   bool
	Commands bool
	Preview  bool
}

const leafletDist = "https://unpkg.com/leaflet@1.9.4/dist/"

// DefaultConfig returns defaults matching the behaviour of the GROWI map
// plugin: Nominatim then GSI, 400px tall full width containers, zoom 13,
// OpenStreetMap tiles and a one second polling cadence.
func DefaultConfig() Config {
	return Config{
		Geocoding: GeocodingConfig{
			PrimaryURL:       "https://nominatim.openstreetmap.org",
			SecondaryURL:     "https://msearch.gsi.go.jp",
			UserAgent:        "go-mapdirective/1.0",
			RateLimit:        1,
			Burst:            1,
			ValidatePayloads: true,
		},
		Map: MapConfig{
			DirectiveName: "map",
			Height:        "400px",
			Width:         "100%",
			Zoom:          13,
			TileURL:       "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution:   `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a>`,
			Icon: IconConfig{
				IconURL:       leafletDist + "images/marker-icon.png",
				IconRetinaURL: leafletDist + "images/marker-icon-2x.png",
				ShadowURL:     leafletDist + "images/marker-shadow.png",
				IconSize:      [2]int{25, 41},
				IconAnchor:    [2]int{12, 41},
				PopupAnchor:   [2]int{1, -34},
				TooltipAnchor: [2]int{16, -28},
				ShadowSize:    [2]int{41, 41},
			},
		},
		Mount: MountConfig{
			PollInterval: time.Second,
			Timeout:      30 * time.Second,
			WriteBack:    true,
		},
		Markdown: MarkdownConfig{
			BasePath:   ".",
			Pattern:    "*.md",
			Extensions: []string{"gfm"},
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Preview: PreviewConfig{
			Address:    "127.0.0.1:8089",
			LeafletCSS: leafletDist + "leaflet.css",
			LeafletJS:  leafletDist + "leaflet.js",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Map.DirectiveName) == "" {
		return ErrDirectiveNameRequired
	}
	if cfg.Map.Zoom < 0 || cfg.Map.Zoom > 22 {
		return fmt.Errorf("%w: %d", ErrMapZoomInvalid, cfg.Map.Zoom)
	}
	if strings.TrimSpace(cfg.Map.Height) == "" || strings.TrimSpace(cfg.Map.Width) == "" {
		return ErrMapDimensionRequired
	}
	if strings.TrimSpace(cfg.Map.TileURL) == "" {
		return ErrTileURLRequired
	}
	if cfg.Mount.PollInterval <= 0 {
		return ErrPollIntervalInvalid
	}
	if cfg.Mount.Timeout < 0 {
		return ErrMountTimeoutInvalid
	}
	if err := validateBaseURL(cfg.Geocoding.PrimaryURL); err != nil {
		return fmt.Errorf("%w: primary: %v", ErrGeocoderURLInvalid, err)
	}
	if err := validateBaseURL(cfg.Geocoding.SecondaryURL); err != nil {
		return fmt.Errorf("%w: secondary: %v", ErrGeocoderURLInvalid, err)
	}
	if strings.TrimSpace(cfg.Geocoding.UserAgent) == "" {
		return ErrGeocoderUserAgentRequired
	}
	if cfg.Geocoding.RateLimit < 0 {
		return ErrGeocoderRateLimitInvalid
	}
	if cfg.Geocoding.Timeout < 0 {
		return ErrGeocoderTimeoutInvalid
	}
	if cfg.Geocoding.CacheTTL < 0 {
		return ErrCacheTTLInvalid
	}
	if cfg.Geocoding.CacheTTL > 0 && !cfg.Features.Cache {
		return ErrCacheFeatureRequired
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	if cfg.Features.Preview && strings.TrimSpace(cfg.Preview.Address) == "" {
		return ErrPreviewAddressRequired
	}
	return nil
}

func validateBaseURL(raw string) error {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
