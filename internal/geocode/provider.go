package geocode

import (
	"net/url"
	"strings"

	"github.com/goliatone/go-mapdirective/internal/validation"
)

// ProviderOption configures the HTTP backed providers.
type ProviderOption func(*providerConfig)

type providerConfig struct {
	client   *Client
	validate bool
}

// WithClient sets the HTTP client used by the provider.
func WithClient(client *Client) ProviderOption {
	return func(cfg *providerConfig) {
		if client != nil {
			cfg.client = client
		}
	}
}

// WithPayloadValidation toggles JSON schema checks of response bodies.
func WithPayloadValidation(enabled bool) ProviderOption {
	return func(cfg *providerConfig) {
		cfg.validate = enabled
	}
}

func resolveProviderConfig(name string, opts []ProviderOption) (providerConfig, *validation.PayloadSchema, error) {
	cfg := providerConfig{validate: true}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.client == nil {
		cfg.client = NewClient()
	}
	if !cfg.validate {
		return cfg, nil, nil
	}
	schema, err := payloadSchema(name)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, schema, nil
}

// escapeQuery percent-encodes a query component the way browsers'
// encodeURIComponent does, with spaces as %20.
func escapeQuery(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

func joinBase(base, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + path
}
