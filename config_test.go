package mapdirective_test

import (
	"errors"
	"testing"

	mapdirective "github.com/goliatone/go-mapdirective"
)

func TestConfigValidateDefaults(t *testing.T) {
	if err := mapdirective.DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestConfigValidateCacheTTLRequiresCacheFeature(t *testing.T) {
	cfg := mapdirective.DefaultConfig()
	cfg.Geocoding.CacheTTL = 1

	if err := cfg.Validate(); !errors.Is(err, mapdirective.ErrCacheFeatureRequired) {
		t.Fatalf("expected ErrCacheFeatureRequired, got %v", err)
	}
}

func TestConfigValidateZoomRange(t *testing.T) {
	cfg := mapdirective.DefaultConfig()
	cfg.Map.Zoom = 23

	if err := cfg.Validate(); !errors.Is(err, mapdirective.ErrMapZoomInvalid) {
		t.Fatalf("expected ErrMapZoomInvalid, got %v", err)
	}
}

func TestConfigValidateLoggingProviderUnknown(t *testing.T) {
	cfg := mapdirective.DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, mapdirective.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidatePreviewAddressRequired(t *testing.T) {
	cfg := mapdirective.DefaultConfig()
	cfg.Features.Preview = true
	cfg.Preview.Address = " "

	if err := cfg.Validate(); !errors.Is(err, mapdirective.ErrPreviewAddressRequired) {
		t.Fatalf("expected ErrPreviewAddressRequired, got %v", err)
	}
}

func TestConfigValidateGeocoderURL(t *testing.T) {
	cfg := mapdirective.DefaultConfig()
	cfg.Geocoding.SecondaryURL = "ftp://msearch.gsi.go.jp"

	if err := cfg.Validate(); !errors.Is(err, mapdirective.ErrGeocoderURLInvalid) {
		t.Fatalf("expected ErrGeocoderURLInvalid, got %v", err)
	}
}
