package mapdirective

import "github.com/goliatone/go-mapdirective/internal/runtimeconfig"

var (
	ErrDirectiveNameRequired     = runtimeconfig.ErrDirectiveNameRequired
	ErrMapZoomInvalid            = runtimeconfig.ErrMapZoomInvalid
	ErrMapDimensionRequired      = runtimeconfig.ErrMapDimensionRequired
	ErrTileURLRequired           = runtimeconfig.ErrTileURLRequired
	ErrPollIntervalInvalid       = runtimeconfig.ErrPollIntervalInvalid
	ErrMountTimeoutInvalid       = runtimeconfig.ErrMountTimeoutInvalid
	ErrGeocoderURLInvalid        = runtimeconfig.ErrGeocoderURLInvalid
	ErrGeocoderUserAgentRequired = runtimeconfig.ErrGeocoderUserAgentRequired
	ErrGeocoderRateLimitInvalid  = runtimeconfig.ErrGeocoderRateLimitInvalid
	ErrGeocoderTimeoutInvalid    = runtimeconfig.ErrGeocoderTimeoutInvalid
	ErrCacheFeatureRequired      = runtimeconfig.ErrCacheFeatureRequired
	ErrCacheTTLInvalid           = runtimeconfig.ErrCacheTTLInvalid
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
	ErrPreviewAddressRequired    = runtimeconfig.ErrPreviewAddressRequired
)

type (
	Config          = runtimeconfig.Config
	GeocodingConfig = runtimeconfig.GeocodingConfig
	MapConfig       = runtimeconfig.MapConfig
	IconConfig      = runtimeconfig.IconConfig
	MountConfig     = runtimeconfig.MountConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	PreviewConfig   = runtimeconfig.PreviewConfig
	Features        = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
