package geocode

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeNotFound            = "GEOCODE_NOT_FOUND"
	TextCodeAddressRequired     = "GEOCODE_ADDRESS_REQUIRED"
	TextCodeProviderUnavailable = "GEOCODE_PROVIDER_UNAVAILABLE"
	TextCodeProviderStatus      = "GEOCODE_PROVIDER_STATUS"
	TextCodePayloadInvalid      = "GEOCODE_PAYLOAD_INVALID"
)

// ErrNotFound is the source of every error returned when neither provider
// yields a candidate.
var ErrNotFound = errors.New("geocode: no candidates")

func notFoundError(address string) error {
	return goerrors.Wrap(ErrNotFound, goerrors.CategoryNotFound, "Failed to get geo point "+address).
		WithTextCode(TextCodeNotFound).
		WithMetadata(map[string]any{"address": address})
}

func addressRequiredError() error {
	return goerrors.New("address is required", goerrors.CategoryBadInput).
		WithTextCode(TextCodeAddressRequired)
}

func providerError(err error, provider, textCode, message string, metadata map[string]any) error {
	meta := map[string]any{"provider": provider}
	for key, value := range metadata {
		meta[key] = value
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, strings.TrimSpace(provider+": "+message)).
		WithTextCode(textCode).
		WithMetadata(meta)
}

// IsNotFound reports whether err signals that no provider knew the address.
func IsNotFound(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryNotFound) || errors.Is(err, ErrNotFound)
}

// IsProviderFailure reports whether err came from a provider transport,
// status or payload failure.
func IsProviderFailure(err error) bool {
	return goerrors.IsCategory(err, goerrors.CategoryExternal)
}
