package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors returned by Handler.Execute.
const (
	TextCodeInvalidMessage = "GEOMAP_COMMAND_INVALID"
	TextCodeCanceled       = "GEOMAP_COMMAND_CANCELED"
	TextCodeTimeout        = "GEOMAP_COMMAND_TIMEOUT"
	TextCodeFailed         = "GEOMAP_COMMAND_FAILED"
)

// Errors already carrying a go-errors category (geocode misses, surface
// failures) pass through untouched so callers can still branch on them.
func tag(err error, category goerrors.Category, message, textCode string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(textCode)
}

func wrapValidationError(err error) error {
	return tag(err, goerrors.CategoryValidation, "invalid command message", TextCodeInvalidMessage)
}

func wrapContextError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return tag(err, goerrors.CategoryCommand, "command deadline exceeded", TextCodeTimeout)
	case errors.Is(err, context.Canceled):
		return tag(err, goerrors.CategoryCommand, "command cancelled", TextCodeCanceled)
	default:
		return tag(err, goerrors.CategoryCommand, "command failed", TextCodeFailed)
	}
}

func wrapExecuteError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return wrapContextError(err)
	}
	return tag(err, goerrors.CategoryCommand, "command failed", TextCodeFailed)
}
