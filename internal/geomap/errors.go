package geomap

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeDirectiveInvalid = "MAP_DIRECTIVE_INVALID"
	TextCodeDirectivePanic   = "MAP_DIRECTIVE_PANIC"
	TextCodeMountTimeout     = "MAP_MOUNT_TIMEOUT"
	TextCodeMountCancelled   = "MAP_MOUNT_CANCELLED"
	TextCodeSurfaceFailed    = "MAP_SURFACE_FAILED"
	TextCodePointInvalid     = "MAP_POINT_INVALID"
)

// ErrMounterClosed is reported for tasks scheduled after Close.
var ErrMounterClosed = errors.New("geomap: mounter closed")

func waitError(err error, containerID string, parentErr error) error {
	meta := map[string]any{"container_id": containerID}
	if parentErr != nil || !errors.Is(err, context.DeadlineExceeded) {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "map mounting cancelled").
			WithTextCode(TextCodeMountCancelled).
			WithMetadata(meta)
	}
	return goerrors.Wrap(err, goerrors.CategoryOperation, "container "+containerID+" did not appear in time").
		WithTextCode(TextCodeMountTimeout).
		WithMetadata(meta)
}

func surfaceError(err error, containerID, action string) error {
	return goerrors.Wrap(err, goerrors.CategoryOperation, "surface "+action+" failed").
		WithTextCode(TextCodeSurfaceFailed).
		WithMetadata(map[string]any{"container_id": containerID})
}

// IsCancelled reports whether a task ended because its mounter was closed
// or its context was cancelled.
func IsCancelled(err error) bool {
	var structured *goerrors.Error
	return errors.As(err, &structured) && structured.TextCode == TextCodeMountCancelled
}

// IsTimeout reports whether a task gave up waiting for its container.
func IsTimeout(err error) bool {
	var structured *goerrors.Error
	return errors.As(err, &structured) && structured.TextCode == TextCodeMountTimeout
}
