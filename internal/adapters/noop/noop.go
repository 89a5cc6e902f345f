package noop

import (
	"context"
	"time"

	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// Cache returns an interfaces.CacheProvider that stores nothing. Every Get
// reports a miss.
func Cache() interfaces.CacheProvider {
	return cacheAdapter{}
}

type cacheAdapter struct{}

func (cacheAdapter) Get(_ context.Context, key string) (any, error) {
	return nil, &MissError{Key: key}
}

func (cacheAdapter) Set(context.Context, string, any, time.Duration) error {
	return nil
}

func (cacheAdapter) Delete(context.Context, string) error {
	return nil
}

func (cacheAdapter) Clear(context.Context) error {
	return nil
}

// MissError is returned by caches that do not hold the requested key.
type MissError struct {
	Key string
}

func (e *MissError) Error() string {
	return "cache miss: " + e.Key
}

// Surface returns a display surface that holds no elements and ignores
// writes. Mount tasks scheduled against it never leave the polling phase.
func Surface() interfaces.Surface {
	return surfaceAdapter{}
}

type surfaceAdapter struct{}

func (surfaceAdapter) HasElement(context.Context, string) (bool, error) {
	return false, nil
}

func (surfaceAdapter) SetContent(context.Context, string, string) error {
	return nil
}

func (surfaceAdapter) Exec(context.Context, string, string) error {
	return nil
}
