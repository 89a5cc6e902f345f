package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

const (
	rootModule      = "geomap"
	geocodeModule   = "geomap.geocode"
	directiveModule = "geomap.directive"
	mountModule     = "geomap.mount"
	markdownModule  = "geomap.markdown"
	previewModule   = "geomap.preview"
)

const (
	fieldContainerID = "container_id"
	fieldAddress     = "address"
	fieldDocument    = "document"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module name is attached
// as a structured field so entries can be filtered per component.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// GeocodeLogger returns the logger namespace used by geocoding providers.
func GeocodeLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, geocodeModule)
}

// DirectiveLogger returns the logger namespace used by the directive rewriter.
func DirectiveLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, directiveModule)
}

// MountLogger returns the logger namespace used by deferred map mounting.
func MountLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mountModule)
}

// MarkdownLogger returns the logger namespace used by the markdown service.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// PreviewLogger returns the logger namespace used by the preview server.
func PreviewLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, previewModule)
}

// WithMapContext enriches the logger with the container identifier, address
// label and document path of a map occurrence. Empty values are skipped.
func WithMapContext(logger interfaces.Logger, containerID, address, document string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(containerID); trimmed != "" {
		fields[fieldContainerID] = trimmed
	}
	if trimmed := strings.TrimSpace(address); trimmed != "" {
		fields[fieldAddress] = trimmed
	}
	if trimmed := strings.TrimSpace(document); trimmed != "" {
		fields[fieldDocument] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
