package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	renderDocumentMessageType = "geomap.markdown.render_document"
	warmGeocodeMessageType    = "geomap.geocode.warm_cache"
)

// RenderDocumentCommand renders a Markdown file to a standalone HTML page with
// its maps mounted.
type RenderDocumentCommand struct {
	// Path selects the Markdown file, relative to the service base path.
	Path string `json:"path"`
	// Output is the file the page is written to. Empty writes to the handler sink.
	Output string `json:"output,omitempty"`
}

// Type implements command.Message.
func (RenderDocumentCommand) Type() string { return renderDocumentMessageType }

// Validate ensures a path is present and output differs from input.
func (cmd RenderDocumentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(notBlank("path"))),
		validation.Field(&cmd.Output, validation.By(func(value any) error {
			output, _ := value.(string)
			if output != "" && strings.TrimSpace(output) == strings.TrimSpace(cmd.Path) {
				return validation.NewError("geomap.markdown.render_document.output_overwrites_input", "output must differ from path")
			}
			return nil
		})),
	)
}

// WarmGeocodeCacheCommand resolves every address once so later renders hit
// the geocoding cache.
type WarmGeocodeCacheCommand struct {
	Addresses []string `json:"addresses"`
}

// Type implements command.Message.
func (WarmGeocodeCacheCommand) Type() string { return warmGeocodeMessageType }

// Validate requires at least one non blank address.
func (cmd WarmGeocodeCacheCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Addresses, validation.Required, validation.Each(validation.By(notBlank("address")))),
	)
}

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		text, _ := value.(string)
		if strings.TrimSpace(text) == "" {
			return validation.NewError("geomap.markdown."+field+"_required", field+" is required")
		}
		return nil
	}
}
