package geocode

import (
	"embed"
	"sync"

	"github.com/goliatone/go-mapdirective/internal/validation"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemaSet  map[string]*validation.PayloadSchema
	schemaErr  error
)

// payloadSchema returns the compiled response schema for a provider.
func payloadSchema(provider string) (*validation.PayloadSchema, error) {
	schemaOnce.Do(func() {
		schemaSet = map[string]*validation.PayloadSchema{}
		for _, name := range []string{NominatimName, GSIName} {
			raw, err := schemaFS.ReadFile("schemas/" + name + ".json")
			if err != nil {
				schemaErr = err
				return
			}
			compiled, err := validation.CompilePayloadSchema(name, raw)
			if err != nil {
				schemaErr = err
				return
			}
			schemaSet[name] = compiled
		}
	})
	if schemaErr != nil {
		return nil, schemaErr
	}
	return schemaSet[provider], nil
}
