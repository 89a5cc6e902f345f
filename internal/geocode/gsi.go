package geocode

import (
	"context"
	"encoding/json"

	"github.com/goliatone/go-mapdirective/internal/validation"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// GSIName identifies the Geospatial Information Authority of Japan address
// search provider.
const GSIName = "gsi"

// DefaultGSIURL is the public GSI address search host.
const DefaultGSIURL = "https://msearch.gsi.go.jp"

type gsiFeature struct {
	Geometry struct {
		// GeoJSON order: longitude, latitude.
		Coordinates []json.Number `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Title string `json:"title"`
	} `json:"properties"`
}

// GSI queries {base}/address-search/AddressSearch?q=<address>.
type GSI struct {
	baseURL string
	client  *Client
	schema  *validation.PayloadSchema
}

var _ interfaces.GeocodeProvider = (*GSI)(nil)

// NewGSI builds the provider. An empty baseURL selects the public endpoint.
func NewGSI(baseURL string, opts ...ProviderOption) (*GSI, error) {
	cfg, schema, err := resolveProviderConfig(GSIName, opts)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = DefaultGSIURL
	}
	return &GSI{baseURL: baseURL, client: cfg.client, schema: schema}, nil
}

func (g *GSI) Name() string { return GSIName }

// Lookup returns candidates as (coordinates[1], coordinates[0]). Features
// with fewer than two coordinates are skipped.
func (g *GSI) Lookup(ctx context.Context, address string) ([]interfaces.GeoPoint, error) {
	reqURL := joinBase(g.baseURL, "/address-search/AddressSearch") + "?q=" + escapeQuery(address)

	var features []gsiFeature
	if err := g.client.GetJSON(ctx, GSIName, reqURL, g.schema, &features); err != nil {
		return nil, err
	}

	points := make([]interfaces.GeoPoint, 0, len(features))
	for _, feature := range features {
		coords := feature.Geometry.Coordinates
		if len(coords) < 2 {
			continue
		}
		points = append(points, interfaces.NewGeoPoint(coords[1].String(), coords[0].String()))
	}
	return points, nil
}
