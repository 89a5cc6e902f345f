package geocode

import (
	"context"

	"github.com/goliatone/go-mapdirective/internal/validation"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

// NominatimName identifies the OpenStreetMap Nominatim provider.
const NominatimName = "nominatim"

// DefaultNominatimURL is the public Nominatim endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim queries {base}/search?q=<address>&format=json.
type Nominatim struct {
	baseURL string
	client  *Client
	schema  *validation.PayloadSchema
}

var _ interfaces.GeocodeProvider = (*Nominatim)(nil)

// NewNominatim builds the provider. An empty baseURL selects the public
// endpoint.
func NewNominatim(baseURL string, opts ...ProviderOption) (*Nominatim, error) {
	cfg, schema, err := resolveProviderConfig(NominatimName, opts)
	if err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &Nominatim{baseURL: baseURL, client: cfg.client, schema: schema}, nil
}

func (n *Nominatim) Name() string { return NominatimName }

// Lookup returns the candidates in the order Nominatim ranked them.
func (n *Nominatim) Lookup(ctx context.Context, address string) ([]interfaces.GeoPoint, error) {
	reqURL := joinBase(n.baseURL, "/search") + "?q=" + escapeQuery(address) + "&format=json"

	var places []nominatimPlace
	if err := n.client.GetJSON(ctx, NominatimName, reqURL, n.schema, &places); err != nil {
		return nil, err
	}

	points := make([]interfaces.GeoPoint, 0, len(places))
	for _, place := range places {
		points = append(points, interfaces.NewGeoPoint(place.Lat, place.Lon))
	}
	return points, nil
}
