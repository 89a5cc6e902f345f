package interfaces

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// GeoPoint is a latitude/longitude pair kept in the textual form a geocoding
// provider returned it in. Values are never mutated after construction.
type GeoPoint struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// NewGeoPoint trims both components and returns the pair.
func NewGeoPoint(latitude, longitude string) GeoPoint {
	return GeoPoint{
		Latitude:  strings.TrimSpace(latitude),
		Longitude: strings.TrimSpace(longitude),
	}
}

// IsZero reports whether neither component is set.
func (p GeoPoint) IsZero() bool {
	return p.Latitude == "" && p.Longitude == ""
}

// Float parses both components.
func (p GeoPoint) Float() (lat float64, lon float64, err error) {
	lat, err = strconv.ParseFloat(p.Latitude, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geo point: latitude %q: %w", p.Latitude, err)
	}
	lon, err = strconv.ParseFloat(p.Longitude, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("geo point: longitude %q: %w", p.Longitude, err)
	}
	return lat, lon, nil
}

func (p GeoPoint) String() string {
	return p.Latitude + "," + p.Longitude
}

// Geocoder resolves a free-text address into a single point.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (GeoPoint, error)
}

// GeocodeProvider is a single upstream lookup service. Lookup returns every
// candidate in provider order; an empty slice means no match.
type GeocodeProvider interface {
	Name() string
	Lookup(ctx context.Context, address string) ([]GeoPoint, error)
}
