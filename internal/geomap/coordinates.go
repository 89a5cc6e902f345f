package geomap

import (
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-mapdirective/internal/directive"
	"github.com/goliatone/go-mapdirective/pkg/interfaces"
)

const (
	latitudeKey  = "latitude"
	longitudeKey = "longitude"
)

type coordinates struct {
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

func (c coordinates) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Latitude, validation.Required, is.Float, validation.By(within(-90, 90))),
		validation.Field(&c.Longitude, validation.Required, is.Float, validation.By(within(-180, 180))),
	)
}

func within(lower, upper float64) validation.RuleFunc {
	return func(value any) error {
		raw, _ := value.(string)
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		if parsed < lower || parsed > upper {
			return validation.NewError("validation_out_of_range",
				"must be between "+strconv.FormatFloat(lower, 'f', -1, 64)+" and "+strconv.FormatFloat(upper, 'f', -1, 64))
		}
		return nil
	}
}

// target is what a map directive asks for: a label and, optionally,
// explicit coordinates.
type target struct {
	Label string
	Point *interfaces.GeoPoint
}

// readTarget interprets directive attributes. Explicit coordinates are used
// when both latitude and longitude are present; the first attribute key is
// always the label.
func readTarget(attrs directive.Attributes) (target, error) {
	first, ok := attrs.First()
	if !ok {
		return target{}, goerrors.New("map directive needs an address or latitude and longitude", goerrors.CategoryValidation).
			WithTextCode(TextCodeDirectiveInvalid)
	}
	result := target{Label: first.Key}

	lat, hasLat := attrs.Get(latitudeKey)
	lon, hasLon := attrs.Get(longitudeKey)
	if !hasLat || !hasLon {
		return result, nil
	}

	coords := coordinates{Latitude: strings.TrimSpace(lat), Longitude: strings.TrimSpace(lon)}
	if err := coords.Validate(); err != nil {
		return target{}, goerrors.FromOzzoValidation(err, "invalid map coordinates").
			WithTextCode(TextCodeDirectiveInvalid)
	}
	point := interfaces.NewGeoPoint(coords.Latitude, coords.Longitude)
	result.Point = &point
	return result, nil
}
