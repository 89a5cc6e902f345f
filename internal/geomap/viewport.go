package geomap

import (
	"slices"

	"github.com/goliatone/go-mapdirective/internal/runtimeconfig"
)

// LatLng is a numeric position.
type LatLng struct {
	Lat float64
	Lng float64
}

// TileLayer is the raster source of a viewport.
type TileLayer struct {
	URLTemplate string
	Attribution string
}

// Marker is a pin with a popup.
type Marker struct {
	Position  LatLng
	Popup     string
	PopupOpen bool
}

// Viewport is the Go-side record of a Leaflet map living in a container. At
// most one exists per container id.
type Viewport struct {
	ContainerID string
	Tiles       TileLayer
	Center      LatLng
	Zoom        int
	Markers     []Marker
}

func (v Viewport) clone() Viewport {
	v.Markers = slices.Clone(v.Markers)
	return v
}

// View carries the presentation settings shared by every viewport.
type View struct {
	Zoom  int
	Tiles TileLayer
	Icon  runtimeconfig.IconConfig
}

// ViewFromConfig maps the map configuration onto a View.
func ViewFromConfig(cfg runtimeconfig.MapConfig) View {
	return View{
		Zoom: cfg.Zoom,
		Tiles: TileLayer{
			URLTemplate: cfg.TileURL,
			Attribution: cfg.Attribution,
		},
		Icon: cfg.Icon,
	}
}
