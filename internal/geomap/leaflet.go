package geomap

import (
	"bytes"
	"encoding/json"
	"text/template"

	"github.com/goliatone/go-mapdirective/internal/runtimeconfig"
)

// leafletIcon mirrors the option names of L.icon.
type leafletIcon struct {
	IconURL       string `json:"iconUrl,omitempty"`
	IconRetinaURL string `json:"iconRetinaUrl,omitempty"`
	ShadowURL     string `json:"shadowUrl,omitempty"`
	IconSize      [2]int `json:"iconSize"`
	IconAnchor    [2]int `json:"iconAnchor"`
	PopupAnchor   [2]int `json:"popupAnchor"`
	TooltipAnchor [2]int `json:"tooltipAnchor"`
	ShadowSize    [2]int `json:"shadowSize"`
}

func toLeafletIcon(cfg runtimeconfig.IconConfig) leafletIcon {
	return leafletIcon(cfg)
}

// The registry on window keeps one L.map per container so repeated passes
// only add markers. A cached map bound to a container that has since been
// replaced by a re-render is removed and rebuilt on the live element.
var mountScript = template.Must(template.New("mount").Funcs(template.FuncMap{
	"js": func(v any) (string, error) {
		encoded, err := json.Marshal(v)
		return string(encoded), err
	},
}).Parse(`(function () {
  var registry = window.__geomaps = window.__geomaps || {};
  var id = {{js .ContainerID}};
  var container = document.getElementById(id);
  var map = registry[id];
  if (map && map.getContainer() !== container) {
    map.remove();
    map = null;
  }
  if (!map) {
    map = L.map(container);
    L.tileLayer({{js .Tiles.URLTemplate}}, {attribution: {{js .Tiles.Attribution}}}).addTo(map);
    registry[id] = map;
  }
  map.setView([{{js .Marker.Position.Lat}}, {{js .Marker.Position.Lng}}], {{js .Zoom}});
  L.marker([{{js .Marker.Position.Lat}}, {{js .Marker.Position.Lng}}], {icon: L.icon({{js .Icon}})})
    .addTo(map)
    .bindPopup({{js .Marker.Popup}})
    .openPopup();
})();
`))

type scriptData struct {
	ContainerID string
	Tiles       TileLayer
	Zoom        int
	Marker      Marker
	Icon        leafletIcon
}

// MountScript renders the Leaflet program that realises one mounting pass
// for the viewport: create the map if the container has none, centre it on
// the marker and open the marker's popup.
func MountScript(viewport Viewport, marker Marker, icon runtimeconfig.IconConfig) (string, error) {
	var buf bytes.Buffer
	err := mountScript.Execute(&buf, scriptData{
		ContainerID: viewport.ContainerID,
		Tiles:       viewport.Tiles,
		Zoom:        viewport.Zoom,
		Marker:      marker,
		Icon:        toLeafletIcon(icon),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
