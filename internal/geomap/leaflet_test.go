package geomap

import (
	"strings"
	"testing"

	"github.com/goliatone/go-mapdirective/internal/runtimeconfig"
)

func TestMountScriptEscapesPopupAndCarriesIcon(t *testing.T) {
	view := ViewFromConfig(runtimeconfig.DefaultConfig().Map)
	viewport := Viewport{ContainerID: "map-0001", Tiles: view.Tiles, Zoom: view.Zoom}
	marker := Marker{Position: LatLng{Lat: 35.6586, Lng: 139.7454}, Popup: `</script><b>"Tower"</b>`, PopupOpen: true}

	script, err := MountScript(viewport, marker, view.Icon)
	if err != nil {
		t.Fatalf("MountScript returned error: %v", err)
	}
	if strings.Contains(script, "</script>") {
		t.Fatalf("expected popup to be escaped, got %s", script)
	}
	for _, want := range []string{
		`"iconSize":[25,41]`,
		`"iconAnchor":[12,41]`,
		`"popupAnchor":[1,-34]`,
		`"tooltipAnchor":[16,-28]`,
		`"shadowSize":[41,41]`,
		`{s}.tile.openstreetmap.org`,
		`map.setView([35.6586, 139.7454], 13);`,
	} {
		if !strings.Contains(script, want) {
			t.Fatalf("expected script to contain %s, got %s", want, script)
		}
	}
}

func TestMountScriptRebuildsMapForReplacedContainer(t *testing.T) {
	view := ViewFromConfig(runtimeconfig.DefaultConfig().Map)
	viewport := Viewport{ContainerID: "map-0001", Tiles: view.Tiles, Zoom: view.Zoom}
	marker := Marker{Position: LatLng{Lat: 1, Lng: 2}, Popup: "Kyoto", PopupOpen: true}

	script, err := MountScript(viewport, marker, view.Icon)
	if err != nil {
		t.Fatalf("MountScript returned error: %v", err)
	}

	guard := strings.Index(script, `map.getContainer() !== container`)
	create := strings.Index(script, `map = L.map(container);`)
	if guard < 0 || create < 0 || guard > create {
		t.Fatalf("expected stale map check before creation, got %s", script)
	}
	for _, want := range []string{
		`var container = document.getElementById("map-0001");`,
		`map.remove();`,
		`registry[id] = map;`,
	} {
		if !strings.Contains(script, want) {
			t.Fatalf("expected script to contain %s, got %s", want, script)
		}
	}
}
