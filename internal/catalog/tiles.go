package catalog

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb/maptile"
)

const (
	// DefaultTileBase is the tile service root every overlay hangs off.
	DefaultTileBase = "http://tilestream.openquake.org/v2"
	// DefaultGridLayer carries the per-country attributes returned on click.
	DefaultGridLayer = "svir-econ-all"
	// DefaultBaseMap is the background layer shared by every page.
	DefaultBaseMap = "http://{s}.tiles.mapbox.com/v3/unhcr.map-8bkai3wa/{z}/{x}/{y}.png"
)

// Tiles builds URLs against the tile service.
type Tiles struct {
	Base string
}

// NewTiles returns URL builders for base, trimming any trailing slash.
func NewTiles(base string) Tiles {
	if base == "" {
		base = DefaultTileBase
	}
	return Tiles{Base: strings.TrimRight(base, "/")}
}

// OverlayTemplate is the {z}/{x}/{y} PNG template for a layer.
func (t Tiles) OverlayTemplate(id string) string {
	return t.Base + "/" + id + "/{z}/{x}/{y}.png"
}

// MetadataURL is the tilejson document describing a layer.
func (t Tiles) MetadataURL(id string) string {
	return t.Base + "/" + id + ".json"
}

// GridTemplate is the UTFGrid template used for feature clicks.
func (t Tiles) GridTemplate(id string) string {
	return t.Base + "/" + id + "/{z}/{x}/{y}.grid.json?callback={cb}"
}

// TileURL expands the overlay template for one tile.
func (t Tiles) TileURL(id string, tile maptile.Tile) (string, error) {
	if !tile.Valid() {
		return "", fmt.Errorf("tile %d/%d/%d out of range", tile.Z, tile.X, tile.Y)
	}
	return fmt.Sprintf("%s/%s/%d/%d/%d.png", t.Base, id, tile.Z, tile.X, tile.Y), nil
}
