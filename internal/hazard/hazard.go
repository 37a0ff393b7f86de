// Package hazard serves the fixed overlay catalogue of the hazard map viewer.
package hazard

import (
	_ "embed"
	"fmt"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-oq/internal/catalog"
)

//go:embed overlays.yaml
var overlaysYAML []byte

const (
	defaultZoom = 3
	// MaxZoom is the deepest zoom the hazard tiles are rendered for.
	MaxZoom = 16
)

var (
	defaultCenter = orb.Point{20, 20}
	// Slightly wider than the world so the antimeridian can be panned across.
	maxBounds = orb.Bound{Min: orb.Point{-185, -90}, Max: orb.Point{185, 90}}
)

type overlayEntry struct {
	Title       string   `yaml:"title"`
	Layer       string   `yaml:"layer"`
	Opacity     *float64 `yaml:"opacity"`
	Interactive bool     `yaml:"interactive"`
}

type catalogueFile struct {
	Base struct {
		Title      string   `yaml:"title"`
		URL        string   `yaml:"url"`
		Subdomains []string `yaml:"subdomains"`
	} `yaml:"base"`
	Overlays []overlayEntry `yaml:"overlays"`
}

// BaseLayer is the background map.
type BaseLayer struct {
	Title      string   `json:"title" doc:"Layer control label" example:"Base Map"`
	URL        string   `json:"url" doc:"XYZ template with {s} subdomain"`
	Subdomains []string `json:"subdomains" doc:"Tile host subdomains"`
}

// Overlay is one hazard layer offered in the layer control.
type Overlay struct {
	Title       string  `json:"title" doc:"Layer control label"`
	Layer       string  `json:"layer" doc:"Tileset id"`
	TileURL     string  `json:"tileUrl" doc:"XYZ PNG template"`
	MetadataURL string  `json:"metadataUrl,omitempty" doc:"tilejson for interactive layers"`
	Opacity     float64 `json:"opacity" doc:"Layer opacity (0-1)"`
}

// MapConfig is everything the hazard page needs to build its map.
type MapConfig struct {
	BaseLayer BaseLayer     `json:"baseLayer"`
	Overlays  []Overlay     `json:"overlays"`
	Center    [2]float64    `json:"center" doc:"Initial center as [lat, lon]"`
	Zoom      int           `json:"zoom" doc:"Initial zoom"`
	MaxZoom   int           `json:"maxZoom" doc:"Maximum zoom"`
	MaxBounds [2][2]float64 `json:"maxBounds" doc:"Pan limits as [[south, west], [north, east]]"`
}

// Load parses the embedded catalogue and expands tile URLs against tiles.
func Load(tiles catalog.Tiles) (MapConfig, error) {
	return parse(overlaysYAML, tiles)
}

func parse(data []byte, tiles catalog.Tiles) (MapConfig, error) {
	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return MapConfig{}, fmt.Errorf("parse hazard catalogue: %w", err)
	}
	if file.Base.URL == "" {
		return MapConfig{}, fmt.Errorf("hazard catalogue: base layer has no url")
	}

	cfg := MapConfig{
		BaseLayer: BaseLayer{
			Title:      file.Base.Title,
			URL:        file.Base.URL,
			Subdomains: file.Base.Subdomains,
		},
		Overlays:  make([]Overlay, 0, len(file.Overlays)),
		Center:    latLng(defaultCenter),
		Zoom:      defaultZoom,
		MaxZoom:   MaxZoom,
		MaxBounds: [2][2]float64{latLng(maxBounds.Min), latLng(maxBounds.Max)},
	}

	seen := make(map[string]bool, len(file.Overlays))
	for i, e := range file.Overlays {
		if e.Title == "" || e.Layer == "" {
			return MapConfig{}, fmt.Errorf("hazard catalogue: overlay %d needs a title and a layer", i)
		}
		if seen[e.Title] {
			return MapConfig{}, fmt.Errorf("hazard catalogue: duplicate overlay %q", e.Title)
		}
		seen[e.Title] = true

		opacity := 1.0
		if e.Opacity != nil {
			opacity = *e.Opacity
		}
		if opacity < 0 || opacity > 1 {
			return MapConfig{}, fmt.Errorf("hazard catalogue: overlay %q opacity %v out of range", e.Title, opacity)
		}

		ov := Overlay{
			Title:   e.Title,
			Layer:   e.Layer,
			TileURL: tiles.OverlayTemplate(e.Layer),
			Opacity: opacity,
		}
		if e.Interactive {
			ov.MetadataURL = tiles.MetadataURL(e.Layer)
		}
		cfg.Overlays = append(cfg.Overlays, ov)
	}

	return cfg, nil
}

// latLng flips an orb lon/lat point into the lat/lon order map widgets expect.
func latLng(p orb.Point) [2]float64 {
	return [2]float64{p.Lat(), p.Lon()}
}

// Contains reports whether a lon/lat point lies inside the pan limits.
func Contains(p orb.Point) bool {
	return maxBounds.Contains(p)
}
