package hazard

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-oq/internal/catalog"
)

func TestLoad(t *testing.T) {
	cfg, err := Load(catalog.NewTiles("http://tiles.example/v2"))
	require.NoError(t, err)

	assert.Equal(t, "Base Map", cfg.BaseLayer.Title)
	assert.Equal(t, []string{"a", "b", "c", "d"}, cfg.BaseLayer.Subdomains)
	assert.Equal(t, [2]float64{20, 20}, cfg.Center)
	assert.Equal(t, 3, cfg.Zoom)
	assert.Equal(t, 16, cfg.MaxZoom)
	assert.Equal(t, [2][2]float64{{-90, -185}, {90, 185}}, cfg.MaxBounds)

	require.Len(t, cfg.Overlays, 15)

	urban := cfg.Overlays[0]
	assert.Equal(t, "GRUMP Urban", urban.Title)
	assert.Equal(t, "http://tiles.example/v2/gdal-custom-urban/{z}/{x}/{y}.png", urban.TileURL)
	assert.Equal(t, 0.8, urban.Opacity)
	assert.Empty(t, urban.MetadataURL)

	last := cfg.Overlays[len(cfg.Overlays)-1]
	assert.Equal(t, "World Hazard Curve - PGA", last.Title)
	assert.Equal(t, "http://tiles.example/v2/hazard-curve-world.json", last.MetadataURL)
	assert.Equal(t, 1.0, last.Opacity)
}

func TestParse_Rejects(t *testing.T) {
	tiles := catalog.NewTiles("")
	cases := map[string]string{
		"no base url": `
overlays:
  - {title: A, layer: a}`,
		"missing layer": `
base: {url: "http://x/{z}/{x}/{y}.png"}
overlays:
  - {title: A}`,
		"duplicate title": `
base: {url: "http://x/{z}/{x}/{y}.png"}
overlays:
  - {title: A, layer: a}
  - {title: A, layer: b}`,
		"opacity out of range": `
base: {url: "http://x/{z}/{x}/{y}.png"}
overlays:
  - {title: A, layer: a, opacity: 1.5}`,
		"not yaml": "base: [",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parse([]byte(doc), tiles)
			assert.Error(t, err)
		})
	}
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(orb.Point{139.7, 35.7}))
	assert.True(t, Contains(orb.Point{-182, 0}))
	assert.False(t, Contains(orb.Point{0, 95}))
}
