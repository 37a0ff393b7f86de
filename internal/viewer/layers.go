// Package viewer holds the per-session state of the indicator viewer:
// which overlays are on the map and the recent feature-click history.
package viewer

import (
	"errors"
	"slices"
)

var (
	// ErrDuplicateLayer is returned when activating an overlay that is already on the map.
	ErrDuplicateLayer = errors.New("layer is already on the map")
	// ErrNoSuchLayer is returned when deactivating an overlay that is not on the map.
	ErrNoSuchLayer = errors.New("layer is not on the map")
	// ErrUnknownLayerName is returned when a display name is not in the catalog.
	ErrUnknownLayerName = errors.New("unknown layer name")
)

// Overlay is the handle the page turns into a tile layer.
type Overlay struct {
	ID          string `json:"id" doc:"Layer id" example:"svir-econ-all"`
	TileURL     string `json:"tileUrl" doc:"XYZ PNG template" example:"http://tilestream.openquake.org/v2/svir-econ-all/{z}/{x}/{y}.png"`
	MetadataURL string `json:"metadataUrl" doc:"tilejson metadata URL" example:"http://tilestream.openquake.org/v2/svir-econ-all.json"`
}

// ActiveLayers tracks the overlays currently on the map, keyed by layer id.
// It is not safe for concurrent use; Session serialises access.
type ActiveLayers struct {
	byID  map[string]Overlay
	order []string
}

// NewActiveLayers returns an empty set.
func NewActiveLayers() *ActiveLayers {
	return &ActiveLayers{byID: make(map[string]Overlay)}
}

// Add activates id, building its overlay handle with build.
// The set is untouched when id is already active.
func (a *ActiveLayers) Add(id string, build func(id string) Overlay) (Overlay, error) {
	if _, exists := a.byID[id]; exists {
		return Overlay{}, ErrDuplicateLayer
	}
	ov := build(id)
	a.byID[id] = ov
	a.order = append(a.order, id)
	return ov, nil
}

// Remove deactivates id. The set is untouched when id is not active.
func (a *ActiveLayers) Remove(id string) (Overlay, error) {
	ov, exists := a.byID[id]
	if !exists {
		return Overlay{}, ErrNoSuchLayer
	}
	delete(a.byID, id)
	a.order = slices.DeleteFunc(a.order, func(s string) bool { return s == id })
	return ov, nil
}

// Has reports whether id is active.
func (a *ActiveLayers) Has(id string) bool {
	_, ok := a.byID[id]
	return ok
}

// List returns the active overlays in activation order.
func (a *ActiveLayers) List() []Overlay {
	out := make([]Overlay, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.byID[id])
	}
	return out
}

// Len returns the number of active overlays.
func (a *ActiveLayers) Len() int {
	return len(a.byID)
}
