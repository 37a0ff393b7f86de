package viewer

import (
	"bytes"
	"slices"

	"github.com/joeblew999/plat-oq/internal/viewer"
)

type attributeData struct {
	Key     string
	Checked bool
}

func (h *Handler) renderOverlays(s *viewer.Session) string {
	overlays := s.Overlays()
	items := make([]any, len(overlays))
	for i, ov := range overlays {
		items[i] = ov
	}
	return h.RenderList("overlay-card", items, "No overlays", "Pick a layer to add it to the map")
}

func (h *Handler) renderTable(feature viewer.FeatureProperties) string {
	var buf bytes.Buffer
	for _, row := range viewer.FeatureTable(feature) {
		h.Renderer.RenderToBuffer(&buf, "table-row", row)
	}
	return buf.String()
}

// renderAttributes lists every attribute of the feature as a checkbox,
// keeping the current choice ticked.
func (h *Handler) renderAttributes(feature viewer.FeatureProperties, chosen []string) string {
	var buf bytes.Buffer
	for _, key := range viewer.AttributeKeys(feature) {
		h.Renderer.RenderToBuffer(&buf, "attribute-checkbox", attributeData{
			Key:     key,
			Checked: slices.Contains(chosen, key),
		})
	}
	return buf.String()
}
