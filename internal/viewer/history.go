package viewer

import (
	"errors"
	"fmt"
	"slices"
)

const (
	// MaxAttributes is the number of attribute slots kept per session.
	MaxAttributes = 4
	// ChartSeries is the number of attribute series the trend chart draws.
	ChartSeries = 2
	// DefaultLocationField names the country in the UTFGrid payload.
	DefaultLocationField = "country_na"
)

// ErrTooFewAttributes is returned when fewer than ChartSeries attributes are chosen.
var ErrTooFewAttributes = fmt.Errorf("at least %d attributes must be chosen", ChartSeries)

// ErrNoFeature is returned for a click that carried no feature properties.
var ErrNoFeature = errors.New("click hit no feature")

// FeatureProperties are the attributes of one clicked feature.
type FeatureProperties map[string]any

// SelectionHistory keeps the last HistoryDepth values of each chosen
// attribute and of the clicked location.
type SelectionHistory struct {
	locationField string
	keys          []string
	slots         [MaxAttributes]*Ring[any]
	locations     *Ring[string]
}

// NewSelectionHistory creates an empty history reading locations from
// locationField.
func NewSelectionHistory(locationField string) *SelectionHistory {
	if locationField == "" {
		locationField = DefaultLocationField
	}
	h := &SelectionHistory{
		locationField: locationField,
		locations:     NewRing[string](HistoryDepth),
	}
	for i := range h.slots {
		h.slots[i] = NewRing[any](HistoryDepth)
	}
	return h
}

// RecordClick pushes the chosen attributes of props and its location onto
// the history. Repeated keys count once and keys past MaxAttributes are
// ignored. Slots beyond len(keys) keep their previous contents. Nothing
// changes on error.
func (h *SelectionHistory) RecordClick(props FeatureProperties, keys []string) error {
	if len(props) == 0 {
		return ErrNoFeature
	}
	keys = uniqueKeys(keys)
	if len(keys) > MaxAttributes {
		keys = keys[:MaxAttributes]
	}
	if len(keys) < ChartSeries {
		return ErrTooFewAttributes
	}

	h.keys = slices.Clone(keys)
	for i, key := range keys {
		h.slots[i].Push(props[key])
	}
	h.locations.Push(locationName(props[h.locationField]))
	return nil
}

// uniqueKeys drops repeated keys, keeping first-seen order.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func locationName(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// Keys returns the attribute keys of the latest click.
func (h *SelectionHistory) Keys() []string {
	return slices.Clone(h.keys)
}

// Slot returns the history of attribute slot i, most recent first.
func (h *SelectionHistory) Slot(i int) []any {
	if i < 0 || i >= MaxAttributes {
		return nil
	}
	return h.slots[i].Values()
}

// Locations returns the clicked locations, most recent first.
func (h *SelectionHistory) Locations() []string {
	return h.locations.Values()
}

// Series is one named line of the trend chart.
type Series struct {
	Name string `json:"name" doc:"Attribute key"`
	Data []any  `json:"data" doc:"Values, most recent first"`
}

// TrendChart is the data behind the area-spline chart.
type TrendChart struct {
	Categories []string `json:"categories" doc:"Clicked locations, most recent first"`
	Series     []Series `json:"series" doc:"Exactly two attribute series"`
}

// Chart returns the first ChartSeries attribute histories against the
// location history.
func (h *SelectionHistory) Chart() (TrendChart, error) {
	if len(h.keys) < ChartSeries {
		return TrendChart{}, ErrTooFewAttributes
	}
	chart := TrendChart{Categories: h.Locations()}
	for i := range ChartSeries {
		chart.Series = append(chart.Series, Series{Name: h.keys[i], Data: h.Slot(i)})
	}
	return chart, nil
}

// TableRow is one attribute of a clicked feature.
type TableRow struct {
	Key   string `json:"key" doc:"Attribute name"`
	Value any    `json:"value" doc:"Attribute value"`
}

// FeatureTable lists every attribute of props sorted by name.
func FeatureTable(props FeatureProperties) []TableRow {
	keys := AttributeKeys(props)
	rows := make([]TableRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, TableRow{Key: k, Value: props[k]})
	}
	return rows
}

// AttributeKeys returns the attribute names of props in sorted order.
func AttributeKeys(props FeatureProperties) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
