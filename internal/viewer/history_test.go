package viewer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_Push(t *testing.T) {
	r := NewRing[string](HistoryDepth)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 4, r.Cap())

	for _, v := range []string{"v1", "v2", "v3", "v4", "v5"} {
		r.Push(v)
		assert.LessOrEqual(t, r.Len(), HistoryDepth)
		assert.Equal(t, v, r.Values()[0])
	}

	assert.Equal(t, []string{"v5", "v4", "v3", "v2"}, r.Values())
}

func TestRing_PartiallyFilled(t *testing.T) {
	r := NewRing[int](3)
	r.Push(1)
	r.Push(2)
	assert.Equal(t, []int{2, 1}, r.Values())

	values := r.Values()
	values[0] = 99
	assert.Equal(t, []int{2, 1}, r.Values(), "Values returns a copy")
}

func click(country string, attrs map[string]any) FeatureProperties {
	props := FeatureProperties{"country_na": country}
	for k, v := range attrs {
		props[k] = v
	}
	return props
}

func TestSelectionHistory_FiveClicksEvictOldest(t *testing.T) {
	h := NewSelectionHistory("")
	keys := []string{"pop", "gdp"}

	for i, v := range []string{"v1", "v2", "v3", "v4", "v5"} {
		require.NoError(t, h.RecordClick(click("c"+v, map[string]any{"pop": v, "gdp": i}), keys))
	}

	assert.Equal(t, []any{"v5", "v4", "v3", "v2"}, h.Slot(0))
	assert.Equal(t, []any{4, 3, 2, 1}, h.Slot(1))
	assert.Equal(t, []string{"cv5", "cv4", "cv3", "cv2"}, h.Locations())
}

func TestSelectionHistory_BoundedAfterManyClicks(t *testing.T) {
	h := NewSelectionHistory("")
	keys := []string{"a", "b", "c", "d"}

	for i := range 25 {
		require.NoError(t, h.RecordClick(click("x", map[string]any{"a": i, "b": i, "c": i, "d": i}), keys))
		for slot := range MaxAttributes {
			values := h.Slot(slot)
			assert.LessOrEqual(t, len(values), HistoryDepth)
			assert.Equal(t, i, values[0])
		}
		assert.LessOrEqual(t, len(h.Locations()), HistoryDepth)
	}
}

func TestSelectionHistory_UnusedSlotsKeepContents(t *testing.T) {
	h := NewSelectionHistory("")
	props := click("Chile", map[string]any{"a": 1, "b": 2, "c": 3, "d": 4})

	require.NoError(t, h.RecordClick(props, []string{"a", "b", "c", "d"}))
	require.NoError(t, h.RecordClick(click("Peru", map[string]any{"a": 10, "b": 20}), []string{"a", "b"}))

	assert.Equal(t, []any{10, 1}, h.Slot(0))
	assert.Equal(t, []any{20, 2}, h.Slot(1))
	assert.Equal(t, []any{3}, h.Slot(2))
	assert.Equal(t, []any{4}, h.Slot(3))
	assert.Equal(t, []string{"a", "b"}, h.Keys())
}

func TestSelectionHistory_TooFewAttributes(t *testing.T) {
	h := NewSelectionHistory("")
	err := h.RecordClick(click("Chile", map[string]any{"a": 1}), []string{"a"})
	require.ErrorIs(t, err, ErrTooFewAttributes)

	assert.Empty(t, h.Slot(0))
	assert.Empty(t, h.Locations())

	_, err = h.Chart()
	assert.ErrorIs(t, err, ErrTooFewAttributes)
}

func TestSelectionHistory_RepeatedKeysCountOnce(t *testing.T) {
	h := NewSelectionHistory("")
	props := click("Chile", map[string]any{"a": 1, "b": 2})

	err := h.RecordClick(props, []string{"a", "a"})
	require.ErrorIs(t, err, ErrTooFewAttributes)
	assert.Empty(t, h.Locations())

	require.NoError(t, h.RecordClick(props, []string{"a", "a", "b", "a"}))
	assert.Equal(t, []string{"a", "b"}, h.Keys())
	chart, err := h.Chart()
	require.NoError(t, err)
	assert.Equal(t, "a", chart.Series[0].Name)
	assert.Equal(t, "b", chart.Series[1].Name)
}

func TestSelectionHistory_ExtraKeysIgnored(t *testing.T) {
	h := NewSelectionHistory("")
	props := click("Chile", map[string]any{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5})

	require.NoError(t, h.RecordClick(props, []string{"a", "b", "c", "d", "e"}))
	assert.Equal(t, []string{"a", "b", "c", "d"}, h.Keys())
	assert.Equal(t, []any{4}, h.Slot(3))
	assert.Nil(t, h.Slot(4))
}

func TestSelectionHistory_MissingValueAndLocation(t *testing.T) {
	h := NewSelectionHistory("name")
	require.NoError(t, h.RecordClick(FeatureProperties{"a": 1.5}, []string{"a", "missing"}))

	assert.Equal(t, []any{1.5}, h.Slot(0))
	assert.Equal(t, []any{nil}, h.Slot(1))
	assert.Equal(t, []string{""}, h.Locations())
}

func TestSelectionHistory_NoFeature(t *testing.T) {
	h := NewSelectionHistory("")
	assert.ErrorIs(t, h.RecordClick(nil, []string{"a", "b"}), ErrNoFeature)
}

func TestSelectionHistory_Chart(t *testing.T) {
	h := NewSelectionHistory("")
	keys := []string{"pop", "gdp", "lit"}
	require.NoError(t, h.RecordClick(click("Chile", map[string]any{"pop": 1, "gdp": 2, "lit": 3}), keys))
	require.NoError(t, h.RecordClick(click("Peru", map[string]any{"pop": 4, "gdp": 5, "lit": 6}), keys))

	chart, err := h.Chart()
	require.NoError(t, err)
	assert.Equal(t, TrendChart{
		Categories: []string{"Peru", "Chile"},
		Series: []Series{
			{Name: "pop", Data: []any{4, 1}},
			{Name: "gdp", Data: []any{5, 2}},
		},
	}, chart)
}

func TestFeatureTable(t *testing.T) {
	rows := FeatureTable(FeatureProperties{"gdp": 2, "country_na": "Chile", "pop": 1})
	assert.Equal(t, []TableRow{
		{Key: "country_na", Value: "Chile"},
		{Key: "gdp", Value: 2},
		{Key: "pop", Value: 1},
	}, rows)
	assert.Empty(t, FeatureTable(nil))
}
