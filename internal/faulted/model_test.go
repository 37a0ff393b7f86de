package faulted

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_DerivedIdentifiers(t *testing.T) {
	m := NewModel("sliprate", "Observations: Slip Rates", nil, Overrides{})

	assert.Equal(t, "geonode:observations_sliprate", m.SourceName())
	assert.Equal(t, "sliprate_grid", m.GridID())
	assert.Equal(t, "sliprate_form", m.FormID())
	assert.Equal(t, "sliprate_snapping", m.SnappingID())
	assert.Equal(t, "sliprate_form_tool", m.FormToolID())
	assert.Equal(t, "sliprate_manager", m.ManagerID())
	assert.Equal(t, "sliprate_editor", m.EditorID())
	assert.Equal(t, "Observations: Slip Rates Form", m.FormTitle())
	assert.Equal(t, "fe_sliprate_form", m.FormPtype())
	assert.Equal(t, "fe_sliprate_tooltarget", m.FormTarget())
	assert.Equal(t, "gxp_featuregrid", m.GridPtype())
	assert.Equal(t, "fe_featureeditor", m.EditorPtype())
	assert.Equal(t, "gxp_featuremanager", m.ManagerPtype())
	assert.False(t, m.HasForm())
}

func TestModel_Overrides(t *testing.T) {
	m := NewModel("fault", "Faults", nil, Overrides{GridPtype: "fe_grid", ManagerPtype: "fe_manager"})

	assert.Equal(t, "fe_grid", m.GridPtype())
	assert.Equal(t, "fe_featureeditor", m.EditorPtype())
	assert.Equal(t, "fe_manager", m.ManagerPtype())
}

func TestModel_PropertyLabels(t *testing.T) {
	m, ok := Lookup("trace")
	require.True(t, ok)
	assert.True(t, m.HasForm())

	assert.Equal(t, map[string]string{
		"scale":                 "Scale <small>(*)</small>",
		"accuracy":              "Accuracy <small>(*)</small>",
		"notes":                 "Notes",
		"loc_meth":              "Location Method",
		"geomorphic_expression": "Geomorphic Expression",
	}, m.PropertyLabels())
}

func TestModel_PropertiesAreCopied(t *testing.T) {
	props := []Property{{ID: "scale", Label: "Scale"}}
	m := NewModel("trace", "Traces", props, Overrides{})
	props[0].Label = "changed"
	assert.Equal(t, "Scale", m.Properties[0].Label)

	got, _ := Lookup("trace")
	got.Properties[0].Label = "changed"
	again, _ := Lookup("trace")
	assert.Equal(t, "Scale", again.Properties[0].Label)
}

func TestRegistry(t *testing.T) {
	var prefixes []string
	for _, m := range Models() {
		prefixes = append(prefixes, m.PrefixID)
	}
	assert.Equal(t, []string{
		"event", "displacement", "sliprate", "faultgeometry",
		"trace", "faultsection", "fault", "faultsource",
	}, prefixes)

	_, ok := Lookup("volcano")
	assert.False(t, ok)
}

func TestFieldChecks(t *testing.T) {
	assert.True(t, IsCompulsory("scale"))
	assert.True(t, IsCompulsory("accuracy"))
	assert.False(t, IsCompulsory("notes"))
	assert.False(t, IsCompulsory("unknown"))

	assert.False(t, IsCalculated("scale"))
	assert.False(t, IsCalculated("mag_pref"))
	assert.Len(t, Properties(), 5)
}

func TestModel_View(t *testing.T) {
	m, _ := Lookup("event")
	v := m.View()
	assert.Equal(t, "event", v.PrefixID)
	assert.Equal(t, "geonode:observations_event", v.SourceName)
	assert.Equal(t, "fe_event_tooltarget", v.FormTarget)
	assert.Empty(t, v.PropertyLabels)
	assert.NotNil(t, v.PropertyLabels)
}
