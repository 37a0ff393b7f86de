package faulted

// locatedObservationProperties are shared by every located observation.
var locatedObservationProperties = []Property{
	{ID: "scale", Label: "Scale", Compulsory: true},
	{ID: "accuracy", Label: "Accuracy", Compulsory: true},
	{ID: "notes", Label: "Notes"},
}

// traceProperties is the property set the form framework validates against.
var traceProperties = append(append([]Property(nil), locatedObservationProperties...),
	Property{ID: "loc_meth", Label: "Location Method"},
	Property{ID: "geomorphic_expression", Label: "Geomorphic Expression"},
)

var models = []Model{
	NewModel("event", "Observations: Events", nil, Overrides{}),
	NewModel("displacement", "Observations: Displacement", nil, Overrides{}),
	NewModel("sliprate", "Observations: Slip Rates", nil, Overrides{}),
	NewModel("faultgeometry", "Observations: Fault Geometry", nil, Overrides{}),
	NewModel("trace", "Traces", traceProperties, Overrides{}),
	NewModel("faultsection", "Fault Section Summary", nil, Overrides{}),
	NewModel("fault", "Faults", nil, Overrides{}),
	NewModel("faultsource", "Fault Sources", nil, Overrides{}),
}

// Models returns the registered models in menu order.
func Models() []Model {
	out := make([]Model, len(models))
	for i, m := range models {
		out[i] = NewModel(m.PrefixID, m.Title, m.Properties, m.Overrides)
	}
	return out
}

// Lookup finds a model by prefix.
func Lookup(prefixID string) (Model, bool) {
	for _, m := range models {
		if m.PrefixID == prefixID {
			return NewModel(m.PrefixID, m.Title, m.Properties, m.Overrides), true
		}
	}
	return Model{}, false
}

// Properties returns the property set used for field checks.
func Properties() []Property {
	return append([]Property(nil), traceProperties...)
}

// IsCompulsory reports whether field must be filled in.
func IsCompulsory(field string) bool {
	p, ok := property(field)
	return ok && p.Compulsory
}

// IsCalculated reports whether field is computed rather than entered.
func IsCalculated(field string) bool {
	p, ok := property(field)
	return ok && p.Calculated
}

func property(field string) (Property, bool) {
	for _, p := range traceProperties {
		if p.ID == field {
			return p, true
		}
	}
	return Property{}, false
}
