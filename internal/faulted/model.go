// Package faulted describes the observation models of the faulted_earth
// data-entry tool and the identifiers its form framework derives from them.
package faulted

const compulsoryMarker = " <small>(*)</small>"

// Property is one editable attribute of a model.
type Property struct {
	ID         string `json:"id" doc:"Attribute name" example:"scale"`
	Label      string `json:"label" doc:"Form label" example:"Scale"`
	Compulsory bool   `json:"compulsory,omitempty" doc:"Must be filled before saving"`
	Calculated bool   `json:"calculated,omitempty" doc:"Computed server side, read-only in forms"`
}

// Overrides replaces the default widget types of a model. Empty fields keep
// the defaults.
type Overrides struct {
	GridPtype    string `json:"gridPtype,omitempty" doc:"Feature grid plugin type"`
	EditorPtype  string `json:"editorPtype,omitempty" doc:"Feature editor plugin type"`
	ManagerPtype string `json:"managerPtype,omitempty" doc:"Feature manager plugin type"`
}

const (
	defaultGridPtype    = "gxp_featuregrid"
	defaultEditorPtype  = "fe_featureeditor"
	defaultManagerPtype = "gxp_featuremanager"
)

// Model is one observation table exposed by the tool.
type Model struct {
	PrefixID   string
	Title      string
	Properties []Property
	Overrides  Overrides
}

// NewModel creates a model; properties are copied.
func NewModel(prefixID, title string, properties []Property, overrides Overrides) Model {
	return Model{
		PrefixID:   prefixID,
		Title:      title,
		Properties: append([]Property(nil), properties...),
		Overrides:  overrides,
	}
}

func (m Model) SourceName() string { return "geonode:observations_" + m.PrefixID }
func (m Model) GridID() string     { return m.PrefixID + "_grid" }
func (m Model) FormID() string     { return m.PrefixID + "_form" }
func (m Model) SnappingID() string { return m.PrefixID + "_snapping" }
func (m Model) FormToolID() string { return m.PrefixID + "_form_tool" }
func (m Model) ManagerID() string  { return m.PrefixID + "_manager" }
func (m Model) EditorID() string   { return m.PrefixID + "_editor" }
func (m Model) FormTitle() string  { return m.Title + " Form" }
func (m Model) FormPtype() string  { return "fe_" + m.PrefixID + "_form" }
func (m Model) FormTarget() string { return "fe_" + m.PrefixID + "_tooltarget" }

// GridPtype is the feature grid widget type.
func (m Model) GridPtype() string {
	return orDefault(m.Overrides.GridPtype, defaultGridPtype)
}

// EditorPtype is the feature editor widget type.
func (m Model) EditorPtype() string {
	return orDefault(m.Overrides.EditorPtype, defaultEditorPtype)
}

// ManagerPtype is the feature manager widget type.
func (m Model) ManagerPtype() string {
	return orDefault(m.Overrides.ManagerPtype, defaultManagerPtype)
}

// HasForm reports whether the model gets a dedicated edit form.
// Only traces do.
func (m Model) HasForm() bool {
	return m.PrefixID == "trace"
}

// PropertyLabels maps attribute names to form labels, marking compulsory
// fields.
func (m Model) PropertyLabels() map[string]string {
	labels := make(map[string]string, len(m.Properties))
	for _, p := range m.Properties {
		label := p.Label
		if p.Compulsory {
			label += compulsoryMarker
		}
		labels[p.ID] = label
	}
	return labels
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// View is the flattened form of a Model served to the form framework.
type View struct {
	PrefixID       string            `json:"prefixId" doc:"Model prefix" example:"trace"`
	Title          string            `json:"title" doc:"Model title" example:"Traces"`
	SourceName     string            `json:"sourceName" doc:"WFS feature type" example:"geonode:observations_trace"`
	GridID         string            `json:"gridId"`
	FormID         string            `json:"formId"`
	SnappingID     string            `json:"snappingId"`
	FormToolID     string            `json:"formToolId"`
	ManagerID      string            `json:"managerId"`
	EditorID       string            `json:"editorId"`
	FormTitle      string            `json:"formTitle"`
	FormPtype      string            `json:"formPtype"`
	FormTarget     string            `json:"formTarget"`
	GridPtype      string            `json:"gridPtype"`
	EditorPtype    string            `json:"editorPtype"`
	ManagerPtype   string            `json:"managerPtype"`
	HasForm        bool              `json:"hasForm"`
	PropertyLabels map[string]string `json:"propertyLabels" doc:"Attribute labels, compulsory ones marked"`
}

// View flattens every derived identifier of m.
func (m Model) View() View {
	return View{
		PrefixID:       m.PrefixID,
		Title:          m.Title,
		SourceName:     m.SourceName(),
		GridID:         m.GridID(),
		FormID:         m.FormID(),
		SnappingID:     m.SnappingID(),
		FormToolID:     m.FormToolID(),
		ManagerID:      m.ManagerID(),
		EditorID:       m.EditorID(),
		FormTitle:      m.FormTitle(),
		FormPtype:      m.FormPtype(),
		FormTarget:     m.FormTarget(),
		GridPtype:      m.GridPtype(),
		EditorPtype:    m.EditorPtype(),
		ManagerPtype:   m.ManagerPtype(),
		HasForm:        m.HasForm(),
		PropertyLabels: m.PropertyLabels(),
	}
}
