package catalog

import "slices"

// Index groups categorised layer descriptors for the selection controls.
// It is immutable once built; accessors hand out copies.
type Index struct {
	categories      []string
	namesByCategory map[string][]string
	idsByName       map[string][]string
}

// Build indexes the categorised descriptors in input order.
// Uncategorised descriptors are left out entirely.
func Build(descriptors []LayerDescriptor) *Index {
	idx := &Index{
		namesByCategory: make(map[string][]string),
		idsByName:       make(map[string][]string),
	}

	for _, d := range descriptors {
		if !d.HasCategory() {
			continue
		}
		if _, seen := idx.namesByCategory[d.Category]; !seen {
			idx.categories = append(idx.categories, d.Category)
		}
		idx.namesByCategory[d.Category] = append(idx.namesByCategory[d.Category], d.DisplayName)
		idx.idsByName[d.DisplayName] = append(idx.idsByName[d.DisplayName], d.ID)
	}

	return idx
}

// Empty returns an index with no categories.
func Empty() *Index {
	return Build(nil)
}

// Categories returns the distinct categories in first-seen order.
func (idx *Index) Categories() []string {
	return slices.Clone(idx.categories)
}

// Names returns the display names filed under category.
func (idx *Index) Names(category string) ([]string, bool) {
	names, ok := idx.namesByCategory[category]
	return slices.Clone(names), ok
}

// IDs returns the layer ids published under a display name.
func (idx *Index) IDs(name string) ([]string, bool) {
	ids, ok := idx.idsByName[name]
	return slices.Clone(ids), ok
}

// LayerID resolves a display name to the layer id that gets activated.
func (idx *Index) LayerID(name string) (string, bool) {
	ids := idx.idsByName[name]
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// Len returns the number of categories.
func (idx *Index) Len() int {
	return len(idx.categories)
}

// Snapshot is the serialisable form of an Index.
type Snapshot struct {
	Categories      []string            `json:"categories" yaml:"categories" doc:"Categories in first-seen order"`
	NamesByCategory map[string][]string `json:"namesByCategory" yaml:"namesByCategory" doc:"Display names per category"`
	IDsByName       map[string][]string `json:"idsByName" yaml:"idsByName" doc:"Layer ids per display name"`
}

// Snapshot copies the index into plain maps.
func (idx *Index) Snapshot() Snapshot {
	s := Snapshot{
		Categories:      idx.Categories(),
		NamesByCategory: make(map[string][]string, len(idx.namesByCategory)),
		IDsByName:       make(map[string][]string, len(idx.idsByName)),
	}
	if s.Categories == nil {
		s.Categories = []string{}
	}
	for k, v := range idx.namesByCategory {
		s.NamesByCategory[k] = slices.Clone(v)
	}
	for k, v := range idx.idsByName {
		s.IDsByName[k] = slices.Clone(v)
	}
	return s
}
