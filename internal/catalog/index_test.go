package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_Scenario(t *testing.T) {
	idx := Build([]LayerDescriptor{
		{ID: "a", DisplayName: "A", Category: "X"},
		{ID: "b", DisplayName: "B", Category: "X"},
		{ID: "c", DisplayName: "C"},
	})

	assert.Equal(t, []string{"X"}, idx.Categories())

	names, ok := idx.Names("X")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B"}, names)

	ids, ok := idx.IDs("A")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, ids)

	ids, ok = idx.IDs("B")
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, ids)

	_, ok = idx.IDs("C")
	assert.False(t, ok, "uncategorised descriptor must be excluded")
}

func TestBuild_FirstSeenOrderWithoutDuplicates(t *testing.T) {
	idx := Build([]LayerDescriptor{
		{ID: "1", DisplayName: "Poverty", Category: "Economy"},
		{ID: "2", DisplayName: "Literacy", Category: "Education"},
		{ID: "3", DisplayName: "GDP", Category: "Economy"},
		{ID: "4", DisplayName: "Clinics", Category: "Health"},
		{ID: "5", DisplayName: "Schools", Category: "Education"},
	})

	assert.Equal(t, []string{"Economy", "Education", "Health"}, idx.Categories())
	assert.Equal(t, 3, idx.Len())
}

func TestBuild_SharedDisplayName(t *testing.T) {
	idx := Build([]LayerDescriptor{
		{ID: "pop-2010", DisplayName: "Population", Category: "Social"},
		{ID: "pop-2012", DisplayName: "Population", Category: "Social"},
	})

	names, _ := idx.Names("Social")
	assert.Equal(t, []string{"Population", "Population"}, names)

	ids, _ := idx.IDs("Population")
	assert.Equal(t, []string{"pop-2010", "pop-2012"}, ids)

	id, ok := idx.LayerID("Population")
	require.True(t, ok)
	assert.Equal(t, "pop-2010", id)
}

func TestBuild_Invariants(t *testing.T) {
	input := []LayerDescriptor{
		{ID: "a", DisplayName: "A", Category: "X"},
		{ID: "b", DisplayName: "B", Category: "Y"},
		{ID: "c", DisplayName: "C"},
		{ID: "d", DisplayName: "A", Category: "Y"},
		{ID: "e", DisplayName: "E", Category: "X"},
	}
	original := append([]LayerDescriptor(nil), input...)

	idx := Build(input)
	assert.Equal(t, original, input, "input must not be mutated")

	for _, cat := range idx.Categories() {
		names, ok := idx.Names(cat)
		require.True(t, ok, "category %q missing from name map", cat)
		for _, name := range names {
			_, ok := idx.IDs(name)
			assert.True(t, ok, "name %q missing from id map", name)
		}
	}

	for _, d := range input {
		if !d.HasCategory() {
			continue
		}
		names, _ := idx.Names(d.Category)
		assert.Contains(t, names, d.DisplayName)
		ids, _ := idx.IDs(d.DisplayName)
		assert.Contains(t, ids, d.ID)
	}
}

func TestIndex_AccessorsReturnCopies(t *testing.T) {
	idx := Build([]LayerDescriptor{{ID: "a", DisplayName: "A", Category: "X"}})

	cats := idx.Categories()
	cats[0] = "mutated"
	names, _ := idx.Names("X")
	names[0] = "mutated"

	assert.Equal(t, []string{"X"}, idx.Categories())
	names, _ = idx.Names("X")
	assert.Equal(t, []string{"A"}, names)
}

func TestEmpty(t *testing.T) {
	idx := Empty()
	assert.Equal(t, 0, idx.Len())
	assert.Empty(t, idx.Categories())
	_, ok := idx.LayerID("anything")
	assert.False(t, ok)

	snap := idx.Snapshot()
	assert.NotNil(t, snap.Categories)
	assert.Empty(t, snap.NamesByCategory)
}
