package ontology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingHierarchy records lookups so tests can assert none were made.
type countingHierarchy struct {
	Hierarchy
	calls int
}

func (c *countingHierarchy) StructureByID(id int) (Structure, error) {
	c.calls++
	return c.Hierarchy.StructureByID(id)
}

type failingHierarchy struct{}

func (failingHierarchy) StructureByID(int) (Structure, error) {
	return Structure{}, errors.New("backend unavailable")
}

func (failingHierarchy) StructureByAcronym(string) (Structure, error) {
	return Structure{}, errors.New("backend unavailable")
}

func TestResolve(t *testing.T) {
	o, err := Default()
	require.NoError(t, err)
	r := NewResolver(o)

	tests := []struct {
		name   string
		id     Identifier
		want   string
		wantOK bool
	}{
		{"acronym passthrough", AcronymID("LP"), "LP", true},
		{"acronym not in hierarchy still passes", AcronymID("SCop"), "SCop", true},
		{"acronym trimmed", AcronymID("  CA3 "), "CA3", true},
		{"blank acronym", AcronymID("   "), "", false},
		{"numeric id", StructureID(218), "LP", true},
		{"left hemisphere id", StructureID(-218), "LP", true},
		{"no region sentinel", StructureID(NoRegion), "", false},
		{"unknown id", StructureID(424242), "", false},
		{"none", Identifier{}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.id)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveIDAndAcronymAgree(t *testing.T) {
	o, err := Default()
	require.NoError(t, err)
	r := NewResolver(o)

	for _, s := range o.Structures() {
		fromID, ok := r.Resolve(StructureID(s.ID))
		require.True(t, ok, "id %d", s.ID)
		fromAcronym, ok := r.Resolve(AcronymID(s.Acronym))
		require.True(t, ok, "acronym %s", s.Acronym)
		assert.Equal(t, fromAcronym, fromID)
	}
}

func TestResolveSkipsLookupForEmpty(t *testing.T) {
	o, err := Default()
	require.NoError(t, err)
	h := &countingHierarchy{Hierarchy: o}
	r := NewResolver(h)

	_, ok := r.Resolve(Identifier{})
	assert.False(t, ok)
	_, ok = r.Resolve(StructureID(NoRegion))
	assert.False(t, ok)
	assert.Zero(t, h.calls)

	_, ok = r.Resolve(StructureID(549))
	assert.True(t, ok)
	assert.Equal(t, 1, h.calls)
}

func TestResolveBackendFailureIsAbsent(t *testing.T) {
	r := NewResolver(failingHierarchy{})
	got, ok := r.Resolve(StructureID(549))
	assert.False(t, ok)
	assert.Empty(t, got)

	_, ok = r.RegionID("TH")
	assert.False(t, ok)
}

func TestResolveWithoutHierarchy(t *testing.T) {
	r := NewResolver(nil)
	got, ok := r.Resolve(AcronymID("TH"))
	assert.True(t, ok)
	assert.Equal(t, "TH", got)

	_, ok = r.Resolve(StructureID(549))
	assert.False(t, ok)
	_, ok = r.RegionID("TH")
	assert.False(t, ok)
}

func TestRegionID(t *testing.T) {
	o, err := Default()
	require.NoError(t, err)
	r := NewResolver(o)

	id, ok := r.RegionID("VISp")
	assert.True(t, ok)
	assert.Equal(t, 385, id)

	_, ok = r.RegionID("")
	assert.False(t, ok)
	_, ok = r.RegionID("nope")
	assert.False(t, ok)
}
