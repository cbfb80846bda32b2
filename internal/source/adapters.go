package source

import (
	"fmt"

	"github.com/banshee-data/probe-atlas/internal/atlas"
	"github.com/banshee-data/probe-atlas/internal/ontology"
)

// Vendor names.
const (
	VendorConsortium     = "ibl"
	VendorAtlasReference = "allen"
)

// ConsortiumSchema is the channel table written by the consortium
// downloader: bregma-relative x, y, z in meters and a region acronym.
var ConsortiumSchema = Schema{
	{Name: "x", Required: true},
	{Name: "y", Required: true},
	{Name: "z", Required: true},
	{Name: "region_acronym", Aliases: []string{"region_acronym", "acronym"}, Required: true},
	{Name: "atlas_id"},
}

// AtlasReferenceSchema is the ecephys channel table of the atlas reference
// dataset, already in CCF micrometers.
var AtlasReferenceSchema = Schema{
	{Name: "anterior_posterior_ccf_coordinate", Required: true},
	{Name: "dorsal_ventral_ccf_coordinate", Required: true},
	{Name: "left_right_ccf_coordinate", Required: true},
	{Name: "ecephys_structure_id", Required: true},
	{Name: "ecephys_structure_acronym", Required: true},
}

// Consortium reads consortium channel tables.
type Consortium struct {
	resolver *ontology.Resolver
	frame    atlas.Frame
}

// NewConsortium returns a consortium adapter anchored at landmark.
func NewConsortium(resolver *ontology.Resolver, landmark atlas.Landmark) *Consortium {
	return &Consortium{resolver: resolver, frame: atlas.ConsortiumFrame(landmark)}
}

// Vendor implements Adapter.
func (c *Consortium) Vendor() string { return VendorConsortium }

// Load implements Adapter.
func (c *Consortium) Load(path, dataset string) (*Stream, error) {
	return openStream(path, dataset, ConsortiumSchema, decodeConsortium, c.frame, c.resolver)
}

func decodeConsortium(b Binding, row []string) (Record, error) {
	var rec Record
	for i, name := range []string{"x", "y", "z"} {
		v, err := parseCoord(b.Value(row, name))
		if err != nil {
			return Record{}, fmt.Errorf("invalid %s coordinate: %w", name, err)
		}
		rec.Native[i] = v
	}

	id, hasID := parseOptionalID(b.Value(row, "atlas_id"))
	if hasID {
		rec.RegionID = intPtr(id)
	}
	rec.Region = ontology.AcronymID(b.Value(row, "region_acronym"))
	if rec.Region.Kind == ontology.KindNone && hasID {
		rec.Region = ontology.StructureID(id)
	}
	return rec, nil
}

// AtlasReference reads atlas reference ecephys channel tables.
type AtlasReference struct {
	resolver *ontology.Resolver
	frame    atlas.Frame
}

// NewAtlasReference returns an atlas reference adapter.
func NewAtlasReference(resolver *ontology.Resolver) *AtlasReference {
	return &AtlasReference{resolver: resolver, frame: atlas.CCFFrame()}
}

// Vendor implements Adapter.
func (a *AtlasReference) Vendor() string { return VendorAtlasReference }

// Load implements Adapter.
func (a *AtlasReference) Load(path, dataset string) (*Stream, error) {
	return openStream(path, dataset, AtlasReferenceSchema, decodeAtlasReference, a.frame, a.resolver)
}

func decodeAtlasReference(b Binding, row []string) (Record, error) {
	var rec Record
	cols := []string{"anterior_posterior_ccf_coordinate", "dorsal_ventral_ccf_coordinate", "left_right_ccf_coordinate"}
	for i, name := range cols {
		v, err := parseCoord(b.Value(row, name))
		if err != nil {
			return Record{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		rec.Native[i] = v
	}

	// Rows with neither id nor acronym keep KindNone and are dropped
	// without a lookup.
	id, hasID := parseOptionalID(b.Value(row, "ecephys_structure_id"))
	if hasID {
		rec.RegionID = intPtr(id)
	}
	rec.Region = ontology.AcronymID(b.Value(row, "ecephys_structure_acronym"))
	if rec.Region.Kind == ontology.KindNone && hasID {
		rec.Region = ontology.StructureID(id)
	}
	return rec, nil
}
