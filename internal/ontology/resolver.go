package ontology

import (
	"strings"

	"github.com/banshee-data/probe-atlas/internal/monitoring"
)

// IdentifierKind says which region identifier a source row carries.
type IdentifierKind int

const (
	KindNone IdentifierKind = iota
	KindAcronym
	KindStructureID
)

// NoRegion is the structure id sources use for channels outside the brain.
const NoRegion = 0

// Identifier is the raw region key of one channel row.
type Identifier struct {
	Kind        IdentifierKind
	Acronym     string
	StructureID int
}

// AcronymID builds an acronym identifier; blank input yields KindNone.
func AcronymID(acronym string) Identifier {
	acronym = strings.TrimSpace(acronym)
	if acronym == "" {
		return Identifier{}
	}
	return Identifier{Kind: KindAcronym, Acronym: acronym}
}

// StructureID builds a numeric identifier.
func StructureID(id int) Identifier {
	return Identifier{Kind: KindStructureID, StructureID: id}
}

// Resolver maps identifiers to canonical acronyms.
type Resolver struct {
	h Hierarchy
}

// NewResolver returns a Resolver backed by h. A nil hierarchy resolves
// acronyms only.
func NewResolver(h Hierarchy) *Resolver {
	return &Resolver{h: h}
}

// Resolve returns the canonical acronym for id, or false when the row has no
// usable region. Lookup failures are never returned to the caller.
func (r *Resolver) Resolve(id Identifier) (string, bool) {
	switch id.Kind {
	case KindAcronym:
		a := strings.TrimSpace(id.Acronym)
		return a, a != ""
	case KindStructureID:
		if id.StructureID == NoRegion || r.h == nil {
			return "", false
		}
		sid := id.StructureID
		// negative ids mark the left hemisphere
		if sid < 0 {
			sid = -sid
		}
		s, err := r.h.StructureByID(sid)
		if err != nil {
			monitoring.Logf("ontology: unresolved structure id %d: %v", id.StructureID, err)
			return "", false
		}
		return s.Acronym, true
	default:
		return "", false
	}
}

// RegionID looks up the structure id for a canonical acronym.
func (r *Resolver) RegionID(acronym string) (int, bool) {
	if r.h == nil || acronym == "" {
		return 0, false
	}
	s, err := r.h.StructureByAcronym(acronym)
	if err != nil {
		return 0, false
	}
	return s.ID, true
}
