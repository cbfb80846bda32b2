// Package ontology provides the brain-region hierarchy used to turn numeric
// structure ids into canonical region acronyms.
package ontology

import (
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

//go:embed structures/*.csv
var embeddedStructures embed.FS

const defaultStructuresFile = "structures/allen_mouse_structures.csv"

// ErrNotFound is returned by a Hierarchy when no structure matches.
var ErrNotFound = errors.New("structure not found")

// Structure is one node of the region hierarchy.
type Structure struct {
	ID       int
	Acronym  string
	Name     string
	ParentID int // 0 for the root
}

// Hierarchy looks up structures by id or acronym. Implementations return an
// error wrapping ErrNotFound for unknown keys.
type Hierarchy interface {
	StructureByID(id int) (Structure, error)
	StructureByAcronym(acronym string) (Structure, error)
}

// Ontology is an in-memory Hierarchy.
type Ontology struct {
	byID      map[int]Structure
	byAcronym map[string]int
	order     []int
}

// New builds an Ontology from structures. Duplicate ids or acronyms are
// rejected.
func New(structures []Structure) (*Ontology, error) {
	o := &Ontology{
		byID:      make(map[int]Structure, len(structures)),
		byAcronym: make(map[string]int, len(structures)),
	}
	for _, s := range structures {
		if _, dup := o.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate structure id %d", s.ID)
		}
		if _, dup := o.byAcronym[s.Acronym]; dup {
			return nil, fmt.Errorf("duplicate structure acronym %q", s.Acronym)
		}
		o.byID[s.ID] = s
		o.byAcronym[s.Acronym] = s.ID
		o.order = append(o.order, s.ID)
	}
	return o, nil
}

// Default returns the embedded Allen mouse structure subset.
func Default() (*Ontology, error) {
	f, err := embeddedStructures.Open(defaultStructuresFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded structures: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// LoadFile reads a structures CSV from disk.
func LoadFile(path string) (*Ontology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open structures file: %w", err)
	}
	defer f.Close()
	o, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// Parse reads a structures table with at least the columns id, acronym and
// parent_structure_id. A name column is optional. Column order is free.
func Parse(r io.Reader) (*Ontology, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read structures CSV: %v", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient data in structures file")
	}

	col := make(map[string]int)
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"id", "acronym", "parent_structure_id"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("structures file missing column %q", required)
		}
	}
	nameCol, hasName := col["name"]

	structures := make([]Structure, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		id, err := strconv.Atoi(strings.TrimSpace(rec[col["id"]]))
		if err != nil {
			return nil, fmt.Errorf("invalid structure id at line %d: %v", line, err)
		}
		s := Structure{ID: id, Acronym: strings.TrimSpace(rec[col["acronym"]])}
		if s.Acronym == "" {
			return nil, fmt.Errorf("empty acronym at line %d", line)
		}
		if hasName {
			s.Name = rec[nameCol]
		}
		if p := strings.TrimSpace(rec[col["parent_structure_id"]]); p != "" {
			// parent ids are sometimes exported as floats ("997.0")
			pf, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid parent id at line %d: %v", line, err)
			}
			s.ParentID = int(pf)
		}
		structures = append(structures, s)
	}
	return New(structures)
}

// StructureByID implements Hierarchy.
func (o *Ontology) StructureByID(id int) (Structure, error) {
	s, ok := o.byID[id]
	if !ok {
		return Structure{}, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return s, nil
}

// StructureByAcronym implements Hierarchy.
func (o *Ontology) StructureByAcronym(acronym string) (Structure, error) {
	id, ok := o.byAcronym[acronym]
	if !ok {
		return Structure{}, fmt.Errorf("acronym %q: %w", acronym, ErrNotFound)
	}
	return o.byID[id], nil
}

// Ancestors returns the parent chain of id, nearest first, ending at the root.
// Unknown parents terminate the walk.
func (o *Ontology) Ancestors(id int) []Structure {
	var out []Structure
	s, ok := o.byID[id]
	for ok && s.ParentID != 0 && len(out) < len(o.byID) {
		s, ok = o.byID[s.ParentID]
		if ok {
			out = append(out, s)
		}
	}
	return out
}

// AncestorsOf walks the parent chain of id through any Hierarchy, nearest
// first. Unknown parents end the walk like Ontology.Ancestors; other backend
// errors are returned. A repeated id ends the walk.
func AncestorsOf(h Hierarchy, id int) ([]Structure, error) {
	s, err := h.StructureByID(id)
	if err != nil {
		return nil, err
	}
	var out []Structure
	seen := map[int]bool{id: true}
	for s.ParentID != 0 && !seen[s.ParentID] {
		seen[s.ParentID] = true
		s, err = h.StructureByID(s.ParentID)
		if errors.Is(err, ErrNotFound) {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Structures returns all structures in input order.
func (o *Ontology) Structures() []Structure {
	out := make([]Structure, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.byID[id])
	}
	return out
}

// Len returns the number of structures.
func (o *Ontology) Len() int { return len(o.order) }
