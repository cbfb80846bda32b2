// Package source reads per-source channel tables and normalizes every row
// into the shared atlas frame.
package source

import (
	"math"
	"strconv"
	"strings"

	"github.com/banshee-data/probe-atlas/internal/atlas"
	"github.com/banshee-data/probe-atlas/internal/ontology"
)

// SourceKey groups points for display.
type SourceKey struct {
	Vendor  string
	Dataset string
}

func (k SourceKey) String() string {
	return k.Vendor + "/" + k.Dataset
}

// Record is one source row before normalization.
type Record struct {
	Native   [3]float64 // in the adapter's native column order
	Region   ontology.Identifier
	RegionID *int
	Dataset  string
}

// Point is a normalized channel position. Acronym is never empty.
type Point struct {
	Coord    atlas.Coordinate
	Acronym  string
	RegionID *int
	Dataset  string

	// Set by the aggregator.
	Key   SourceKey
	Color string
}

// parseCoord reads a coordinate cell. Blank and "nan" cells become NaN so
// that they propagate through the transform like any other non-finite value.
func parseCoord(s string) (float64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// parseOptionalID reads an integer id that may be exported as a float
// ("385.0") or left blank. Non-numeric cells and values outside the int32
// range of structure ids are treated as missing.
func parseOptionalID(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		if v > math.MaxInt32 || v < -math.MaxInt32 {
			return 0, false
		}
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func intPtr(v int) *int { return &v }
