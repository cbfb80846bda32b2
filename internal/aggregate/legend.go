package aggregate

import (
	"github.com/banshee-data/probe-atlas/internal/source"
)

// Known datasets.
const (
	DatasetBrainwideMap      = "brainwide_map"
	DatasetReproducibleEphys = "reproducible_ephys"
	DatasetVisualCoding      = "visual_coding"

	// DefaultColor is used for datasets missing from the colour table.
	DefaultColor = "gray"
)

// DefaultCombinations lists the (vendor, dataset) pairs the adapters know how
// to read. Each has an entry in DefaultColors; DefaultColor is reached only by
// datasets registered through Options.ExtraCombinations.
var DefaultCombinations = []source.SourceKey{
	{Vendor: source.VendorConsortium, Dataset: DatasetBrainwideMap},
	{Vendor: source.VendorConsortium, Dataset: DatasetReproducibleEphys},
	{Vendor: source.VendorAtlasReference, Dataset: DatasetVisualCoding},
}

// DefaultColors maps dataset names to display colours.
var DefaultColors = map[string]string{
	DatasetBrainwideMap:      "red",
	DatasetReproducibleEphys: "orange",
	DatasetVisualCoding:      "green",
}

// LegendEntry pairs a source key with its display colour.
type LegendEntry struct {
	Key   source.SourceKey
	Color string
}

// Legend is ordered by first appearance of each key.
type Legend []LegendEntry

// Color returns the colour recorded for key, or DefaultColor.
func (l Legend) Color(key source.SourceKey) string {
	for _, e := range l {
		if e.Key == key {
			return e.Color
		}
	}
	return DefaultColor
}

// Keys returns the legend keys in order.
func (l Legend) Keys() []source.SourceKey {
	keys := make([]source.SourceKey, len(l))
	for i, e := range l {
		keys[i] = e.Key
	}
	return keys
}

// ColorTable resolves dataset colours. It is read-only once built.
type ColorTable struct {
	colors map[string]string
}

// NewColorTable copies DefaultColors and applies overrides.
func NewColorTable(overrides map[string]string) ColorTable {
	colors := make(map[string]string, len(DefaultColors)+len(overrides))
	for k, v := range DefaultColors {
		colors[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			colors[k] = v
		}
	}
	return ColorTable{colors: colors}
}

// Lookup returns the colour for dataset, falling back to DefaultColor.
func (t ColorTable) Lookup(dataset string) string {
	if c, ok := t.colors[dataset]; ok {
		return c
	}
	return DefaultColor
}

// BuildLegend produces one entry per distinct key, in order.
func BuildLegend(keys []source.SourceKey, table ColorTable) Legend {
	seen := make(map[source.SourceKey]bool, len(keys))
	var legend Legend
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		legend = append(legend, LegendEntry{Key: k, Color: table.Lookup(k.Dataset)})
	}
	return legend
}
