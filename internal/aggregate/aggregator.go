// Package aggregate merges normalized points from several sources into one
// ordered point set with a colour legend.
package aggregate

import (
	"fmt"

	"github.com/banshee-data/probe-atlas/internal/monitoring"
	"github.com/banshee-data/probe-atlas/internal/source"
	"github.com/google/uuid"
)

// Request names one source table to load.
type Request struct {
	Vendor  string
	Dataset string
	Path    string
}

// Key returns the request's source key.
func (r Request) Key() source.SourceKey {
	return source.SourceKey{Vendor: r.Vendor, Dataset: r.Dataset}
}

// Options extends the built-in tables.
type Options struct {
	ExtraCombinations []source.SourceKey
	Colors            map[string]string // dataset -> colour overrides
}

// Aggregator loads requests through the adapter registered for each vendor.
// Its tables are fixed at construction.
type Aggregator struct {
	adapters map[string]source.Adapter
	valid    map[source.SourceKey]bool
	colors   ColorTable
}

// New registers adapters by vendor.
func New(adapters []source.Adapter, opts Options) *Aggregator {
	a := &Aggregator{
		adapters: make(map[string]source.Adapter, len(adapters)),
		valid:    make(map[source.SourceKey]bool),
		colors:   NewColorTable(opts.Colors),
	}
	for _, ad := range adapters {
		a.adapters[ad.Vendor()] = ad
	}
	for _, k := range DefaultCombinations {
		a.valid[k] = true
	}
	for _, k := range opts.ExtraCombinations {
		a.valid[k] = true
	}
	return a
}

// Valid reports whether key is a known (vendor, dataset) combination.
func (a *Aggregator) Valid(key source.SourceKey) bool {
	return a.valid[key]
}

// SourceReport describes the outcome of one request.
type SourceReport struct {
	Key     source.SourceKey
	Path    string
	Stats   source.Stats
	Skipped bool  // invalid combination, never loaded
	Err     error // load failed; the source contributed nothing
}

// Report summarises an aggregation run.
type Report struct {
	RunID   string
	Sources []SourceReport
}

// Failed counts sources that were skipped or failed to load.
func (r Report) Failed() int {
	n := 0
	for _, s := range r.Sources {
		if s.Skipped || s.Err != nil {
			n++
		}
	}
	return n
}

// Dropped totals rows dropped for unresolved regions.
func (r Report) Dropped() int {
	n := 0
	for _, s := range r.Sources {
		n += s.Stats.Dropped
	}
	return n
}

// Result is the merged output of Aggregate.
type Result struct {
	Points []source.Point
	Legend Legend
	Report Report
}

// Aggregate loads every request in order. Invalid combinations are skipped
// and sources that fail are reported; neither stops the run.
func (a *Aggregator) Aggregate(reqs []Request) Result {
	res := Result{Report: Report{RunID: uuid.NewString()}}
	var loaded []source.SourceKey

	for _, req := range reqs {
		key := req.Key()
		rep := SourceReport{Key: key, Path: req.Path}

		if !a.Valid(key) {
			monitoring.Logf("aggregate: skipping unknown combination vendor=%s dataset=%s", req.Vendor, req.Dataset)
			rep.Skipped = true
			res.Report.Sources = append(res.Report.Sources, rep)
			continue
		}

		points, stats, err := a.load(req)
		rep.Stats = stats
		if err != nil {
			monitoring.Logf("aggregate: source %s failed: %v", key, err)
			rep.Err = err
			res.Report.Sources = append(res.Report.Sources, rep)
			continue
		}

		color := a.colors.Lookup(key.Dataset)
		for i := range points {
			points[i].Key = key
			points[i].Color = color
		}
		res.Points = append(res.Points, points...)
		loaded = append(loaded, key)
		res.Report.Sources = append(res.Report.Sources, rep)
		monitoring.Logf("aggregate: %s rows=%d emitted=%d dropped=%d", key, stats.Rows, stats.Emitted, stats.Dropped)
	}

	res.Legend = BuildLegend(loaded, a.colors)
	return res
}

func (a *Aggregator) load(req Request) ([]source.Point, source.Stats, error) {
	ad, ok := a.adapters[req.Vendor]
	if !ok {
		return nil, source.Stats{}, fmt.Errorf("no adapter registered for vendor %q", req.Vendor)
	}
	stream, err := ad.Load(req.Path, req.Dataset)
	if err != nil {
		return nil, source.Stats{}, err
	}
	return source.Collect(stream)
}
