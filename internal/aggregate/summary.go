package aggregate

import (
	"math"

	"github.com/banshee-data/probe-atlas/internal/atlas"
	"github.com/banshee-data/probe-atlas/internal/source"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Summary holds per-source spatial statistics. Vectors are laid out as
// X=AP, Y=DV, Z=ML.
type Summary struct {
	Key      source.SourceKey
	Count    int
	Finite   int // points with all components finite; statistics use these only
	Regions  int // distinct acronyms
	Centroid r3.Vec
	StdDev   r3.Vec
	Bounds   r3.Box
}

func toVec(c atlas.Coordinate) r3.Vec {
	v := c.APDVML()
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func finite(v r3.Vec) bool {
	for _, f := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// Summarize groups points by key, in first-appearance order.
func Summarize(points []source.Point) []Summary {
	var order []source.SourceKey
	groups := make(map[source.SourceKey][]source.Point)
	for _, p := range points {
		if _, ok := groups[p.Key]; !ok {
			order = append(order, p.Key)
		}
		groups[p.Key] = append(groups[p.Key], p)
	}

	out := make([]Summary, 0, len(order))
	for _, k := range order {
		out = append(out, summarize(k, groups[k]))
	}
	return out
}

func summarize(key source.SourceKey, points []source.Point) Summary {
	s := Summary{Key: key, Count: len(points)}
	regions := make(map[string]struct{})
	var xs, ys, zs []float64
	var sum r3.Vec

	for _, p := range points {
		regions[p.Acronym] = struct{}{}
		v := toVec(p.Coord)
		if !finite(v) {
			continue
		}
		if s.Finite == 0 {
			s.Bounds = r3.Box{Min: v, Max: v}
		} else {
			s.Bounds.Min = r3.Vec{X: math.Min(s.Bounds.Min.X, v.X), Y: math.Min(s.Bounds.Min.Y, v.Y), Z: math.Min(s.Bounds.Min.Z, v.Z)}
			s.Bounds.Max = r3.Vec{X: math.Max(s.Bounds.Max.X, v.X), Y: math.Max(s.Bounds.Max.Y, v.Y), Z: math.Max(s.Bounds.Max.Z, v.Z)}
		}
		s.Finite++
		sum = r3.Add(sum, v)
		xs = append(xs, v.X)
		ys = append(ys, v.Y)
		zs = append(zs, v.Z)
	}
	s.Regions = len(regions)

	if s.Finite > 0 {
		s.Centroid = r3.Scale(1/float64(s.Finite), sum)
	}
	if s.Finite > 1 {
		s.StdDev = r3.Vec{X: stat.StdDev(xs, nil), Y: stat.StdDev(ys, nil), Z: stat.StdDev(zs, nil)}
	}
	return s
}
