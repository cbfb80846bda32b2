// Package atlas maps source-native channel coordinates into the Allen CCF
// micrometer frame.
//
// Each source describes its convention as a Frame: a landmark position in the
// atlas frame plus one AxisRule per native column. The rules are applied
// independently per axis, so a convention can be audited one axis at a time.
package atlas

import (
	"fmt"
	"math"
)

// Axis names one of the three atlas axes.
type Axis int

const (
	ML Axis = iota // medial-lateral (left-right)
	AP             // anterior-posterior
	DV             // dorsal-ventral
)

func (a Axis) String() string {
	switch a {
	case ML:
		return "ml"
	case AP:
		return "ap"
	case DV:
		return "dv"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// SignRule selects how a scaled native offset is placed relative to the
// landmark on its axis.
type SignRule int

const (
	// TowardLandmark subtracts the offset magnitude from the landmark when the
	// native value is non-negative and adds it when negative. Zero lands on
	// the subtract branch and yields the landmark itself.
	TowardLandmark SignRule = iota
	// AlongAxis adds the signed offset to the landmark. Sources already in
	// the atlas frame use it with a zero landmark.
	AlongAxis
)

func (s SignRule) String() string {
	switch s {
	case TowardLandmark:
		return "toward_landmark"
	case AlongAxis:
		return "along_axis"
	default:
		return fmt.Sprintf("sign(%d)", int(s))
	}
}

// Landmark is the atlas-frame position of the shared reference point in
// micrometers.
type Landmark struct {
	ML, AP, DV float64
}

// Bregma in the Allen CCF 25um volume, expressed in micrometers.
var Bregma = Landmark{ML: 5739, AP: 5400, DV: 332}

// On returns the landmark component for axis a.
func (l Landmark) On(a Axis) float64 {
	switch a {
	case ML:
		return l.ML
	case AP:
		return l.AP
	default:
		return l.DV
	}
}

// Coordinate is a point in the atlas frame, keyed by axis name. Use APDVML or
// MLAPDV to obtain a positional triple, never index the fields by order.
type Coordinate struct {
	AP, DV, ML float64
}

// Get returns the component for axis a.
func (c Coordinate) Get(a Axis) float64 {
	switch a {
	case ML:
		return c.ML
	case AP:
		return c.AP
	default:
		return c.DV
	}
}

func (c *Coordinate) set(a Axis, v float64) {
	switch a {
	case ML:
		c.ML = v
	case AP:
		c.AP = v
	default:
		c.DV = v
	}
}

// APDVML returns the (anterior-posterior, dorsal-ventral, medial-lateral)
// ordering expected by the scene renderer and the CSV export.
func (c Coordinate) APDVML() [3]float64 {
	return [3]float64{c.AP, c.DV, c.ML}
}

// MLAPDV returns the (medial-lateral, anterior-posterior, dorsal-ventral)
// ordering used by landmark tables.
func (c Coordinate) MLAPDV() [3]float64 {
	return [3]float64{c.ML, c.AP, c.DV}
}

// AxisRule converts one native column into one atlas axis.
type AxisRule struct {
	Axis  Axis
	Scale float64 // native unit -> micrometers
	Sign  SignRule
}

// Apply converts native value v given the landmark component on r.Axis.
// Non-finite input propagates unchanged through the arithmetic.
func (r AxisRule) Apply(v, landmark float64) float64 {
	scaled := v * r.Scale
	if r.Sign == AlongAxis {
		return landmark + scaled
	}
	if scaled < 0 {
		return landmark + math.Abs(scaled)
	}
	return landmark - math.Abs(scaled)
}

// Frame is a complete per-source coordinate convention. Rules[i] describes
// native column i.
type Frame struct {
	Name     string
	Landmark Landmark
	Rules    [3]AxisRule
}

// Validate checks that every atlas axis is produced exactly once and that all
// scales are usable.
func (f Frame) Validate() error {
	var seen [3]bool
	for i, r := range f.Rules {
		if r.Axis < ML || r.Axis > DV {
			return fmt.Errorf("frame %s: column %d has unknown axis %v", f.Name, i, r.Axis)
		}
		if seen[r.Axis] {
			return fmt.Errorf("frame %s: axis %s mapped more than once", f.Name, r.Axis)
		}
		seen[r.Axis] = true
		if r.Scale == 0 || math.IsNaN(r.Scale) || math.IsInf(r.Scale, 0) {
			return fmt.Errorf("frame %s: axis %s has invalid scale %v", f.Name, r.Axis, r.Scale)
		}
	}
	return nil
}

// Transform maps a native triple into the atlas frame.
func (f Frame) Transform(native [3]float64) Coordinate {
	var c Coordinate
	for i, r := range f.Rules {
		c.set(r.Axis, r.Apply(native[i], f.Landmark.On(r.Axis)))
	}
	return c
}

// MetersToMicrometers is the native scale of the consortium channel tables.
const MetersToMicrometers = 1e6

// ConsortiumFrame is the IBL convention: x, y, z columns in meters measured
// from bregma and mapped to ML, AP and DV respectively.
func ConsortiumFrame(landmark Landmark) Frame {
	return Frame{
		Name:     "consortium",
		Landmark: landmark,
		Rules: [3]AxisRule{
			{Axis: ML, Scale: MetersToMicrometers, Sign: TowardLandmark},
			{Axis: AP, Scale: MetersToMicrometers, Sign: TowardLandmark},
			{Axis: DV, Scale: MetersToMicrometers, Sign: TowardLandmark},
		},
	}
}

// CCFFrame is the identity convention for tables already expressed in CCF
// micrometers with columns ordered AP, DV, ML.
func CCFFrame() Frame {
	return Frame{
		Name: "ccf",
		Rules: [3]AxisRule{
			{Axis: AP, Scale: 1, Sign: AlongAxis},
			{Axis: DV, Scale: 1, Sign: AlongAxis},
			{Axis: ML, Scale: 1, Sign: AlongAxis},
		},
	}
}
