package atlas

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsortiumFrameKnownChannel(t *testing.T) {
	f := ConsortiumFrame(Bregma)
	require.NoError(t, f.Validate())

	got := f.Transform([3]float64{0.001, -0.002, 0.0003})
	want := Coordinate{ML: 4739, AP: 7400, DV: 32}

	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("Transform mismatch (-want +got):\n%s", diff)
	}
	apdvml, mlapdv := got.APDVML(), got.MLAPDV()
	assert.InDeltaSlice(t, []float64{7400, 32, 4739}, apdvml[:], 1e-6)
	assert.InDeltaSlice(t, []float64{4739, 7400, 32}, mlapdv[:], 1e-6)
}

func TestTowardLandmarkZeroIsLandmark(t *testing.T) {
	f := ConsortiumFrame(Bregma)
	got := f.Transform([3]float64{0, 0, 0})
	assert.Equal(t, Coordinate{ML: 5739, AP: 5400, DV: 332}, got)

	// negative zero compares equal to zero and takes the same branch
	got = f.Transform([3]float64{math.Copysign(0, -1), 0, 0})
	assert.Equal(t, 5739.0, got.ML)
}

func TestTransformPreservesMagnitude(t *testing.T) {
	frames := []Frame{ConsortiumFrame(Bregma), CCFFrame()}
	values := []float64{-0.0075, -0.0001, 0, 1e-7, 0.0042, 0.0113}

	for _, f := range frames {
		for _, v := range values {
			native := [3]float64{v, -v, v / 2}
			got := f.Transform(native)
			for i, r := range f.Rules {
				offset := math.Abs(got.Get(r.Axis) - f.Landmark.On(r.Axis))
				assert.InDelta(t, math.Abs(native[i])*r.Scale, offset, 1e-6,
					"frame=%s axis=%s v=%g", f.Name, r.Axis, native[i])
			}
		}
	}
}

func TestTransformDeterministic(t *testing.T) {
	f := ConsortiumFrame(Bregma)
	in := [3]float64{-0.0031, 0.0007, 0.0049}
	first := f.Transform(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, f.Transform(in))
	}
}

func TestTransformPropagatesNonFinite(t *testing.T) {
	f := ConsortiumFrame(Bregma)
	got := f.Transform([3]float64{math.NaN(), math.Inf(1), math.Inf(-1)})
	assert.True(t, math.IsNaN(got.ML))
	assert.True(t, math.IsInf(got.AP, -1))
	assert.True(t, math.IsInf(got.DV, 1))
}

func TestCCFFrameIsIdentity(t *testing.T) {
	got := CCFFrame().Transform([3]float64{8300, 3100, 7200})
	assert.Equal(t, Coordinate{AP: 8300, DV: 3100, ML: 7200}, got)
}

func TestAxisRuleApply(t *testing.T) {
	tests := []struct {
		name string
		rule AxisRule
		v    float64
		want float64
	}{
		{"positive subtracts", AxisRule{Axis: AP, Scale: 1e6, Sign: TowardLandmark}, 0.001, 4400},
		{"negative adds", AxisRule{Axis: AP, Scale: 1e6, Sign: TowardLandmark}, -0.001, 6400},
		{"along axis adds signed", AxisRule{Axis: AP, Scale: 1, Sign: AlongAxis}, -250, 5150},
		{"along axis scales", AxisRule{Axis: AP, Scale: 10, Sign: AlongAxis}, 3, 5430},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.rule.Apply(tt.v, 5400), 1e-6)
		})
	}
}

func TestFrameValidate(t *testing.T) {
	dup := ConsortiumFrame(Bregma)
	dup.Rules[2].Axis = ML
	assert.ErrorContains(t, dup.Validate(), "more than once")

	zero := ConsortiumFrame(Bregma)
	zero.Rules[1].Scale = 0
	assert.ErrorContains(t, zero.Validate(), "invalid scale")

	bad := CCFFrame()
	bad.Rules[0].Axis = Axis(7)
	assert.ErrorContains(t, bad.Validate(), "unknown axis")

	assert.NoError(t, CCFFrame().Validate())
}

func TestAxisString(t *testing.T) {
	assert.Equal(t, "ml", ML.String())
	assert.Equal(t, "ap", AP.String())
	assert.Equal(t, "dv", DV.String())
	assert.Equal(t, "toward_landmark", TowardLandmark.String())
}
