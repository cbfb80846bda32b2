package render

import (
	"bytes"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/probe-atlas/internal/aggregate"
	"github.com/banshee-data/probe-atlas/internal/atlas"
	"github.com/banshee-data/probe-atlas/internal/monitoring"
	"github.com/banshee-data/probe-atlas/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

var (
	bwmKey = source.SourceKey{Vendor: "ibl", Dataset: "brainwide_map"}
	vcKey  = source.SourceKey{Vendor: "allen", Dataset: "visual_coding"}
)

func sampleResult() aggregate.Result {
	return aggregate.Result{
		Points: []source.Point{
			{Coord: atlas.Coordinate{AP: 7400, DV: 32, ML: 4739}, Acronym: "LP", Key: bwmKey, Color: "red"},
			{Coord: atlas.Coordinate{AP: 7500, DV: 132, ML: 4639}, Acronym: "LP", Key: bwmKey, Color: "red"},
			{Coord: atlas.Coordinate{AP: math.NaN(), DV: 10, ML: 10}, Acronym: "LP", Key: bwmKey, Color: "red"},
			{Coord: atlas.Coordinate{AP: 8300, DV: 3100, ML: 7200}, Acronym: "VISp", Key: vcKey, Color: "green"},
		},
		Legend: aggregate.Legend{
			{Key: bwmKey, Color: "red"},
			{Key: vcKey, Color: "green"},
		},
	}
}

func TestSceneAddSkipsNonFinite(t *testing.T) {
	s := NewScene(DefaultSettings(), atlas.Bregma)
	s.Add(sampleResult())

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 1, s.Skipped())
	require.Len(t, s.groups, 2)
	assert.Equal(t, bwmKey, s.groups[0].entry.Key)
	assert.Equal(t, vcKey, s.groups[1].entry.Key)
}

func TestSceneAddKeepsEmptyLegendEntries(t *testing.T) {
	s := NewScene(DefaultSettings(), atlas.Bregma)
	s.Add(aggregate.Result{Legend: aggregate.Legend{{Key: bwmKey, Color: "red"}}})
	assert.Equal(t, 0, s.Len())
	require.Len(t, s.groups, 1)
}

func TestWriteHTML(t *testing.T) {
	s := NewScene(DefaultSettings(), atlas.Bregma)
	s.Add(sampleResult())

	var buf bytes.Buffer
	require.NoError(t, s.WriteHTML(&buf))
	html := buf.String()

	for _, want := range []string{"ibl/brainwide_map", "allen/visual_coding", landmarkSeries, "#ff0000", "#008000", "scatter3D"} {
		assert.Contains(t, html, want)
	}
	assert.Contains(t, html, "900px")
}

func TestWriteHTMLFullscreen(t *testing.T) {
	settings := DefaultSettings()
	settings.Fullscreen = true
	s := NewScene(settings, atlas.Bregma)

	var buf bytes.Buffer
	require.NoError(t, s.WriteHTML(&buf))
	assert.Contains(t, buf.String(), "100vw")
}

func TestProject(t *testing.T) {
	c := atlas.Coordinate{AP: 1, DV: 2, ML: 3}
	tests := []struct {
		camera Camera
		x, y   float64
	}{
		{Frontal, 3, -2},
		{Sagittal, 1, -2},
		{Top, 3, -1},
	}
	for _, tt := range tests {
		t.Run(tt.camera.String(), func(t *testing.T) {
			s := NewScene(Settings{Camera: tt.camera}, atlas.Bregma)
			x, y, _, _ := s.project(c)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)
		})
	}
}

func TestSaveProjection(t *testing.T) {
	for _, camera := range []Camera{Frontal, Sagittal, Top} {
		t.Run(camera.String(), func(t *testing.T) {
			settings := DefaultSettings()
			settings.Camera = camera
			settings.ShowAxes = camera != Top
			s := NewScene(settings, atlas.Bregma)
			s.Add(sampleResult())

			path := filepath.Join(t.TempDir(), "renders", "scene.png")
			require.NoError(t, s.SaveProjection(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestSaveProjectionUnknownFormat(t *testing.T) {
	s := NewScene(DefaultSettings(), atlas.Bregma)
	err := s.SaveProjection(filepath.Join(t.TempDir(), "scene.bogus"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "failed to save projection"))
}

func TestParseCamera(t *testing.T) {
	tests := []struct {
		in      string
		want    Camera
		wantErr bool
	}{
		{"", Frontal, false},
		{"frontal", Frontal, false},
		{" Sagittal ", Sagittal, false},
		{"TOP", Top, false},
		{"oblique", Frontal, true},
	}
	for _, tt := range tests {
		got, err := ParseCamera(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "camera(9)", Camera(9).String())
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"red", color.RGBA{R: 0xff, A: 0xff}},
		{"Orange", color.RGBA{R: 0xff, G: 0xa5, A: 0xff}},
		{"#102030", color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}},
		{"not-a-colour", fallbackColor},
		{"#zzzzzz", fallbackColor},
		{"", fallbackColor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseColor(tt.in), tt.in)
	}
	assert.Equal(t, "#008000", hexColor(ParseColor("green")))
}

func TestPointSizeFallback(t *testing.T) {
	assert.Equal(t, 4.0, Settings{}.pointSize())
	assert.Equal(t, 2.5, Settings{PointSize: 2.5}.pointSize())
}

func TestScene3DFollowsCamera(t *testing.T) {
	c := atlas.Coordinate{AP: 1, DV: 2, ML: 3}
	tests := []struct {
		camera  Camera
		want    []interface{}
		depthAx string
	}{
		{Frontal, []interface{}{3.0, 1.0, -2.0}, "AP (um)"},
		{Sagittal, []interface{}{1.0, 3.0, -2.0}, "ML (um)"},
		{Top, []interface{}{3.0, 2.0, -1.0}, "DV (um)"},
	}
	for _, tt := range tests {
		t.Run(tt.camera.String(), func(t *testing.T) {
			s := NewScene(Settings{Camera: tt.camera}, atlas.Bregma)
			assert.Equal(t, tt.want, s.scene3D(c))
			_, depth, _ := s.axes3D()
			assert.Equal(t, tt.depthAx, depth)

			var buf bytes.Buffer
			require.NoError(t, s.WriteHTML(&buf))
			assert.Contains(t, buf.String(), tt.depthAx)
		})
	}
}
