package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/probe-atlas/internal/aggregate"
	"github.com/banshee-data/probe-atlas/internal/atlas"
	"github.com/banshee-data/probe-atlas/internal/monitoring"
	"github.com/banshee-data/probe-atlas/internal/source"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const landmarkSeries = "bregma"

var landmarkColor = ParseColor("blue")

type group struct {
	entry  aggregate.LegendEntry
	coords []atlas.Coordinate
}

// Scene collects groups of atlas points for rendering.
type Scene struct {
	settings Settings
	landmark atlas.Landmark
	groups   []*group
	index    map[source.SourceKey]*group
	skipped  int
}

// NewScene returns an empty scene. The landmark is drawn as its own series.
func NewScene(settings Settings, landmark atlas.Landmark) *Scene {
	return &Scene{
		settings: settings,
		landmark: landmark,
		index:    make(map[source.SourceKey]*group),
	}
}

func finite(c atlas.Coordinate) bool {
	for _, v := range c.APDVML() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Add appends an aggregation result, one group per legend entry. Points with
// non-finite components cannot be drawn and are counted in Skipped.
func (s *Scene) Add(res aggregate.Result) {
	for _, e := range res.Legend {
		if _, ok := s.index[e.Key]; !ok {
			g := &group{entry: e}
			s.groups = append(s.groups, g)
			s.index[e.Key] = g
		}
	}
	for _, p := range res.Points {
		g, ok := s.index[p.Key]
		if !ok {
			g = &group{entry: aggregate.LegendEntry{Key: p.Key, Color: p.Color}}
			s.groups = append(s.groups, g)
			s.index[p.Key] = g
		}
		if !finite(p.Coord) {
			s.skipped++
			continue
		}
		g.coords = append(g.coords, p.Coord)
	}
}

// Skipped returns how many points were left out of the drawing.
func (s *Scene) Skipped() int { return s.skipped }

// Len returns the number of drawable points.
func (s *Scene) Len() int {
	n := 0
	for _, g := range s.groups {
		n += len(g.coords)
	}
	return n
}

func (s *Scene) landmarkCoord() atlas.Coordinate {
	return atlas.Coordinate{AP: s.landmark.AP, DV: s.landmark.DV, ML: s.landmark.ML}
}

// axes3D names the X, Y and Z axes of the 3-D scene. Z is drawn vertically
// and Y recedes into the screen, so the camera picks which atlas axis is the
// depth axis.
func (s *Scene) axes3D() (x, y, z string) {
	switch s.settings.Camera {
	case Sagittal:
		return "AP (um)", "ML (um)", "-DV (um)"
	case Top:
		return "ML (um)", "DV (um)", "-AP (um)"
	default:
		return "ML (um)", "AP (um)", "-DV (um)"
	}
}

// scene3D orders c to match axes3D.
func (s *Scene) scene3D(c atlas.Coordinate) []interface{} {
	switch s.settings.Camera {
	case Sagittal:
		return []interface{}{c.AP, c.ML, -c.DV}
	case Top:
		return []interface{}{c.ML, c.DV, -c.AP}
	default:
		return []interface{}{c.ML, c.AP, -c.DV}
	}
}

func withSymbolSize(size float64) charts.SeriesOpts {
	return func(s *charts.SingleSeries) {
		s.SymbolSize = size
	}
}

// WriteHTML renders the interactive scene.
func (s *Scene) WriteHTML(w io.Writer) error {
	width, height := "1200px", "900px"
	if s.settings.Fullscreen {
		width, height = "100vw", "100vh"
	}

	xName, yName, zName := s.axes3D()
	chart := charts.NewScatter3D()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Probe channels in CCF", Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Probe channels in CCF",
			Subtitle: fmt.Sprintf("points=%d sources=%d camera=%s", s.Len(), len(s.groups), s.settings.Camera),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: xName, Show: opts.Bool(s.settings.ShowAxes)}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: yName, Show: opts.Bool(s.settings.ShowAxes)}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: zName, Show: opts.Bool(s.settings.ShowAxes)}),
		charts.WithGrid3DOpts(opts.Grid3D{
			Show:        opts.Bool(s.settings.ShowAxes),
			ViewControl: &opts.ViewControl{AutoRotate: opts.Bool(false)},
		}),
	)

	for _, g := range s.groups {
		data := make([]opts.Chart3DData, 0, len(g.coords))
		for _, c := range g.coords {
			data = append(data, opts.Chart3DData{Value: s.scene3D(c)})
		}
		chart.AddSeries(g.entry.Key.String(), data,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(ParseColor(g.entry.Color))}),
			withSymbolSize(s.settings.pointSize()),
		)
	}
	chart.AddSeries(landmarkSeries,
		[]opts.Chart3DData{{Name: landmarkSeries, Value: s.scene3D(s.landmarkCoord())}},
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(landmarkColor)}),
		withSymbolSize(s.settings.pointSize()*3),
	)

	return chart.Render(w)
}

// project maps a coordinate onto the camera plane. Y is negated where the
// atlas axis grows downward on screen.
func (s *Scene) project(c atlas.Coordinate) (x, y float64, xLabel, yLabel string) {
	switch s.settings.Camera {
	case Sagittal:
		return c.AP, -c.DV, "AP (um)", "-DV (um)"
	case Top:
		return c.ML, -c.AP, "ML (um)", "-AP (um)"
	default:
		return c.ML, -c.DV, "ML (um)", "-DV (um)"
	}
}

func (s *Scene) scatter(coords []atlas.Coordinate, radius vg.Length) (*plotter.Scatter, error) {
	xys := make(plotter.XYs, len(coords))
	for i, c := range coords {
		xys[i].X, xys[i].Y, _, _ = s.project(c)
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = radius
	return sc, nil
}

// SaveProjection writes a PNG (or any format gonum/plot infers from the
// extension) of the scene projected for the configured camera.
func (s *Scene) SaveProjection(path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Probe channels, %s view", s.settings.Camera)
	_, _, p.X.Label.Text, p.Y.Label.Text = s.project(atlas.Coordinate{})
	p.Legend.Top = true

	radius := vg.Points(s.settings.pointSize() / 2)
	for _, g := range s.groups {
		if len(g.coords) == 0 {
			continue
		}
		sc, err := s.scatter(g.coords, radius)
		if err != nil {
			return fmt.Errorf("failed to build %s series: %w", g.entry.Key, err)
		}
		sc.GlyphStyle.Color = ParseColor(g.entry.Color)
		p.Add(sc)
		p.Legend.Add(g.entry.Key.String(), sc)
	}

	lm, err := s.scatter([]atlas.Coordinate{s.landmarkCoord()}, radius*3)
	if err != nil {
		return err
	}
	lm.GlyphStyle.Color = landmarkColor
	p.Add(lm)
	p.Legend.Add(landmarkSeries, lm)

	if s.settings.ShowAxes {
		p.Add(plotter.NewGrid())
	} else {
		p.HideAxes()
	}

	w, h := 8*vg.Inch, 8*vg.Inch
	if s.settings.Fullscreen {
		w, h = 16*vg.Inch, 9*vg.Inch
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("failed to save projection: %w", err)
	}
	monitoring.Logf("render: wrote %s projection with %d points to %s", s.settings.Camera, s.Len(), path)
	return nil
}
