// Package render hands aggregated points to the chart libraries: an
// interactive 3-D HTML scene and a static 2-D projection.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Camera is the initial view of the scene. It picks the plane of the PNG
// projection and, in the HTML scene, which atlas axis recedes into the
// screen.
type Camera int

const (
	Frontal  Camera = iota // looking along AP: ML across, DV down
	Sagittal               // from the side: AP across, DV down
	Top                    // dorsal view: ML across, AP down
)

func (c Camera) String() string {
	switch c {
	case Frontal:
		return "frontal"
	case Sagittal:
		return "sagittal"
	case Top:
		return "top"
	default:
		return fmt.Sprintf("camera(%d)", int(c))
	}
}

// ParseCamera accepts "frontal", "sagittal" or "top".
func ParseCamera(s string) (Camera, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "frontal", "":
		return Frontal, nil
	case "sagittal":
		return Sagittal, nil
	case "top":
		return Top, nil
	default:
		return Frontal, fmt.Errorf("unknown camera view %q (want frontal, sagittal or top)", s)
	}
}

// Settings configures one render. It is passed explicitly to the scene.
type Settings struct {
	ShowAxes   bool
	Fullscreen bool
	Camera     Camera
	PointSize  float64 // symbol size in pixels / points
}

// DefaultSettings mirrors the usual inspection setup.
func DefaultSettings() Settings {
	return Settings{ShowAxes: true, Camera: Frontal, PointSize: 4}
}

func (s Settings) pointSize() float64 {
	if s.PointSize <= 0 {
		return 4
	}
	return s.PointSize
}

var fallbackColor = colornames.Gray

// ParseColor resolves an SVG colour name or #rrggbb string.
func ParseColor(name string) color.RGBA {
	name = strings.ToLower(strings.TrimSpace(name))
	if c, ok := colornames.Map[name]; ok {
		return c
	}
	if len(name) == 7 && name[0] == '#' {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
		}
	}
	return fallbackColor
}

// hexColor renders c as #rrggbb for the HTML chart.
func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
