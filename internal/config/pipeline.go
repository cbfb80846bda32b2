package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/probe-atlas/internal/atlas"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the checked-in pipeline defaults file.
const DefaultConfigPath = "config/pipeline.defaults.json"

const maxConfigSize = 1 * 1024 * 1024 // 1MB

// Camera views understood by the renderer.
var validCameras = map[string]bool{"frontal": true, "sagittal": true, "top": true}

// PipelineConfig is the optional run configuration shared by the commands.
// Nil fields fall back to the defaults returned by the Get* methods, so
// partial files are safe. Command-line flags override file values.
type PipelineConfig struct {
	Landmark *LandmarkConfig `json:"landmark_um,omitempty" yaml:"landmark_um,omitempty"`

	// Region hierarchy. OntologyDB takes precedence over OntologyCSV; with
	// neither set the embedded structure table is used.
	OntologyCSV *string `json:"ontology_csv,omitempty" yaml:"ontology_csv,omitempty"`
	OntologyDB  *string `json:"ontology_db,omitempty" yaml:"ontology_db,omitempty"`

	DataDir *string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`

	// Rendering hand-off
	ShowAxes   *bool    `json:"show_axes,omitempty" yaml:"show_axes,omitempty"`
	Fullscreen *bool    `json:"fullscreen,omitempty" yaml:"fullscreen,omitempty"`
	Camera     *string  `json:"camera,omitempty" yaml:"camera,omitempty"`
	PointSize  *float64 `json:"point_size,omitempty" yaml:"point_size,omitempty"`

	// Additional (vendor, dataset) combinations and colours.
	Datasets []DatasetConfig `json:"datasets,omitempty" yaml:"datasets,omitempty"`
}

// LandmarkConfig is a landmark in atlas micrometers.
type LandmarkConfig struct {
	ML float64 `json:"ml" yaml:"ml"`
	AP float64 `json:"ap" yaml:"ap"`
	DV float64 `json:"dv" yaml:"dv"`
}

// DatasetConfig registers one extra dataset.
type DatasetConfig struct {
	Vendor  string `json:"vendor" yaml:"vendor"`
	Dataset string `json:"dataset" yaml:"dataset"`
	Color   string `json:"color,omitempty" yaml:"color,omitempty"`
}

// EmptyPipelineConfig returns a config with every field unset.
func EmptyPipelineConfig() *PipelineConfig {
	return &PipelineConfig{}
}

// LoadPipelineConfig reads a .json, .yaml or .yml file.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPipelineConfig()
	if ext == ".json" {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that set values are usable.
func (c *PipelineConfig) Validate() error {
	if c.Landmark != nil {
		for _, v := range []float64{c.Landmark.ML, c.Landmark.AP, c.Landmark.DV} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("landmark_um must be finite, got %+v", *c.Landmark)
			}
		}
	}
	if c.Camera != nil && !validCameras[*c.Camera] {
		return fmt.Errorf("camera must be one of frontal, sagittal, top, got %q", *c.Camera)
	}
	if c.PointSize != nil && *c.PointSize <= 0 {
		return fmt.Errorf("point_size must be positive, got %f", *c.PointSize)
	}
	for i, d := range c.Datasets {
		if d.Vendor == "" || d.Dataset == "" {
			return fmt.Errorf("datasets[%d]: vendor and dataset are required", i)
		}
	}
	return nil
}

// GetLandmark returns the configured landmark or bregma.
func (c *PipelineConfig) GetLandmark() atlas.Landmark {
	if c.Landmark == nil {
		return atlas.Bregma
	}
	return atlas.Landmark{ML: c.Landmark.ML, AP: c.Landmark.AP, DV: c.Landmark.DV}
}

// GetOntologyCSV returns the structures CSV path, or "" for the embedded table.
func (c *PipelineConfig) GetOntologyCSV() string {
	if c.OntologyCSV == nil {
		return ""
	}
	return *c.OntologyCSV
}

// GetOntologyDB returns the sqlite structure store path, or "".
func (c *PipelineConfig) GetOntologyDB() string {
	if c.OntologyDB == nil {
		return ""
	}
	return *c.OntologyDB
}

// GetDataDir returns the root of the <vendor>/<dataset>.csv layout.
func (c *PipelineConfig) GetDataDir() string {
	if c.DataDir == nil || *c.DataDir == "" {
		return "data"
	}
	return *c.DataDir
}

// GetShowAxes returns the show_axes value or the default.
func (c *PipelineConfig) GetShowAxes() bool {
	if c.ShowAxes == nil {
		return true
	}
	return *c.ShowAxes
}

// GetFullscreen returns the fullscreen value or the default.
func (c *PipelineConfig) GetFullscreen() bool {
	if c.Fullscreen == nil {
		return false
	}
	return *c.Fullscreen
}

// GetCamera returns the camera value or the default.
func (c *PipelineConfig) GetCamera() string {
	if c.Camera == nil {
		return "frontal"
	}
	return *c.Camera
}

// GetPointSize returns the point_size value or the default.
func (c *PipelineConfig) GetPointSize() float64 {
	if c.PointSize == nil {
		return 4
	}
	return *c.PointSize
}

// DatasetColors returns the dataset -> colour overrides.
func (c *PipelineConfig) DatasetColors() map[string]string {
	out := make(map[string]string, len(c.Datasets))
	for _, d := range c.Datasets {
		if d.Color != "" {
			out[d.Dataset] = d.Color
		}
	}
	return out
}
