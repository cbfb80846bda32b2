// Package pipeline wires configuration, the region hierarchy and the source
// adapters together for the command-line tools.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/probe-atlas/internal/aggregate"
	"github.com/banshee-data/probe-atlas/internal/config"
	"github.com/banshee-data/probe-atlas/internal/ontology"
	"github.com/banshee-data/probe-atlas/internal/render"
	"github.com/banshee-data/probe-atlas/internal/source"
)

// Overrides are flag values that take precedence over the config file.
// Empty strings mean "not given".
type Overrides struct {
	OntologyCSV string
	OntologyDB  string
	DataDir     string
}

// Env is an opened run environment. Close releases the hierarchy backend.
type Env struct {
	Config   *config.PipelineConfig
	Resolver *ontology.Resolver

	dataDir string
	closeFn func() error
}

// LoadConfig reads path, or returns the empty config when path is "" and
// the defaults file does not exist.
func LoadConfig(path string) (*config.PipelineConfig, error) {
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigPath); err != nil {
			return config.EmptyPipelineConfig(), nil
		}
		path = config.DefaultConfigPath
	}
	return config.LoadPipelineConfig(path)
}

// Open loads configuration from configPath and opens the hierarchy.
func Open(configPath string, ov Overrides) (*Env, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return OpenWithConfig(cfg, ov)
}

// OpenWithConfig opens the hierarchy named by cfg and ov.
func OpenWithConfig(cfg *config.PipelineConfig, ov Overrides) (*Env, error) {
	csvPath := pick(ov.OntologyCSV, cfg.GetOntologyCSV())
	dbPath := pick(ov.OntologyDB, cfg.GetOntologyDB())

	h, closeFn, err := ontology.Open(csvPath, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open region hierarchy: %w", err)
	}
	return &Env{
		Config:   cfg,
		Resolver: ontology.NewResolver(h),
		dataDir:  pick(ov.DataDir, cfg.GetDataDir()),
		closeFn:  closeFn,
	}, nil
}

func pick(flagValue, cfgValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return cfgValue
}

// Close releases the hierarchy backend.
func (e *Env) Close() error {
	return e.closeFn()
}

// Adapters returns one adapter per vendor, sharing the env's resolver.
func (e *Env) Adapters() []source.Adapter {
	return []source.Adapter{
		source.NewConsortium(e.Resolver, e.Config.GetLandmark()),
		source.NewAtlasReference(e.Resolver),
	}
}

// Aggregator builds an aggregator with the configured extra datasets and
// colours.
func (e *Env) Aggregator() *aggregate.Aggregator {
	var extra []source.SourceKey
	for _, d := range e.Config.Datasets {
		extra = append(extra, source.SourceKey{Vendor: d.Vendor, Dataset: d.Dataset})
	}
	return aggregate.New(e.Adapters(), aggregate.Options{
		ExtraCombinations: extra,
		Colors:            e.Config.DatasetColors(),
	})
}

// DefaultPath is where a (vendor, dataset) table lives when no explicit
// input is given: <data_dir>/<vendor>/<dataset>.csv.
func (e *Env) DefaultPath(vendor, dataset string) string {
	return filepath.Join(e.dataDir, vendor, dataset+".csv")
}

// RenderSettings converts the config's render values.
func (e *Env) RenderSettings() (render.Settings, error) {
	camera, err := render.ParseCamera(e.Config.GetCamera())
	if err != nil {
		return render.Settings{}, err
	}
	return render.Settings{
		ShowAxes:   e.Config.GetShowAxes(),
		Fullscreen: e.Config.GetFullscreen(),
		Camera:     camera,
		PointSize:  e.Config.GetPointSize(),
	}, nil
}
