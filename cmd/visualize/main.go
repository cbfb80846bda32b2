// Command visualize merges channel tables from several sources into one
// atlas-space point set and hands it to the renderers.
//
//	visualize --vendor ibl --dataset brainwide_map --vendor allen --dataset visual_coding --html scene.html
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/probe-atlas/internal/aggregate"
	"github.com/banshee-data/probe-atlas/internal/export"
	"github.com/banshee-data/probe-atlas/internal/pipeline"
	"github.com/banshee-data/probe-atlas/internal/render"
	"github.com/banshee-data/probe-atlas/internal/security"
	"github.com/banshee-data/probe-atlas/internal/source"
	"github.com/banshee-data/probe-atlas/internal/version"
)

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

var errPairing = errors.New("mismatched source flags")

// pairRequests zips the repeatable flags into requests. Inputs are optional;
// when given there must be one per pair.
func pairRequests(vendors, datasets, inputs []string, defaultPath func(vendor, dataset string) string) ([]aggregate.Request, error) {
	if len(vendors) != len(datasets) {
		return nil, fmt.Errorf("%w: %d --vendor vs %d --dataset", errPairing, len(vendors), len(datasets))
	}
	if len(inputs) != 0 && len(inputs) != len(vendors) {
		return nil, fmt.Errorf("%w: %d --input for %d sources", errPairing, len(inputs), len(vendors))
	}
	reqs := make([]aggregate.Request, len(vendors))
	for i := range vendors {
		reqs[i] = aggregate.Request{Vendor: vendors[i], Dataset: datasets[i]}
		if len(inputs) != 0 {
			reqs[i].Path = inputs[i]
		} else {
			reqs[i].Path = defaultPath(vendors[i], datasets[i])
		}
	}
	return reqs, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("visualize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var vendors, datasets, inputs stringList
	fs.Var(&vendors, "vendor", "Source vendor (repeatable, paired with --dataset)")
	fs.Var(&datasets, "dataset", "Dataset name (repeatable, paired with --vendor)")
	fs.Var(&inputs, "input", "Explicit table path per pair (repeatable; defaults to <data_dir>/<vendor>/<dataset>.csv)")
	htmlOut := fs.String("html", "", "Write the interactive 3-D scene to this HTML file")
	pngOut := fs.String("png", "", "Write a 2-D projection for the camera view")
	exportCSV := fs.String("export_csv", "", "Write the merged normalized points")
	exportDir := fs.String("export_dir", "", "Write one normalized CSV per source into this directory")
	dataDir := fs.String("data_dir", "", "Root of the default table layout (overrides config)")
	showAxes := fs.String("show_axes", "", "Draw axes: true or false (overrides config)")
	fullscreen := fs.String("fullscreen", "", "Fill the viewport: true or false (overrides config)")
	camera := fs.String("camera", "", "Camera view: frontal, sagittal or top (overrides config)")
	configPath := fs.String("config", "", "Pipeline config (.json or .yaml)")
	ontologyCSV := fs.String("ontology", "", "Structures CSV (defaults to the embedded table)")
	ontologyDB := fs.String("ontology_db", "", "Sqlite structure store (seeded on first use)")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String("visualize"))
		return 0
	}

	env, err := pipeline.Open(*configPath, pipeline.Overrides{
		OntologyCSV: *ontologyCSV,
		OntologyDB:  *ontologyDB,
		DataDir:     *dataDir,
	})
	if err != nil {
		log.Printf("visualize: %v", err)
		return 1
	}
	defer env.Close()

	reqs, err := pairRequests(vendors, datasets, inputs, env.DefaultPath)
	if err != nil {
		fmt.Fprintf(stderr, "visualize: %v\n", err)
		return 2
	}

	settings, err := renderSettings(env, *showAxes, *fullscreen, *camera)
	if err != nil {
		fmt.Fprintf(stderr, "visualize: %v\n", err)
		return 2
	}

	res := env.Aggregator().Aggregate(reqs)
	for _, s := range aggregate.Summarize(res.Points) {
		log.Printf("visualize: %s points=%d regions=%d centroid(ap,dv,ml)=(%.0f, %.0f, %.0f)",
			s.Key, s.Count, s.Regions, s.Centroid.X, s.Centroid.Y, s.Centroid.Z)
	}
	if len(reqs) > 0 && res.Report.Failed() == len(reqs) {
		log.Printf("visualize: run %s: all %d sources failed", res.Report.RunID, len(reqs))
		return 1
	}

	if err := writeOutputs(res, settings, env, outputs{html: *htmlOut, png: *pngOut, csv: *exportCSV, dir: *exportDir}); err != nil {
		log.Printf("visualize: %v", err)
		return 1
	}
	log.Printf("visualize: run %s: %d points from %d sources (%d failed, %d rows dropped)",
		res.Report.RunID, len(res.Points), len(reqs), res.Report.Failed(), res.Report.Dropped())
	return 0
}

func parseBoolFlag(name, v string, fallback bool) (bool, error) {
	switch strings.ToLower(v) {
	case "":
		return fallback, nil
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return fallback, fmt.Errorf("--%s: invalid boolean %q", name, v)
}

// renderSettings applies flag overrides on top of the configured settings.
func renderSettings(env *pipeline.Env, showAxes, fullscreen, camera string) (render.Settings, error) {
	settings, err := env.RenderSettings()
	if err != nil {
		return settings, err
	}
	if settings.ShowAxes, err = parseBoolFlag("show_axes", showAxes, settings.ShowAxes); err != nil {
		return settings, err
	}
	if settings.Fullscreen, err = parseBoolFlag("fullscreen", fullscreen, settings.Fullscreen); err != nil {
		return settings, err
	}
	if camera != "" {
		if settings.Camera, err = render.ParseCamera(camera); err != nil {
			return settings, err
		}
	}
	return settings, nil
}

type outputs struct {
	html, png, csv, dir string
}

func writeOutputs(res aggregate.Result, settings render.Settings, env *pipeline.Env, out outputs) error {
	scene := render.NewScene(settings, env.Config.GetLandmark())
	scene.Add(res)
	if scene.Skipped() > 0 {
		log.Printf("visualize: %d points with non-finite coordinates left out of the scene", scene.Skipped())
	}

	if out.html != "" {
		if err := writeHTML(scene, out.html); err != nil {
			return err
		}
	}
	if out.png != "" {
		if err := scene.SaveProjection(out.png); err != nil {
			return err
		}
	}
	if out.csv != "" {
		if err := export.WriteFile(out.csv, res.Points); err != nil {
			return err
		}
	}
	if out.dir != "" {
		for _, e := range res.Legend {
			path, err := sourceExportPath(out.dir, e.Key)
			if err != nil {
				return err
			}
			if err := export.WriteFile(path, pointsFor(res.Points, e.Key)); err != nil {
				return err
			}
		}
	}
	return nil
}

// sourceExportPath names the per-source CSV inside dir. The name is derived
// from data, so it is sanitised and kept within dir.
func sourceExportPath(dir string, key source.SourceKey) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}
	path := filepath.Join(dir, security.SanitizeFilename(key.String())+".csv")
	if err := security.ValidatePathWithinDirectory(path, dir); err != nil {
		return "", fmt.Errorf("export for %s: %w", key, err)
	}
	return path, nil
}

func pointsFor(points []source.Point, key source.SourceKey) []source.Point {
	var out []source.Point
	for _, p := range points {
		if p.Key == key {
			out = append(out, p)
		}
	}
	return out
}

func writeHTML(scene *render.Scene, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := scene.WriteHTML(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to render scene: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("visualize: wrote %d points to %s", scene.Len(), path)
	return nil
}
