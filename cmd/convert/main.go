// Command convert reads one consortium channel table and writes the
// normalized atlas CSV (ap, dv, ml, region_acronym, region_id).
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/banshee-data/probe-atlas/internal/export"
	"github.com/banshee-data/probe-atlas/internal/pipeline"
	"github.com/banshee-data/probe-atlas/internal/source"
	"github.com/banshee-data/probe-atlas/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	inputCSV := fs.String("input_csv", "", "Consortium channel table (x, y, z in meters)")
	outputCSV := fs.String("output_csv", "", "Normalized CSV to write")
	dataset := fs.String("dataset", "brainwide_map", "Dataset tag attached to every point")
	ontologyCSV := fs.String("ontology", "", "Structures CSV (defaults to the embedded table)")
	ontologyDB := fs.String("ontology_db", "", "Sqlite structure store (seeded on first use)")
	configPath := fs.String("config", "", "Pipeline config (.json or .yaml)")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String("convert"))
		return 0
	}
	if *inputCSV == "" || *outputCSV == "" {
		fmt.Fprintln(stderr, "convert: --input_csv and --output_csv are required")
		fs.Usage()
		return 2
	}

	env, err := pipeline.Open(*configPath, pipeline.Overrides{OntologyCSV: *ontologyCSV, OntologyDB: *ontologyDB})
	if err != nil {
		log.Printf("convert: %v", err)
		return 1
	}
	defer env.Close()

	stream, err := source.NewConsortium(env.Resolver, env.Config.GetLandmark()).Load(*inputCSV, *dataset)
	if err != nil {
		log.Printf("convert: %v", err)
		return 1
	}
	points, stats, err := source.Collect(stream)
	if err != nil {
		log.Printf("convert: %v", err)
		return 1
	}
	if err := export.WriteFile(*outputCSV, points); err != nil {
		log.Printf("convert: %v", err)
		return 1
	}
	log.Printf("convert: %s rows=%d written=%d dropped=%d", *inputCSV, stats.Rows, stats.Emitted, stats.Dropped)
	return 0
}
