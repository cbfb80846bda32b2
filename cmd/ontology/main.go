// Command ontology imports a structures CSV into the sqlite structure store
// and looks up regions by id or acronym.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/probe-atlas/internal/ontology"
	"github.com/banshee-data/probe-atlas/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ontology", flag.ContinueOnError)
	fs.SetOutput(stderr)
	csvPath := fs.String("csv", "", "Structures CSV to import (defaults to the embedded table)")
	dbPath := fs.String("db", "", "Sqlite structure store")
	importFlag := fs.Bool("import", false, "Replace the store contents with --csv")
	lookup := fs.String("lookup", "", "Structure id or acronym to look up")
	ancestors := fs.Bool("ancestors", false, "With --lookup, also print the ancestor chain")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *showVersion {
		fmt.Fprintln(stdout, version.String("ontology"))
		return 0
	}
	if !*importFlag && *lookup == "" {
		fmt.Fprintln(stderr, "ontology: nothing to do (use --import and/or --lookup)")
		fs.Usage()
		return 2
	}
	if *importFlag && *dbPath == "" {
		fmt.Fprintln(stderr, "ontology: --import requires --db")
		return 2
	}

	if *importFlag {
		if err := importStore(*csvPath, *dbPath, stdout); err != nil {
			log.Printf("ontology: %v", err)
			return 1
		}
	}
	if *lookup == "" {
		return 0
	}

	h, closeFn, err := ontology.Open(*csvPath, *dbPath)
	if err != nil {
		log.Printf("ontology: %v", err)
		return 1
	}
	defer closeFn()

	s, err := find(h, *lookup)
	if errors.Is(err, ontology.ErrNotFound) {
		fmt.Fprintf(stderr, "ontology: %q not found\n", *lookup)
		return 1
	}
	if err != nil {
		log.Printf("ontology: %v", err)
		return 1
	}
	fmt.Fprintf(stdout, "%d\t%s\t%s\n", s.ID, s.Acronym, s.Name)
	if *ancestors {
		chain, err := ontology.AncestorsOf(h, s.ID)
		if err != nil {
			log.Printf("ontology: %v", err)
			return 1
		}
		for _, a := range chain {
			fmt.Fprintf(stdout, "  %d\t%s\n", a.ID, a.Acronym)
		}
	}
	return 0
}

func loadOntology(csvPath string) (*ontology.Ontology, error) {
	if csvPath != "" {
		return ontology.LoadFile(csvPath)
	}
	return ontology.Default()
}

func importStore(csvPath, dbPath string, stdout io.Writer) error {
	o, err := loadOntology(csvPath)
	if err != nil {
		return err
	}
	store, err := ontology.OpenStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	n, err := store.Import(o)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "imported %d structures into %s\n", n, dbPath)
	return nil
}

// find accepts a numeric id (negative ids are the left hemisphere) or an
// acronym.
func find(h ontology.Hierarchy, q string) (ontology.Structure, error) {
	q = strings.TrimSpace(q)
	if id, err := strconv.Atoi(q); err == nil {
		if id < 0 {
			id = -id
		}
		return h.StructureByID(id)
	}
	return h.StructureByAcronym(q)
}
