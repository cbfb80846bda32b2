// Package export writes normalized channel points to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/banshee-data/probe-atlas/internal/monitoring"
	"github.com/banshee-data/probe-atlas/internal/source"
)

// Header is the column layout of the normalized export.
var Header = []string{"ap", "dv", "ml", "region_acronym", "region_id"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes points in AP, DV, ML order. Unknown region ids are left
// blank.
func WriteCSV(w io.Writer, points []source.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, p := range points {
		c := p.Coord.APDVML()
		regionID := ""
		if p.RegionID != nil {
			regionID = strconv.Itoa(*p.RegionID)
		}
		rec := []string{formatFloat(c[0]), formatFloat(c[1]), formatFloat(c[2]), p.Acronym, regionID}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes points to path, creating parent directories.
func WriteFile(path string, points []source.Point) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, points); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	monitoring.Logf("Exported %d points to %s", len(points), path)
	return nil
}
