package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/probe-atlas/internal/atlas"
	"github.com/banshee-data/probe-atlas/internal/ontology"
)

// Adapter loads one source layout.
type Adapter interface {
	Vendor() string
	Load(path, dataset string) (*Stream, error)
}

// Stats counts rows seen by a Stream.
type Stats struct {
	Rows    int
	Emitted int
	Dropped int // rows without a resolvable region
}

// decodeFunc turns one CSV row into a Record. It returns an error only for
// rows that cannot be interpreted at all.
type decodeFunc func(b Binding, row []string) (Record, error)

// Stream yields normalized points from one opened source table. It reads
// lazily, is single pass, and must be closed.
type Stream struct {
	path     string
	dataset  string
	f        *os.File
	r        *csv.Reader
	binding  Binding
	decode   decodeFunc
	frame    atlas.Frame
	resolver *ontology.Resolver
	line     int
	stats    Stats
	done     bool
}

// openStream opens path, binds schema to its header and returns a Stream.
// Missing files, unreadable headers and missing required columns fail here.
func openStream(path, dataset string, schema Schema, decode decodeFunc, frame atlas.Frame, resolver *ontology.Resolver) (*Stream, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %s: %w", path, err)
	}
	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("source %s: empty file", path)
		}
		return nil, fmt.Errorf("source %s: failed to read header: %w", path, err)
	}
	b, err := schema.Bind(header)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source %s: %w", path, err)
	}
	return &Stream{
		path:     path,
		dataset:  dataset,
		f:        f,
		r:        r,
		binding:  b,
		decode:   decode,
		frame:    frame,
		resolver: resolver,
		line:     1,
	}, nil
}

// Next returns the next point, skipping rows whose region does not
// resolve. It returns io.EOF once the table is exhausted.
func (s *Stream) Next() (Point, error) {
	if s.done {
		return Point{}, io.EOF
	}
	for {
		row, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			s.done = true
			return Point{}, io.EOF
		}
		s.line++
		if err != nil {
			s.done = true
			return Point{}, fmt.Errorf("source %s: line %d: %w", s.path, s.line, err)
		}
		s.stats.Rows++

		rec, err := s.decode(s.binding, row)
		if err != nil {
			s.done = true
			return Point{}, fmt.Errorf("source %s: line %d: %w", s.path, s.line, err)
		}
		acronym, ok := s.resolver.Resolve(rec.Region)
		if !ok {
			s.stats.Dropped++
			continue
		}

		regionID := rec.RegionID
		if regionID == nil {
			if id, ok := s.resolver.RegionID(acronym); ok {
				regionID = intPtr(id)
			}
		}
		s.stats.Emitted++
		return Point{
			Coord:    s.frame.Transform(rec.Native),
			Acronym:  acronym,
			RegionID: regionID,
			Dataset:  s.dataset,
		}, nil
	}
}

// Stats returns the counts so far.
func (s *Stream) Stats() Stats { return s.stats }

// Path returns the source file path.
func (s *Stream) Path() string { return s.path }

// Close releases the underlying file.
func (s *Stream) Close() error {
	s.done = true
	return s.f.Close()
}

// Collect drains and closes s. On error no points are returned, so a source
// contributes either all of its resolved rows or nothing.
func Collect(s *Stream) ([]Point, Stats, error) {
	defer s.Close()
	var points []Point
	for {
		p, err := s.Next()
		if errors.Is(err, io.EOF) {
			return points, s.Stats(), nil
		}
		if err != nil {
			return nil, s.Stats(), err
		}
		points = append(points, p)
	}
}
