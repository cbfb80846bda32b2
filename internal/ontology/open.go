package ontology

import "fmt"

// Open picks the hierarchy backend for a run. With dbPath set the sqlite
// store is used, seeded from csvPath (or the embedded table) when it is
// still empty. Otherwise csvPath is parsed, and with neither the embedded
// table is used. The returned close func is never nil.
func Open(csvPath, dbPath string) (Hierarchy, func() error, error) {
	noop := func() error { return nil }

	load := func() (*Ontology, error) {
		if csvPath != "" {
			return LoadFile(csvPath)
		}
		return Default()
	}

	if dbPath == "" {
		o, err := load()
		if err != nil {
			return nil, noop, err
		}
		return o, noop, nil
	}

	store, err := OpenStore(dbPath)
	if err != nil {
		return nil, noop, err
	}
	n, err := store.Count()
	if err != nil {
		store.Close()
		return nil, noop, err
	}
	if n == 0 {
		o, err := load()
		if err != nil {
			store.Close()
			return nil, noop, err
		}
		if _, err := store.Import(o); err != nil {
			store.Close()
			return nil, noop, fmt.Errorf("failed to seed structure store: %w", err)
		}
	}
	return store, store.Close, nil
}
