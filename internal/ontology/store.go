package ontology

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a sqlite-backed Hierarchy. It lets a full structure graph be
// imported once and reused across runs without re-parsing the CSV.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the sqlite file at path and applies
// pending schema migrations.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open structure store: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	// m is not closed: closing it would close db as well.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Import replaces the stored hierarchy with o in a single transaction.
func (s *Store) Import(o *Ontology) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM structures`); err != nil {
		return 0, fmt.Errorf("failed to clear structures: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO structures (structure_id, acronym, name, parent_structure_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, st := range o.Structures() {
		if _, err := stmt.Exec(st.ID, st.Acronym, st.Name, st.ParentID); err != nil {
			return 0, fmt.Errorf("failed to insert structure %d: %w", st.ID, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// Count returns the number of stored structures.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM structures`).Scan(&n)
	return n, err
}

// StructureByID implements Hierarchy.
func (s *Store) StructureByID(id int) (Structure, error) {
	return s.queryOne(`SELECT structure_id, acronym, name, parent_structure_id FROM structures WHERE structure_id = ?`, id)
}

// StructureByAcronym implements Hierarchy.
func (s *Store) StructureByAcronym(acronym string) (Structure, error) {
	return s.queryOne(`SELECT structure_id, acronym, name, parent_structure_id FROM structures WHERE acronym = ?`, acronym)
}

func (s *Store) queryOne(query string, arg any) (Structure, error) {
	var st Structure
	err := s.db.QueryRow(query, arg).Scan(&st.ID, &st.Acronym, &st.Name, &st.ParentID)
	if errors.Is(err, sql.ErrNoRows) {
		return Structure{}, fmt.Errorf("%v: %w", arg, ErrNotFound)
	}
	if err != nil {
		return Structure{}, fmt.Errorf("structure lookup failed: %w", err)
	}
	return st, nil
}
