package names

import (
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"

	_ "github.com/mattn/go-sqlite3"
)

const sqlCreateTables = `
	CREATE TABLE IF NOT EXISTS AssetNameCache (
		Hash INTEGER PRIMARY KEY NOT NULL,
		Value TEXT NOT NULL
	);
`

// SQLiteLookup reads names from an AssetNameCache table. Hashes are stored
// as their two's-complement int64 so the full 64-bit range fits an INTEGER key.
type SQLiteLookup struct {
	db    *sql.DB
	query *sql.Stmt
}

// OpenSQLite opens (creating if needed) the name database at path.
func OpenSQLite(path string) (*SQLiteLookup, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("names: open %s: %w", path, err)
	}
	if _, err := db.Exec(sqlCreateTables); err != nil {
		db.Close()
		return nil, fmt.Errorf("names: create tables in %s: %w", path, err)
	}
	stmt, err := db.Prepare("SELECT Value FROM AssetNameCache WHERE Hash = ?")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("names: prepare lookup: %w", err)
	}
	return &SQLiteLookup{db: db, query: stmt}, nil
}

func (s *SQLiteLookup) Lookup(id uint64) (string, bool, error) {
	var value string
	err := s.query.QueryRow(int64(id)).Scan(&value)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("names: lookup %016x: %w", id, err)
	}
	return value, true, nil
}

// Insert writes entries in one transaction, replacing existing hashes.
func (s *SQLiteLookup) Insert(entries map[uint64]string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("names: begin: %w", err)
	}
	stmt, err := tx.Prepare("INSERT OR REPLACE INTO AssetNameCache (Hash, Value) VALUES (?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("names: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range slices.Sorted(maps.Keys(entries)) {
		if _, err := stmt.Exec(int64(id), entries[id]); err != nil {
			tx.Rollback()
			return fmt.Errorf("names: insert %016x: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("names: commit: %w", err)
	}
	return nil
}

// Count returns the number of stored names.
func (s *SQLiteLookup) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM AssetNameCache").Scan(&n); err != nil {
		return 0, fmt.Errorf("names: count: %w", err)
	}
	return n, nil
}

func (s *SQLiteLookup) Close() error {
	s.query.Close()
	return s.db.Close()
}
