// Package db persists generated kernel tables in a sqlite archive so
// downstream solvers can pull precomputed kernels without re-running the
// generator.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite connection used by the kernel archive.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the archive at path without touching the schema;
// migrations manage the schema separately.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// A single writer keeps the single-file archive free of SQLITE_BUSY
	// handling.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &DB{sqlDB}, nil
}
