package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/iwave.kernels/internal/kernel"
)

// Run records one kernel generation: the quantisation parameters, the
// normalisation constant, and the lattice topology. The weights themselves
// live in kernel_weights keyed by the run ID.
type Run struct {
	RunID     string  `json:"run_id"`
	CreatedAt int64   `json:"created_at"`
	Radius    int     `json:"radius"`
	Compact   bool    `json:"compact"`
	DeltaQ    float64 `json:"delta_q"`
	Sigma     float64 `json:"sigma"`
	NMax      int     `json:"n_max"`
	G0        float64 `json:"g0"`
}

// RunStore provides persistence for kernel generation runs.
type RunStore struct {
	db *DB
}

// NewRunStore creates a RunStore backed by the given archive.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// Insert persists a run together with its table in one transaction. If RunID
// is empty, a UUID is generated. The archive either gains the whole kernel
// or nothing.
func (s *RunStore) Insert(run *Run, table kernel.Table) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO kernel_runs (
			run_id, created_at, radius, compact, delta_q, sigma, n_max, g0
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.CreatedAt, run.Radius, run.Compact,
		run.DeltaQ, run.Sigma, run.NMax, run.G0,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO kernel_weights (run_id, k, l, weight) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare weights: %w", err)
	}
	defer stmt.Close()

	for _, k := range table.Ks() {
		for _, l := range table.Ls(k) {
			w, _ := table.Weight(k, l)
			if _, err := stmt.Exec(run.RunID, k, l, w); err != nil {
				return fmt.Errorf("insert weight (%d,%d): %w", k, l, err)
			}
		}
	}

	return tx.Commit()
}

// Get returns a single run by ID.
func (s *RunStore) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, created_at, radius, compact, delta_q, sigma, n_max, g0
		FROM kernel_runs WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// List returns all runs, newest first.
func (s *RunStore) List() ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, created_at, radius, compact, delta_q, sigma, n_max, g0
		FROM kernel_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadTable reconstructs the kernel table of a run. Rows that carried no
// weights (the empty compact rows) are restored from the recorded topology so
// the result matches the generated table exactly.
func (s *RunStore) LoadTable(runID string) (kernel.Table, error) {
	run, err := s.Get(runID)
	if err != nil {
		return nil, err
	}

	table := make(kernel.Table)
	lo := -run.Radius
	if run.Compact {
		lo = 0
	}
	for k := lo; k <= run.Radius; k++ {
		table[k] = make(map[int]float64)
	}

	rows, err := s.db.Query(`
		SELECT k, l, weight FROM kernel_weights WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("query weights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, l int
		var w float64
		if err := rows.Scan(&k, &l, &w); err != nil {
			return nil, fmt.Errorf("scan weight: %w", err)
		}
		if _, ok := table[k]; !ok {
			table[k] = make(map[int]float64)
		}
		table[k][l] = w
	}
	return table, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*Run, error) {
	run := &Run{}
	err := s.Scan(
		&run.RunID, &run.CreatedAt, &run.Radius, &run.Compact,
		&run.DeltaQ, &run.Sigma, &run.NMax, &run.G0,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}
