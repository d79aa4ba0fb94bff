package kernel

import (
	"encoding/json"
	"fmt"
	"os"
)

// OutputFileName returns the conventional file name for a generated kernel:
// iWave_kernels_<radius>.json, with a _compact suffix in compact mode. The
// downstream solver locates kernels by this convention.
func OutputFileName(radius int, compact bool) string {
	if compact {
		return fmt.Sprintf("iWave_kernels_%d_compact.json", radius)
	}
	return fmt.Sprintf("iWave_kernels_%d.json", radius)
}

// WriteFile persists the table as indented JSON. Any error makes the output
// file invalid; callers treat a failed write as fatal rather than retrying.
func WriteFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", " ")
	if err := enc.Encode(t); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a table previously written by WriteFile.
func ReadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return t, nil
}
