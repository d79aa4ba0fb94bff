// Package main provides a comparison tool for generated kernel files. It is
// mainly used to check series convergence: generate the same radius with two
// n_max values and inspect how far the weights moved.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/iwave.kernels/internal/kernel"
)

// Config holds configuration for the kernel comparison.
type Config struct {
	FileA      string
	FileB      string
	OutputJSON string
	Verbose    bool
}

// ComparisonResult holds the results of comparing two kernel files.
type ComparisonResult struct {
	FileA        string  `json:"file_a"`
	FileB        string  `json:"file_b"`
	Matched      int     `json:"matched"`
	OnlyInA      int     `json:"only_in_a"`
	OnlyInB      int     `json:"only_in_b"`
	MaxAbsDiff   float64 `json:"max_abs_diff"`
	MeanAbsDiff  float64 `json:"mean_abs_diff"`
	MaxAbsDiffAt [2]int  `json:"max_abs_diff_at"`
}

func main() {
	cfg := parseFlags()

	if cfg.FileA == "" || cfg.FileB == "" {
		log.Fatal("Both -a and -b kernel files are required")
	}

	result, err := runComparison(cfg)
	if err != nil {
		log.Fatalf("Comparison failed: %v", err)
	}

	printResults(result)

	if cfg.OutputJSON != "" {
		if err := exportJSON(result, cfg.OutputJSON); err != nil {
			log.Fatalf("Failed to export JSON: %v", err)
		}
		log.Printf("Results exported to: %s", cfg.OutputJSON)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.FileA, "a", "", "First kernel JSON file")
	flag.StringVar(&cfg.FileB, "b", "", "Second kernel JSON file")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Output JSON filename (e.g., diff.json)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Log every mismatched offset")

	flag.Parse()

	return cfg
}

func runComparison(cfg Config) (*ComparisonResult, error) {
	a, err := kernel.ReadFile(cfg.FileA)
	if err != nil {
		return nil, err
	}
	b, err := kernel.ReadFile(cfg.FileB)
	if err != nil {
		return nil, err
	}

	result := &ComparisonResult{FileA: cfg.FileA, FileB: cfg.FileB}

	var diffs []float64
	for _, k := range a.Ks() {
		for _, l := range a.Ls(k) {
			wa, _ := a.Weight(k, l)
			wb, ok := b.Weight(k, l)
			if !ok {
				result.OnlyInA++
				if cfg.Verbose {
					log.Printf("offset (%d,%d) only in %s", k, l, cfg.FileA)
				}
				continue
			}
			result.Matched++
			d := math.Abs(wa - wb)
			diffs = append(diffs, d)
			if d > result.MaxAbsDiff {
				result.MaxAbsDiff = d
				result.MaxAbsDiffAt = [2]int{k, l}
			}
		}
	}
	for _, k := range b.Ks() {
		for _, l := range b.Ls(k) {
			if _, ok := a.Weight(k, l); !ok {
				result.OnlyInB++
				if cfg.Verbose {
					log.Printf("offset (%d,%d) only in %s", k, l, cfg.FileB)
				}
			}
		}
	}

	if len(diffs) > 0 {
		result.MeanAbsDiff = stat.Mean(diffs, nil)
	}

	return result, nil
}

func printResults(result *ComparisonResult) {
	fmt.Println("=== Kernel Comparison ===")
	fmt.Printf("A: %s\n", result.FileA)
	fmt.Printf("B: %s\n", result.FileB)
	fmt.Printf("Matched offsets: %d\n", result.Matched)
	fmt.Printf("Only in A: %d\n", result.OnlyInA)
	fmt.Printf("Only in B: %d\n", result.OnlyInB)
	fmt.Printf("Max |diff|:  %.12g at (%d,%d)\n", result.MaxAbsDiff, result.MaxAbsDiffAt[0], result.MaxAbsDiffAt[1])
	fmt.Printf("Mean |diff|: %.12g\n", result.MeanAbsDiff)
}

func exportJSON(result *ComparisonResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
