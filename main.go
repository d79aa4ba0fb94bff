// Command iwave-kernels precomputes the convolution kernels used by the
// iWave height-field wave solver and writes them as JSON lookup tables.
//
// Usage: iwave-kernels [flags] <kernelRadius>
// e.g.   iwave-kernels -compact 6
//
// The subcommand "iwave-kernels migrate <action>" manages the schema of the
// optional sqlite archive (-db).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/banshee-data/iwave.kernels/internal/config"
	"github.com/banshee-data/iwave.kernels/internal/db"
	"github.com/banshee-data/iwave.kernels/internal/kernel"
	"github.com/banshee-data/iwave.kernels/internal/version"
	"github.com/banshee-data/iwave.kernels/internal/viz"
)

var (
	compact     = flag.Bool("compact", false, "Store one representative per symmetric offset family")
	outputDir   = flag.String("output", "", "Output directory (default from config, else current directory)")
	configPath  = flag.String("config", "", "Optional JSON generation config file")
	deltaQ      = flag.Float64("delta-q", 0, "Wavenumber step of the series (overrides config)")
	sigma       = flag.Float64("sigma", 0, "Gaussian damping coefficient (overrides config)")
	nMax        = flag.Int("n-max", 0, "Number of series terms (overrides config)")
	workers     = flag.Int("workers", 0, "Worker goroutines for the offset loop (overrides config)")
	dbPath      = flag.String("db", "", "Also record the kernel in this sqlite archive")
	plotDir     = flag.String("plot-dir", "", "Also write PNG/HTML renderings into this directory")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <kernelRadius>\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "       %s migrate <action>\n\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func main() {
	// The migrate subcommand has its own argument handling and must be
	// dispatched before flag parsing.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		path := os.Getenv("IWAVE_KERNELS_DB")
		if path == "" {
			path = "kernels.db"
		}
		db.RunMigrateCommand(os.Args[2:], path)
		return
	}

	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "ERROR: Kernel radius not specified.")
		fmt.Fprintln(os.Stderr, "Please specify kernel radius as an argument.")
		usage()
		os.Exit(1)
	}

	radius, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		log.Fatalf("Invalid kernel radius %q: %v", flag.Arg(0), err)
	}
	if radius < 0 {
		log.Fatalf("Kernel radius must be non-negative, got %d", radius)
	}

	cfg := &config.GenerationConfig{}
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	params := cfg.Params()
	if *deltaQ != 0 {
		params.DeltaQ = *deltaQ
	}
	if *sigma != 0 {
		params.Sigma = *sigma
	}
	if *nMax != 0 {
		params.NMax = *nMax
	}
	if err := params.Validate(); err != nil {
		log.Fatalf("Invalid quantisation parameters: %v", err)
	}

	nWorkers := cfg.GetWorkers()
	if *workers != 0 {
		nWorkers = *workers
	}
	if nWorkers < 1 {
		log.Fatalf("Worker count must be at least 1, got %d", nWorkers)
	}

	outDir := cfg.GetOutputDir()
	if *outputDir != "" {
		outDir = *outputDir
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}

	if *verbose {
		log.Printf("Generating kernel: radius=%d compact=%v delta_q=%g sigma=%g n_max=%d workers=%d",
			radius, *compact, params.DeltaQ, params.Sigma, params.NMax, nWorkers)
	}

	start := time.Now()
	g0 := kernel.ComputeG0(params)
	if *verbose {
		log.Printf("Normalisation constant g0 = %.12g", g0)
	}

	table, err := kernel.BuildParallel(radius, *compact, params, g0, nWorkers)
	if err != nil {
		log.Fatalf("Kernel generation failed: %v", err)
	}
	if *verbose {
		log.Printf("Computed %d weights in %s", table.Len(), time.Since(start).Round(time.Millisecond))
	}

	outPath := filepath.Join(outDir, kernel.OutputFileName(radius, *compact))
	if err := kernel.WriteFile(outPath, table); err != nil {
		log.Fatalf("Failed to write kernel file: %v", err)
	}
	log.Printf("Wrote %s", outPath)

	if *dbPath != "" {
		if err := archiveRun(*dbPath, radius, *compact, params, g0, table); err != nil {
			log.Fatalf("Failed to archive kernel: %v", err)
		}
	}

	if *plotDir != "" {
		if err := writePlots(*plotDir, radius, *compact, table); err != nil {
			log.Fatalf("Failed to write plots: %v", err)
		}
	}
}

// archiveRun records the generated kernel in the sqlite archive, migrating
// the schema if needed.
func archiveRun(path string, radius int, compact bool, params kernel.Params, g0 float64, table kernel.Table) error {
	database, err := db.Open(path)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.MigrateUp(); err != nil {
		return err
	}

	run := &db.Run{
		Radius:  radius,
		Compact: compact,
		DeltaQ:  params.DeltaQ,
		Sigma:   params.Sigma,
		NMax:    params.NMax,
		G0:      g0,
	}
	if err := db.NewRunStore(database).Insert(run, table); err != nil {
		return err
	}
	log.Printf("Archived run %s in %s", run.RunID, path)
	return nil
}

// writePlots renders the table for visual inspection. The heatmap only
// exists for full-mode tables; compact tables get the profile and HTML chart.
func writePlots(dir string, radius int, compact bool, table kernel.Table) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}

	stem := fmt.Sprintf("iWave_kernels_%d", radius)
	if compact {
		stem += "_compact"
	}
	subtitle := fmt.Sprintf("radius=%d compact=%v", radius, compact)

	if table.Len() > 0 {
		if err := viz.RadialProfilePNG(filepath.Join(dir, stem+"_profile.png"), table); err != nil {
			return err
		}
		if err := viz.LatticeHTML(filepath.Join(dir, stem+".html"), table, subtitle); err != nil {
			return err
		}
	}
	if !compact {
		if err := viz.HeatmapPNG(filepath.Join(dir, stem+"_lattice.png"), table); err != nil {
			return err
		}
	}
	log.Printf("Wrote plots to %s", dir)
	return nil
}
