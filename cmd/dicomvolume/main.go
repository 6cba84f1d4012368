package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mrsinham/dicomvolume/internal/assembly"
	"github.com/mrsinham/dicomvolume/internal/dicomio"
	"github.com/mrsinham/dicomvolume/internal/volume"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	maybeRunWizard()

	input := flag.String("input", "", "Directory of .dcm files to assemble (required)")
	output := flag.String("output", "volume.raw", "Output path for the raw voxel array")
	sidecar := flag.String("sidecar", "", "Output path for the YAML sidecar (default: <output>.yaml)")

	stack := flag.String("stack", "", "Stack ID to assemble (default: first stack encountered)")
	rowOrder := flag.String("row-order", "bottomup", "Memory row order: bottomup, topdown, native")

	timeVector := flag.Bool("time-vector", false, "Fold time points into voxel components")
	timeIndex := flag.Int("time-index", -1, "Time point to materialize (default: first)")

	noRescale := flag.Bool("no-rescale", false, "Keep per-slice rescale values instead of reconciling them")
	noYBR := flag.Bool("no-ybr", false, "Keep YBR color data instead of converting to RGB")
	noSort := flag.Bool("no-sort", false, "Assume input files are already in slice order")

	workers := flag.Int("workers", 0, fmt.Sprintf("Number of parallel workers (default: %d = CPU cores)", runtime.NumCPU()))
	previews := flag.Int("previews", 0, "Number of evenly spaced slice preview PNGs to write")
	quiet := flag.Bool("quiet", false, "Suppress progress output")

	configFile := flag.String("config", "", "Load job configuration from YAML file")
	saveConfig := flag.String("save-config", "", "Save the effective configuration to YAML file")

	help := flag.Bool("help", false, "Show help message")
	showVersion := flag.Bool("version", false, "Show version")

	flag.Parse()

	if *showVersion {
		fmt.Printf("dicomvolume %s\n", version)
		os.Exit(0)
	}
	if *help {
		printHelp()
		os.Exit(0)
	}

	cfg := defaultConfig()
	if *configFile != "" {
		loaded, err := LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	// Explicit flags override the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "output":
			cfg.Output = *output
		case "sidecar":
			cfg.Sidecar = *sidecar
		case "stack":
			cfg.Stack = *stack
		case "row-order":
			cfg.RowOrder = *rowOrder
		case "time-vector":
			cfg.TimeAsVector = *timeVector
		case "time-index":
			cfg.TimeIndex = *timeIndex
		case "no-rescale":
			cfg.AutoRescale = !*noRescale
		case "no-ybr":
			cfg.AutoYBR = !*noYBR
		case "no-sort":
			cfg.Sorting = !*noSort
		case "workers":
			cfg.Workers = *workers
		case "previews":
			cfg.Previews = *previews
		case "quiet":
			cfg.Quiet = *quiet
		}
	})

	if cfg.Input == "" {
		fmt.Fprintln(os.Stderr, "Error: --input is required")
		printUsage()
		os.Exit(1)
	}
	if cfg.Sidecar == "" {
		cfg.Sidecar = cfg.Output + ".yaml"
	}

	if *saveConfig != "" {
		if err := cfg.Save(*saveConfig); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration saved to %s\n", *saveConfig)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	series, err := dicomio.OpenDir(cfg.Input)
	if err != nil {
		return err
	}
	if !cfg.Quiet {
		fmt.Printf("Parsed %d files from %s\n", series.FileCount(), cfg.Input)
	}

	var buf volume.Buffer
	if !cfg.Quiet {
		opts.Progress = progressPrinter()
	}
	res, err := assembly.Assemble(series, series, &buf, opts)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	out, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if _, err := buf.WriteRaw(out); err != nil {
		out.Close()
		return fmt.Errorf("write volume: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write volume: %w", err)
	}

	sc, err := os.Create(cfg.Sidecar)
	if err != nil {
		return fmt.Errorf("create sidecar: %w", err)
	}
	if err := volume.NewSidecar(res, series.Path).Write(sc); err != nil {
		sc.Close()
		return err
	}
	if err := sc.Close(); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}

	if cfg.Previews > 0 {
		if err := writePreviews(&buf, cfg.Output, cfg.Previews); err != nil {
			return err
		}
	}

	if !cfg.Quiet {
		d := res.Dimensions
		fmt.Println("\n✓ Assembly complete!")
		fmt.Printf("  Volume:  %s (%dx%dx%d, %d components, %d bytes/sample)\n",
			cfg.Output, d.Columns, d.Rows, d.Slices, d.Components, d.BytesPerSample)
		fmt.Printf("  Sidecar: %s\n", cfg.Sidecar)
		if res.TimeDimension > 1 {
			fmt.Printf("  Time:    %d points, spacing %g\n", res.TimeDimension, res.TimeSpacing)
		}
	}
	return nil
}

// progressPrinter returns a callback that redraws a one-line slice counter.
func progressPrinter() func(done, total int) {
	return func(done, total int) {
		fmt.Printf("\r  Slice %d/%d", done, total)
		if done == total {
			fmt.Println()
		}
	}
}

// writePreviews writes count evenly spaced slice previews next to the
// output volume.
func writePreviews(buf *volume.Buffer, output string, count int) error {
	slices := buf.Dimensions().Slices
	if count > slices {
		count = slices
	}
	base := output[:len(output)-len(filepath.Ext(output))]
	for i := 0; i < count; i++ {
		slice := i * (slices - 1)
		if count > 1 {
			slice = i * (slices - 1) / (count - 1)
		}
		path := fmt.Sprintf("%s_preview_%03d.png", base, slice)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create preview: %w", err)
		}
		if err := volume.PreviewPNG(buf, slice, 512, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: dicomvolume --input <dir> [options]")
	fmt.Println("Run 'dicomvolume --help' for details.")
}

func printHelp() {
	fmt.Println("dicomvolume - assemble a DICOM series into a single volume")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  dicomvolume --input <dir> [options]")
	fmt.Println("  dicomvolume wizard    # interactive job setup")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Assemble a series into volume.raw + volume.raw.yaml")
	fmt.Println("  dicomvolume --input ./series")
	fmt.Println()
	fmt.Println("  # Pick a specific stack and keep rows top-down")
	fmt.Println("  dicomvolume --input ./series --stack 2 --row-order topdown")
	fmt.Println()
	fmt.Println("  # Cardiac series: all time points as voxel components")
	fmt.Println("  dicomvolume --input ./cine --time-vector")
	fmt.Println()
	fmt.Println("  # Third time point only, with 4 worker threads")
	fmt.Println("  dicomvolume --input ./cine --time-index 2 --workers 4")
	fmt.Println()
	fmt.Println("  # Write 5 preview PNGs alongside the volume")
	fmt.Println("  dicomvolume --input ./series --previews 5")
	fmt.Println()
	fmt.Println("  # Save the job for later replay")
	fmt.Println("  dicomvolume --input ./series --save-config job.yaml")
	fmt.Println("  dicomvolume --config job.yaml")
	fmt.Println()
	fmt.Println("Output:")
	fmt.Println("  A raw little-endian voxel array, slices in ascending order, plus a")
	fmt.Println("  YAML sidecar describing shape, spacing, patient-space transform,")
	fmt.Println("  rescale calibration, time organization and per-slice provenance.")
}
