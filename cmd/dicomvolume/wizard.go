package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// runWizard walks through one assembly job interactively and optionally runs
// it. The resulting configuration can be saved for replay with --config.
func runWizard() error {
	cfg := defaultConfig()
	timeIndex := "first"
	workers := "auto"
	savePath := ""
	runNow := true

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Series directory").
				Description("Directory containing the .dcm slice files").
				Validate(requireValue("a series directory is required")).
				Value(&cfg.Input),
			huh.NewInput().
				Title("Output volume").
				Description("Path for the raw voxel array; the YAML sidecar lands next to it").
				Value(&cfg.Output),
			huh.NewInput().
				Title("Stack ID").
				Description("Leave empty to assemble the first stack encountered").
				Value(&cfg.Stack),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Memory row order").
				Options(
					huh.NewOption("Bottom-up - flip rows, graphics convention", "bottomup"),
					huh.NewOption("Top-down - keep the file's row order", "topdown"),
					huh.NewOption("File native - never flip", "native"),
				).
				Value(&cfg.RowOrder),
			huh.NewConfirm().
				Title("Fold time points into voxel components?").
				Description("Off: a single time point is materialized").
				Value(&cfg.TimeAsVector),
			huh.NewInput().
				Title("Time point").
				Description("Index of the time point to materialize, or 'first'").
				Validate(validateTimeIndex).
				Value(&timeIndex),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Reconcile divergent rescale values?").
				Value(&cfg.AutoRescale),
			huh.NewConfirm().
				Title("Convert YBR color to RGB?").
				Value(&cfg.AutoYBR),
			huh.NewConfirm().
				Title("Sort slices spatially?").
				Description("Off: files are assumed pre-sorted").
				Value(&cfg.Sorting),
			huh.NewInput().
				Title("Worker threads").
				Description("Number of parallel slice workers, or 'auto'").
				Validate(validateWorkers).
				Value(&workers),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Save configuration to").
				Description("Optional YAML path for replay with --config").
				Value(&savePath),
			huh.NewConfirm().
				Title("Assemble now?").
				Value(&runNow),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.TimeIndex = parseTimeIndex(timeIndex)
	cfg.Workers = parseWorkers(workers)
	if cfg.Sidecar == "" {
		cfg.Sidecar = cfg.Output + ".yaml"
	}

	if savePath != "" {
		if err := cfg.Save(savePath); err != nil {
			return err
		}
		fmt.Printf("Configuration saved to %s\n", savePath)
	}
	if !runNow {
		return nil
	}
	return run(cfg)
}

func requireValue(msg string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s", msg)
		}
		return nil
	}
}

func validateTimeIndex(s string) error {
	if _, err := strconv.Atoi(s); err == nil || isAuto(s, "first") {
		return nil
	}
	return fmt.Errorf("enter a time point index or 'first'")
}

func validateWorkers(s string) error {
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return nil
	}
	if isAuto(s, "auto") {
		return nil
	}
	return fmt.Errorf("enter a worker count or 'auto'")
}

func parseTimeIndex(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return -1
}

func parseWorkers(s string) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return 0
}

func isAuto(s, word string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "" || s == word
}

// maybeRunWizard handles the wizard subcommand before flag parsing.
func maybeRunWizard() {
	if len(os.Args) > 1 && os.Args[1] == "wizard" {
		if err := runWizard(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}
}
