package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mrsinham/dicomvolume/internal/assembly"
)

func TestConfigRoundTrip(t *testing.T) {
	cfg := defaultConfig()
	cfg.Input = "series"
	cfg.Stack = "2"
	cfg.RowOrder = "topdown"
	cfg.TimeAsVector = true
	cfg.Workers = 4

	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	back, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if back != cfg {
		t.Errorf("round trip changed config:\n got %+v\nwant %+v", back, cfg)
	}
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	// A sparse file must not zero out the boolean defaults.
	path := filepath.Join(t.TempDir(), "job.yaml")
	if err := os.WriteFile(path, []byte("input: series\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if !cfg.AutoRescale || !cfg.AutoYBR || !cfg.Sorting {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.TimeIndex != -1 {
		t.Errorf("TimeIndex = %d, want -1", cfg.TimeIndex)
	}
}

func TestParseRowOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    assembly.RowOrder
		wantErr bool
	}{
		{"bottomup", assembly.RowOrderBottomUp, false},
		{"Bottom-Up", assembly.RowOrderBottomUp, false},
		{"", assembly.RowOrderBottomUp, false},
		{"topdown", assembly.RowOrderTopDown, false},
		{"native", assembly.RowOrderFileNative, false},
		{"sideways", 0, true},
	}
	for _, tt := range tests {
		got, err := parseRowOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRowOrder(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("parseRowOrder(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := defaultConfig()
	cfg.Stack = "7"
	cfg.RowOrder = "native"
	cfg.AutoRescale = false

	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options failed: %v", err)
	}
	if opts.DesiredStackID != "7" {
		t.Errorf("DesiredStackID = %q", opts.DesiredStackID)
	}
	if opts.MemoryRowOrder != assembly.RowOrderFileNative {
		t.Errorf("MemoryRowOrder = %v", opts.MemoryRowOrder)
	}
	if opts.AutoRescale {
		t.Error("AutoRescale should be off")
	}
	if !opts.AutoYBRToRGB || !opts.Sorting {
		t.Error("unrelated defaults must survive")
	}

	cfg.RowOrder = "bad"
	if _, err := cfg.Options(); err == nil {
		t.Error("expected error for invalid row order")
	}
}
