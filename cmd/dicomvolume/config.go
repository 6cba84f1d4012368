package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrsinham/dicomvolume/internal/assembly"
)

// Config is one read job for YAML serialization, so a tuned invocation can
// be replayed with --config.
type Config struct {
	Input   string `yaml:"input"`
	Output  string `yaml:"output"`
	Sidecar string `yaml:"sidecar,omitempty"`

	Stack    string `yaml:"stack,omitempty"`
	RowOrder string `yaml:"row_order"`

	TimeAsVector bool `yaml:"time_as_vector"`
	TimeIndex    int  `yaml:"time_index"`

	AutoRescale bool `yaml:"auto_rescale"`
	AutoYBR     bool `yaml:"auto_ybr"`
	Sorting     bool `yaml:"sorting"`

	Workers  int  `yaml:"workers,omitempty"`
	Previews int  `yaml:"previews,omitempty"`
	Quiet    bool `yaml:"quiet,omitempty"`
}

// defaultConfig mirrors assembly.DefaultOptions.
func defaultConfig() Config {
	return Config{
		Output:      "volume.raw",
		RowOrder:    "bottomup",
		TimeIndex:   -1,
		AutoRescale: true,
		AutoYBR:     true,
		Sorting:     true,
	}
}

// LoadConfig reads a YAML job description, layered over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Options converts the config to assembly options.
func (c Config) Options() (assembly.Options, error) {
	opts := assembly.DefaultOptions()
	order, err := parseRowOrder(c.RowOrder)
	if err != nil {
		return opts, err
	}
	opts.MemoryRowOrder = order
	opts.DesiredStackID = c.Stack
	opts.TimeAsVector = c.TimeAsVector
	opts.DesiredTimeIndex = c.TimeIndex
	opts.AutoRescale = c.AutoRescale
	opts.AutoYBRToRGB = c.AutoYBR
	opts.Sorting = c.Sorting
	opts.Workers = c.Workers
	opts.Quiet = c.Quiet
	return opts, nil
}

func parseRowOrder(s string) (assembly.RowOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bottomup", "bottom-up":
		return assembly.RowOrderBottomUp, nil
	case "topdown", "top-down":
		return assembly.RowOrderTopDown, nil
	case "native", "filenative", "file-native":
		return assembly.RowOrderFileNative, nil
	}
	return 0, fmt.Errorf("invalid row order %q, valid options: bottomup, topdown, native", s)
}
