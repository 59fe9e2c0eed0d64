// Package runconfig loads the optional YAML overlay file that supplies
// default values for tau, thresh, c_radius, and the worker pool size.
// Explicit CLI positional arguments always take precedence — this overlay
// only fills in values the caller chose not to specify (see
// cmd/gnatfinder for how a "-" positional argument requests that).
package runconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overlay holds the subset of run parameters that may be supplied by
// config file instead of the command line.
type Overlay struct {
	Tau     *float32 `yaml:"tau"`
	Thresh  *float32 `yaml:"thresh"`
	CRadius *float32 `yaml:"c_radius"`
	Workers *int     `yaml:"workers"`
	OutPath *string  `yaml:"out_path"`
}

// Load reads and parses a YAML overlay file.
func Load(path string) (Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overlay{}, fmt.Errorf("runconfig: reading %s: %w", path, err)
	}
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Overlay{}, fmt.Errorf("runconfig: parsing %s: %w", path, err)
	}
	return o, nil
}
