// Package manifest reads clustering job manifests from YAML files.
package manifest

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Manifest describes one clustering job: where the stores come from and
// which parameters to run with.
type Manifest struct {
	Input      string  `yaml:"input"`
	Format     string  `yaml:"format"` // csv, xlsx, shp; empty = detect from extension
	Sheet      string  `yaml:"sheet"`  // xlsx only
	EpsMeters  float64 `yaml:"eps_meters"`
	MinPoints  int     `yaml:"min_points"`
	Workers    int     `yaml:"workers"`
	AllowEmpty bool    `yaml:"allow_empty"`
	Output     string  `yaml:"output"` // empty = stdout
	GeoJSON    bool    `yaml:"geojson"`
}

// Load reads a job manifest from a YAML file. The file has a top-level
// "job" key. Missing parameters get the given defaults.
func Load(path string, defaultEps float64, defaultMinPts int) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "manifest: read %s", path)
	}

	var wrapper struct {
		Job Manifest `yaml:"job"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "manifest: parse")
	}

	m := &wrapper.Job
	if m.Input == "" {
		return nil, eris.New("manifest: input is required")
	}
	if m.EpsMeters == 0 {
		m.EpsMeters = defaultEps
	}
	if m.MinPoints == 0 {
		m.MinPoints = defaultMinPts
	}
	if m.Workers == 0 {
		m.Workers = 1
	}
	return m, nil
}
