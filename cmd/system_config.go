package cmd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Ajax23/hgana/adsorption"
	"github.com/Ajax23/hgana/mc"
)

// SystemConfig is the yaml description of a lattice system: cell budget,
// species with their count sweep lists, interaction energies, and the binding
// pairs to track.
type SystemConfig struct {
	Cells        int                 `yaml:"cells"`
	Species      []SpeciesConfig     `yaml:"species"`
	Interactions []InteractionConfig `yaml:"interactions"`
	BindingPairs []mc.BindingPair    `yaml:"binding_pairs"`
}

// SpeciesConfig is one species entry. Movable defaults to true when omitted.
type SpeciesConfig struct {
	Counts  []int  `yaml:"counts"`
	Movable *bool  `yaml:"movable"`
	Label   string `yaml:"label"`
	Struct  string `yaml:"struct"`
}

// InteractionConfig sets one symmetric interaction matrix entry in kJ/mol.
type InteractionConfig struct {
	I      int     `yaml:"i"`
	J      int     `yaml:"j"`
	Energy float64 `yaml:"energy"`
}

// LoadSystemConfig reads and validates a yaml system description.
func LoadSystemConfig(path string) (*SystemConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading system config: %w", err)
	}
	var cfg SystemConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing system config: %w", err)
	}
	if cfg.Cells <= 0 {
		return nil, fmt.Errorf("system config: cells must be positive, got %d", cfg.Cells)
	}
	if len(cfg.Species) == 0 {
		return nil, fmt.Errorf("system config: no species given")
	}
	return &cfg, nil
}

// BuildDriver constructs the adsorption driver described by the config.
func (c *SystemConfig) BuildDriver() (*adsorption.Driver, error) {
	d := adsorption.New(c.Cells)
	for _, sp := range c.Species {
		movable := true
		if sp.Movable != nil {
			movable = *sp.Movable
		}
		if err := d.AddSpecies(sp.Counts, movable, sp.Label, sp.Struct); err != nil {
			return nil, err
		}
	}
	for _, in := range c.Interactions {
		if err := d.SetInteraction(in.I, in.J, in.Energy); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Pairs returns the binding pairs to track, defaulting to (0, 1).
func (c *SystemConfig) Pairs() []mc.BindingPair {
	if len(c.BindingPairs) == 0 {
		return []mc.BindingPair{{Host: 0, Guest: 1}}
	}
	return c.BindingPairs
}
