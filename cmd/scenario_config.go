package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/coexsim/coexsim/sim"
)

// LoadScenarioFile reads a ScenarioConfig from a YAML file. Fields left
// out of the file fall back to the built-in defaults, so a scenario only
// needs to spell out its topology.
func LoadScenarioFile(path string) (*sim.ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	cfg := &sim.ScenarioConfig{
		Seed:            seed,
		HorizonS:        horizonS,
		Propagation:     sim.DefaultPropagationConfig(),
		MAC:             sim.DefaultMACConfig(),
		SampleIntervalS: sampleIntervalS,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return cfg, nil
}

// saveReport writes the final report as indented JSON.
func saveReport(r *sim.Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
