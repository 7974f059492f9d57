package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/coexsim/coexsim/sim"
)

func TestLoadScenarioFile(t *testing.T) {
	yml := `
seed: 123
horizon_s: 0.5
bands:
  - name: 5GHz
    freq_hz: 5.18e9
controllers:
  - tech: WiFi
    band: 5GHz
    cw_min: 4
  - tech: NR-U
    band: 5GHz
nodes:
  - name: ap-1
    tech: WiFi
    priority_weight: 2.0
    pos: {x: 0, y: 0}
    traffic: saturated
  - name: gnb-1
    tech: NR-U
    priority_weight: 1.0
    pos: {x: 1, y: 1}
    traffic: poisson
    lambda_per_s: 200
    queue_limit: 50
shares:
  WiFi: 0.6
  NR-U: 0.4
`
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	cfg, err := LoadScenarioFile(path)
	require.NoError(t, err)

	assert.Equal(t, int64(123), cfg.Seed)
	assert.Equal(t, 0.5, cfg.HorizonS)
	require.Len(t, cfg.Controllers, 2)
	assert.Equal(t, sim.TechWiFi, cfg.Controllers[0].Tech)
	assert.Equal(t, 4, cfg.Controllers[0].CWMin)
	require.Len(t, cfg.Nodes, 2)
	assert.Equal(t, sim.TrafficPoisson, cfg.Nodes[1].Traffic)
	assert.Equal(t, 200.0, cfg.Nodes[1].LambdaPerS)
	assert.Equal(t, 0.6, cfg.Shares[sim.TechWiFi])

	// Omitted sections keep the built-in defaults.
	assert.Equal(t, sim.DefaultPropagationConfig(), cfg.Propagation)
	assert.Equal(t, sim.DefaultMACConfig().TMax, cfg.MAC.TMax)
}

func TestLoadScenarioFile_Missing(t *testing.T) {
	_, err := LoadScenarioFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarioFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes: {not: [a, list"), 0o644))
	_, err := LoadScenarioFile(path)
	assert.Error(t, err)
}

func TestDefaultScenario(t *testing.T) {
	cfg := DefaultScenario()

	require.Len(t, cfg.Controllers, 2)
	assert.Len(t, cfg.Nodes, wifiNodes+nruNodes)

	// Exactly one voice-class station per technology.
	voice := map[sim.Technology]int{}
	for _, n := range cfg.Nodes {
		if sim.CategoryForWeight(n.Weight) == sim.ACVoice {
			voice[n.Tech]++
		}
	}
	assert.Equal(t, 1, voice[sim.TechWiFi])
	assert.Equal(t, 1, voice[sim.TechNRU])

	// Grid cells are unique so every station gets its own position.
	seen := map[sim.Position]bool{}
	for _, n := range cfg.Nodes {
		assert.False(t, seen[n.Pos], "position %v reused", n.Pos)
		seen[n.Pos] = true
	}

	sc, err := cfg.BuildScenario()
	require.NoError(t, err)
	assert.Len(t, sc.Nodes, len(cfg.Nodes))
}

func TestSaveReport(t *testing.T) {
	cfg := DefaultScenario()
	cfg.HorizonS = 0.05
	sc, err := cfg.BuildScenario()
	require.NoError(t, err)
	sc.Run()

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, saveReport(sc.Report(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var r sim.Report
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Len(t, r.Nodes, wifiNodes+nruNodes)
}
