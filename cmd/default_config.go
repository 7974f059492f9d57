package cmd

import (
	"fmt"

	sim "github.com/coexsim/coexsim/sim"
)

// DefaultScenario generates the built-in coexistence topology from the
// CLI flags: a cluster of WiFi and NR-U stations on adjacent grid cells
// sharing one 5 GHz band, one controller per technology. One station per
// technology carries a voice-class priority weight; the rest are
// best-effort.
func DefaultScenario() *sim.ScenarioConfig {
	band := sim.Band("5GHz")
	cfg := &sim.ScenarioConfig{
		Seed:            seed,
		HorizonS:        horizonS,
		Propagation:     sim.DefaultPropagationConfig(),
		Bands:           []sim.BandConfig{{Name: band, FreqHz: 5.18e9}},
		MAC:             sim.DefaultMACConfig(),
		SampleIntervalS: sampleIntervalS,
		Controllers: []sim.ControllerConfig{
			sim.DefaultControllerConfig(sim.TechWiFi, band),
			sim.DefaultControllerConfig(sim.TechNRU, band),
		},
	}
	cfg.MAC.Law = sim.AdaptationLaw(adaptationLaw)

	add := func(i int, tech sim.Technology, pos sim.Position) {
		weight := 1.0
		if i == 0 {
			weight = 2.0 // one voice-class station per technology
		}
		cfg.Nodes = append(cfg.Nodes, sim.NodeConfig{
			Name:       fmt.Sprintf("%s-%d", tech, i+1),
			Tech:       tech,
			Weight:     weight,
			Pos:        pos,
			Traffic:    sim.TrafficModel(trafficModel),
			LambdaPerS: lambdaPerS,
			QueueLimit: queueLimit,
		})
	}
	for i := 0; i < wifiNodes; i++ {
		add(i, sim.TechWiFi, sim.Position{X: i % 3, Y: i / 3})
	}
	for i := 0; i < nruNodes; i++ {
		add(i, sim.TechNRU, sim.Position{X: i % 3, Y: 2 + i/3})
	}
	return cfg
}
