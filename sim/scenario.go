package sim

import (
	"fmt"
	"sort"
)

// ScenarioConfig is the full description of one simulation run. The
// orchestration layer builds it from flags or a YAML file and hands it to
// BuildScenario.
type ScenarioConfig struct {
	Seed        int64              `yaml:"seed"`
	HorizonS    float64            `yaml:"horizon_s"`
	Propagation PropagationConfig  `yaml:"propagation"`
	Bands       []BandConfig       `yaml:"bands"`
	MAC         MACConfig          `yaml:"mac"`
	Controllers []ControllerConfig `yaml:"controllers"`
	Nodes       []NodeConfig       `yaml:"nodes"`

	// Shares optionally fixes each controller's airtime share, keyed by
	// technology. When empty, shares are computed proportional to the
	// summed priority weights of each controller's attached nodes.
	Shares map[Technology]float64 `yaml:"shares"`

	// SampleIntervalS enables the periodic time-series sampler when > 0.
	SampleIntervalS float64 `yaml:"sample_interval_s"`
}

// Scenario is a fully wired simulation: scheduler, channel, controllers,
// nodes, metrics. Build once, run once.
type Scenario struct {
	Sim         *Simulator
	Channel     *Channel
	Metrics     *Metrics
	Grid        *Grid
	Controllers map[Technology]*Controller
	Nodes       []*Node

	horizon    int64
	timeSeries []TimeSeriesSample
}

// BuildScenario constructs and wires every component of a run. It fails
// on configuration errors (unknown controller technology for a node,
// invalid traffic model) before any process starts.
func (cfg *ScenarioConfig) BuildScenario() (*Scenario, error) {
	if len(cfg.Bands) == 0 || len(cfg.Controllers) == 0 {
		return nil, fmt.Errorf("scenario needs at least one band and one controller")
	}
	cfg.MAC = cfg.MAC.withDefaults()
	s := &Scenario{
		Sim:         NewSimulator(),
		Metrics:     NewMetrics(),
		Grid:        NewGrid(),
		Controllers: make(map[Technology]*Controller),
		horizon:     SecondsToTicks(cfg.HorizonS),
	}
	s.Channel = NewChannel(cfg.Bands, cfg.Propagation, s.Metrics)
	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))

	for _, cc := range cfg.Controllers {
		if _, dup := s.Controllers[cc.Tech]; dup {
			return nil, fmt.Errorf("duplicate controller for technology %s", cc.Tech)
		}
		s.Controllers[cc.Tech] = NewController(s.Sim, s.Channel, s.Metrics, cc)
	}

	for i, nc := range cfg.Nodes {
		ctrl, ok := s.Controllers[nc.Tech]
		if !ok {
			return nil, fmt.Errorf("node %s: no controller for technology %s", nc.Name, nc.Tech)
		}
		n := NewNode(s.Sim, s.Channel, s.Metrics, s.Grid, rng, NodeID(i), nc, cfg.MAC)
		ctrl.Attach(n)
		s.Nodes = append(s.Nodes, n)
	}

	s.applyShares(cfg.Shares)

	for _, ctrl := range s.sortedControllers() {
		ctrl.Start()
	}
	for _, n := range s.Nodes {
		if err := n.Start(); err != nil {
			return nil, err
		}
	}
	if cfg.SampleIntervalS > 0 {
		interval := SecondsToTicks(cfg.SampleIntervalS)
		s.Sim.Spawn("sampler", func(p *Proc) { s.sampler(p, interval) })
	}
	return s, nil
}

// applyShares sets each controller's airtime share: explicit values when
// given, otherwise proportional to the summed priority weights of its
// roster. Controllers with no nodes keep a full share.
func (s *Scenario) applyShares(explicit map[Technology]float64) {
	if len(explicit) > 0 {
		for tech, share := range explicit {
			if c, ok := s.Controllers[tech]; ok {
				c.SetShare(share)
			}
		}
		return
	}
	// Accumulate in sorted technology order; float sums must not depend
	// on map iteration order or replays stop being bit-identical.
	techs := make([]Technology, 0, len(s.Controllers))
	for tech := range s.Controllers {
		techs = append(techs, tech)
	}
	sort.Slice(techs, func(i, j int) bool { return techs[i] < techs[j] })

	total := 0.0
	weights := make(map[Technology]float64)
	for _, tech := range techs {
		for _, n := range s.Controllers[tech].Nodes() {
			weights[tech] += n.Weight
		}
		total += weights[tech]
	}
	if total == 0 {
		return
	}
	for _, tech := range techs {
		if weights[tech] > 0 {
			s.Controllers[tech].SetShare(weights[tech] / total)
		}
	}
}

func (s *Scenario) sortedControllers() []*Controller {
	out := make([]*Controller, 0, len(s.Controllers))
	for _, c := range s.Controllers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cfg.Tech < out[j].Cfg.Tech })
	return out
}

// sampler records instantaneous throughput and fairness at a fixed
// cadence for the external plotting collaborator.
func (s *Scenario) sampler(p *Proc, interval int64) {
	for {
		p.Sleep(interval)
		tp := s.Metrics.InstantThroughputs(p.Now())
		vec := make([]float64, 0, len(s.Nodes))
		for _, n := range s.Nodes {
			vec = append(vec, tp[n.ID])
		}
		s.timeSeries = append(s.timeSeries, TimeSeriesSample{
			TimeS:       TicksToSeconds(p.Now()),
			Fairness:    JainFairness(vec),
			Throughputs: tp,
		})
	}
}

// Run executes the scenario to its horizon.
func (s *Scenario) Run() {
	s.Metrics.Start(s.Sim.Clock)
	s.Sim.Run(s.horizon)
	s.Metrics.Stop(s.Sim.Clock)
}

// Report builds the final read-only snapshot. Call only after Run.
func (s *Scenario) Report() *Report {
	r := s.Metrics.BuildReport(s.Nodes, s.Sim.Clock)
	r.TimeSeries = s.timeSeries
	return r
}
