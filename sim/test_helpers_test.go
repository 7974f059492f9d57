package sim

// Shared construction helpers for node/controller tests: a minimal wired
// rig on one 5 GHz band, without running the scheduler unless the test
// asks for it.

type testRig struct {
	sim     *Simulator
	channel *Channel
	metrics *Metrics
	grid    *Grid
	rng     *PartitionedRNG
	ctrl    map[Technology]*Controller
}

func newTestRig(seed int64) *testRig {
	s := NewSimulator()
	m := NewMetrics()
	r := &testRig{
		sim:     s,
		metrics: m,
		grid:    NewGrid(),
		rng:     NewPartitionedRNG(NewSimulationKey(seed)),
		ctrl:    make(map[Technology]*Controller),
	}
	r.channel = NewChannel(
		[]BandConfig{{Name: testBand, FreqHz: 5.18e9}},
		DefaultPropagationConfig(),
		m,
	)
	return r
}

func (r *testRig) controller(tech Technology) *Controller {
	if c, ok := r.ctrl[tech]; ok {
		return c
	}
	c := NewController(r.sim, r.channel, r.metrics, DefaultControllerConfig(tech, testBand))
	r.ctrl[tech] = c
	return c
}

// addNode builds and attaches a node; the caller decides whether to Start it.
func (r *testRig) addNode(id NodeID, cfg NodeConfig) *Node {
	n := NewNode(r.sim, r.channel, r.metrics, r.grid, r.rng, id, cfg, DefaultMACConfig())
	r.controller(cfg.Tech).Attach(n)
	return n
}
