package sim

import (
	"github.com/sirupsen/logrus"
)

// Controller is the per-technology arbitration point. It exclusively owns
// its attached-node roster (nodes keep a non-owning back-reference), the
// contention-window bounds, the energy-detection threshold, the airtime
// share, the medium reservation (NAV) and the one-shot fairness grant.
//
// Two background monitor processes run for the lifetime of the
// simulation: reservation enforcement and fairness intervention. Neither
// returns a value; their only observable effect is mutating controller
// state and raising the edge-triggered grant signal.
type Controller struct {
	Cfg   ControllerConfig
	Share float64 // airtime fraction in (0,1], sums to 1 across controllers on a band

	sim     *Simulator
	channel *Channel
	metrics *Metrics
	nodes   []*Node

	navExpiry  int64
	grant      *Signal
	grantArmed bool
	busyStreak int
}

// NewController creates a controller with a full airtime share. The share
// is caller-computed and set later, typically proportional to the summed
// priority weights of the attached nodes. Zero-valued tuning fields fall
// back to the technology defaults, so partial YAML scenarios stay valid.
func NewController(sim *Simulator, ch *Channel, m *Metrics, cfg ControllerConfig) *Controller {
	def := DefaultControllerConfig(cfg.Tech, cfg.Band)
	if cfg.CWMin <= 0 {
		cfg.CWMin = def.CWMin
	}
	if cfg.CWMax < cfg.CWMin {
		cfg.CWMax = def.CWMax
	}
	if cfg.EDThresholdDbm == 0 {
		cfg.EDThresholdDbm = def.EDThresholdDbm
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = def.SampleInterval
	}
	if cfg.BusyThreshold <= 1 {
		cfg.BusyThreshold = def.BusyThreshold
	}
	if cfg.NavDuration <= 0 {
		cfg.NavDuration = def.NavDuration
	}
	if cfg.FairnessInterval <= 0 {
		cfg.FairnessInterval = def.FairnessInterval
	}
	if cfg.StarvationFactor <= 1 {
		cfg.StarvationFactor = def.StarvationFactor
	}
	if cfg.FastMinRecentTx <= 0 {
		cfg.FastMinRecentTx = def.FastMinRecentTx
	}
	if cfg.FastWindow <= 0 {
		cfg.FastWindow = def.FastWindow
	}
	return &Controller{
		Cfg:     cfg,
		Share:   1.0,
		sim:     sim,
		channel: ch,
		metrics: m,
		grant:   NewSignal(sim),
	}
}

// Attach adds a node to the roster and wires its back-reference. The node
// inherits the controller's CW bounds.
func (c *Controller) Attach(n *Node) {
	n.controller = c
	n.CWMin = c.Cfg.CWMin
	n.CWMax = c.Cfg.CWMax
	n.CW = c.Cfg.CWMin
	c.nodes = append(c.nodes, n)
}

// Nodes returns the attached roster.
func (c *Controller) Nodes() []*Node {
	return c.nodes
}

// SetShare sets the controller's airtime share.
func (c *Controller) SetShare(share float64) {
	if share <= 0 || share > 1 {
		logrus.Panicf("controller %s: share %v outside (0,1]", c.Cfg.Tech, share)
	}
	c.Share = share
}

// Grant returns the edge-triggered fairness/backoff signal.
func (c *Controller) Grant() *Signal {
	return c.grant
}

// NavExpiry returns the current reservation expiry time.
func (c *Controller) NavExpiry() int64 {
	return c.navExpiry
}

// NavActive reports whether a medium reservation is active at time now.
func (c *Controller) NavActive(now int64) bool {
	return now < c.navExpiry
}

// extendNav moves the reservation expiry to now+duration. The expiry is
// monotonically non-decreasing while a reservation is active.
func (c *Controller) extendNav(now int64) {
	exp := now + c.Cfg.NavDuration
	if exp > c.navExpiry {
		c.navExpiry = exp
	}
}

// raiseGrant arms the one-shot grant and wakes every process waiting on
// the signal. An unobserved previous grant is replaced.
func (c *Controller) raiseGrant() {
	c.grantArmed = true
	c.grant.Raise()
}

// ConsumeGrant reports whether a grant has been raised since the last
// observation, and clears it: each grant is observable exactly once.
func (c *Controller) ConsumeGrant() bool {
	armed := c.grantArmed
	c.grantArmed = false
	return armed
}

// Start launches the controller's monitor processes.
func (c *Controller) Start() {
	c.sim.Spawn(string(c.Cfg.Tech)+"/reservation", c.reservationMonitor)
	c.sim.Spawn(string(c.Cfg.Tech)+"/fairness", c.fairnessMonitor)
}

// reservationMonitor samples channel occupancy at a fixed cadence and
// tracks a busy streak. Reaching the busy threshold arms the NAV and
// resets the streak; the sample immediately before the threshold instead
// raises the grant signal, a predictive early warning distinct from the
// hard reservation.
func (c *Controller) reservationMonitor(p *Proc) {
	for {
		p.Sleep(c.Cfg.SampleInterval)
		if !c.channel.Busy(c.Cfg.Band, p.Now()) {
			c.busyStreak = 0
			continue
		}
		c.busyStreak++
		switch {
		case c.busyStreak >= c.Cfg.BusyThreshold:
			c.extendNav(p.Now())
			c.busyStreak = 0
			logrus.Debugf("[tick %012d] %s: NAV armed until %d", p.Now(), c.Cfg.Tech, c.navExpiry)
		case c.busyStreak == c.Cfg.BusyThreshold-1:
			c.raiseGrant()
			logrus.Debugf("[tick %012d] %s: predictive backoff grant", p.Now(), c.Cfg.Tech)
		}
	}
}

// fairnessMonitor samples attached nodes' recorded delay at a fixed
// cadence. The system-wide mean delay forms a baseline; nodes above
// baseline×factor are starved, nodes below baseline/factor with enough
// recent transmissions are fast. When both sets are non-empty the grant
// signal is raised, requesting fast nodes to defer.
func (c *Controller) fairnessMonitor(p *Proc) {
	for {
		p.Sleep(c.Cfg.FairnessInterval)
		baseline := c.metrics.BaselineDelaySeconds()
		if baseline == 0 {
			continue
		}
		bar := baseline * c.Cfg.StarvationFactor
		floor := baseline / c.Cfg.StarvationFactor
		starved, fast := 0, 0
		for _, n := range c.nodes {
			d := c.metrics.MeanDelaySeconds(n.ID)
			switch {
			case d > bar:
				starved++
			case d < floor && c.metrics.RecentTxCount(n.ID, p.Now(), c.Cfg.FastWindow) >= c.Cfg.FastMinRecentTx:
				fast++
			}
		}
		if starved > 0 && fast > 0 {
			c.raiseGrant()
			logrus.Debugf("[tick %012d] %s: fairness grant (starved=%d fast=%d)", p.Now(), c.Cfg.Tech, starved, fast)
		}
	}
}
