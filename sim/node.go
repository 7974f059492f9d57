package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Node is one contending station. It runs the MAC state machine as a
// perpetual cooperative process: adaptive sensing, backoff, reservation
// and AIFS waits, transmission and outcome handling. Two auxiliary
// processes supply traffic and broadcast status to grid neighbors.
type Node struct {
	ID       NodeID
	Name     string
	Tech     Technology
	Weight   float64
	Category AccessCategory
	Pos      Position

	CWMin, CWMax int
	CW           int

	// TDynamic is the adaptive sensing threshold, clamped to
	// [MACConfig.TMin, MACConfig.TMax] by every adaptation step.
	TDynamic float64

	LastTxTime   int64
	Queue        PacketQueue
	TxCount      int
	BackoffCount int
	PhyRateBps   float64

	Traffic    TrafficModel
	LambdaPerS float64

	neighbors  *NeighborTable
	controller *Controller // non-owning back-reference, set by Attach
	grid       *Grid
	sim        *Simulator
	channel    *Channel
	metrics    *Metrics
	mac        MACConfig

	rng        *rand.Rand // MAC decisions: backoff draws, jitter
	trafficRng *rand.Rand // arrival process, isolated from MAC draws

	emaGap    float64 // smoothed transmission-gap estimate (AIMD law)
	hasEmaGap bool
}

// NewNode creates a node from its scenario config and registers it in the
// grid arena. The node is inert until a controller attaches it and Start
// is called.
func NewNode(sim *Simulator, ch *Channel, m *Metrics, grid *Grid, rng *PartitionedRNG, id NodeID, cfg NodeConfig, mac MACConfig) *Node {
	phyRate := cfg.PhyRateBps
	if phyRate == 0 {
		phyRate = cfg.Tech.DefaultPhyRateBps()
	}
	n := &Node{
		ID:         id,
		Name:       cfg.Name,
		Tech:       cfg.Tech,
		Weight:     cfg.Weight,
		Category:   CategoryForWeight(cfg.Weight),
		Pos:        cfg.Pos,
		TDynamic:   mac.TStart,
		Queue:      PacketQueue{Limit: cfg.QueueLimit},
		PhyRateBps: phyRate,
		Traffic:    cfg.Traffic,
		LambdaPerS: cfg.LambdaPerS,
		neighbors:  NewNeighborTable(),
		grid:       grid,
		sim:        sim,
		channel:    ch,
		metrics:    m,
		mac:        mac,
		rng:        rng.ForSubsystem(SubsystemNode(int(id))),
		trafficRng: rng.ForSubsystem(SubsystemTraffic(int(id))),
	}
	grid.Add(n)
	return n
}

// Controller returns the node's non-owning controller back-reference.
func (n *Node) Controller() *Controller {
	return n.controller
}

// Start validates construction invariants and launches the node's
// processes. A node without an attached controller is a configuration
// error and fails before the main loop starts.
func (n *Node) Start() error {
	if n.controller == nil {
		return fmt.Errorf("node %s activated without an attached controller", n.Name)
	}
	switch n.Traffic {
	case TrafficPoisson:
		if n.LambdaPerS <= 0 {
			return fmt.Errorf("node %s: poisson traffic needs lambda > 0", n.Name)
		}
		n.sim.Spawn("traffic/"+n.Name, n.trafficPoisson)
	case TrafficSaturated, "":
		n.sim.Spawn("traffic/"+n.Name, n.trafficSaturated)
	default:
		return fmt.Errorf("node %s: unknown traffic model %q", n.Name, n.Traffic)
	}
	n.sim.Spawn("node/"+n.Name, n.run)
	n.sim.Spawn("bcast/"+n.Name, n.broadcaster)
	return nil
}

// slotTime returns the node's slot duration: the technology base slot
// stretched by the controller's airtime share.
func (n *Node) slotTime() int64 {
	return int64(float64(n.Tech.BaseSlot()) / n.controller.Share)
}

// packetDuration returns the airtime of one packet at the node's PHY
// rate, stretched by the controller's airtime share.
func (n *Node) packetDuration() int64 {
	bits := float64(n.mac.PacketBytes * 8)
	return SecondsToTicks(bits / (n.PhyRateBps * n.controller.Share))
}

func (n *Node) resetCW() {
	n.CW = n.CWMin
}

// escalateCW doubles the contention window, capped at CWMax.
func (n *Node) escalateCW() {
	n.CW *= 2
	if n.CW > n.CWMax {
		n.CW = n.CWMax
	}
}

func (n *Node) clampT() {
	if n.TDynamic < n.mac.TMin {
		n.TDynamic = n.mac.TMin
	}
	if n.TDynamic > n.mac.TMax {
		n.TDynamic = n.mac.TMax
	}
}

// adaptThreshold runs one step of the configured control law on the
// dynamic sensing threshold, driven by the gap since the node's own last
// transmission.
func (n *Node) adaptThreshold(now int64) {
	gap := float64(now - n.LastTxTime)
	target := n.mac.TargetGapSlots * float64(n.slotTime())
	switch n.mac.Law {
	case AdaptAIMD:
		if !n.hasEmaGap {
			n.emaGap = gap
			n.hasEmaGap = true
		} else {
			n.emaGap = n.mac.EMAAlpha*gap + (1-n.mac.EMAAlpha)*n.emaGap
		}
		if n.emaGap < target {
			// Transmitting above the fair cadence: back off hard.
			n.TDynamic *= 0.5
		} else {
			n.TDynamic += 1
		}
	default: // hysteresis
		if gap < target {
			n.TDynamic -= 1
		} else if gap > target {
			n.TDynamic += 1
		}
	}
	n.clampT()
}

// run is the perpetual MAC loop:
// Idle → SensingDecision → Backoff → (NAVWait) → AIFSWait → ChannelCheck
// → Transmitting → Outcome → Idle.
func (n *Node) run(p *Proc) {
	n.resetCW()
	for {
		slot := n.slotTime()
		n.adaptThreshold(p.Now())

		switch n.starvationDefer(p.Now()) {
		case deferFull:
			// Skip backoff and transmission entirely this cycle.
			p.Sleep(2 * slot)
			continue
		case deferMild:
			p.Sleep(slot)
		}

		penalty := n.decide(p.Now())

		// Backoff: uniform raw draw plus the sensing penalty, at least
		// one slot. The LBT technology draws from a halved window.
		draw := n.CW
		if n.Tech == TechNRU {
			draw = n.CW / 2
		}
		if draw < 1 {
			draw = 1
		}
		total := int64(n.rng.Intn(draw)) + penalty
		if total < 1 {
			total = 1
		}
		n.BackoffCount++

		granted := p.WaitGrantOrSleep(total*slot, n.controller.Grant())
		if granted && n.Tech == TechNRU {
			// Type-4 style deferral: only the LBT technology is obligated
			// to obey the controller's grant.
			continue
		}

		// The CSMA/CA technology respects an active medium reservation.
		if n.Tech == TechWiFi && n.controller.NavActive(p.Now()) {
			p.SleepUntil(n.controller.NavExpiry())
		}

		// AIFS wait plus up to one slot of jitter.
		p.Sleep(int64(n.Category.AIFSSlots())*slot + int64(n.rng.Float64()*float64(slot)))

		now := p.Now()
		cfg := &n.controller.Cfg
		if n.Queue.Len() > 0 && n.channel.IsIdle(cfg.Band, n.ID, n.Pos, cfg.EDThresholdDbm, now) {
			dur := n.packetDuration()
			if !n.channel.Occupy(cfg.Band, n.ID, n.Pos, dur, now) {
				// Capacity drop: proceed as if this cycle never transmitted.
				continue
			}
			arrival, _ := n.Queue.Pop()
			n.metrics.RecordDelay(n.ID, now-arrival)
			n.metrics.RecordTx(n.ID, now)
			n.TxCount++
			logrus.Tracef("[tick %012d] %s TX#%d on %s", now, n.Name, n.TxCount, cfg.Band)

			// The ledger keeps an entry only while end > now, so the
			// outcome must be sampled one tick before the airtime ends.
			p.Sleep(dur - 1)
			success := n.channel.CanReceive(cfg.Band, n.ID, cfg.BasePos, p.Now())
			p.Sleep(1)
			now = p.Now()
			if success {
				n.metrics.RecordSuccess(n.ID, now)
				n.LastTxTime = now
				n.resetCW()
				// Contention relief: ease the sensing threshold down.
				n.TDynamic -= 1
				n.clampT()
			} else {
				n.metrics.RecordLoss(n.ID)
				n.escalateCW()
			}
			n.channel.Release(cfg.Band, n.ID)

			if success && n.Tech == TechNRU && n.Category == ACBestEffort {
				// Voluntary post-success defer by low-priority LBT nodes.
				p.Sleep(n.mac.PostTxDeferSlots * slot)
			}
			continue
		}

		if n.Queue.Len() == 0 {
			p.Sleep(slot)
			continue
		}
		// Sensed busy: escalate and retry immediately rather than
		// recomputing a full backoff.
		n.escalateCW()
	}
}

// broadcaster periodically pushes the node's status to every
// same-technology node in its one-cell grid neighborhood. Receivers keep
// only the latest message per sender; the channel is neither reliable nor
// ordered.
func (n *Node) broadcaster(p *Proc) {
	for {
		p.Sleep(n.mac.BroadcastInterval)
		s := NeighborStatus{
			From:       n.ID,
			Weight:     n.Weight,
			MeanDelayS: n.metrics.MeanDelaySeconds(n.ID),
			CW:         n.CW,
			TDynamic:   n.TDynamic,
			LastTxTime: n.LastTxTime,
			TxCount:    n.TxCount,
			Pos:        n.Pos,
			SentAt:     p.Now(),
		}
		for _, nb := range n.grid.MooreNeighbors(n.Pos) {
			if nb.Tech == n.Tech {
				nb.neighbors.Store(s)
			}
		}
	}
}
