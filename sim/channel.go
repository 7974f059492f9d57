package sim

import (
	"github.com/sirupsen/logrus"
)

// Band identifies one frequency band of the shared medium.
type Band string

// BandConfig declares a band and its center frequency.
type BandConfig struct {
	Name   Band    `yaml:"name"`
	FreqHz float64 `yaml:"freq_hz"`
}

// transmission is one in-flight entry of the per-band ledger. Entries are
// pruned lazily once the clock passes their end time; a node holds at most
// one entry per band.
type transmission struct {
	node NodeID
	pos  Position
	end  int64
}

// bandState is the mutable per-band bookkeeping: the active-transmission
// ledger plus the airtime-capacity accounting window.
type bandState struct {
	freqHz      float64
	active      []transmission
	windowStart int64
	airtimeUsed int64
}

// Channel models the shared multi-band medium: a log-distance propagation
// model, the active-transmission ledger, SINR computation and airtime
// capacity accounting. All mutation happens on the cooperative scheduler's
// single logical thread, so no locking is needed.
type Channel struct {
	prop    PropagationConfig
	bands   map[Band]*bandState
	metrics *Metrics

	// CapacityWindow is the length of one airtime accounting window in
	// ticks. Occupancy requests that would push the window's utilization
	// past 1.0 are dropped. Zero disables capacity accounting.
	CapacityWindow int64

	// SINRThresholdDb is the link margin a reception must clear.
	SINRThresholdDb float64
}

// NewChannel creates a channel with the given bands and propagation
// parameters, reporting drops to m.
func NewChannel(bands []BandConfig, prop PropagationConfig, m *Metrics) *Channel {
	c := &Channel{
		prop:            prop,
		bands:           make(map[Band]*bandState, len(bands)),
		metrics:         m,
		CapacityWindow:  SecondsToTicks(0.1),
		SINRThresholdDb: 10.0,
	}
	for _, b := range bands {
		c.bands[b.Name] = &bandState{freqHz: b.FreqHz}
	}
	return c
}

func (c *Channel) band(b Band) *bandState {
	bs, ok := c.bands[b]
	if !ok {
		logrus.Panicf("channel: unknown band %q", b)
	}
	return bs
}

// prune drops ledger entries whose transmission has ended by now.
func (bs *bandState) prune(now int64) {
	kept := bs.active[:0]
	for _, t := range bs.active {
		if t.end > now {
			kept = append(kept, t)
		}
	}
	bs.active = kept
}

// recvAtDbm returns the power of transmitter t as observed at pos.
func (c *Channel) recvAtDbm(bs *bandState, t transmission, pos Position) float64 {
	dist := t.pos.DistanceCells(pos) * c.prop.CellSizeM
	return RecvPowerDbm(c.prop.TxPowerDbm, dist, bs.freqHz, c.prop.PathLossExponent)
}

// IsIdle reports whether the band reads idle at the observer's position
// under its energy-detection threshold: false iff any other node's
// in-flight transmission is received at or above edDbm.
func (c *Channel) IsIdle(b Band, observer NodeID, observerPos Position, edDbm float64, now int64) bool {
	bs := c.band(b)
	bs.prune(now)
	for _, t := range bs.active {
		if t.node == observer {
			continue
		}
		if c.recvAtDbm(bs, t, observerPos) >= edDbm {
			return false
		}
	}
	return true
}

// Busy reports whether any transmission is in flight on the band,
// regardless of received power. Used by the controllers' reservation
// monitors, which sample occupancy rather than a point observation.
func (c *Channel) Busy(b Band, now int64) bool {
	bs := c.band(b)
	bs.prune(now)
	return len(bs.active) > 0
}

// Occupy records a new in-flight transmission ending at now+dur. When the
// airtime accounting window would exceed a utilization of 1.0 the request
// is silently dropped, recorded as a drop metric, and Occupy returns
// false: the caller proceeds as if it never transmitted this cycle.
func (c *Channel) Occupy(b Band, node NodeID, pos Position, dur, now int64) bool {
	bs := c.band(b)
	bs.prune(now)
	if c.CapacityWindow > 0 {
		if now >= bs.windowStart+c.CapacityWindow {
			bs.windowStart = now
			bs.airtimeUsed = 0
		}
		if bs.airtimeUsed+dur > c.CapacityWindow {
			c.metrics.RecordDrop(node)
			logrus.Debugf("[tick %012d] channel: capacity drop for node %d on %s", now, node, b)
			return false
		}
		bs.airtimeUsed += dur
	}
	bs.active = append(bs.active, transmission{node: node, pos: pos, end: now + dur})
	return true
}

// Release removes all in-flight entries owned by node on the band.
func (c *Channel) Release(b Band, node NodeID) {
	bs := c.band(b)
	kept := bs.active[:0]
	for _, t := range bs.active {
		if t.node != node {
			kept = append(kept, t)
		}
	}
	bs.active = kept
}

// SINRDb computes the signal-to-interference-plus-noise ratio in dB at
// rxPos for the in-flight transmission owned by tx: intended received
// power over the sum of every other concurrent in-band transmitter's
// received power plus the noise floor. Returns false when tx has no
// in-flight entry on the band.
func (c *Channel) SINRDb(b Band, tx NodeID, rxPos Position, now int64) (float64, bool) {
	bs := c.band(b)
	bs.prune(now)
	var signalMw float64
	found := false
	interfMw := dbmToMw(c.prop.NoiseFloorDbm)
	for _, t := range bs.active {
		p := dbmToMw(c.recvAtDbm(bs, t, rxPos))
		if t.node == tx {
			signalMw = p
			found = true
		} else {
			interfMw += p
		}
	}
	if !found {
		return 0, false
	}
	return mwToDb(signalMw / interfMw), true
}

// CanReceive reports whether the intended receiver at rxPos decodes tx's
// in-flight transmission: SINR must clear the link-margin threshold.
// Concurrent transmissions are not inherently a collision; the outcome is
// power-ratio driven, and this is the model's only source of loss.
func (c *Channel) CanReceive(b Band, tx NodeID, rxPos Position, now int64) bool {
	sinr, ok := c.SINRDb(b, tx, rxPos, now)
	return ok && sinr >= c.SINRThresholdDb
}
