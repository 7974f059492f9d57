// Tracks per-node transmission outcomes and derives throughput, delay,
// fairness and starvation statistics for reporting.

package sim

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics is the shared sink written by all nodes and read by all
// controllers. Recording is append-only; the only mutable state beyond the
// accumulators are the per-node poll cursors used for instantaneous
// throughput.
//
// Created at simulation start, finalized with Stop at simulation stop.
// Safe without locking under the cooperative scheduler.
type Metrics struct {
	TxTimes     map[NodeID][]int64 // per-node transmission start timestamps
	Delays      map[NodeID][]int64 // per-node queuing delay samples (ticks)
	Successes   map[NodeID]int
	Losses      map[NodeID]int
	Drops       map[NodeID]int // capacity-accounting drops
	LastSuccess map[NodeID]int64

	// StarvationThreshold is the time-since-last-success beyond which a
	// node counts as starved at report time.
	StarvationThreshold int64

	startTime int64
	stopTime  int64

	pollCursor map[NodeID]int
	lastPoll   int64
}

// NewMetrics creates an empty recorder with a 1 s starvation threshold.
func NewMetrics() *Metrics {
	return &Metrics{
		TxTimes:             make(map[NodeID][]int64),
		Delays:              make(map[NodeID][]int64),
		Successes:           make(map[NodeID]int),
		Losses:              make(map[NodeID]int),
		Drops:               make(map[NodeID]int),
		LastSuccess:         make(map[NodeID]int64),
		StarvationThreshold: SecondsToTicks(1.0),
		pollCursor:          make(map[NodeID]int),
	}
}

// Start marks the beginning of the measurement interval.
func (m *Metrics) Start(t0 int64) {
	m.startTime = t0
	m.lastPoll = t0
}

// Stop finalizes the measurement interval.
func (m *Metrics) Stop(t1 int64) {
	m.stopTime = t1
}

// RecordTx logs that a node began a transmission at time t.
func (m *Metrics) RecordTx(id NodeID, t int64) {
	m.TxTimes[id] = append(m.TxTimes[id], t)
}

// RecordDelay logs one queuing-delay sample (in ticks) for a node.
func (m *Metrics) RecordDelay(id NodeID, d int64) {
	m.Delays[id] = append(m.Delays[id], d)
}

// RecordSuccess logs a successful reception for the node at time t.
func (m *Metrics) RecordSuccess(id NodeID, t int64) {
	m.Successes[id]++
	m.LastSuccess[id] = t
}

// RecordLoss logs a failed reception (SINR below the link margin).
func (m *Metrics) RecordLoss(id NodeID) {
	m.Losses[id]++
}

// RecordDrop logs a transmission dropped by channel capacity accounting.
func (m *Metrics) RecordDrop(id NodeID) {
	m.Drops[id]++
}

// MeanDelaySeconds returns the node's mean queuing delay in seconds,
// 0 when no samples are recorded.
func (m *Metrics) MeanDelaySeconds(id NodeID) float64 {
	return meanTicksSeconds(m.Delays[id])
}

// BaselineDelaySeconds returns the mean over every delay sample recorded
// system-wide, the fairness monitors' baseline. 0 with no samples.
// Accumulation follows sorted node IDs so the float sum is reproducible.
func (m *Metrics) BaselineDelaySeconds() float64 {
	ids := make([]NodeID, 0, len(m.Delays))
	for id := range m.Delays {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var all []float64
	for _, id := range ids {
		for _, d := range m.Delays[id] {
			all = append(all, TicksToSeconds(d))
		}
	}
	if len(all) == 0 {
		return 0
	}
	return stat.Mean(all, nil)
}

// RecentTxCount returns how many transmissions the node started within
// the trailing window ending at now.
func (m *Metrics) RecentTxCount(id NodeID, now, window int64) int {
	times := m.TxTimes[id]
	n := 0
	for i := len(times) - 1; i >= 0; i-- {
		if now-times[i] > window {
			break
		}
		n++
	}
	return n
}

// CumulativeThroughputs returns per-node transmissions per second over the
// whole measurement interval.
func (m *Metrics) CumulativeThroughputs(now int64) map[NodeID]float64 {
	end := m.stopTime
	if end == 0 {
		end = now
	}
	dur := TicksToSeconds(end - m.startTime)
	out := make(map[NodeID]float64, len(m.TxTimes))
	if dur <= 0 {
		return out
	}
	for id, times := range m.TxTimes {
		out[id] = float64(len(times)) / dur
	}
	return out
}

// InstantThroughputs returns per-node transmissions per second since the
// previous poll and advances the internal poll cursors. Calling it has a
// side effect: the next call measures a fresh window, so it is not
// idempotent.
func (m *Metrics) InstantThroughputs(now int64) map[NodeID]float64 {
	dur := TicksToSeconds(now - m.lastPoll)
	out := make(map[NodeID]float64, len(m.TxTimes))
	for id, times := range m.TxTimes {
		cur := m.pollCursor[id]
		fresh := len(times) - cur
		m.pollCursor[id] = len(times)
		if dur > 0 {
			out[id] = float64(fresh) / dur
		}
	}
	m.lastPoll = now
	return out
}

// JainFairness computes Jain's fairness index (Σx)²/(N·Σx²) over a
// throughput vector: 1.0 is perfectly fair, 1/N maximally unfair. Defined
// as 0 for an empty vector and 0 (not NaN) when all values are zero.
func JainFairness(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s1 := floats.Sum(xs)
	s2 := floats.Dot(xs, xs)
	if s2 == 0 {
		return 0
	}
	return s1 * s1 / (float64(len(xs)) * s2)
}

// IsStarved reports whether the node's last success is older than the
// starvation threshold at time now; a node that never succeeded counts as
// starved. Detected, not fixed: starvation is a reportable condition
// here, relief comes from the controllers' fairness monitors.
func (m *Metrics) IsStarved(id NodeID, now int64) bool {
	last, ok := m.LastSuccess[id]
	return !ok || now-last > m.StarvationThreshold
}

// Starved returns the sorted IDs of every node with recorded
// transmissions that IsStarved at time now. A node that never
// transmitted is unknown to the recorder and absent here; report
// building walks the roster with IsStarved to catch those too.
func (m *Metrics) Starved(now int64) []NodeID {
	var out []NodeID
	for id := range m.TxTimes {
		if m.IsStarved(id, now) {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LossRate returns losses/(successes+losses) for the node, 0 when the
// node has no recorded attempts.
func (m *Metrics) LossRate(id NodeID) float64 {
	attempts := m.Successes[id] + m.Losses[id]
	if attempts == 0 {
		return 0
	}
	return float64(m.Losses[id]) / float64(attempts)
}

func meanTicksSeconds(ticks []int64) float64 {
	if len(ticks) == 0 {
		return 0
	}
	xs := make([]float64, len(ticks))
	for i, t := range ticks {
		xs[i] = TicksToSeconds(t)
	}
	return stat.Mean(xs, nil)
}
