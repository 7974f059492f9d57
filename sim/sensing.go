// Implements the adaptive cellular-automaton style sensing rule: the
// neighbor busy score, the effective threshold comparison, and the
// starvation-deference check over the grid neighborhood.

package sim

import "math"

// Defer strengths returned by starvationDefer.
const (
	deferNone = 0
	deferMild = 1 // one slot, then continue into backoff this cycle
	deferFull = 2 // two slots, restart the cycle entirely
)

// busyScore sums, over same-technology neighbors whose last broadcast is
// no older than the freshness window, the product of the declared
// priority weight and current contention window. Stale entries from
// backlogged neighbors are filtered out here; the broadcast channel gives
// no ordering guarantee.
func (n *Node) busyScore(now int64) float64 {
	score := 0.0
	for _, s := range n.neighbors.Fresh(now, n.mac.BroadcastFreshness) {
		score += s.Weight * float64(s.CW)
	}
	return score
}

// effectiveThreshold scales the dynamic sensing threshold by the
// technology and access-category multipliers and adds a small bounded
// jitter so that co-located nodes do not defer in lockstep. Best-effort
// classes see a tighter multiplier: they perceive the medium as busy
// sooner than voice does.
func (n *Node) effectiveThreshold() float64 {
	jitter := (n.rng.Float64() - 0.5) * n.mac.JitterSlots
	return n.TDynamic*n.Tech.SenseMultiplier()*n.Category.SenseMultiplier() + jitter
}

// decide is the per-cycle sensing/CA decision. It returns the penalty
// slot count to add on top of the random backoff draw, in priority order:
//
//  1. an active hard reservation yields the plain AIFS penalty;
//  2. a freshly raised one-shot grant yields AIFS plus the current CW;
//  3. otherwise the neighbor busy score is compared against the
//     effective threshold: pass resets the CW and costs nothing, fail
//     doubles the CW and charges AIFS plus an extra CW fraction for
//     best-effort, scaled inversely by the controller's airtime share.
func (n *Node) decide(now int64) int64 {
	aifs := int64(n.Category.AIFSSlots())

	if n.controller.NavActive(now) {
		return aifs
	}
	if n.controller.ConsumeGrant() {
		return aifs + int64(n.CW)
	}

	if n.busyScore(now) <= n.effectiveThreshold() {
		n.resetCW()
		if n.mac.Law == AdaptHysteresis {
			// Granted immediately: tighten for fairness.
			n.TDynamic -= 1
			n.clampT()
		}
		return 0
	}

	n.escalateCW()
	if n.mac.Law == AdaptHysteresis {
		// Deferred by neighbors outnumbering the window: loosen.
		n.TDynamic += 2
		n.clampT()
	}
	penalty := float64(aifs)
	if n.Category == ACBestEffort {
		penalty += n.mac.ExtraPenaltyFrac * float64(n.CW)
	}
	penalty /= n.controller.Share
	penalty += n.rng.Float64() * n.mac.JitterSlots
	return int64(math.Round(penalty))
}

// starvationDefer inspects the grid neighborhood's recorded mean delay.
// Any neighbor above the delay threshold (scaled down slightly for the
// LBT technology) triggers a full defer for low-priority nodes and a mild
// defer for high-priority ones, so primaries yield a little and
// secondaries yield the whole cycle to a starving neighbor.
func (n *Node) starvationDefer(now int64) int {
	threshold := n.mac.DelayThresholdS
	if n.Tech == TechNRU {
		threshold *= n.mac.NRUDelayScale
	}
	starving := false
	for _, nb := range n.grid.MooreNeighbors(n.Pos) {
		if n.metrics.MeanDelaySeconds(nb.ID) > threshold {
			starving = true
			break
		}
	}
	if !starving {
		return deferNone
	}
	if n.Category == ACBestEffort {
		return deferFull
	}
	return deferMild
}
