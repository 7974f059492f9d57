package sim

// Traffic generator processes. Each node runs exactly one of these for
// the lifetime of the simulation.

// saturatedRefillPoll is how often the saturated generator checks whether
// the queue has drained.
const saturatedRefillPoll = int64(1_000) // 1 µs

// trafficPoisson supplies packets with exponential inter-arrival times at
// the node's configured rate. Arrivals hitting a full queue are discarded
// (lossy traffic model).
func (n *Node) trafficPoisson(p *Proc) {
	meanIATTicks := float64(TicksPerSecond) / n.LambdaPerS
	for {
		p.Sleep(int64(n.trafficRng.ExpFloat64() * meanIATTicks))
		n.Queue.Push(p.Now())
	}
}

// trafficSaturated models a full buffer with a single outstanding packet:
// one packet is preloaded, and the queue is refilled as soon as it drains,
// with a sub-slot arrival jitter so co-located nodes do not refill in
// lockstep.
func (n *Node) trafficSaturated(p *Proc) {
	n.Queue.Push(p.Now())
	for {
		jitter := int64(n.trafficRng.Float64() * float64(saturatedRefillPoll))
		p.Sleep(saturatedRefillPoll + jitter)
		if n.Queue.Len() == 0 {
			n.Queue.Push(p.Now())
		}
	}
}
