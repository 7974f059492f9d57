package sim

// Signal is an edge-triggered broadcast event. Raising it wakes every
// process currently waiting on it and then replaces the signal with a
// fresh, unraised generation: processes that register afterwards wait for
// the next Raise. This mirrors the replace-after-fire semantics of a
// one-shot grant event rather than a level-triggered flag.
type Signal struct {
	sim *Simulator
	gen uint64
	reg []signalWaiter
}

type signalWaiter struct {
	proc  *Proc
	state *waitState
}

// NewSignal creates an unraised signal bound to the simulator's clock.
func NewSignal(sim *Simulator) *Signal {
	return &Signal{sim: sim}
}

// Generation returns the number of times this signal has been raised.
func (sig *Signal) Generation() uint64 { return sig.gen }

// register enrolls a parked process in the current generation. st is the
// shared compound-wait state; if the timeout branch fires first the signal
// wakeup becomes a tombstone.
func (sig *Signal) register(p *Proc, st *waitState) {
	sig.reg = append(sig.reg, signalWaiter{proc: p, state: st})
}

// Raise wakes all currently registered waiters at the present instant, in
// registration order, and starts a new generation. Raising with no waiters
// still advances the generation; the edge is not latched.
func (sig *Signal) Raise() {
	for _, w := range sig.reg {
		sig.sim.schedule(&wakeup{
			time:     sig.sim.Clock,
			proc:     w.proc,
			signaled: true,
			state:    w.state,
		})
	}
	sig.reg = nil
	sig.gen++
}
