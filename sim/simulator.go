// sim/simulator.go
package sim

import (
	"container/heap"

	"github.com/sirupsen/logrus"
)

// TicksPerSecond defines the virtual time base: one tick is one nanosecond.
// All durations and timestamps inside the simulator use this unit.
const TicksPerSecond = int64(1_000_000_000)

// SecondsToTicks converts a duration in seconds to simulator ticks.
func SecondsToTicks(s float64) int64 {
	return int64(s * float64(TicksPerSecond))
}

// TicksToSeconds converts simulator ticks to seconds.
func TicksToSeconds(t int64) float64 {
	return float64(t) / float64(TicksPerSecond)
}

// wakeup is a scheduled resumption of a parked process.
//
// A wakeup may share a waitState with a Signal registration: whichever side
// fires first marks the state done, and the loser becomes a tombstone that
// the event loop discards. This is how compound "timeout or grant" waits
// cancel their losing branch.
type wakeup struct {
	time     int64
	seq      uint64 // FIFO tie-break for equal timestamps
	proc     *Proc
	signaled bool
	state    *waitState
}

// waitState links the two branches of a compound wait.
type waitState struct {
	done bool
}

// eventQueue implements heap.Interface and orders wakeups by timestamp,
// breaking ties by registration order so that resumption among events
// scheduled for the same instant is deterministic.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type eventQueue []*wakeup

func (eq eventQueue) Len() int { return len(eq) }
func (eq eventQueue) Less(i, j int) bool {
	if eq[i].time != eq[j].time {
		return eq[i].time < eq[j].time
	}
	return eq[i].seq < eq[j].seq
}
func (eq eventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *eventQueue) Push(x any) {
	*eq = append(*eq, x.(*wakeup))
}

func (eq *eventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// Simulator is the cooperative discrete-event core. It owns the virtual
// clock and multiplexes an arbitrary number of processes (node MAC loops,
// controller monitors, traffic generators, status broadcasters) over a
// single logical thread: exactly one process runs between two suspension
// points, so all simulation state is mutated without locking.
type Simulator struct {
	Clock int64

	eq     eventQueue
	seq    uint64
	parked chan struct{} // current process parked or exited
	done   chan struct{} // closed when the run is over; releases parked processes
}

// NewSimulator creates an empty simulator with the clock at zero.
func NewSimulator() *Simulator {
	return &Simulator{
		eq:     make(eventQueue, 0),
		parked: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Proc is the handle a process uses to suspend itself. Every suspension
// point goes through exactly one of Sleep, SleepUntil or WaitGrantOrSleep.
type Proc struct {
	sim    *Simulator
	name   string
	resume chan bool
}

// Name returns the process name used in trace logs.
func (p *Proc) Name() string { return p.name }

// Now returns the current virtual time in ticks.
func (p *Proc) Now() int64 { return p.sim.Clock }

func (s *Simulator) schedule(w *wakeup) {
	w.seq = s.seq
	s.seq++
	heap.Push(&s.eq, w)
}

// Spawn registers fn as a cooperative process. The process starts at the
// current virtual time, in FIFO order relative to other events already
// scheduled for that instant, and runs until it returns or the horizon is
// reached.
func (s *Simulator) Spawn(name string, fn func(*Proc)) {
	p := &Proc{sim: s, name: name, resume: make(chan bool)}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if _, stopped := r.(errSimStopped); !stopped {
					panic(r)
				}
			}
			select {
			case s.parked <- struct{}{}:
			case <-s.done:
			}
		}()
		<-p.resume
		fn(p)
	}()
	s.schedule(&wakeup{time: s.Clock, proc: p})
}

// Sleep suspends the process for d ticks of virtual time. A non-positive d
// still passes through the event queue, keeping resumption order
// deterministic.
func (p *Proc) Sleep(d int64) {
	if d < 0 {
		d = 0
	}
	p.sim.schedule(&wakeup{time: p.sim.Clock + d, proc: p})
	p.park()
}

// SleepUntil suspends the process until virtual time t (or now, if t has
// already passed).
func (p *Proc) SleepUntil(t int64) {
	p.Sleep(t - p.sim.Clock)
}

// WaitGrantOrSleep suspends until either d ticks elapse or sig is raised,
// whichever happens first. It reports whether the signal branch won.
// The losing branch is discarded: a timeout overtaken by the signal never
// fires, and vice versa.
func (p *Proc) WaitGrantOrSleep(d int64, sig *Signal) bool {
	if d < 0 {
		d = 0
	}
	st := &waitState{}
	p.sim.schedule(&wakeup{time: p.sim.Clock + d, proc: p, state: st})
	sig.register(p, st)
	return p.park()
}

// park hands control back to the event loop and blocks until the next
// wakeup for this process. Returns true when resumed by a signal.
func (p *Proc) park() bool {
	select {
	case p.sim.parked <- struct{}{}:
	case <-p.sim.done:
		panic(errSimStopped{})
	}
	select {
	case signaled := <-p.resume:
		return signaled
	case <-p.sim.done:
		panic(errSimStopped{})
	}
}

// errSimStopped unwinds a process goroutine once the run is over. It is
// recovered by the Spawn wrapper, never by user code.
type errSimStopped struct{}

// Run executes events until the queue drains or the next event would pass
// the horizon, then releases every remaining process. The clock ends at
// min(last executed event time, horizon).
func (s *Simulator) Run(horizon int64) {
	for s.eq.Len() > 0 {
		w := heap.Pop(&s.eq).(*wakeup)
		if w.state != nil {
			if w.state.done {
				continue // losing branch of a compound wait
			}
			w.state.done = true
		}
		if w.time > horizon {
			s.Clock = horizon
			break
		}
		s.Clock = w.time
		logrus.Tracef("[tick %012d] resume %s", s.Clock, w.proc.name)
		s.dispatch(w)
	}
	close(s.done)
	logrus.Debugf("[tick %012d] simulation ended", s.Clock)
}

// dispatch resumes one process and waits for it to park again or exit.
func (s *Simulator) dispatch(w *wakeup) {
	w.proc.resume <- w.signaled
	<-s.parked
}
