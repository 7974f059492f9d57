// Package sim provides the discrete-event core of the spectrum
// coexistence simulator: CSMA/CA and Listen-Before-Talk stations
// contending on a shared multi-band channel.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - simulator.go: the cooperative scheduler — virtual clock, event
//     queue, process suspension points
//   - signal.go: the edge-triggered grant event used for compound
//     "timeout or grant" waits
//   - node.go: the MAC state machine loop each station runs
//   - channel.go: the shared medium — ledger, SINR, capacity accounting
//
// # Architecture
//
// Everything is a cooperative process multiplexed by the Simulator: node
// MAC loops, traffic generators, status broadcasters and the controllers'
// reservation/fairness monitors. Exactly one process runs between two
// suspension points, so shared state (Channel, Metrics, controller state)
// is mutated without locking and runs are bit-for-bit reproducible for a
// given SimulationKey.
//
// Cross-references between nodes and controllers go through the Grid
// registry and NodeID lookups rather than owning pointers; the only
// inter-node communication is the periodic, unreliable status broadcast
// stored in per-node NeighborTables.
//
// Steady-state anomalies (sensed-busy medium, failed SINR check, capacity
// drop) never surface as errors: they degrade into contention-window
// escalation and retry. Only construction invariants fail fast.
package sim
