package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

// SubsystemNode returns the RNG subsystem for node n's MAC decisions
// (backoff draws, sensing jitter).
func SubsystemNode(id int) string {
	return fmt.Sprintf("node_%d", id)
}

// SubsystemTraffic returns the RNG subsystem for node n's traffic
// generator, isolated from the MAC subsystem so that changing a node's
// channel-access behavior never perturbs its arrival pattern.
func SubsystemTraffic(id int) string {
	return fmt.Sprintf("traffic_%d", id)
}

// SubsystemController returns the RNG subsystem for a controller's
// monitor loops.
func SubsystemController(tech Technology) string {
	return fmt.Sprintf("controller_%s", tech)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per
// subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. The cooperative scheduler guarantees a
// single running process, so no locking is required.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named
// subsystem. The same subsystem name always returns the same *rand.Rand
// instance (cached). Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
