package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two departments with the same SimulationKey and identical configuration
// MUST produce identical histories.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemExamination is the RNG subsystem for the consultation branch draw.
	SubsystemExamination = "examination"
)

// SubsystemArrival returns the subsystem name for severity level n.
func SubsystemArrival(level int) string {
	return fmt.Sprintf("arrival_L%d", level)
}

// SubsystemStage returns the subsystem name for the named stage's duration sampling.
func SubsystemStage(name string) string {
	return "stage_" + name
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated random sources per subsystem.
//
// Derivation formula: PCG(masterSeed, fnv1a64(subsystemName)).
// Swapping the distribution of one subsystem never shifts the stream of another.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.PCG
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.PCG),
	}
}

// Source returns the random source for the named subsystem.
// The same subsystem name always returns the same source (cached), so
// distributions rebuilt on that subsystem continue the same stream.
// Never returns nil.
func (p *PartitionedRNG) Source(name string) rand.Source {
	if src, ok := p.subsystems[name]; ok {
		return src
	}
	src := rand.NewPCG(uint64(p.key), fnv1a64(name))
	p.subsystems[name] = src
	return src
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
