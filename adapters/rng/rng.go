package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// StreamAdapter implements ports.RNGPort with streams derived from a hash of
// the stream name mixed into the caller's seed, so distinct operations get
// independent but fully reproducible randomness.
type StreamAdapter struct{}

// New creates the deterministic stream adapter.
func New() *StreamAdapter {
	return &StreamAdapter{}
}

// SeededStream creates a deterministic random number generator for a named
// operation. The same (name, seed) pair always yields an identical stream.
func (a *StreamAdapter) SeededStream(name string, seed int64) *rand.Rand {
	return rand.New(rand.NewSource(derive(name, seed)))
}

// SampleStream creates a deterministic stream for one sample inside a run,
// stable regardless of batch order.
func (a *StreamAdapter) SampleStream(runID string, sampleIndex int, baseSeed int64) *rand.Rand {
	return a.SeededStream(fmt.Sprintf("%s/%d", runID, sampleIndex), baseSeed)
}

// derive mixes the stream name into the seed through sha256 so that streams
// with different names never overlap.
func derive(name string, seed int64) int64 {
	sum := sha256.Sum256([]byte(name))
	return seed ^ int64(binary.BigEndian.Uint64(sum[:8]))
}
