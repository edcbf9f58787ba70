package ports

import "math/rand"

// RNGPort provides seeded random number generation so perturbation
// neighborhoods are reproducible: the same (name, seed) pair must always
// yield an identical stream.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a
	// named operation.
	SeededStream(name string, seed int64) *rand.Rand

	// SampleStream creates a deterministic stream for one sample inside a
	// run, so per-sample neighborhoods are stable regardless of batch order.
	SampleStream(runID string, sampleIndex int, baseSeed int64) *rand.Rand
}
