package tabular

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// bandwidthScale is the default kernel width multiplier over sqrt(feature
// count), following the usual exponential-kernel heuristic for indicator
// spaces.
const bandwidthScale = 0.75

// Kernel converts distances in indicator space into locality weights via an
// exponential kernel exp(-d²/bw²). Weights are strictly positive for every
// finite distance and monotonically decreasing in distance, so all synthetic
// samples contribute, closer ones more.
type Kernel struct {
	Bandwidth float64
}

// NewKernel builds a kernel with an explicit bandwidth, falling back to
// DefaultBandwidth(numFeatures) when bandwidth is not positive.
func NewKernel(bandwidth float64, numFeatures int) Kernel {
	if bandwidth <= 0 {
		bandwidth = DefaultBandwidth(numFeatures)
	}
	return Kernel{Bandwidth: bandwidth}
}

// DefaultBandwidth returns sqrt(numFeatures) * 0.75.
func DefaultBandwidth(numFeatures int) float64 {
	return math.Sqrt(float64(numFeatures)) * bandwidthScale
}

// Weight computes the locality weight between the instance's indicator row
// and one synthetic indicator row using Euclidean distance.
func (k Kernel) Weight(instance, row []float64) float64 {
	d := floats.Distance(instance, row, 2)
	return math.Exp(-(d * d) / (k.Bandwidth * k.Bandwidth))
}
