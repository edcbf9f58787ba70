package tabular

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultBandwidth(t *testing.T) {
	assert.InDelta(t, 1.5, DefaultBandwidth(4), 1e-12)
	assert.InDelta(t, math.Sqrt(9)*0.75, DefaultBandwidth(9), 1e-12)
}

func TestNewKernelFallsBackToDefault(t *testing.T) {
	k := NewKernel(0, 4)
	assert.InDelta(t, 1.5, k.Bandwidth, 1e-12)

	k = NewKernel(2.5, 4)
	assert.InDelta(t, 2.5, k.Bandwidth, 1e-12)
}

func TestWeightMonotoneAndPositive(t *testing.T) {
	k := NewKernel(0, 3)
	instance := []float64{1, 1, 1}

	identical := k.Weight(instance, []float64{1, 1, 1})
	near := k.Weight(instance, []float64{1, 1, 0})
	far := k.Weight(instance, []float64{0, 0, 0})

	assert.InDelta(t, 1.0, identical, 1e-12)
	assert.Greater(t, near, far)
	// No hard cutoff: even distant rows keep a strictly positive weight.
	assert.Greater(t, far, 0.0)
}
