package tabular

import (
	"math/rand"
	"sort"
	"strconv"

	"golens/domain/explain"
	"golens/internal/errors"
)

// Neighborhood is the ephemeral synthetic neighborhood generated for one
// explain call: raw perturbed rows, the indicator matrix the surrogate is fit
// against, and (filled in later) kernel weights. Row 0 is always the
// unperturbed instance, so the true prediction is represented once in the
// window the fidelity score is computed over.
type Neighborhood struct {
	Rows       [][]float64
	Indicators [][]float64
	Weights    []float64
}

// Sampler draws synthetic neighborhoods from the training distribution
// recorded in a TrainingSummary: normal draws matched to the column
// mean/std for continuous features, empirical frequency draws for
// categorical ones.
type Sampler struct {
	summary      *explain.TrainingSummary
	discretizers []*Discretizer // nil entries for categorical features
}

// NewSampler wires a sampler to a built training summary and its
// per-feature discretizers.
func NewSampler(summary *explain.TrainingSummary, discretizers []*Discretizer) *Sampler {
	return &Sampler{summary: summary, discretizers: discretizers}
}

// categoryDraw is one categorical value with its cumulative training count,
// precomputed in deterministic key order so equal seeds yield equal draws.
type categoryDraw struct {
	value      float64
	cumulative int
}

// Sample draws count synthetic rows around instance. The indicator matrix
// encodes, per row and feature, whether that row's binned (or categorical)
// value equals the instance's own.
func (s *Sampler) Sample(instance []float64, count int, rng *rand.Rand) (*Neighborhood, error) {
	if s.degenerate() {
		return nil, errors.InsufficientData("every training feature has zero variance; perturbation would be degenerate")
	}
	numFeatures := s.summary.NumFeatures()

	// Precompute the instance's bin (or category) per feature and the
	// categorical draw tables.
	instanceBins := make([]int, numFeatures)
	draws := make([][]categoryDraw, numFeatures)
	totals := make([]int, numFeatures)
	for f := 0; f < numFeatures; f++ {
		if s.summary.IsCategorical(f) {
			draws[f], totals[f] = s.drawTable(f)
			continue
		}
		instanceBins[f] = s.discretizers[f].Bin(instance[f])
	}

	rows := make([][]float64, count)
	indicators := make([][]float64, count)

	// Row 0: the instance itself, indicator all ones.
	rows[0] = append([]float64(nil), instance...)
	ones := make([]float64, numFeatures)
	for f := range ones {
		ones[f] = 1
	}
	indicators[0] = ones

	for i := 1; i < count; i++ {
		row := make([]float64, numFeatures)
		indicator := make([]float64, numFeatures)
		for f := 0; f < numFeatures; f++ {
			if s.summary.IsCategorical(f) {
				v := s.drawCategory(draws[f], totals[f], rng)
				row[f] = v
				if v == instance[f] {
					indicator[f] = 1
				}
				continue
			}
			profile := s.summary.Profiles[f]
			v := rng.NormFloat64()*profile.StdDev + profile.Mean
			row[f] = v
			if s.discretizers[f].Bin(v) == instanceBins[f] {
				indicator[f] = 1
			}
		}
		rows[i] = row
		indicators[i] = indicator
	}

	return &Neighborhood{Rows: rows, Indicators: indicators}, nil
}

// degenerate reports whether no feature can vary under resampling.
func (s *Sampler) degenerate() bool {
	for f := 0; f < s.summary.NumFeatures(); f++ {
		profile := s.summary.Profiles[f]
		if s.summary.IsCategorical(f) {
			if len(profile.Frequencies) > 1 {
				return false
			}
			continue
		}
		if profile.StdDev > 0 {
			return false
		}
	}
	return true
}

// drawTable builds the cumulative frequency table for one categorical
// feature in sorted-key order.
func (s *Sampler) drawTable(f int) ([]categoryDraw, int) {
	freqs := s.summary.Profiles[f].Frequencies
	keys := make([]string, 0, len(freqs))
	for k := range freqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := make([]categoryDraw, 0, len(keys))
	total := 0
	for _, k := range keys {
		v, err := strconv.ParseFloat(k, 64)
		if err != nil {
			// Keys are produced by CategoryKey and always parse; skip
			// anything foreign rather than poisoning the table.
			continue
		}
		total += freqs[k]
		table = append(table, categoryDraw{value: v, cumulative: total})
	}
	return table, total
}

// drawCategory samples one value from the empirical category distribution.
func (s *Sampler) drawCategory(table []categoryDraw, total int, rng *rand.Rand) float64 {
	if total == 0 || len(table) == 0 {
		return 0
	}
	n := rng.Intn(total)
	for _, d := range table {
		if n < d.cumulative {
			return d.value
		}
	}
	return table[len(table)-1].value
}
