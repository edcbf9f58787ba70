package tabular

import (
	"fmt"
	"math"
	"sort"

	"golens/domain/explain"
)

// Extractor turns surrogate coefficients into the ranked, human-readable
// feature conditions of an explanation. Continuous features resolve their
// condition through the discretizer's range label for the instance's own
// bin; categorical features render as "name=value".
type Extractor struct {
	summary      *explain.TrainingSummary
	discretizers []*Discretizer
}

// NewExtractor wires an extractor to the built summary and discretizers.
func NewExtractor(summary *explain.TrainingSummary, discretizers []*Discretizer) *Extractor {
	return &Extractor{summary: summary, discretizers: discretizers}
}

// Extract packages one label's surrogate fit: conditions sorted by
// descending absolute coefficient (ties by ascending feature index),
// truncated to maxFeatures, zero coefficients dropped. One condition per
// feature, so the list never contains duplicates.
func (e *Extractor) Extract(fit *SurrogateFit, instance []float64, maxFeatures int) []explain.FeatureWeight {
	type entry struct {
		feature int
		weight  explain.FeatureWeight
	}
	entries := make([]entry, 0, len(fit.FeatureIndices))
	for j, f := range fit.FeatureIndices {
		coef := fit.Coefficients[j]
		if coef == 0 {
			continue
		}
		entries = append(entries, entry{
			feature: f,
			weight:  explain.FeatureWeight{Condition: e.conditionLabel(f, instance), Score: coef},
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ai, aj := math.Abs(entries[i].weight.Score), math.Abs(entries[j].weight.Score)
		if ai != aj {
			return ai > aj
		}
		return entries[i].feature < entries[j].feature
	})
	if maxFeatures > 0 && len(entries) > maxFeatures {
		entries = entries[:maxFeatures]
	}

	weights := make([]explain.FeatureWeight, len(entries))
	for i, en := range entries {
		weights[i] = en.weight
	}
	return weights
}

// conditionLabel renders the instance's condition for one feature.
func (e *Extractor) conditionLabel(f int, instance []float64) string {
	name := e.summary.FeatureNames[f]
	if e.summary.IsCategorical(f) {
		return fmt.Sprintf("%s=%s", name, explain.CategoryKey(instance[f]))
	}
	d := e.discretizers[f]
	return d.Label(d.Bin(instance[f]), name)
}
