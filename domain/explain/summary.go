package explain

import (
	"fmt"
	"sort"
	"strconv"
)

// FeatureProfile captures the per-column statistics recorded at build time.
// Continuous columns use Mean/StdDev/Min/Max; categorical columns use
// Frequencies keyed by the rendered category value (strconv %g form, so the
// key both round-trips to the numeric value and reads well in a condition
// label).
type FeatureProfile struct {
	Count       int            `json:"count"`
	Mean        float64        `json:"mean"`
	StdDev      float64        `json:"std_dev"`
	Min         float64        `json:"min"`
	Max         float64        `json:"max"`
	Frequencies map[string]int `json:"frequencies,omitempty"`
}

// CategoryKey renders a raw categorical value into its frequency-map key.
func CategoryKey(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

// TrainingSummary is the immutable snapshot an explainer takes of its
// training set at build time: ordered feature names, per-column profiles,
// which columns are categorical, and the discretizer bin edges for the
// continuous ones. It is created once by Build and never mutated after.
type TrainingSummary struct {
	FeatureNames []string         `json:"feature_names"`
	Categorical  map[int]bool     `json:"categorical"`
	Profiles     []FeatureProfile `json:"profiles"`
	// BinEdges holds the interior cut points per feature, ascending.
	// nil for categorical features.
	BinEdges [][]float64 `json:"bin_edges"`
}

// NumFeatures returns the column count of the snapshot.
func (s *TrainingSummary) NumFeatures() int {
	return len(s.FeatureNames)
}

// IsCategorical reports whether feature i was declared categorical at build.
func (s *TrainingSummary) IsCategorical(i int) bool {
	return s.Categorical[i]
}

// Validate checks structural integrity. Load uses it to reject blobs that
// unmarshal but do not round-trip to a usable snapshot.
func (s *TrainingSummary) Validate() error {
	if len(s.FeatureNames) == 0 {
		return fmt.Errorf("training summary has no features")
	}
	if len(s.Profiles) != len(s.FeatureNames) {
		return fmt.Errorf("training summary has %d profiles for %d features", len(s.Profiles), len(s.FeatureNames))
	}
	if len(s.BinEdges) != len(s.FeatureNames) {
		return fmt.Errorf("training summary has %d bin-edge sets for %d features", len(s.BinEdges), len(s.FeatureNames))
	}
	for i := range s.FeatureNames {
		if s.FeatureNames[i] == "" {
			return fmt.Errorf("feature %d has an empty name", i)
		}
		if s.IsCategorical(i) {
			continue
		}
		edges := s.BinEdges[i]
		if len(edges) == 0 {
			return fmt.Errorf("continuous feature %q has no bin edges", s.FeatureNames[i])
		}
		if !sort.Float64sAreSorted(edges) {
			return fmt.Errorf("bin edges for feature %q are not ascending", s.FeatureNames[i])
		}
		for j := 1; j < len(edges); j++ {
			if edges[j] == edges[j-1] {
				return fmt.Errorf("bin edges for feature %q contain a duplicate boundary %v", s.FeatureNames[i], edges[j])
			}
		}
	}
	return nil
}
