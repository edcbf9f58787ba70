package explain

import "sort"

// StatsType names a batch aggregation strategy.
type StatsType string

// StatsAverageRanking accumulates, per feature condition, the running mean of
// its rank position (1 = most important) across the samples in which the
// condition appeared at all. Conditions absent from a sample's explanation
// contribute nothing for that sample rather than being penalized with a
// worst-case rank.
const StatsAverageRanking StatsType = "average_ranking"

// RankAccumulator is an explicit (sum, count) pair so each update is O(1)
// and the mean is computed once at read time instead of via repeated
// mean-of-means.
type RankAccumulator struct {
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
}

// Mean returns the running average rank, or 0 when nothing was observed.
func (a RankAccumulator) Mean() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.Sum / float64(a.Count)
}

// AggregationStats is the global feature-importance summary built
// incrementally by the model interpreter over one batch run. PerLabel maps a
// class name (or RegressionLabel) to per-condition rank accumulators.
type AggregationStats struct {
	Type      StatsType                             `json:"type"`
	PerLabel  map[string]map[string]*RankAccumulator `json:"per_label"`
	Processed int                                   `json:"processed"`
}

// NewAggregationStats creates an empty accumulator set for one run.
func NewAggregationStats(t StatsType) *AggregationStats {
	return &AggregationStats{
		Type:     t,
		PerLabel: make(map[string]map[string]*RankAccumulator),
	}
}

// ObserveRank records that condition appeared at the given rank (1-based)
// in one sample's explanation for label.
func (s *AggregationStats) ObserveRank(label, condition string, rank int) {
	byCondition, ok := s.PerLabel[label]
	if !ok {
		byCondition = make(map[string]*RankAccumulator)
		s.PerLabel[label] = byCondition
	}
	acc, ok := byCondition[condition]
	if !ok {
		acc = &RankAccumulator{}
		byCondition[condition] = acc
	}
	acc.Sum += float64(rank)
	acc.Count++
}

// ConditionRank is one finalized (condition, average rank, support) row.
type ConditionRank struct {
	Condition   string  `json:"condition"`
	AverageRank float64 `json:"average_rank"`
	Support     int     `json:"support"`
}

// Ranking returns the finalized per-label averages, best (lowest) average
// rank first; ties break by higher support, then condition name for
// deterministic output.
func (s *AggregationStats) Ranking(label string) []ConditionRank {
	byCondition := s.PerLabel[label]
	ranking := make([]ConditionRank, 0, len(byCondition))
	for condition, acc := range byCondition {
		ranking = append(ranking, ConditionRank{
			Condition:   condition,
			AverageRank: acc.Mean(),
			Support:     acc.Count,
		})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].AverageRank != ranking[j].AverageRank {
			return ranking[i].AverageRank < ranking[j].AverageRank
		}
		if ranking[i].Support != ranking[j].Support {
			return ranking[i].Support > ranking[j].Support
		}
		return ranking[i].Condition < ranking[j].Condition
	})
	return ranking
}

// LabelKeys returns the label identifiers present, sorted.
func (s *AggregationStats) LabelKeys() []string {
	keys := make([]string, 0, len(s.PerLabel))
	for k := range s.PerLabel {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
