package app

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golens/domain/core"
	"golens/domain/explain"
	"golens/internal"
	"golens/internal/errors"
	"golens/ports"
)

// scriptedExplainer is a canned ExplainerPort: it fails on samples whose
// first value is negative and otherwise returns conditions driven by the
// sample value, so aggregation behavior can be asserted exactly.
type scriptedExplainer struct {
	built bool
	mode  explain.Mode
}

func (s *scriptedExplainer) Build(ctx context.Context, params ports.BuildParams) error {
	s.built = true
	s.mode = params.Mode
	return nil
}

func (s *scriptedExplainer) ExplainInstance(ctx context.Context, instance []float64, opts explain.Options) (*explain.Explanation, error) {
	if instance[0] < 0 {
		return nil, errors.InsufficientData("scripted failure")
	}
	var features []explain.FeatureWeight
	if instance[0] == 1 {
		features = []explain.FeatureWeight{
			{Condition: "alpha", Score: 0.9},
			{Condition: "beta", Score: -0.4},
		}
	} else {
		features = []explain.FeatureWeight{
			{Condition: "beta", Score: 0.7},
		}
	}
	return &explain.Explanation{
		Mode: s.mode,
		Labels: []explain.LabelExplanation{{
			Label:      explain.RegressionLabel,
			Prediction: instance[0],
			Features:   features,
		}},
	}, nil
}

func (s *scriptedExplainer) Save(io.Writer) error            { return nil }
func (s *scriptedExplainer) Load(io.Reader) error            { return nil }
func (s *scriptedExplainer) AttachModel(ports.ModelFn)       {}
func (s *scriptedExplainer) IsBuilt() bool                   { return s.built }

func buildInterpreter(t *testing.T, opts ...InterpreterOption) *ModelInterpreter {
	t.Helper()
	interpreter := NewModelInterpreter(&scriptedExplainer{}, internal.NewLogger(internal.LogLevelError), opts...)
	err := interpreter.Build(context.Background(), ports.BuildParams{
		Mode: explain.ModeRegression,
	}, nil)
	require.NoError(t, err)
	return interpreter
}

func TestInterpretRequiresBuild(t *testing.T) {
	interpreter := NewModelInterpreter(&scriptedExplainer{}, internal.NewLogger(internal.LogLevelError))
	_, _, err := interpreter.Interpret(context.Background(), [][]float64{{1}}, explain.StatsAverageRanking, 2)
	require.Error(t, err)
	assert.True(t, errors.IsStateError(err))
}

func TestInterpretRejectsUnknownStatsType(t *testing.T) {
	interpreter := buildInterpreter(t)
	_, _, err := interpreter.Interpret(context.Background(), [][]float64{{1}}, "median_ranking", 2)
	require.Error(t, err)
	assert.True(t, errors.IsConfigInvalid(err))
}

func TestInterpretCountsAllSuccesses(t *testing.T) {
	interpreter := buildInterpreter(t)
	samples := [][]float64{{1}, {2}, {1}, {2}}

	stats, processed, err := interpreter.Interpret(context.Background(), samples, explain.StatsAverageRanking, 2)
	require.NoError(t, err)
	assert.Equal(t, len(samples), processed)
	assert.Equal(t, len(samples), stats.Processed)
}

func TestInterpretSkipsFailedSamples(t *testing.T) {
	interpreter := buildInterpreter(t)
	samples := [][]float64{{1}, {-1}, {2}}

	stats, processed, err := interpreter.Interpret(context.Background(), samples, explain.StatsAverageRanking, 2)
	require.NoError(t, err, "one bad sample must not abort the batch")
	assert.Equal(t, 2, processed)
	assert.Equal(t, 2, stats.Processed)
}

func TestInterpretAverageRankingAsymmetry(t *testing.T) {
	interpreter := buildInterpreter(t)
	// Sample 1 ranks alpha #1 and beta #2; sample 2 ranks beta #1 and
	// omits alpha entirely.
	samples := [][]float64{{1}, {2}}

	stats, _, err := interpreter.Interpret(context.Background(), samples, explain.StatsAverageRanking, 2)
	require.NoError(t, err)

	byCondition := stats.PerLabel[explain.RegressionLabel]
	require.NotNil(t, byCondition)

	// beta: ranks 2 and 1 → mean 1.5 over 2 observations.
	require.Contains(t, byCondition, "beta")
	assert.InDelta(t, 1.5, byCondition["beta"].Mean(), 1e-12)
	assert.Equal(t, 2, byCondition["beta"].Count)

	// alpha appeared once at rank 1; its absence from sample 2 is not
	// penalized with a worst-case rank.
	require.Contains(t, byCondition, "alpha")
	assert.InDelta(t, 1.0, byCondition["alpha"].Mean(), 1e-12)
	assert.Equal(t, 1, byCondition["alpha"].Count)
}

func TestInterpretProgressCheckpoints(t *testing.T) {
	type checkpoint struct {
		processed int
		total     int
	}
	var seen []checkpoint
	progress := ports.ProgressFunc(func(runID core.RunID, processed, total int) {
		assert.False(t, core.ID(runID).IsEmpty())
		seen = append(seen, checkpoint{processed, total})
	})

	interpreter := buildInterpreter(t, WithProgress(progress), WithCheckpointEvery(2))
	samples := [][]float64{{1}, {2}, {1}, {2}, {1}}

	_, processed, err := interpreter.Interpret(context.Background(), samples, explain.StatsAverageRanking, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, processed)

	// Intermediate checkpoints at 2 and 4 processed, plus completion.
	require.NotEmpty(t, seen)
	assert.Contains(t, seen, checkpoint{2, 5})
	assert.Contains(t, seen, checkpoint{4, 5})
	assert.Equal(t, checkpoint{5, 5}, seen[len(seen)-1])
}
