package tabular

import (
	"bytes"
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golens/adapters/rng"
	"golens/domain/explain"
	"golens/internal/errors"
	"golens/ports"
)

// regressionFixture is a 2-feature training set with a known linear target:
// y = 5*width + height.
func regressionFixture() ports.BuildParams {
	training := make([][]float64, 200)
	for i := range training {
		training[i] = []float64{float64(i % 20), float64((i * 7) % 20)}
	}
	model := func(instance []float64) ([]float64, error) {
		return []float64{5*instance[0] + instance[1]}, nil
	}
	return ports.BuildParams{
		Training:     training,
		Mode:         explain.ModeRegression,
		Model:        model,
		FeatureNames: []string{"width", "height"},
		Config:       ports.ExplainerConfig{NumBins: 3, Seed: 11},
	}
}

func classificationFixture() ports.BuildParams {
	params := regressionFixture()
	params.Mode = explain.ModeClassification
	params.Model = func(instance []float64) ([]float64, error) {
		// Probability of class 1 rises with width.
		p := instance[0] / 20
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		return []float64{1 - p, p}, nil
	}
	return params
}

func TestBuildValidation(t *testing.T) {
	e := NewLimeExplainer(rng.New())
	ctx := context.Background()

	params := regressionFixture()
	params.Training = nil
	assert.True(t, errors.IsConfigInvalid(e.Build(ctx, params)))

	params = regressionFixture()
	params.FeatureNames = []string{"only_one"}
	assert.True(t, errors.IsConfigInvalid(e.Build(ctx, params)))

	params = regressionFixture()
	params.Model = nil
	assert.True(t, errors.IsConfigInvalid(e.Build(ctx, params)))

	params = regressionFixture()
	params.Mode = "clustering"
	assert.True(t, errors.IsConfigInvalid(e.Build(ctx, params)))

	params = regressionFixture()
	params.CategoricalFeatures = []int{5}
	assert.True(t, errors.IsConfigInvalid(e.Build(ctx, params)))
}

func TestExplainBeforeBuildFails(t *testing.T) {
	e := NewLimeExplainer(rng.New())
	_, err := e.ExplainInstance(context.Background(), []float64{1, 2}, explain.Options{})
	require.Error(t, err)
	assert.True(t, errors.IsStateError(err))
	assert.False(t, e.IsBuilt())
}

func TestBuildIsIdempotent(t *testing.T) {
	ctx := context.Background()
	params := regressionFixture()

	e := NewLimeExplainer(rng.New())
	require.NoError(t, e.Build(ctx, params))
	first := e.Summary()

	require.NoError(t, e.Build(ctx, params))
	second := e.Summary()

	assert.Equal(t, first, second)
	assert.True(t, e.IsBuilt())
}

func TestExplainReportsTruePrediction(t *testing.T) {
	ctx := context.Background()
	params := regressionFixture()
	e := NewLimeExplainer(rng.New())
	require.NoError(t, e.Build(ctx, params))

	instance := []float64{4, 9}
	result, err := e.ExplainInstance(ctx, instance, explain.Options{NumSamples: 500})
	require.NoError(t, err)
	require.Len(t, result.Labels, 1)

	want, _ := params.Model(instance)
	// The reported prediction is the target model's output, never the
	// surrogate's.
	assert.Equal(t, want[0], result.Labels[0].Prediction)
	assert.Equal(t, explain.RegressionLabel, result.Labels[0].Label)
}

func TestExplainTopKAndNoDuplicateConditions(t *testing.T) {
	ctx := context.Background()
	e := NewLimeExplainer(rng.New())
	require.NoError(t, e.Build(ctx, regressionFixture()))

	result, err := e.ExplainInstance(ctx, []float64{19, 3}, explain.Options{NumFeatures: 1, NumSamples: 500})
	require.NoError(t, err)
	require.Len(t, result.Labels, 1)
	assert.LessOrEqual(t, len(result.Labels[0].Features), 1)

	result, err = e.ExplainInstance(ctx, []float64{19, 3}, explain.Options{NumFeatures: 10, NumSamples: 500})
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, fw := range result.Labels[0].Features {
		assert.False(t, seen[fw.Condition], "duplicate condition %q", fw.Condition)
		seen[fw.Condition] = true
	}

	// Scores are ordered by descending magnitude.
	features := result.Labels[0].Features
	for i := 1; i < len(features); i++ {
		assert.GreaterOrEqual(t, math.Abs(features[i-1].Score), math.Abs(features[i].Score))
	}
}

func TestExplainDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	e := NewLimeExplainer(rng.New())
	require.NoError(t, e.Build(ctx, regressionFixture()))

	_, err := e.ExplainInstance(ctx, []float64{1, 2, 3}, explain.Options{})
	assert.True(t, errors.IsConfigInvalid(err))
}

func TestExplainUnknownMetric(t *testing.T) {
	ctx := context.Background()
	e := NewLimeExplainer(rng.New())
	require.NoError(t, e.Build(ctx, regressionFixture()))

	_, err := e.ExplainInstance(ctx, []float64{1, 2}, explain.Options{DistanceMetric: "cosine"})
	assert.True(t, errors.IsConfigInvalid(err))
}

func TestExplainClassificationLabels(t *testing.T) {
	ctx := context.Background()
	e := NewLimeExplainer(rng.New())
	require.NoError(t, e.Build(ctx, classificationFixture()))

	// Explicit labels, one fit per requested class.
	result, err := e.ExplainInstance(ctx, []float64{18, 3}, explain.Options{Labels: []int{0, 1}, NumSamples: 500})
	require.NoError(t, err)
	require.Len(t, result.Labels, 2)
	assert.Equal(t, "0", result.Labels[0].Label)
	assert.Equal(t, "1", result.Labels[1].Label)

	// TopLabels picks the most probable class first: width 18 → class 1.
	result, err = e.ExplainInstance(ctx, []float64{18, 3}, explain.Options{TopLabels: 1, NumSamples: 500})
	require.NoError(t, err)
	require.Len(t, result.Labels, 1)
	assert.Equal(t, 1, result.Labels[0].Index)

	// Out-of-range label index.
	_, err = e.ExplainInstance(ctx, []float64{18, 3}, explain.Options{Labels: []int{5}, NumSamples: 500})
	assert.True(t, errors.IsConfigInvalid(err))
}

func TestExplainDominantFeatureRanksFirstAtExtreme(t *testing.T) {
	ctx := context.Background()
	e := NewLimeExplainer(rng.New())
	require.NoError(t, e.Build(ctx, regressionFixture()))

	atMean, err := e.ExplainInstance(ctx, []float64{9.5, 9.5}, explain.Options{NumFeatures: 2, NumSamples: 2000})
	require.NoError(t, err)
	atExtreme, err := e.ExplainInstance(ctx, []float64{19, 9.5}, explain.Options{NumFeatures: 2, NumSamples: 2000})
	require.NoError(t, err)

	require.NotEmpty(t, atExtreme.Labels[0].Features)
	// The dominant linear feature leads the extreme instance's explanation.
	assert.Contains(t, atExtreme.Labels[0].Features[0].Condition, "width")

	topAtMean := 0.0
	if len(atMean.Labels[0].Features) > 0 {
		topAtMean = math.Abs(atMean.Labels[0].Features[0].Score)
	}
	topAtExtreme := math.Abs(atExtreme.Labels[0].Features[0].Score)
	assert.Greater(t, topAtExtreme, topAtMean)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	params := regressionFixture()
	original := NewLimeExplainer(rng.New())
	require.NoError(t, original.Build(ctx, params))

	instance := []float64{7, 12}
	opts := explain.Options{NumFeatures: 2, NumSamples: 500}
	before, err := original.ExplainInstance(ctx, instance, opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, original.Save(&buf))

	restored := NewLimeExplainer(rng.New())
	require.NoError(t, restored.Load(&buf))
	assert.True(t, restored.IsBuilt())
	assert.Equal(t, original.Summary(), restored.Summary())

	// The model capability is not part of the blob.
	_, err = restored.ExplainInstance(ctx, instance, opts)
	assert.True(t, errors.IsStateError(err))

	restored.AttachModel(params.Model)
	after, err := restored.ExplainInstance(ctx, instance, opts)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSaveUnbuiltFails(t *testing.T) {
	e := NewLimeExplainer(rng.New())
	var buf bytes.Buffer
	assert.True(t, errors.IsStateError(e.Save(&buf)))
}

func TestLoadRejectsCorruptBlob(t *testing.T) {
	e := NewLimeExplainer(rng.New())
	err := e.Load(strings.NewReader("{not json"))
	require.Error(t, err)
	assert.True(t, errors.IsSerialization(err))
	assert.False(t, e.IsBuilt())
}

func TestLoadRejectsForeignFormat(t *testing.T) {
	e := NewLimeExplainer(rng.New())
	err := e.Load(strings.NewReader(`{"format":"something-else","mode":"regression"}`))
	require.Error(t, err)
	assert.True(t, errors.IsSerialization(err))
	assert.False(t, e.IsBuilt())
}

func TestLoadRejectsStructurallyInvalidSummary(t *testing.T) {
	e := NewLimeExplainer(rng.New())
	blob := `{"format":"golens/tabular-lime/v1","mode":"regression","config":{},` +
		`"summary":{"feature_names":["a"],"categorical":{},"profiles":[{"count":1}],"bin_edges":[[2,1]]}}`
	err := e.Load(strings.NewReader(blob))
	require.Error(t, err)
	assert.True(t, errors.IsSerialization(err))
	assert.False(t, e.IsBuilt())
}
