package tabular

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"golens/domain/explain"
	"golens/internal/errors"
	"golens/ports"
)

// defaultNumBins is the discretizer bin count when the config leaves it zero.
const defaultNumBins = 4

// blobFormat tags persisted explainer state so Load can reject foreign blobs.
const blobFormat = "golens/tabular-lime/v1"

type explainerState int

const (
	stateUnbuilt explainerState = iota
	stateBuilt
)

// LimeExplainer is the tabular local-surrogate explainer. It is a two-state
// machine: unbuilt until Build (or a successful Load), built afterwards.
// Built state is the immutable TrainingSummary plus configuration; the model
// capability is held by reference and never serialized.
type LimeExplainer struct {
	state        explainerState
	mode         explain.Mode
	config       ports.ExplainerConfig
	summary      *explain.TrainingSummary
	discretizers []*Discretizer
	model        ports.ModelFn
	rng          ports.RNGPort
}

// NewLimeExplainer creates an unbuilt explainer drawing randomness from rng.
func NewLimeExplainer(rng ports.RNGPort) *LimeExplainer {
	return &LimeExplainer{rng: rng}
}

// Build validates the training inputs, fits per-column profiles and
// discretizers, stores the TrainingSummary, and transitions to built.
// Building twice with identical arguments produces identical state.
func (e *LimeExplainer) Build(ctx context.Context, params ports.BuildParams) error {
	if !params.Mode.IsValid() {
		return errors.ConfigInvalidf("unknown prediction mode %q", params.Mode)
	}
	if len(params.Training) == 0 {
		return errors.ConfigInvalid("training data is empty")
	}
	if len(params.FeatureNames) == 0 {
		return errors.ConfigInvalid("feature names are empty")
	}
	numFeatures := len(params.FeatureNames)
	for i, row := range params.Training {
		if len(row) != numFeatures {
			return errors.ConfigInvalidf("training row %d has %d columns, expected %d feature names", i, len(row), numFeatures)
		}
	}
	if params.TrainingLabels != nil && len(params.TrainingLabels) != len(params.Training) {
		return errors.ConfigInvalidf("%d training labels for %d rows", len(params.TrainingLabels), len(params.Training))
	}
	if params.Model == nil {
		return errors.ConfigInvalid("model prediction function is required")
	}

	config := params.Config
	if config.NumBins == 0 {
		config.NumBins = defaultNumBins
	}

	categorical := make(map[int]bool, len(params.CategoricalFeatures))
	for _, f := range params.CategoricalFeatures {
		if f < 0 || f >= numFeatures {
			return errors.ConfigInvalidf("categorical feature index %d out of range [0, %d)", f, numFeatures)
		}
		categorical[f] = true
	}

	summary := &explain.TrainingSummary{
		FeatureNames: append([]string(nil), params.FeatureNames...),
		Categorical:  categorical,
		Profiles:     make([]explain.FeatureProfile, numFeatures),
		BinEdges:     make([][]float64, numFeatures),
	}
	discretizers := make([]*Discretizer, numFeatures)

	column := make([]float64, len(params.Training))
	for f := 0; f < numFeatures; f++ {
		for i, row := range params.Training {
			column[i] = row[f]
		}
		profile, err := profileColumn(column, categorical[f])
		if err != nil {
			return errors.Wrapf(err, "profiling feature %q", params.FeatureNames[f])
		}
		summary.Profiles[f] = profile
		if categorical[f] {
			continue
		}
		d, err := FitDiscretizer(column, config.NumBins)
		if err != nil {
			return err
		}
		discretizers[f] = d
		summary.BinEdges[f] = d.Edges
	}

	e.mode = params.Mode
	e.config = config
	e.summary = summary
	e.discretizers = discretizers
	e.model = params.Model
	e.state = stateBuilt
	return nil
}

// profileColumn computes the build-time statistics for one column.
func profileColumn(values []float64, categorical bool) (explain.FeatureProfile, error) {
	profile := explain.FeatureProfile{Count: len(values)}
	if categorical {
		profile.Frequencies = make(map[string]int)
		for _, v := range values {
			profile.Frequencies[explain.CategoryKey(v)]++
		}
		return profile, nil
	}

	var err error
	if profile.Mean, err = stats.Mean(values); err != nil {
		return profile, err
	}
	if profile.StdDev, err = stats.StandardDeviation(values); err != nil {
		return profile, err
	}
	if profile.Min, err = stats.Min(values); err != nil {
		return profile, err
	}
	if profile.Max, err = stats.Max(values); err != nil {
		return profile, err
	}
	return profile, nil
}

// ExplainInstance runs the sample → weight → fit → extract pipeline once per
// requested label (or once for regression) and packages the result. It is
// only legal in the built state with a model attached.
func (e *LimeExplainer) ExplainInstance(ctx context.Context, instance []float64, opts explain.Options) (*explain.Explanation, error) {
	if e.state != stateBuilt {
		return nil, errors.StateError("explainer is not built; call Build or Load first")
	}
	if e.model == nil {
		return nil, errors.StateError("no model attached; call AttachModel after Load")
	}
	if len(instance) != e.summary.NumFeatures() {
		return nil, errors.ConfigInvalidf("instance has %d features, explainer was built with %d", len(instance), e.summary.NumFeatures())
	}
	opts = opts.Normalized()
	if opts.DistanceMetric != explain.DefaultMetric {
		return nil, errors.ConfigInvalidf("unsupported distance metric %q", opts.DistanceMetric)
	}

	rng := e.rng.SeededStream("perturbation", e.config.Seed)
	sampler := NewSampler(e.summary, e.discretizers)
	neighborhood, err := sampler.Sample(instance, opts.NumSamples, rng)
	if err != nil {
		return nil, err
	}

	// Target model outputs for every synthetic row. Row 0 carries the true
	// prediction for the unperturbed instance.
	predictions := make([][]float64, len(neighborhood.Rows))
	width := 0
	for i, row := range neighborhood.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := e.model(row)
		if err != nil {
			return nil, errors.Wrapf(err, "model prediction on synthetic row %d", i)
		}
		if len(out) == 0 {
			return nil, errors.ConfigInvalidf("model returned no outputs on synthetic row %d", i)
		}
		if i == 0 {
			width = len(out)
		} else if len(out) != width {
			return nil, errors.ConfigInvalidf("model output width changed from %d to %d on synthetic row %d", width, len(out), i)
		}
		predictions[i] = out
	}

	labelIndices, err := e.selectLabels(opts, predictions[0])
	if err != nil {
		return nil, err
	}

	kernel := NewKernel(e.config.KernelBandwidth, e.summary.NumFeatures())
	neighborhood.Weights = make([]float64, len(neighborhood.Indicators))
	for i, indicator := range neighborhood.Indicators {
		neighborhood.Weights[i] = kernel.Weight(neighborhood.Indicators[0], indicator)
	}

	extractor := NewExtractor(e.summary, e.discretizers)
	result := &explain.Explanation{Mode: e.mode}
	target := make([]float64, len(predictions))
	for _, l := range labelIndices {
		for i := range predictions {
			target[i] = predictions[i][l]
		}
		fit := FitSurrogate(neighborhood.Indicators, target, neighborhood.Weights, opts.NumFeatures, e.config.Ridge)

		label := strconv.Itoa(l)
		if e.mode == explain.ModeRegression {
			label = explain.RegressionLabel
		}
		result.Labels = append(result.Labels, explain.LabelExplanation{
			Label:         label,
			Index:         l,
			Prediction:    predictions[0][l],
			Features:      extractor.Extract(fit, instance, opts.NumFeatures),
			LocalFidelity: fit.LocalFidelity,
		})
	}
	return result, nil
}

// selectLabels resolves which output columns to explain: the explicit label
// list, else the TopLabels most probable classes on the true prediction, else
// the single regression output.
func (e *LimeExplainer) selectLabels(opts explain.Options, truePrediction []float64) ([]int, error) {
	if e.mode == explain.ModeRegression {
		return []int{0}, nil
	}
	width := len(truePrediction)
	if len(opts.Labels) > 0 {
		for _, l := range opts.Labels {
			if l < 0 || l >= width {
				return nil, errors.ConfigInvalidf("label index %d out of range for %d model outputs", l, width)
			}
		}
		return append([]int(nil), opts.Labels...), nil
	}

	top := opts.TopLabels
	if top > width {
		top = width
	}
	order := make([]int, width)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return truePrediction[order[i]] > truePrediction[order[j]]
	})
	return order[:top], nil
}

// persistedState is the serialized form of a built explainer. The model
// capability is deliberately absent.
type persistedState struct {
	Format  string                   `json:"format"`
	Mode    explain.Mode             `json:"mode"`
	Config  ports.ExplainerConfig    `json:"config"`
	Summary *explain.TrainingSummary `json:"summary"`
}

// Save serializes the built state (summary, config, mode) to sink.
func (e *LimeExplainer) Save(sink io.Writer) error {
	if e.state != stateBuilt {
		return errors.StateError("cannot save an unbuilt explainer")
	}
	blob := persistedState{
		Format:  blobFormat,
		Mode:    e.mode,
		Config:  e.config,
		Summary: e.summary,
	}
	if err := json.NewEncoder(sink).Encode(&blob); err != nil {
		return errors.SerializationError("writing explainer state", err)
	}
	return nil
}

// Load restores built state from a blob written by Save. Corrupt or
// structurally invalid blobs fail with a serialization error and leave the
// explainer unbuilt. The model capability must be re-attached afterwards.
func (e *LimeExplainer) Load(source io.Reader) error {
	e.state = stateUnbuilt
	e.summary = nil
	e.discretizers = nil
	e.model = nil

	var blob persistedState
	if err := json.NewDecoder(source).Decode(&blob); err != nil {
		return errors.SerializationError("decoding explainer state", err)
	}
	if blob.Format != blobFormat {
		return errors.SerializationError("unrecognized explainer blob format "+strconv.Quote(blob.Format), nil)
	}
	if !blob.Mode.IsValid() {
		return errors.SerializationError("explainer blob has invalid mode "+strconv.Quote(string(blob.Mode)), nil)
	}
	if blob.Summary == nil {
		return errors.SerializationError("explainer blob has no training summary", nil)
	}
	if err := blob.Summary.Validate(); err != nil {
		return errors.SerializationError("explainer blob failed validation", err)
	}

	discretizers := make([]*Discretizer, blob.Summary.NumFeatures())
	for f := range discretizers {
		if blob.Summary.IsCategorical(f) {
			continue
		}
		discretizers[f] = NewDiscretizer(blob.Summary.BinEdges[f])
	}

	e.mode = blob.Mode
	e.config = blob.Config
	e.summary = blob.Summary
	e.discretizers = discretizers
	e.state = stateBuilt
	return nil
}

// AttachModel re-supplies the prediction capability after a Load.
func (e *LimeExplainer) AttachModel(model ports.ModelFn) {
	e.model = model
}

// IsBuilt reports the lifecycle state.
func (e *LimeExplainer) IsBuilt() bool {
	return e.state == stateBuilt
}

// Mode returns the prediction mode of a built explainer.
func (e *LimeExplainer) Mode() explain.Mode {
	return e.mode
}

// Summary exposes the read-only training snapshot of a built explainer.
func (e *LimeExplainer) Summary() *explain.TrainingSummary {
	return e.summary
}
