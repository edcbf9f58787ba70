package ports

import (
	"context"
	"io"

	"golens/domain/explain"
)

// ExplainerConfig holds the build-time tuning knobs shared by explainer
// implementations. Zero values select the documented defaults.
type ExplainerConfig struct {
	// NumBins is the discretizer bin count per continuous feature (default 4).
	NumBins int `json:"num_bins,omitempty"`
	// KernelBandwidth overrides the weighting kernel bandwidth.
	// Default: sqrt(num_features) * 0.75.
	KernelBandwidth float64 `json:"kernel_bandwidth,omitempty"`
	// Ridge is the L2 regularization strength of the surrogate fit (default 1.0).
	Ridge float64 `json:"ridge,omitempty"`
	// Seed makes perturbation sampling reproducible.
	Seed int64 `json:"seed,omitempty"`
}

// BuildParams carries everything an explainer needs to train its state.
type BuildParams struct {
	Training            [][]float64
	TrainingLabels      []float64
	Mode                explain.Mode
	Model               ModelFn
	FeatureNames        []string
	CategoricalFeatures []int
	Config              ExplainerConfig
}

// ExplainerPort is the pluggable explainer abstraction. Implementations are
// two-state machines: unbuilt until Build (or a successful Load) succeeds,
// built afterwards. ExplainInstance is only legal in the built state.
type ExplainerPort interface {
	// Build trains explainer state from the training set and transitions to built.
	Build(ctx context.Context, params BuildParams) error

	// ExplainInstance produces a ranked local explanation for one instance.
	ExplainInstance(ctx context.Context, instance []float64, opts explain.Options) (*explain.Explanation, error)

	// Save writes the built state (training summary, config, mode) to sink.
	// The model capability is not part of the blob.
	Save(sink io.Writer) error

	// Load restores built state from a blob written by Save. A corrupt or
	// structurally invalid blob leaves the explainer unbuilt.
	Load(source io.Reader) error

	// AttachModel re-supplies the prediction capability, required after Load.
	AttachModel(model ModelFn)

	// IsBuilt reports the lifecycle state.
	IsBuilt() bool
}
