package explain

// Mode selects what the target model's prediction function returns:
// a probability vector (classification) or a scalar (regression).
type Mode string

const (
	ModeClassification Mode = "classification"
	ModeRegression     Mode = "regression"
)

// IsValid reports whether the mode is one of the two supported values.
func (m Mode) IsValid() bool {
	return m == ModeClassification || m == ModeRegression
}

// RegressionLabel is the sentinel aggregation key used when the model has no
// classes to speak of.
const RegressionLabel = "regression"

// FeatureWeight pairs a human-readable feature condition (e.g.
// "7.17 < petal_len <= 11.68" or "color=red") with its signed surrogate
// coefficient. Positive scores push the prediction toward the label,
// negative scores away from it.
type FeatureWeight struct {
	Condition string  `json:"condition"`
	Score     float64 `json:"score"`
}

// LabelExplanation is the explanation for a single label: the target model's
// true prediction for that label on the unperturbed instance, the ranked
// feature conditions, and the weighted R² of the local surrogate fit.
//
// Prediction always comes from the target model, never from the surrogate;
// the surrogate only supplies the feature scores.
type LabelExplanation struct {
	Label         string          `json:"label"`
	Index         int             `json:"index"`
	Prediction    float64         `json:"prediction"`
	Features      []FeatureWeight `json:"features"`
	LocalFidelity float64         `json:"local_fidelity"`
}

// Explanation is the immutable output of one explain call. For regression it
// holds exactly one LabelExplanation keyed by RegressionLabel; for
// classification, one per requested (or top-probability) class.
type Explanation struct {
	Mode   Mode               `json:"mode"`
	Labels []LabelExplanation `json:"labels"`
}

// Options tunes a single explain call. Zero values fall back to the
// documented defaults at the call site.
type Options struct {
	// Labels lists class indices to explain. Ignored for regression.
	Labels []int `json:"labels,omitempty"`
	// TopLabels, when Labels is empty, explains the K most probable classes.
	TopLabels int `json:"top_labels,omitempty"`
	// NumFeatures caps how many feature conditions each label explanation keeps.
	NumFeatures int `json:"num_features,omitempty"`
	// NumSamples sizes the synthetic neighborhood.
	NumSamples int `json:"num_samples,omitempty"`
	// DistanceMetric names the metric for the weighting kernel ("euclidean").
	DistanceMetric string `json:"distance_metric,omitempty"`
}

// Default explain parameters, applied when Options leaves them zero.
const (
	DefaultNumFeatures = 10
	DefaultNumSamples  = 5000
	DefaultTopLabels   = 1
	DefaultMetric      = "euclidean"
)

// Normalized returns a copy of o with defaults filled in.
func (o Options) Normalized() Options {
	if o.NumFeatures <= 0 {
		o.NumFeatures = DefaultNumFeatures
	}
	if o.NumSamples <= 1 {
		o.NumSamples = DefaultNumSamples
	}
	if o.TopLabels <= 0 {
		o.TopLabels = DefaultTopLabels
	}
	if o.DistanceMetric == "" {
		o.DistanceMetric = DefaultMetric
	}
	return o
}
