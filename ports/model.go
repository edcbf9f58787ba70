package ports

// ModelFn is the opaque target-model capability: it maps one input instance
// to a probability vector (classification, one entry per class) or to a
// single-element slice holding the scalar prediction (regression). No other
// contract is assumed; it is treated as pure and may be invoked once per
// synthetic row during an explain call.
//
// ModelFn is never serialized. After loading a persisted explainer the caller
// must re-attach it before explaining.
type ModelFn func(instance []float64) ([]float64, error)
