package app

import (
	"context"
	"strconv"

	"golens/domain/core"
	"golens/domain/explain"
	"golens/internal"
	"golens/internal/errors"
	"golens/ports"
)

// defaultCheckpointEvery is the batch progress checkpoint interval.
const defaultCheckpointEvery = 100

// ModelInterpreter drives one explainer over a batch of samples and folds
// the per-instance explanations into global feature-importance statistics.
// A failing sample is logged, counted, and skipped; it never aborts the run.
type ModelInterpreter struct {
	explainer       ports.ExplainerPort
	progress        ports.ProgressPort
	log             *internal.Logger
	checkpointEvery int

	mode       explain.Mode
	classNames []string
	built      bool
}

// InterpreterOption tweaks interpreter construction.
type InterpreterOption func(*ModelInterpreter)

// WithProgress installs a progress checkpoint receiver.
func WithProgress(p ports.ProgressPort) InterpreterOption {
	return func(m *ModelInterpreter) { m.progress = p }
}

// WithCheckpointEvery overrides the checkpoint interval.
func WithCheckpointEvery(n int) InterpreterOption {
	return func(m *ModelInterpreter) {
		if n > 0 {
			m.checkpointEvery = n
		}
	}
}

// NewModelInterpreter wraps an explainer for batch interpretation.
func NewModelInterpreter(explainer ports.ExplainerPort, logger *internal.Logger, opts ...InterpreterOption) *ModelInterpreter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	m := &ModelInterpreter{
		explainer:       explainer,
		log:             logger.Named("interpret"),
		checkpointEvery: defaultCheckpointEvery,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Build trains the wrapped explainer and records the class names used to key
// classification statistics.
func (m *ModelInterpreter) Build(ctx context.Context, params ports.BuildParams, classNames []string) error {
	if err := m.explainer.Build(ctx, params); err != nil {
		return err
	}
	m.mode = params.Mode
	m.classNames = append([]string(nil), classNames...)
	m.built = true
	return nil
}

// Interpret explains every sample in input order and aggregates the ranked
// feature conditions. It always returns statistics and a processed count,
// even when some samples fail; only precondition violations error.
func (m *ModelInterpreter) Interpret(ctx context.Context, samples [][]float64, statsType explain.StatsType, k int) (*explain.AggregationStats, int, error) {
	if !m.built {
		return nil, 0, errors.StateError("interpreter is not built; call Build first")
	}
	if statsType != explain.StatsAverageRanking {
		return nil, 0, errors.ConfigInvalidf("unsupported stats type %q", statsType)
	}

	runID := core.RunID(core.NewID())
	stats := explain.NewAggregationStats(statsType)
	opts := explain.Options{NumFeatures: k}
	if m.mode == explain.ModeClassification && len(m.classNames) > 0 {
		// Aggregate over every known class so the statistics cover the
		// whole output surface, not just each sample's top class.
		opts.Labels = make([]int, len(m.classNames))
		for i := range opts.Labels {
			opts.Labels[i] = i
		}
	}

	m.log.Info("run %s: interpreting %d samples (k=%d)", runID, len(samples), k)
	processed := 0
	failed := 0
	for i, sample := range samples {
		explanation, err := m.explainer.ExplainInstance(ctx, sample, opts)
		if err != nil {
			// Partial-failure tolerance: one bad instance never aborts the
			// batch.
			failed++
			m.log.Warn("run %s: sample %d failed: %v", runID, i, err)
			continue
		}

		for _, label := range explanation.Labels {
			name := m.labelName(label)
			for rank, fw := range label.Features {
				stats.ObserveRank(name, fw.Condition, rank+1)
			}
		}
		processed++
		stats.Processed = processed

		if processed%m.checkpointEvery == 0 {
			m.checkpoint(runID, processed, len(samples))
		}
	}
	m.checkpoint(runID, processed, len(samples))
	if failed > 0 {
		m.log.Warn("run %s: %d of %d samples failed and were skipped", runID, failed, len(samples))
	}
	return stats, processed, nil
}

// labelName maps a label explanation to its aggregation key: the class name
// when known, the sentinel for regression, the raw index otherwise.
func (m *ModelInterpreter) labelName(label explain.LabelExplanation) string {
	if m.mode == explain.ModeRegression {
		return explain.RegressionLabel
	}
	if label.Index >= 0 && label.Index < len(m.classNames) {
		return m.classNames[label.Index]
	}
	return strconv.Itoa(label.Index)
}

// checkpoint emits the progress side channel: a log line always, the
// progress port when installed.
func (m *ModelInterpreter) checkpoint(runID core.RunID, processed, total int) {
	m.log.Info("run %s: processed %d/%d samples", runID, processed, total)
	if m.progress != nil {
		m.progress.Checkpoint(runID, processed, total)
	}
}
