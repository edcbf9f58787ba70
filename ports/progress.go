package ports

import "golens/domain/core"

// ProgressPort receives checkpoint notifications during a batch interpret
// run. Checkpoints fire every fixed number of processed samples and once at
// completion; they are a side channel, not part of the return value.
type ProgressPort interface {
	Checkpoint(runID core.RunID, processed, total int)
}

// ProgressFunc adapts a plain function to ProgressPort.
type ProgressFunc func(runID core.RunID, processed, total int)

func (f ProgressFunc) Checkpoint(runID core.RunID, processed, total int) {
	f(runID, processed, total)
}
