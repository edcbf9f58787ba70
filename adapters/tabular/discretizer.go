package tabular

import (
	"fmt"

	"github.com/montanaflynn/stats"

	"golens/internal/errors"
)

// Discretizer converts a continuous feature into ordered bins with
// human-readable range labels. Cut points are equal-frequency quantiles of
// the training column, so the policy is deterministic for a fixed column and
// bin count. Bins follow the half-open convention: lower exclusive, upper
// inclusive, with unbounded extremes.
type Discretizer struct {
	// Edges holds the interior cut points, strictly ascending.
	// len(Edges)+1 bins.
	Edges []float64
}

// FitDiscretizer computes quantile bin edges for one training column.
// Duplicate quantiles (heavily tied columns) collapse into fewer bins rather
// than producing empty ones.
func FitDiscretizer(values []float64, numBins int) (*Discretizer, error) {
	if numBins < 2 {
		return nil, errors.ConfigInvalidf("discretizer needs at least 2 bins, got %d", numBins)
	}
	if len(values) == 0 {
		return nil, errors.ConfigInvalid("discretizer cannot fit on empty training data")
	}

	edges := make([]float64, 0, numBins-1)
	for i := 1; i < numBins; i++ {
		q := float64(i) / float64(numBins) * 100
		edge, err := stats.Percentile(values, q)
		if err != nil {
			return nil, errors.Wrapf(err, "quantile %.1f for discretizer", q)
		}
		// Collapse duplicate cut points from tied data.
		if len(edges) == 0 || edge > edges[len(edges)-1] {
			edges = append(edges, edge)
		}
	}
	if len(edges) == 0 {
		// Constant column: a single cut at the constant still yields two
		// addressable bins, keeping Bin total on the real line.
		edges = append(edges, values[0])
	}
	return &Discretizer{Edges: edges}, nil
}

// NewDiscretizer rebuilds a discretizer from persisted edges.
func NewDiscretizer(edges []float64) *Discretizer {
	return &Discretizer{Edges: edges}
}

// NumBins returns the bin count.
func (d *Discretizer) NumBins() int {
	return len(d.Edges) + 1
}

// Bin maps any real value to exactly one bin index. Values beyond the
// observed training range clamp into the corresponding extreme bin.
func (d *Discretizer) Bin(value float64) int {
	for i, edge := range d.Edges {
		if value <= edge {
			return i
		}
	}
	return len(d.Edges)
}

// Label renders the human-readable range for a bin, e.g.
// "7.17 < x <= 11.68". The bottom bin is lower-unbounded and the top bin
// upper-unbounded.
func (d *Discretizer) Label(bin int, name string) string {
	switch {
	case bin <= 0:
		return fmt.Sprintf("%s <= %.2f", name, d.Edges[0])
	case bin >= len(d.Edges):
		return fmt.Sprintf("%s > %.2f", name, d.Edges[len(d.Edges)-1])
	default:
		return fmt.Sprintf("%.2f < %s <= %.2f", d.Edges[bin-1], name, d.Edges[bin])
	}
}
