// Package model provides simple reference models for exercising the engine
// end to end from the CLI and API. The engine itself never depends on them;
// any ports.ModelFn works.
package model

import (
	"fmt"
	"math"
	"sort"

	"golens/ports"
)

// KNNClassifier returns a ModelFn that predicts class probabilities as the
// label share among the k nearest training rows (Euclidean distance). Labels
// are class indices 0..numClasses-1.
func KNNClassifier(training [][]float64, labels []float64, numClasses, k int) (ports.ModelFn, error) {
	if len(training) == 0 || len(training) != len(labels) {
		return nil, fmt.Errorf("knn needs matching training rows and labels, got %d and %d", len(training), len(labels))
	}
	if k <= 0 {
		k = 5
	}
	if k > len(training) {
		k = len(training)
	}
	if numClasses < 2 {
		return nil, fmt.Errorf("knn classifier needs at least 2 classes, got %d", numClasses)
	}

	return func(instance []float64) ([]float64, error) {
		neighbors, err := nearest(training, instance, k)
		if err != nil {
			return nil, err
		}
		probs := make([]float64, numClasses)
		for _, idx := range neighbors {
			class := int(labels[idx])
			if class < 0 || class >= numClasses {
				return nil, fmt.Errorf("training label %v out of class range [0, %d)", labels[idx], numClasses)
			}
			probs[class] += 1.0 / float64(len(neighbors))
		}
		return probs, nil
	}, nil
}

// KNNRegressor returns a ModelFn that predicts the mean target of the k
// nearest training rows.
func KNNRegressor(training [][]float64, targets []float64, k int) (ports.ModelFn, error) {
	if len(training) == 0 || len(training) != len(targets) {
		return nil, fmt.Errorf("knn needs matching training rows and targets, got %d and %d", len(training), len(targets))
	}
	if k <= 0 {
		k = 5
	}
	if k > len(training) {
		k = len(training)
	}

	return func(instance []float64) ([]float64, error) {
		neighbors, err := nearest(training, instance, k)
		if err != nil {
			return nil, err
		}
		sum := 0.0
		for _, idx := range neighbors {
			sum += targets[idx]
		}
		return []float64{sum / float64(len(neighbors))}, nil
	}, nil
}

// nearest returns the indices of the k training rows closest to instance.
func nearest(training [][]float64, instance []float64, k int) ([]int, error) {
	type neighbor struct {
		index    int
		distance float64
	}
	neighbors := make([]neighbor, len(training))
	for i, row := range training {
		if len(row) != len(instance) {
			return nil, fmt.Errorf("instance has %d features, training row %d has %d", len(instance), i, len(row))
		}
		d := 0.0
		for j := range row {
			diff := row[j] - instance[j]
			d += diff * diff
		}
		neighbors[i] = neighbor{index: i, distance: math.Sqrt(d)}
	}
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].distance != neighbors[j].distance {
			return neighbors[i].distance < neighbors[j].distance
		}
		return neighbors[i].index < neighbors[j].index
	})

	out := make([]int, k)
	for i := 0; i < k; i++ {
		out[i] = neighbors[i].index
	}
	return out, nil
}
