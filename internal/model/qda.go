// Package model contains the direction classifiers used by forecasting strategies.
package model

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sztime001/trading-backtesting/internal/signal"
)

// Classifier predicts a class label for one feature vector.
type Classifier interface {
	Predict(x []float64) (int, error)
}

type qdaClass struct {
	label    int
	mean     *mat.VecDense
	chol     mat.Cholesky
	logDet   float64
	logPrior float64
}

// QDA is a quadratic discriminant analysis classifier: one Gaussian per class with its own
// covariance. Fitting is closed-form and deterministic.
type QDA struct {
	dim     int
	classes []qdaClass
}

// FitQDA estimates per-class means, unbiased covariances, and priors from x (rows) and y.
func FitQDA(x [][]float64, y []int) (*QDA, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: empty training set", signal.ErrConfiguration)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d feature rows for %d labels", signal.ErrConfiguration, len(x), len(y))
	}
	dim := len(x[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: feature rows have no columns", signal.ErrConfiguration)
	}

	byLabel := make(map[int][]int)
	for i, row := range x {
		if len(row) != dim {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", signal.ErrConfiguration, i, len(row), dim)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite feature in training row %d", signal.ErrNumeric, i)
			}
		}
		byLabel[y[i]] = append(byLabel[y[i]], i)
	}
	if len(byLabel) < 2 {
		return nil, fmt.Errorf("%w: training labels contain a single class", signal.ErrConfiguration)
	}

	labels := make([]int, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	q := &QDA{dim: dim}
	for _, label := range labels {
		idx := byLabel[label]
		if len(idx) < 2 {
			return nil, fmt.Errorf("%w: class %d has %d sample(s), need at least 2", signal.ErrConfiguration, label, len(idx))
		}
		data := mat.NewDense(len(idx), dim, nil)
		for r, i := range idx {
			data.SetRow(r, x[i])
		}

		mean := mat.NewVecDense(dim, nil)
		for j := 0; j < dim; j++ {
			mean.SetVec(j, stat.Mean(mat.Col(nil, j, data), nil))
		}
		cov := mat.NewSymDense(dim, nil)
		stat.CovarianceMatrix(cov, data, nil)

		class := qdaClass{label: label, mean: mean, logPrior: math.Log(float64(len(idx)) / float64(len(x)))}
		if ok := class.chol.Factorize(cov); !ok {
			return nil, fmt.Errorf("%w: covariance of class %d is singular", signal.ErrConfiguration, label)
		}
		class.logDet = class.chol.LogDet()
		q.classes = append(q.classes, class)
	}
	return q, nil
}

// Classes returns the labels seen during fitting in ascending order.
func (q *QDA) Classes() []int {
	out := make([]int, len(q.classes))
	for i, c := range q.classes {
		out[i] = c.label
	}
	return out
}

// Predict returns the label with the highest posterior; ties resolve to the lower label.
func (q *QDA) Predict(x []float64) (int, error) {
	if len(x) != q.dim {
		return 0, fmt.Errorf("%w: feature vector has %d columns, want %d", signal.ErrAlignment, len(x), q.dim)
	}
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: non-finite feature", signal.ErrNumeric)
		}
	}
	point := mat.NewVecDense(q.dim, append([]float64(nil), x...))

	best, bestScore := 0, math.Inf(-1)
	for _, c := range q.classes {
		d := stat.Mahalanobis(point, c.mean, &c.chol)
		score := -0.5*c.logDet - 0.5*d*d + c.logPrior
		if score > bestScore {
			best, bestScore = c.label, score
		}
	}
	return best, nil
}

// PredictAll runs Predict over every row.
func (q *QDA) PredictAll(x [][]float64) ([]int, error) {
	out := make([]int, len(x))
	for i, row := range x {
		label, err := q.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = label
	}
	return out, nil
}
