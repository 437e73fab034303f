package neural

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Regularizer penalizes layer weights. The penalty enters the reported loss
// and its gradient is added to the weight gradients. Biases are never
// regularized.
type Regularizer interface {
	// Name identifies the regularizer, e.g. "l2".
	Name() string

	// Penalty returns the scalar penalty for the weights.
	Penalty(w mat.Matrix) float64

	// Gradient returns dPenalty/dw, same shape as w.
	Gradient(w mat.Matrix) *mat.Dense
}

// None applies no penalty.
type None struct{}

func (None) Name() string { return "none" }

func (None) Penalty(w mat.Matrix) float64 { return 0 }

func (None) Gradient(w mat.Matrix) *mat.Dense {
	r, c := w.Dims()
	return mat.NewDense(r, c, nil)
}

// L1 penalizes the absolute weight values by lambda * sum|w|, driving
// weights toward exact zeros.
type L1 struct {
	Lambda float64
}

func (L1) Name() string { return "l1" }

func (l L1) Penalty(w mat.Matrix) float64 {
	r, c := w.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sum += math.Abs(w.At(i, j))
		}
	}
	return l.Lambda * sum
}

func (l L1) Gradient(w mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(w)
	out.Apply(func(_, _ int, v float64) float64 {
		switch {
		case v > 0:
			return l.Lambda
		case v < 0:
			return -l.Lambda
		default:
			return 0
		}
	}, out)
	return out
}

// L2 penalizes squared weight magnitudes by lambda/2 * sum(w²), shrinking
// weights smoothly.
type L2 struct {
	Lambda float64
}

func (L2) Name() string { return "l2" }

func (l L2) Penalty(w mat.Matrix) float64 {
	r, c := w.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := w.At(i, j)
			sum += v * v
		}
	}
	return l.Lambda / 2 * sum
}

func (l L2) Gradient(w mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(w)
	out.Scale(l.Lambda, out)
	return out
}
