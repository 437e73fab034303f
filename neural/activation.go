// Package neural implements feed-forward neural networks: dense layers,
// activation functions, loss functions, optimizers and weight regularizers,
// trained with mini-batch gradient descent.
package neural

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/pkg/errors"
)

// Activation is an elementwise layer nonlinearity.
type Activation interface {
	// Name identifies the activation, e.g. "relu".
	Name() string

	// Forward applies the activation to the pre-activation z.
	Forward(z mat.Matrix) *mat.Dense

	// Derivative returns da/dz evaluated elementwise. z is the
	// pre-activation and a the corresponding activation output.
	Derivative(z, a mat.Matrix) *mat.Dense
}

// Identity passes values through unchanged. The usual choice for regression
// output layers.
type Identity struct{}

func (Identity) Name() string { return "identity" }

func (Identity) Forward(z mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(z)
}

func (Identity) Derivative(z, a mat.Matrix) *mat.Dense {
	r, c := z.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, 1)
		}
	}
	return out
}

// ReLU is max(0, z).
type ReLU struct{}

func (ReLU) Name() string { return "relu" }

func (ReLU) Forward(z mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(z)
	out.Apply(func(_, _ int, v float64) float64 { return math.Max(0, v) }, out)
	return out
}

func (ReLU) Derivative(z, a mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(z)
	out.Apply(func(_, _ int, v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	}, out)
	return out
}

// Sigmoid is 1 / (1 + e^-z).
type Sigmoid struct{}

func (Sigmoid) Name() string { return "sigmoid" }

func (Sigmoid) Forward(z mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(z)
	out.Apply(func(_, _ int, v float64) float64 {
		return 1.0 / (1.0 + errors.StabilizeExp(-v))
	}, out)
	return out
}

func (Sigmoid) Derivative(z, a mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(a)
	out.Apply(func(_, _ int, v float64) float64 { return v * (1 - v) }, out)
	return out
}

// Tanh is the hyperbolic tangent.
type Tanh struct{}

func (Tanh) Name() string { return "tanh" }

func (Tanh) Forward(z mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(z)
	out.Apply(func(_, _ int, v float64) float64 { return math.Tanh(v) }, out)
	return out
}

func (Tanh) Derivative(z, a mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(a)
	out.Apply(func(_, _ int, v float64) float64 { return 1 - v*v }, out)
	return out
}

// Softmax normalizes each row to a probability distribution. Only valid as
// the output activation paired with CategoricalCrossEntropy, which computes
// the combined gradient directly.
type Softmax struct{}

func (Softmax) Name() string { return "softmax" }

func (Softmax) Forward(z mat.Matrix) *mat.Dense {
	r, c := z.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		// Shift by the row max for numerical stability.
		rowMax := math.Inf(-1)
		for j := 0; j < c; j++ {
			if v := z.At(i, j); v > rowMax {
				rowMax = v
			}
		}
		sum := 0.0
		for j := 0; j < c; j++ {
			e := math.Exp(z.At(i, j) - rowMax)
			out.Set(i, j, e)
			sum += e
		}
		for j := 0; j < c; j++ {
			out.Set(i, j, out.At(i, j)/sum)
		}
	}
	return out
}

// Derivative is not used: the softmax/cross-entropy pair collapses to
// a - y in the network's backward pass. Returning ones keeps the generic
// path harmless if ever reached.
func (Softmax) Derivative(z, a mat.Matrix) *mat.Dense {
	r, c := z.Dims()
	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, 1)
		}
	}
	return out
}
