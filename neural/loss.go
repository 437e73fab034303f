package neural

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// lossEps bounds probabilities away from 0 and 1 inside the log losses.
const lossEps = 1e-15

// Loss is a training objective over a batch of predictions.
type Loss interface {
	// Name identifies the loss, e.g. "mse".
	Name() string

	// Loss computes the mean loss over the batch.
	Loss(yTrue, yPred mat.Matrix) float64

	// Gradient returns dL/dyPred, same shape as yPred, already divided
	// by the batch size.
	Gradient(yTrue, yPred mat.Matrix) *mat.Dense
}

// MSE is the mean squared error, averaged over samples and outputs.
type MSE struct{}

func (MSE) Name() string { return "mse" }

func (MSE) Loss(yTrue, yPred mat.Matrix) float64 {
	r, c := yTrue.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := yPred.At(i, j) - yTrue.At(i, j)
			sum += d * d
		}
	}
	return sum / float64(r*c)
}

func (MSE) Gradient(yTrue, yPred mat.Matrix) *mat.Dense {
	r, c := yTrue.Dims()
	out := mat.NewDense(r, c, nil)
	scale := 2.0 / float64(r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, scale*(yPred.At(i, j)-yTrue.At(i, j)))
		}
	}
	return out
}

// BinaryCrossEntropy expects sigmoid outputs and 0/1 targets. Predictions
// are clipped to keep the logs finite.
type BinaryCrossEntropy struct{}

func (BinaryCrossEntropy) Name() string { return "binary_crossentropy" }

func (BinaryCrossEntropy) Loss(yTrue, yPred mat.Matrix) float64 {
	r, c := yTrue.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t := yTrue.At(i, j)
			p := clip(yPred.At(i, j))
			sum += t*math.Log(p) + (1-t)*math.Log(1-p)
		}
	}
	return -sum / float64(r*c)
}

func (BinaryCrossEntropy) Gradient(yTrue, yPred mat.Matrix) *mat.Dense {
	r, c := yTrue.Dims()
	out := mat.NewDense(r, c, nil)
	scale := 1.0 / float64(r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t := yTrue.At(i, j)
			p := clip(yPred.At(i, j))
			out.Set(i, j, scale*(p-t)/(p*(1-p)))
		}
	}
	return out
}

// CategoricalCrossEntropy expects softmax outputs and one-hot targets. The
// network pairs it with Softmax and backpropagates yPred - yTrue directly.
type CategoricalCrossEntropy struct{}

func (CategoricalCrossEntropy) Name() string { return "categorical_crossentropy" }

func (CategoricalCrossEntropy) Loss(yTrue, yPred mat.Matrix) float64 {
	r, c := yTrue.Dims()
	sum := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if yTrue.At(i, j) > 0 {
				sum += yTrue.At(i, j) * math.Log(clip(yPred.At(i, j)))
			}
		}
	}
	return -sum / float64(r)
}

func (CategoricalCrossEntropy) Gradient(yTrue, yPred mat.Matrix) *mat.Dense {
	r, c := yTrue.Dims()
	out := mat.NewDense(r, c, nil)
	scale := 1.0 / float64(r)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, -scale*yTrue.At(i, j)/clip(yPred.At(i, j)))
		}
	}
	return out
}

func clip(p float64) float64 {
	return math.Min(math.Max(p, lossEps), 1-lossEps)
}
