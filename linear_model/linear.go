// Package linear_model implements linear models: ordinary least squares
// regression and logistic regression trained by gradient descent.
package linear_model

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/core/parallel"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
)

// LinearRegression fits ordinary least squares by solving the augmented
// system [1 X] w = y with a QR decomposition.
type LinearRegression struct {
	model.BaseEstimator

	// Weights holds the learned coefficients, one per feature.
	Weights *mat.VecDense
	// Intercept is the learned bias term.
	Intercept float64
	// NFeatures is the number of features seen during Fit.
	NFeatures int
}

// NewLinearRegression creates an unfitted linear regression model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit estimates the coefficients and intercept from training data.
func (lr *LinearRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LinearRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LinearRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LinearRegression.Fit", "y must be a column vector")
	}

	lr.NFeatures = c
	start := time.Now()

	XAug := augmentIntercept(X)

	var w mat.Dense
	if err := w.Solve(XAug, y); err != nil {
		return errors.NewModelError("LinearRegression.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	lr.Intercept = w.At(0, 0)
	lr.Weights = mat.NewVecDense(c, nil)
	for j := 0; j < c; j++ {
		lr.Weights.SetVec(j, w.At(j+1, 0))
	}
	lr.SetFitted()

	lg := log.With("linear_model")

	lg.Debug().
		Str(log.ModelNameKey, "LinearRegression").
		Str(log.OperationKey, "fit").
		Int(log.SamplesKey, r).
		Int(log.FeaturesKey, c).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("model fitted")
	return nil
}

// Predict returns X * weights + intercept as an n x 1 matrix.
func (lr *LinearRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("LinearRegression", "Predict")
	}
	r, c := X.Dims()
	if c != lr.NFeatures {
		return nil, errors.NewDimensionError("LinearRegression.Predict", lr.NFeatures, c, 1)
	}

	predictions := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		pred := lr.Intercept
		for j := 0; j < c; j++ {
			pred += X.At(i, j) * lr.Weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}
	return predictions, nil
}

// Score computes the coefficient of determination R² on the given data.
func (lr *LinearRegression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("LinearRegression", "Score")
	}
	yPred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	r, _ := y.Dims()
	var yMean float64
	for i := 0; i < r; i++ {
		yMean += y.At(i, 0)
	}
	yMean /= float64(r)

	var tss, rss float64
	for i := 0; i < r; i++ {
		t := y.At(i, 0)
		p := yPred.At(i, 0)
		tss += (t - yMean) * (t - yMean)
		rss += (t - p) * (t - p)
	}
	if tss == 0 {
		return 0, errors.Newf("total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}

// GetWeights returns a copy of the learned coefficients.
func (lr *LinearRegression) GetWeights() []float64 {
	if lr.Weights == nil {
		return nil
	}
	weights := make([]float64, lr.Weights.Len())
	for i := range weights {
		weights[i] = lr.Weights.AtVec(i)
	}
	return weights
}

// GetIntercept returns the learned intercept, or 0 if unfitted.
func (lr *LinearRegression) GetIntercept() float64 {
	if !lr.IsFitted() {
		return 0
	}
	return lr.Intercept
}

// GetParams returns the model hyperparameters.
func (lr *LinearRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": true,
	}
}

func (lr *LinearRegression) String() string {
	return "LinearRegression()"
}

// augmentIntercept prepends a column of ones to X.
func augmentIntercept(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c+1, nil)

	const parallelThreshold = 1000
	parallel.ParallelizeWithThreshold(r, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				out.Set(i, j+1, X.At(i, j))
			}
		}
	})
	return out
}
