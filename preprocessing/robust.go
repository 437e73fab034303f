package preprocessing

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/dataframe"
	"github.com/mizupe/appliedml/pkg/errors"
)

// RobustScaler centers features on the median and scales by the interquartile
// range, which keeps outliers from dominating the scale the way they do with
// StandardScaler.
type RobustScaler struct {
	model.BaseEstimator

	// Center holds the per-feature median learned by Fit.
	Center []float64

	// Scale holds the per-feature quantile range learned by Fit.
	Scale []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	// QuantileRange is the (low, high) quantile pair defining the scale,
	// default (0.25, 0.75).
	QuantileRange [2]float64

	// WithCentering controls median subtraction (default true).
	WithCentering bool

	// WithScaling controls IQR division (default true).
	WithScaling bool
}

// NewRobustScaler creates a RobustScaler with default settings: centering and
// scaling on the interquartile range.
func NewRobustScaler() *RobustScaler {
	return &RobustScaler{
		QuantileRange: [2]float64{0.25, 0.75},
		WithCentering: true,
		WithScaling:   true,
	}
}

// Fit computes the per-feature median and quantile range of X.
func (rs *RobustScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("RobustScaler.Fit", "empty data", errors.ErrEmptyData)
	}
	lo, hi := rs.QuantileRange[0], rs.QuantileRange[1]
	if lo < 0 || hi > 1 || lo >= hi {
		return errors.NewValidationError("quantile_range", "must satisfy 0 <= low < high <= 1", rs.QuantileRange)
	}

	rs.NFeatures = c
	rs.Center = make([]float64, c)
	rs.Scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			col[i] = X.At(i, j)
		}
		sort.Float64s(col)

		if rs.WithCentering {
			rs.Center[j] = dataframe.Percentile(col, 0.5)
		}
		if rs.WithScaling {
			iqr := dataframe.Percentile(col, hi) - dataframe.Percentile(col, lo)
			if math.Abs(iqr) < 1e-8 {
				iqr = 1.0
			}
			rs.Scale[j] = iqr
		} else {
			rs.Scale[j] = 1.0
		}
	}

	rs.SetFitted()
	return nil
}

// Transform applies the fitted centering and scaling to X.
func (rs *RobustScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !rs.IsFitted() {
		return nil, errors.NewNotFittedError("RobustScaler", "Transform")
	}

	r, c := X.Dims()
	if c != rs.NFeatures {
		return nil, errors.NewDimensionError("RobustScaler.Transform", rs.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-rs.Center[j])/rs.Scale[j])
		}
	}
	return result, nil
}

// FitTransform fits on X and returns the scaled X.
func (rs *RobustScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := rs.Fit(X); err != nil {
		return nil, err
	}
	return rs.Transform(X)
}

// InverseTransform maps scaled data back to the original values.
func (rs *RobustScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !rs.IsFitted() {
		return nil, errors.NewNotFittedError("RobustScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != rs.NFeatures {
		return nil, errors.NewDimensionError("RobustScaler.InverseTransform", rs.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*rs.Scale[j]+rs.Center[j])
		}
	}
	return result, nil
}

// GetParams returns the scaler's hyperparameters.
func (rs *RobustScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"quantile_range": rs.QuantileRange,
		"with_centering": rs.WithCentering,
		"with_scaling":   rs.WithScaling,
	}
}

func (rs *RobustScaler) String() string {
	return fmt.Sprintf("RobustScaler(quantile_range=[%.2f, %.2f])",
		rs.QuantileRange[0], rs.QuantileRange[1])
}
