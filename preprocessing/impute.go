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

// ImputeStrategy selects the fill value used by SimpleImputer.
type ImputeStrategy string

const (
	// ImputeMean fills with the per-feature mean of observed values.
	ImputeMean ImputeStrategy = "mean"
	// ImputeMedian fills with the per-feature median.
	ImputeMedian ImputeStrategy = "median"
	// ImputeMostFrequent fills with the per-feature mode; ties break toward
	// the smaller value.
	ImputeMostFrequent ImputeStrategy = "most_frequent"
	// ImputeConstant fills with FillValue.
	ImputeConstant ImputeStrategy = "constant"
)

// SimpleImputer replaces NaN entries with a per-feature statistic learned
// during Fit.
type SimpleImputer struct {
	model.BaseEstimator

	// Strategy selects the statistic (default mean).
	Strategy ImputeStrategy

	// FillValue is used by the constant strategy.
	FillValue float64

	// Statistics holds the fitted fill value per feature.
	Statistics []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int
}

// NewSimpleImputer creates a SimpleImputer with the given strategy.
func NewSimpleImputer(strategy ImputeStrategy) *SimpleImputer {
	if strategy == "" {
		strategy = ImputeMean
	}
	return &SimpleImputer{Strategy: strategy}
}

// NewConstantImputer creates an imputer that always fills with value.
func NewConstantImputer(value float64) *SimpleImputer {
	return &SimpleImputer{Strategy: ImputeConstant, FillValue: value}
}

// Fit computes the fill statistic for each feature from the observed
// (non-NaN) values. A feature with no observed values is an error, except
// under the constant strategy.
func (si *SimpleImputer) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("SimpleImputer.Fit", "empty data", errors.ErrEmptyData)
	}
	switch si.Strategy {
	case ImputeMean, ImputeMedian, ImputeMostFrequent, ImputeConstant:
	default:
		return errors.NewValidationError("strategy", "unknown imputation strategy", string(si.Strategy))
	}

	si.NFeatures = c
	si.Statistics = make([]float64, c)

	if si.Strategy == ImputeConstant {
		for j := range si.Statistics {
			si.Statistics[j] = si.FillValue
		}
		si.SetFitted()
		return nil
	}

	for j := 0; j < c; j++ {
		observed := make([]float64, 0, r)
		for i := 0; i < r; i++ {
			if v := X.At(i, j); !math.IsNaN(v) {
				observed = append(observed, v)
			}
		}
		if len(observed) == 0 {
			return errors.NewValueError("SimpleImputer.Fit", fmt.Sprintf("feature %d has no observed values", j))
		}
		switch si.Strategy {
		case ImputeMean:
			sum := 0.0
			for _, v := range observed {
				sum += v
			}
			si.Statistics[j] = sum / float64(len(observed))
		case ImputeMedian:
			sort.Float64s(observed)
			si.Statistics[j] = dataframe.Percentile(observed, 0.5)
		case ImputeMostFrequent:
			counts := map[float64]int{}
			for _, v := range observed {
				counts[v]++
			}
			best := math.Inf(1)
			bestCount := 0
			for v, n := range counts {
				if n > bestCount || (n == bestCount && v < best) {
					best = v
					bestCount = n
				}
			}
			si.Statistics[j] = best
		}
	}

	si.SetFitted()
	return nil
}

// Transform replaces NaN entries in X with the fitted statistics.
func (si *SimpleImputer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !si.IsFitted() {
		return nil, errors.NewNotFittedError("SimpleImputer", "Transform")
	}

	r, c := X.Dims()
	if c != si.NFeatures {
		return nil, errors.NewDimensionError("SimpleImputer.Transform", si.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := X.At(i, j)
			if math.IsNaN(v) {
				v = si.Statistics[j]
			}
			result.Set(i, j, v)
		}
	}
	return result, nil
}

// FitTransform fits on X and returns the imputed X.
func (si *SimpleImputer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := si.Fit(X); err != nil {
		return nil, err
	}
	return si.Transform(X)
}

// GetParams returns the imputer's hyperparameters.
func (si *SimpleImputer) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"strategy":   string(si.Strategy),
		"fill_value": si.FillValue,
	}
}

func (si *SimpleImputer) String() string {
	return fmt.Sprintf("SimpleImputer(strategy=%s)", si.Strategy)
}
