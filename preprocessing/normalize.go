package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/pkg/errors"
)

// Norm selects the row norm used by Normalizer.
type Norm string

const (
	// L1 normalizes each row to unit absolute sum.
	L1 Norm = "l1"
	// L2 normalizes each row to unit Euclidean length.
	L2 Norm = "l2"
	// Max normalizes each row by its maximum absolute value.
	Max Norm = "max"
)

// Normalizer rescales each sample (row) independently to unit norm. It is
// stateless: Fit only validates the configuration, so the same instance can
// transform any matrix width. Rows with zero norm are left untouched.
type Normalizer struct {
	model.BaseEstimator

	// NormKind selects the row norm (default L2).
	NormKind Norm
}

// NewNormalizer creates a Normalizer with the given norm.
func NewNormalizer(norm Norm) *Normalizer {
	return &Normalizer{NormKind: norm}
}

// NewNormalizerDefault creates an L2 Normalizer.
func NewNormalizerDefault() *Normalizer {
	return NewNormalizer(L2)
}

// Fit validates the norm choice. Normalizer learns nothing from the data.
func (n *Normalizer) Fit(X mat.Matrix) error {
	switch n.NormKind {
	case L1, L2, Max:
	case "":
		n.NormKind = L2
	default:
		return errors.NewValidationError("norm", "must be one of l1, l2, max", string(n.NormKind))
	}
	n.SetFitted()
	return nil
}

// Transform normalizes each row of X to unit norm.
func (n *Normalizer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !n.IsFitted() {
		return nil, errors.NewNotFittedError("Normalizer", "Transform")
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("Normalizer.Transform", "empty data", errors.ErrEmptyData)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		norm := 0.0
		switch n.NormKind {
		case L1:
			for j := 0; j < c; j++ {
				norm += math.Abs(X.At(i, j))
			}
		case L2:
			for j := 0; j < c; j++ {
				v := X.At(i, j)
				norm += v * v
			}
			norm = math.Sqrt(norm)
		case Max:
			for j := 0; j < c; j++ {
				if v := math.Abs(X.At(i, j)); v > norm {
					norm = v
				}
			}
		}
		if norm == 0 {
			norm = 1.0
		}
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)/norm)
		}
	}
	return result, nil
}

// FitTransform validates the configuration and normalizes X.
func (n *Normalizer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := n.Fit(X); err != nil {
		return nil, err
	}
	return n.Transform(X)
}

// GetParams returns the normalizer's hyperparameters.
func (n *Normalizer) GetParams() map[string]interface{} {
	return map[string]interface{}{"norm": string(n.NormKind)}
}

func (n *Normalizer) String() string {
	return fmt.Sprintf("Normalizer(norm=%s)", n.NormKind)
}

// Binarizer thresholds values: entries strictly greater than Threshold become
// 1, everything else 0. Like Normalizer it is stateless.
type Binarizer struct {
	model.BaseEstimator

	// Threshold is the cut point (default 0).
	Threshold float64
}

// NewBinarizer creates a Binarizer with the given threshold.
func NewBinarizer(threshold float64) *Binarizer {
	return &Binarizer{Threshold: threshold}
}

// Fit is a no-op beyond marking the transform ready.
func (b *Binarizer) Fit(X mat.Matrix) error {
	b.SetFitted()
	return nil
}

// Transform maps X to its 0/1 indicator matrix.
func (b *Binarizer) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !b.IsFitted() {
		return nil, errors.NewNotFittedError("Binarizer", "Transform")
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.NewModelError("Binarizer.Transform", "empty data", errors.ErrEmptyData)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if X.At(i, j) > b.Threshold {
				result.Set(i, j, 1)
			}
		}
	}
	return result, nil
}

// FitTransform binarizes X.
func (b *Binarizer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := b.Fit(X); err != nil {
		return nil, err
	}
	return b.Transform(X)
}

// GetParams returns the binarizer's hyperparameters.
func (b *Binarizer) GetParams() map[string]interface{} {
	return map[string]interface{}{"threshold": b.Threshold}
}

func (b *Binarizer) String() string {
	return fmt.Sprintf("Binarizer(threshold=%g)", b.Threshold)
}
