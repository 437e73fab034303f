package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/pkg/errors"
)

// LabelEncoder maps string labels to integer codes 0..n-1. Codes are assigned
// in sorted label order so the encoding is independent of input order.
type LabelEncoder struct {
	model.BaseEstimator

	// ClassLabels holds the sorted distinct labels seen during Fit.
	ClassLabels []string

	codes map[string]int
}

// NewLabelEncoder creates an empty LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{}
}

// Fit learns the distinct labels in y.
func (le *LabelEncoder) Fit(y []string) error {
	if len(y) == 0 {
		return errors.NewModelError("LabelEncoder.Fit", "empty data", errors.ErrEmptyData)
	}
	seen := map[string]bool{}
	for _, v := range y {
		seen[v] = true
	}
	le.ClassLabels = make([]string, 0, len(seen))
	for v := range seen {
		le.ClassLabels = append(le.ClassLabels, v)
	}
	sort.Strings(le.ClassLabels)
	le.codes = make(map[string]int, len(le.ClassLabels))
	for i, v := range le.ClassLabels {
		le.codes[v] = i
	}
	le.SetFitted()
	return nil
}

// Transform encodes labels into integer codes. An unseen label is an error.
func (le *LabelEncoder) Transform(y []string) ([]int, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}
	out := make([]int, len(y))
	for i, v := range y {
		code, ok := le.codes[v]
		if !ok {
			return nil, errors.NewValueError("LabelEncoder.Transform", fmt.Sprintf("unseen label %q", v))
		}
		out[i] = code
	}
	return out, nil
}

// FitTransform fits on y and encodes it.
func (le *LabelEncoder) FitTransform(y []string) ([]int, error) {
	if err := le.Fit(y); err != nil {
		return nil, err
	}
	return le.Transform(y)
}

// InverseTransform decodes integer codes back into labels.
func (le *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if !le.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}
	out := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || code >= len(le.ClassLabels) {
			return nil, errors.NewValueError("LabelEncoder.InverseTransform", fmt.Sprintf("code %d out of range", code))
		}
		out[i] = le.ClassLabels[code]
	}
	return out, nil
}

// UnknownPolicy controls how OneHotEncoder treats categories not seen
// during Fit.
type UnknownPolicy string

const (
	// UnknownError fails the transform on an unseen category.
	UnknownError UnknownPolicy = "error"
	// UnknownIgnore encodes an unseen category as an all-zero row block.
	UnknownIgnore UnknownPolicy = "ignore"
)

// OneHotEncoder expands categorical string columns into 0/1 indicator
// columns, one block per input column, categories in sorted order.
type OneHotEncoder struct {
	model.BaseEstimator

	// Categories holds, per input column, the sorted distinct values.
	Categories [][]string

	// HandleUnknown selects the unseen-category policy (default error).
	HandleUnknown UnknownPolicy

	offsets []int
	codes   []map[string]int
}

// NewOneHotEncoder creates a OneHotEncoder with the given unknown policy.
func NewOneHotEncoder(handleUnknown UnknownPolicy) *OneHotEncoder {
	if handleUnknown == "" {
		handleUnknown = UnknownError
	}
	return &OneHotEncoder{HandleUnknown: handleUnknown}
}

// Fit learns the category sets of each column. cols is column-major: one
// string slice per categorical column, all the same length.
func (oh *OneHotEncoder) Fit(cols [][]string) error {
	if len(cols) == 0 || len(cols[0]) == 0 {
		return errors.NewModelError("OneHotEncoder.Fit", "empty data", errors.ErrEmptyData)
	}
	n := len(cols[0])
	for _, col := range cols {
		if len(col) != n {
			return errors.NewDimensionError("OneHotEncoder.Fit", n, len(col), 0)
		}
	}

	oh.Categories = make([][]string, len(cols))
	oh.codes = make([]map[string]int, len(cols))
	oh.offsets = make([]int, len(cols))
	offset := 0
	for j, col := range cols {
		seen := map[string]bool{}
		for _, v := range col {
			seen[v] = true
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		oh.Categories[j] = cats
		oh.codes[j] = make(map[string]int, len(cats))
		for i, v := range cats {
			oh.codes[j][v] = i
		}
		oh.offsets[j] = offset
		offset += len(cats)
	}

	oh.SetFitted()
	return nil
}

// NFeaturesOut returns the width of the encoded output.
func (oh *OneHotEncoder) NFeaturesOut() int {
	total := 0
	for _, cats := range oh.Categories {
		total += len(cats)
	}
	return total
}

// Transform encodes the columns into an indicator matrix.
func (oh *OneHotEncoder) Transform(cols [][]string) (*mat.Dense, error) {
	if !oh.IsFitted() {
		return nil, errors.NewNotFittedError("OneHotEncoder", "Transform")
	}
	if len(cols) != len(oh.Categories) {
		return nil, errors.NewDimensionError("OneHotEncoder.Transform", len(oh.Categories), len(cols), 1)
	}
	n := len(cols[0])
	for _, col := range cols {
		if len(col) != n {
			return nil, errors.NewDimensionError("OneHotEncoder.Transform", n, len(col), 0)
		}
	}

	out := mat.NewDense(n, oh.NFeaturesOut(), nil)
	for j, col := range cols {
		for i, v := range col {
			code, ok := oh.codes[j][v]
			if !ok {
				if oh.HandleUnknown == UnknownIgnore {
					continue
				}
				return nil, errors.NewValueError("OneHotEncoder.Transform",
					fmt.Sprintf("unseen category %q in column %d", v, j))
			}
			out.Set(i, oh.offsets[j]+code, 1)
		}
	}
	return out, nil
}

// FitTransform fits on cols and encodes them.
func (oh *OneHotEncoder) FitTransform(cols [][]string) (*mat.Dense, error) {
	if err := oh.Fit(cols); err != nil {
		return nil, err
	}
	return oh.Transform(cols)
}

// GetParams returns the encoder's hyperparameters.
func (oh *OneHotEncoder) GetParams() map[string]interface{} {
	return map[string]interface{}{"handle_unknown": string(oh.HandleUnknown)}
}
