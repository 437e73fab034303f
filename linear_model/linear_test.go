package linear_model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/pkg/errors"
)

const tol = 1e-8

func TestLinearRegressionFit(t *testing.T) {
	// y = 2x + 1, exactly.
	X := mat.NewDense(5, 1, []float64{0, 1, 2, 3, 4})
	y := mat.NewDense(5, 1, []float64{1, 3, 5, 7, 9})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if math.Abs(lr.GetIntercept()-1) > tol {
		t.Errorf("intercept = %v, want 1", lr.GetIntercept())
	}
	w := lr.GetWeights()
	if len(w) != 1 || math.Abs(w[0]-2) > tol {
		t.Errorf("weights = %v, want [2]", w)
	}
}

func TestLinearRegressionMultiFeature(t *testing.T) {
	// y = 1 + 2*x1 - 3*x2.
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
		2, 1,
		1, 2,
	})
	y := mat.NewDense(6, 1, nil)
	for i := 0; i < 6; i++ {
		y.Set(i, 0, 1+2*X.At(i, 0)-3*X.At(i, 1))
	}

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	w := lr.GetWeights()
	if math.Abs(w[0]-2) > tol || math.Abs(w[1]+3) > tol {
		t.Errorf("weights = %v, want [2 -3]", w)
	}

	pred, err := lr.Predict(mat.NewDense(1, 2, []float64{3, 2}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if math.Abs(pred.At(0, 0)-1) > tol { // 1 + 6 - 6
		t.Errorf("Predict() = %v, want 1", pred.At(0, 0))
	}
}

func TestLinearRegressionScore(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{2, 4, 6, 8})

	lr := NewLinearRegression()
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	score, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if math.Abs(score-1) > tol {
		t.Errorf("Score() = %v, want 1 on exact fit", score)
	}
}

func TestLinearRegressionNotFitted(t *testing.T) {
	lr := NewLinearRegression()
	_, err := lr.Predict(mat.NewDense(1, 1, []float64{1}))
	if err == nil {
		t.Fatal("Predict() on unfitted model expected error")
	}
	var nfe *errors.NotFittedError
	if !errors.As(err, &nfe) {
		t.Errorf("error = %T, want *NotFittedError", err)
	}
}

func TestLinearRegressionValidation(t *testing.T) {
	lr := NewLinearRegression()
	tests := []struct {
		name string
		X    *mat.Dense
		y    *mat.Dense
	}{
		{"row mismatch", mat.NewDense(3, 1, nil), mat.NewDense(2, 1, nil)},
		{"wide y", mat.NewDense(3, 1, nil), mat.NewDense(3, 2, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := lr.Fit(tt.X, tt.y); err == nil {
				t.Error("Fit() expected error")
			}
		})
	}
}

func TestLinearRegressionFeatureMismatch(t *testing.T) {
	lr := NewLinearRegression()
	if err := lr.Fit(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 7}), mat.NewDense(3, 1, []float64{1, 2, 3})); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := lr.Predict(mat.NewDense(1, 3, nil)); err == nil {
		t.Error("Predict() with wrong feature count expected error")
	}
	var de *errors.DimensionError
	_, err := lr.Predict(mat.NewDense(1, 3, nil))
	if !errors.As(err, &de) {
		t.Errorf("error = %T, want *DimensionError", err)
	}
}
