package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

const tol = 1e-10

func vec(vals ...float64) *mat.VecDense {
	return mat.NewVecDense(len(vals), vals)
}

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: vec(1, 2, 3),
			yPred: vec(1, 2, 3),
			want:  0,
		},
		{
			name:  "constant offset",
			yTrue: vec(1, 2, 3, 4),
			yPred: vec(2, 3, 4, 5),
			want:  1,
		},
		{
			name:  "mixed errors",
			yTrue: vec(3, -0.5, 2, 7),
			yPred: vec(2.5, 0.0, 2, 8),
			want:  0.375,
		},
		{
			name:    "empty",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
		{
			name:    "length mismatch",
			yTrue:   vec(1, 2, 3),
			yPred:   vec(1, 2),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MSE() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && math.Abs(got-tt.want) > tol {
				t.Errorf("MSE() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRMSE(t *testing.T) {
	got, err := RMSE(vec(1, 2, 3, 4), vec(3, 4, 5, 6))
	if err != nil {
		t.Fatalf("RMSE() error = %v", err)
	}
	if math.Abs(got-2) > tol {
		t.Errorf("RMSE() = %v, want 2", got)
	}
}

func TestMAE(t *testing.T) {
	got, err := MAE(vec(3, -0.5, 2, 7), vec(2.5, 0.0, 2, 8))
	if err != nil {
		t.Fatalf("MAE() error = %v", err)
	}
	if math.Abs(got-0.5) > tol {
		t.Errorf("MAE() = %v, want 0.5", got)
	}
}

func TestR2Score(t *testing.T) {
	t.Run("perfect fit", func(t *testing.T) {
		got, err := R2Score(vec(1, 2, 3, 4), vec(1, 2, 3, 4))
		if err != nil {
			t.Fatalf("R2Score() error = %v", err)
		}
		if math.Abs(got-1) > tol {
			t.Errorf("R2Score() = %v, want 1", got)
		}
	})

	t.Run("known value", func(t *testing.T) {
		got, err := R2Score(vec(3, -0.5, 2, 7), vec(2.5, 0.0, 2, 8))
		if err != nil {
			t.Fatalf("R2Score() error = %v", err)
		}
		if math.Abs(got-0.9486081370449679) > 1e-9 {
			t.Errorf("R2Score() = %v, want 0.9486...", got)
		}
	})

	t.Run("no variance", func(t *testing.T) {
		if _, err := R2Score(vec(2, 2, 2), vec(1, 2, 3)); err == nil {
			t.Error("R2Score() with constant yTrue expected error")
		}
	})
}

func TestMAPE(t *testing.T) {
	got, err := MAPE(vec(100, 200), vec(110, 180))
	if err != nil {
		t.Fatalf("MAPE() error = %v", err)
	}
	if math.Abs(got-10) > tol {
		t.Errorf("MAPE() = %v, want 10", got)
	}

	if _, err := MAPE(vec(0, 0), vec(1, 1)); err == nil {
		t.Error("MAPE() with all-zero yTrue expected error")
	}
}

func TestExplainedVarianceScore(t *testing.T) {
	got, err := ExplainedVarianceScore(vec(3, -0.5, 2, 7), vec(2.5, 0.0, 2, 8))
	if err != nil {
		t.Fatalf("ExplainedVarianceScore() error = %v", err)
	}
	if math.Abs(got-0.9571734475374732) > 1e-9 {
		t.Errorf("ExplainedVarianceScore() = %v, want 0.9571...", got)
	}
}

func TestMSEMatrix(t *testing.T) {
	yTrue := mat.NewDense(3, 1, []float64{1, 2, 3})
	yPred := mat.NewDense(3, 1, []float64{2, 3, 4})
	got, err := MSEMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("MSEMatrix() error = %v", err)
	}
	if math.Abs(got-1) > tol {
		t.Errorf("MSEMatrix() = %v, want 1", got)
	}

	wide := mat.NewDense(3, 2, nil)
	if _, err := MSEMatrix(wide, wide); err == nil {
		t.Error("MSEMatrix() with wide matrix expected error")
	}
}
