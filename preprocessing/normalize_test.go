package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNormalizerNorms(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{
		3, 4,
		1, -1,
	})
	tests := []struct {
		name string
		norm Norm
		want [][]float64
	}{
		{
			name: "l2",
			norm: L2,
			want: [][]float64{{0.6, 0.8}, {1 / math.Sqrt2, -1 / math.Sqrt2}},
		},
		{
			name: "l1",
			norm: L1,
			want: [][]float64{{3.0 / 7, 4.0 / 7}, {0.5, -0.5}},
		},
		{
			name: "max",
			norm: Max,
			want: [][]float64{{0.75, 1}, {1, -1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewNormalizer(tt.norm)
			got, err := n.FitTransform(X)
			if err != nil {
				t.Fatalf("FitTransform() error = %v", err)
			}
			for i, row := range tt.want {
				for j, want := range row {
					if math.Abs(got.At(i, j)-want) > 1e-10 {
						t.Errorf("[%d,%d] = %v, want %v", i, j, got.At(i, j), want)
					}
				}
			}
		})
	}
}

func TestNormalizerZeroRow(t *testing.T) {
	X := mat.NewDense(1, 3, []float64{0, 0, 0})
	n := NewNormalizerDefault()
	got, err := n.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	for j := 0; j < 3; j++ {
		if got.At(0, j) != 0 {
			t.Errorf("zero row changed at %d: %v", j, got.At(0, j))
		}
	}
}

func TestNormalizerInvalidNorm(t *testing.T) {
	n := NewNormalizer("l3")
	if err := n.Fit(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Fit() with unsupported norm expected error")
	}
}

func TestNormalizerInputUnchanged(t *testing.T) {
	X := mat.NewDense(1, 2, []float64{3, 4})
	n := NewNormalizerDefault()
	if _, err := n.FitTransform(X); err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if X.At(0, 0) != 3 || X.At(0, 1) != 4 {
		t.Errorf("input mutated: %v", mat.Formatted(X))
	}
}

func TestBinarizer(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		in        []float64
		want      []float64
	}{
		{"zero threshold", 0, []float64{-1, 0, 0.5, 2}, []float64{0, 0, 1, 1}},
		{"custom threshold", 1.5, []float64{1, 1.5, 1.6, 3}, []float64{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBinarizer(tt.threshold)
			got, err := b.FitTransform(mat.NewDense(1, len(tt.in), tt.in))
			if err != nil {
				t.Fatalf("FitTransform() error = %v", err)
			}
			for j, want := range tt.want {
				if got.At(0, j) != want {
					t.Errorf("[0,%d] = %v, want %v", j, got.At(0, j), want)
				}
			}
		})
	}
}

func TestBinarizerNotFitted(t *testing.T) {
	b := NewBinarizer(0)
	if _, err := b.Transform(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Transform() before Fit expected error")
	}
}
