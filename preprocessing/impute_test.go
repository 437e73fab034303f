package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func naN() float64 { return math.NaN() }

func TestSimpleImputerStrategies(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, naN(), 2})

	tests := []struct {
		name     string
		imputer  *SimpleImputer
		wantFill float64
	}{
		{"mean", NewSimpleImputer(ImputeMean), 5.0 / 3},
		{"median", NewSimpleImputer(ImputeMedian), 2},
		{"most frequent", NewSimpleImputer(ImputeMostFrequent), 2},
		{"constant", NewConstantImputer(-1), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.imputer.FitTransform(X)
			if err != nil {
				t.Fatalf("FitTransform() error = %v", err)
			}
			if v := got.At(2, 0); math.Abs(v-tt.wantFill) > 1e-10 {
				t.Errorf("imputed value = %v, want %v", v, tt.wantFill)
			}
			// Observed values pass through untouched.
			if got.At(0, 0) != 1 {
				t.Errorf("observed value changed: %v", got.At(0, 0))
			}
		})
	}
}

func TestSimpleImputerModeTieBreak(t *testing.T) {
	// 1 and 2 both appear twice; the smaller value wins.
	X := mat.NewDense(5, 1, []float64{1, 2, 1, 2, naN()})
	si := NewSimpleImputer(ImputeMostFrequent)
	got, err := si.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform() error = %v", err)
	}
	if got.At(4, 0) != 1 {
		t.Errorf("tie-broken mode = %v, want 1", got.At(4, 0))
	}
}

func TestSimpleImputerAllMissingFeature(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{naN(), naN()})
	si := NewSimpleImputer(ImputeMean)
	if err := si.Fit(X); err == nil {
		t.Error("Fit() with all-NaN feature expected error")
	}

	// Constant strategy has no such restriction.
	ci := NewConstantImputer(0)
	got, err := ci.FitTransform(X)
	if err != nil {
		t.Fatalf("constant FitTransform() error = %v", err)
	}
	if got.At(0, 0) != 0 {
		t.Errorf("constant fill = %v, want 0", got.At(0, 0))
	}
}

func TestSimpleImputerUnknownStrategy(t *testing.T) {
	si := NewSimpleImputer("mode")
	if err := si.Fit(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Fit() with unknown strategy expected error")
	}
}
