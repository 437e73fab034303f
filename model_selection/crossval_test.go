package model_selection

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// thresholdModel learns the mean of its training targets and scores a test
// set by the fraction of exact matches against threshold(x > mean of y).
type thresholdModel struct {
	fitted bool
	cut    float64
	fits   int
}

func (m *thresholdModel) Fit(X, y mat.Matrix) error {
	m.fits++
	n, _ := y.Dims()
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += y.At(i, 0)
	}
	m.cut = sum / float64(n)
	m.fitted = true
	return nil
}

func (m *thresholdModel) Score(X, y mat.Matrix) (float64, error) {
	n, _ := X.Dims()
	correct := 0
	for i := 0; i < n; i++ {
		pred := 0.0
		if X.At(i, 0) > m.cut {
			pred = 1
		}
		if pred == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

func TestCrossValScore(t *testing.T) {
	// Perfectly separable: x < 0.5 -> 0, x > 0.5 -> 1.
	n := 20
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i%2))
		y.Set(i, 0, float64(i%2))
	}

	fits := 0
	scores, err := CrossValScore(func() FitScorer {
		fits++
		return &thresholdModel{}
	}, X, y, KFold{NSplits: 4, Shuffle: true, Seed: 11})
	if err != nil {
		t.Fatalf("CrossValScore() error = %v", err)
	}
	if len(scores) != 4 {
		t.Fatalf("scores = %d, want 4", len(scores))
	}
	if fits != 4 {
		t.Errorf("estimator constructed %d times, want once per fold", fits)
	}
	for f, s := range scores {
		if math.Abs(s-1.0) > 1e-12 {
			t.Errorf("fold %d score = %v, want 1.0 on separable data", f, s)
		}
	}
	if m := MeanScore(scores); math.Abs(m-1.0) > 1e-12 {
		t.Errorf("MeanScore() = %v, want 1.0", m)
	}
}

func TestCrossValScoreValidation(t *testing.T) {
	X := mat.NewDense(10, 1, nil)
	y := mat.NewDense(10, 1, nil)

	if _, err := CrossValScore(nil, X, y, KFold{}); err == nil {
		t.Error("nil constructor expected error")
	}

	yBad := mat.NewDense(7, 1, nil)
	newModel := func() FitScorer { return &thresholdModel{} }
	if _, err := CrossValScore(newModel, X, yBad, KFold{}); err == nil {
		t.Error("mismatched y rows expected error")
	}

	if _, err := CrossValScore(newModel, X, y, KFold{NSplits: 20}); err == nil {
		t.Error("k > n expected error")
	}
}
