package neighbors

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/pkg/errors"
)

func clusterData() (*mat.Dense, *mat.Dense) {
	// Two tight clusters in 2D.
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0.1, 0.2,
		0.2, 0.1,
		0.1, 0.1,
		5, 5,
		5.1, 5.2,
		5.2, 5.1,
		5.1, 5.1,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	return X, y
}

func TestKNNPredict(t *testing.T) {
	X, y := clusterData()
	clf := NewKNeighborsClassifier(WithK(3))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	queries := mat.NewDense(2, 2, []float64{0.15, 0.15, 5.05, 5.05})
	pred, err := clf.Predict(queries)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if pred.At(0, 0) != 0 {
		t.Errorf("query near cluster 0 predicted %g", pred.At(0, 0))
	}
	if pred.At(1, 0) != 1 {
		t.Errorf("query near cluster 1 predicted %g", pred.At(1, 0))
	}
}

func TestKNNManhattan(t *testing.T) {
	X, y := clusterData()
	clf := NewKNeighborsClassifier(WithK(3), WithMetric(Manhattan))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	score, err := clf.Score(X, y)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if score != 1 {
		t.Errorf("Score() = %v, want 1 on training data", score)
	}
}

func TestKNNPredictProba(t *testing.T) {
	X, y := clusterData()
	clf := NewKNeighborsClassifier(WithK(4))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	proba, err := clf.PredictProba(mat.NewDense(1, 2, []float64{0.1, 0.1}))
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	r, c := proba.Dims()
	if r != 1 || c != 2 {
		t.Fatalf("proba shape = %dx%d, want 1x2", r, c)
	}
	// All 4 nearest neighbors belong to cluster 0.
	if math.Abs(proba.At(0, 0)-1) > 1e-12 {
		t.Errorf("P(0) = %v, want 1", proba.At(0, 0))
	}
	if sum := proba.At(0, 0) + proba.At(0, 1); math.Abs(sum-1) > 1e-12 {
		t.Errorf("probabilities sum to %v", sum)
	}
}

func TestKNNTieBreaksToSmallerLabel(t *testing.T) {
	// k=2 with one neighbor from each class: the vote ties and the
	// smaller label must win.
	X := mat.NewDense(2, 1, []float64{-1, 1})
	y := mat.NewDense(2, 1, []float64{3, 7})

	clf := NewKNeighborsClassifier(WithK(2))
	if err := clf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	pred, err := clf.Predict(mat.NewDense(1, 1, []float64{0}))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if pred.At(0, 0) != 3 {
		t.Errorf("tie predicted %g, want smaller label 3", pred.At(0, 0))
	}
}

func TestKNNValidation(t *testing.T) {
	X, y := clusterData()

	t.Run("k larger than n", func(t *testing.T) {
		if err := NewKNeighborsClassifier(WithK(100)).Fit(X, y); err == nil {
			t.Error("Fit() with k > n expected error")
		}
	})

	t.Run("k zero", func(t *testing.T) {
		if err := NewKNeighborsClassifier(WithK(0)).Fit(X, y); err == nil {
			t.Error("Fit() with k=0 expected error")
		}
	})

	t.Run("unknown metric", func(t *testing.T) {
		if err := NewKNeighborsClassifier(WithMetric("cosine")).Fit(X, y); err == nil {
			t.Error("Fit() with unsupported metric expected error")
		}
	})

	t.Run("not fitted", func(t *testing.T) {
		_, err := NewKNeighborsClassifier().Predict(X)
		var nfe *errors.NotFittedError
		if !errors.As(err, &nfe) {
			t.Errorf("error = %T, want *NotFittedError", err)
		}
	})

	t.Run("feature mismatch", func(t *testing.T) {
		clf := NewKNeighborsClassifier(WithK(3))
		if err := clf.Fit(X, y); err != nil {
			t.Fatal(err)
		}
		if _, err := clf.Predict(mat.NewDense(1, 5, nil)); err == nil {
			t.Error("Predict() with wrong feature count expected error")
		}
	})
}
