package model_selection

import (
	"math"
	"sort"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func makeData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i)*10)
		y.Set(i, 0, float64(i%2))
	}
	return X, y
}

func TestTrainTestSplitSizes(t *testing.T) {
	X, y := makeData(100)
	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(X, y, SplitOptions{TestSize: 0.2, Seed: 42})
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	if r, _ := XTest.Dims(); r != 20 {
		t.Errorf("test rows = %d, want 20", r)
	}
	if r, _ := XTrain.Dims(); r != 80 {
		t.Errorf("train rows = %d, want 80", r)
	}
	if r, _ := yTrain.Dims(); r != 80 {
		t.Errorf("yTrain rows = %d, want 80", r)
	}
	if r, _ := yTest.Dims(); r != 20 {
		t.Errorf("yTest rows = %d, want 20", r)
	}
}

func TestTrainTestSplitDisjointAndComplete(t *testing.T) {
	X, y := makeData(50)
	XTrain, XTest, _, _, err := TrainTestSplit(X, y, SplitOptions{TestSize: 0.3, Seed: 1})
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	seen := map[float64]int{}
	collect := func(m *mat.Dense) {
		r, _ := m.Dims()
		for i := 0; i < r; i++ {
			seen[m.At(i, 0)]++
		}
	}
	collect(XTrain)
	collect(XTest)

	if len(seen) != 50 {
		t.Errorf("distinct samples = %d, want 50", len(seen))
	}
	for v, count := range seen {
		if count != 1 {
			t.Errorf("sample %v appears %d times", v, count)
		}
	}
}

func TestTrainTestSplitReproducible(t *testing.T) {
	X, y := makeData(30)
	_, XTest1, _, _, err := TrainTestSplit(X, y, SplitOptions{TestSize: 0.2, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	_, XTest2, _, _, err := TrainTestSplit(X, y, SplitOptions{TestSize: 0.2, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(XTest1, XTest2) {
		t.Error("same seed produced different splits")
	}

	_, XTest3, _, _, err := TrainTestSplit(X, y, SplitOptions{TestSize: 0.2, Seed: 8})
	if err != nil {
		t.Fatal(err)
	}
	if mat.Equal(XTest1, XTest3) {
		t.Error("different seeds produced identical splits")
	}
}

func TestTrainTestSplitStratified(t *testing.T) {
	// 80/20 class imbalance must survive the split.
	n := 100
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		if i < 80 {
			y.Set(i, 0, 0)
		} else {
			y.Set(i, 0, 1)
		}
	}

	_, _, _, yTest, err := TrainTestSplit(X, y, SplitOptions{TestSize: 0.2, Seed: 3, Stratify: true})
	if err != nil {
		t.Fatalf("TrainTestSplit() error = %v", err)
	}

	r, _ := yTest.Dims()
	ones := 0
	for i := 0; i < r; i++ {
		if yTest.At(i, 0) == 1 {
			ones++
		}
	}
	if ones != 4 {
		t.Errorf("minority class in test = %d, want 4 (20%% of 20)", ones)
	}
}

func TestTrainTestSplitStratifySingleClass(t *testing.T) {
	X := mat.NewDense(10, 1, nil)
	y := mat.NewDense(10, 1, nil) // all zeros
	if _, _, _, _, err := TrainTestSplit(X, y, SplitOptions{TestSize: 0.2, Stratify: true}); err == nil {
		t.Error("stratified split with one class expected error")
	}
}

func TestTrainTestSplitValidation(t *testing.T) {
	X, y := makeData(10)
	tests := []struct {
		name string
		opts SplitOptions
	}{
		{"test size too large", SplitOptions{TestSize: 1.5}},
		{"test size negative", SplitOptions{TestSize: -0.1}},
		{"test size rounds to zero", SplitOptions{TestSize: 0.01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, _, _, err := TrainTestSplit(X, y, tt.opts); err == nil {
				t.Error("TrainTestSplit() expected error")
			}
		})
	}
}

func TestKFoldSplit(t *testing.T) {
	kf := KFold{NSplits: 3}
	folds, err := kf.Split(10)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(folds) != 3 {
		t.Fatalf("folds = %d, want 3", len(folds))
	}

	// Fold sizes 4, 3, 3 and every index in exactly one test set.
	var all []int
	for f, fold := range folds {
		if len(fold.Train)+len(fold.Test) != 10 {
			t.Errorf("fold %d covers %d samples", f, len(fold.Train)+len(fold.Test))
		}
		all = append(all, fold.Test...)
	}
	sort.Ints(all)
	for i, v := range all {
		if v != i {
			t.Fatalf("test indices = %v, want 0..9 exactly once", all)
		}
	}
	if len(folds[0].Test) != 4 || len(folds[1].Test) != 3 {
		t.Errorf("fold sizes = %d,%d,%d, want 4,3,3",
			len(folds[0].Test), len(folds[1].Test), len(folds[2].Test))
	}
}

func TestKFoldTooManySplits(t *testing.T) {
	kf := KFold{NSplits: 5}
	if _, err := kf.Split(3); err == nil {
		t.Error("Split() with k > n expected error")
	}
}

func TestKFoldShuffleReproducible(t *testing.T) {
	a, err := KFold{NSplits: 4, Shuffle: true, Seed: 9}.Split(20)
	if err != nil {
		t.Fatal(err)
	}
	b, err := KFold{NSplits: 4, Shuffle: true, Seed: 9}.Split(20)
	if err != nil {
		t.Fatal(err)
	}
	for f := range a {
		for i := range a[f].Test {
			if a[f].Test[i] != b[f].Test[i] {
				t.Fatal("same seed produced different folds")
			}
		}
	}
}

func TestStratifiedKFold(t *testing.T) {
	n := 30
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		y.Set(i, 0, float64(i%3)) // perfectly balanced three classes
	}

	folds, err := StratifiedKFold{NSplits: 5}.Split(y)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	for f, fold := range folds {
		counts := map[float64]int{}
		for _, i := range fold.Test {
			counts[y.At(i, 0)]++
		}
		for class, count := range counts {
			if count != 2 {
				t.Errorf("fold %d class %g count = %d, want 2", f, class, count)
			}
		}
	}
}

func TestStratifiedKFoldSmallClass(t *testing.T) {
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 0, 0, 1})
	if _, err := (StratifiedKFold{NSplits: 3}).Split(y); err == nil {
		t.Error("Split() with class smaller than k expected error")
	}
}

func TestSubsetRows(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	got := SubsetRows(X, []int{2, 0})
	want := mat.NewDense(2, 2, []float64{5, 6, 1, 2})
	if !mat.Equal(got, want) {
		t.Errorf("SubsetRows() = %v, want %v", mat.Formatted(got), mat.Formatted(want))
	}
}

func TestMeanScore(t *testing.T) {
	if got := MeanScore([]float64{0.5, 0.7, 0.6}); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("MeanScore() = %v, want 0.6", got)
	}
	if got := MeanScore(nil); got != 0 {
		t.Errorf("MeanScore(nil) = %v, want 0", got)
	}
}
