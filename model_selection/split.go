// Package model_selection provides train/test splitting and cross-validation
// utilities. Splits are seeded for reproducibility and can be stratified to
// preserve class proportions.
package model_selection

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/pkg/errors"
)

// SplitOptions configures TrainTestSplit.
type SplitOptions struct {
	// TestSize is the fraction of samples assigned to the test set,
	// in (0, 1). Default 0.25.
	TestSize float64

	// Seed seeds the shuffle. The same seed always yields the same split.
	Seed int64

	// Stratify preserves the per-class proportions of y in both sets.
	Stratify bool
}

// TrainTestSplit shuffles the samples and splits X and y into train and test
// sets. y must be an n x 1 matrix aligned with X's rows.
func TrainTestSplit(X, y mat.Matrix, opts SplitOptions) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	n, _ := X.Dims()
	yr, yc := y.Dims()
	if n == 0 {
		return nil, nil, nil, nil, errors.NewModelError("TrainTestSplit", "empty data", errors.ErrEmptyData)
	}
	if yr != n {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, yr, 0)
	}
	if yc != 1 {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit", "y must be a column vector")
	}
	if opts.TestSize == 0 {
		opts.TestSize = 0.25
	}
	if opts.TestSize <= 0 || opts.TestSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", opts.TestSize)
	}

	nTest := int(math.Round(float64(n) * opts.TestSize))
	if nTest == 0 || nTest == n {
		return nil, nil, nil, nil, errors.NewValueError("TrainTestSplit",
			fmt.Sprintf("test_size %v leaves an empty set for %d samples", opts.TestSize, n))
	}

	rng := rand.New(rand.NewSource(opts.Seed))

	var testIdx, trainIdx []int
	if opts.Stratify {
		testIdx, trainIdx, err = stratifiedIndices(y, nTest, rng)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	} else {
		perm := rng.Perm(n)
		testIdx = perm[:nTest]
		trainIdx = perm[nTest:]
	}

	return SubsetRows(X, trainIdx), SubsetRows(X, testIdx),
		SubsetRows(y, trainIdx), SubsetRows(y, testIdx), nil
}

// stratifiedIndices allocates test slots per class proportionally, assigning
// leftover slots to the classes with the largest fractional remainders.
func stratifiedIndices(y mat.Matrix, nTest int, rng *rand.Rand) (testIdx, trainIdx []int, err error) {
	n, _ := y.Dims()
	groups := map[float64][]int{}
	for i := 0; i < n; i++ {
		v := y.At(i, 0)
		groups[v] = append(groups[v], i)
	}
	if len(groups) < 2 {
		return nil, nil, errors.NewValueError("TrainTestSplit", "stratify requires at least two classes")
	}

	classes := make([]float64, 0, len(groups))
	for v := range groups {
		classes = append(classes, v)
	}
	sort.Float64s(classes)

	// Largest-remainder apportionment of the nTest slots.
	counts := make([]int, len(classes))
	remainders := make([]float64, len(classes))
	assigned := 0
	for ci, v := range classes {
		exact := float64(nTest) * float64(len(groups[v])) / float64(n)
		counts[ci] = int(math.Floor(exact))
		remainders[ci] = exact - float64(counts[ci])
		assigned += counts[ci]
	}
	order := make([]int, len(classes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return remainders[order[a]] > remainders[order[b]] })
	for i := 0; assigned < nTest; i++ {
		counts[order[i%len(order)]]++
		assigned++
	}

	for ci, v := range classes {
		idx := append([]int(nil), groups[v]...)
		rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		take := counts[ci]
		if take > len(idx) {
			take = len(idx)
		}
		testIdx = append(testIdx, idx[:take]...)
		trainIdx = append(trainIdx, idx[take:]...)
	}
	return testIdx, trainIdx, nil
}

// SubsetRows copies the given rows of X into a new matrix, in index order.
func SubsetRows(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, ri := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(ri, j))
		}
	}
	return out
}

// KFold generates k consecutive train/test index splits.
type KFold struct {
	// NSplits is the number of folds (default 5).
	NSplits int

	// Shuffle randomizes sample order before folding.
	Shuffle bool

	// Seed seeds the shuffle.
	Seed int64
}

// Fold is one train/test division of the sample indices.
type Fold struct {
	Train []int
	Test  []int
}

// Split produces the folds for n samples. Every sample appears in exactly one
// test fold, fold sizes differ by at most one.
func (kf KFold) Split(n int) ([]Fold, error) {
	k := kf.NSplits
	if k == 0 {
		k = 5
	}
	if k < 2 {
		return nil, errors.NewValidationError("n_splits", "must be at least 2", k)
	}
	if k > n {
		return nil, errors.NewValueError("KFold.Split",
			fmt.Sprintf("cannot have n_splits=%d with only %d samples", k, n))
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if kf.Shuffle {
		rng := rand.New(rand.NewSource(kf.Seed))
		rng.Shuffle(n, func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
	}

	folds := make([]Fold, k)
	base := n / k
	extra := n % k
	start := 0
	for f := 0; f < k; f++ {
		size := base
		if f < extra {
			size++
		}
		test := idx[start : start+size]
		train := make([]int, 0, n-size)
		train = append(train, idx[:start]...)
		train = append(train, idx[start+size:]...)
		folds[f] = Fold{Train: train, Test: test}
		start += size
	}
	return folds, nil
}

// StratifiedKFold folds per class so every fold keeps roughly the class
// proportions of y.
type StratifiedKFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// Split produces stratified folds for the targets in y (n x 1).
func (sf StratifiedKFold) Split(y mat.Matrix) ([]Fold, error) {
	k := sf.NSplits
	if k == 0 {
		k = 5
	}
	if k < 2 {
		return nil, errors.NewValidationError("n_splits", "must be at least 2", k)
	}
	n, _ := y.Dims()
	if k > n {
		return nil, errors.NewValueError("StratifiedKFold.Split",
			fmt.Sprintf("cannot have n_splits=%d with only %d samples", k, n))
	}

	groups := map[float64][]int{}
	for i := 0; i < n; i++ {
		v := y.At(i, 0)
		groups[v] = append(groups[v], i)
	}
	classes := make([]float64, 0, len(groups))
	for v := range groups {
		if len(groups[v]) < k {
			return nil, errors.NewValueError("StratifiedKFold.Split",
				fmt.Sprintf("class %g has fewer members (%d) than n_splits=%d", v, len(groups[v]), k))
		}
		classes = append(classes, v)
	}
	sort.Float64s(classes)

	rng := rand.New(rand.NewSource(sf.Seed))
	testSets := make([][]int, k)
	for _, v := range classes {
		idx := append([]int(nil), groups[v]...)
		if sf.Shuffle {
			rng.Shuffle(len(idx), func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })
		}
		// Deal this class's samples round-robin across folds.
		for i, ri := range idx {
			testSets[i%k] = append(testSets[i%k], ri)
		}
	}

	folds := make([]Fold, k)
	for f := 0; f < k; f++ {
		inTest := make(map[int]bool, len(testSets[f]))
		for _, ri := range testSets[f] {
			inTest[ri] = true
		}
		train := make([]int, 0, n-len(testSets[f]))
		for i := 0; i < n; i++ {
			if !inTest[i] {
				train = append(train, i)
			}
		}
		sort.Ints(testSets[f])
		folds[f] = Fold{Train: train, Test: testSets[f]}
	}
	return folds, nil
}
