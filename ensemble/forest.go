// Package ensemble implements a random forest classifier built on the CART
// trees in the tree package.
package ensemble

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/core/parallel"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
	"github.com/mizupe/appliedml/tree"
)

// ForestOption configures a RandomForestClassifier.
type ForestOption func(*RandomForestClassifier)

// WithNEstimators sets the number of trees (default 100).
func WithNEstimators(n int) ForestOption {
	return func(m *RandomForestClassifier) { m.nEstimators = n }
}

// WithMaxDepth caps every tree's depth; 0 means unlimited.
func WithMaxDepth(d int) ForestOption {
	return func(m *RandomForestClassifier) { m.maxDepth = d }
}

// WithMinSamplesSplit sets the per-tree minimum node size for splitting
// (default 2).
func WithMinSamplesSplit(n int) ForestOption {
	return func(m *RandomForestClassifier) { m.minSamplesSplit = n }
}

// WithMaxFeatures fixes the number of features each split examines; 0 means
// use the default sqrt(n_features).
func WithMaxFeatures(n int) ForestOption {
	return func(m *RandomForestClassifier) { m.maxFeatures = n }
}

// WithSeed seeds bootstrap sampling and per-tree feature subsampling. The
// same seed always grows the same forest.
func WithSeed(seed int64) ForestOption {
	return func(m *RandomForestClassifier) { m.seed = seed }
}

// RandomForestClassifier averages the vote of nEstimators CART trees, each
// grown on a bootstrap sample with feature subsampling at every split.
// Trees are fitted in parallel.
type RandomForestClassifier struct {
	model.BaseEstimator

	nEstimators     int
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
	seed            int64

	trees     []*tree.DecisionTreeClassifier
	classes   []int
	nFeatures int
}

// NewRandomForestClassifier creates a forest with the given options.
func NewRandomForestClassifier(opts ...ForestOption) *RandomForestClassifier {
	m := &RandomForestClassifier{nEstimators: 100, minSamplesSplit: 2}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit grows the forest on X and the integer-valued labels in y.
func (m *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("RandomForestClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("RandomForestClassifier.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("RandomForestClassifier.Fit", "y must be a column vector")
	}
	if m.nEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", m.nEstimators)
	}

	maxFeatures := m.maxFeatures
	if maxFeatures == 0 {
		maxFeatures = int(math.Sqrt(float64(c)))
		if maxFeatures < 1 {
			maxFeatures = 1
		}
	}
	if maxFeatures > c {
		return errors.NewValidationError("max_features", "must not exceed n_features", m.maxFeatures)
	}

	classSet := map[int]bool{}
	for i := 0; i < r; i++ {
		v := y.At(i, 0)
		if v != math.Trunc(v) || math.IsNaN(v) {
			return errors.NewValueError("RandomForestClassifier.Fit", "class labels must be integer-valued")
		}
		classSet[int(v)] = true
	}
	m.classes = make([]int, 0, len(classSet))
	for v := range classSet {
		m.classes = append(m.classes, v)
	}
	sort.Ints(m.classes)
	m.nFeatures = c

	// Per-tree seeds come from one master RNG so the forest is
	// reproducible regardless of fitting order.
	master := rand.New(rand.NewSource(m.seed))
	seeds := make([]int64, m.nEstimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	start := time.Now()
	m.trees = make([]*tree.DecisionTreeClassifier, m.nEstimators)
	errs := make([]error, m.nEstimators)

	parallel.ForEach(m.nEstimators, func(t int) {
		rng := rand.New(rand.NewSource(seeds[t]))
		Xb, yb := bootstrap(X, y, r, rng)

		clf := tree.NewDecisionTreeClassifier(
			tree.WithMaxDepth(m.maxDepth),
			tree.WithMinSamplesSplit(m.minSamplesSplit),
			tree.WithMaxFeatures(maxFeatures),
			tree.WithSeed(seeds[t]),
		)
		if err := clf.Fit(Xb, yb); err != nil {
			errs[t] = errors.Wrapf(err, "tree %d", t)
			return
		}
		m.trees[t] = clf
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	m.SetFitted()

	lg := log.With("ensemble")
	lg.Debug().
		Str(log.ModelNameKey, "RandomForestClassifier").
		Str(log.OperationKey, "fit").
		Int(log.SamplesKey, r).
		Int(log.FeaturesKey, c).
		Int("forest.trees", m.nEstimators).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("forest grown")
	return nil
}

// bootstrap draws r samples with replacement.
func bootstrap(X, y mat.Matrix, r int, rng *rand.Rand) (*mat.Dense, *mat.Dense) {
	_, c := X.Dims()
	Xb := mat.NewDense(r, c, nil)
	yb := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		src := rng.Intn(r)
		for j := 0; j < c; j++ {
			Xb.Set(i, j, X.At(src, j))
		}
		yb.Set(i, 0, y.At(src, 0))
	}
	return Xb, yb
}

// PredictProba averages the per-tree class probabilities,
// n x n_classes in Classes() order.
func (m *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "PredictProba")
	}
	r, c := X.Dims()
	if c != m.nFeatures {
		return nil, errors.NewDimensionError("RandomForestClassifier.PredictProba", m.nFeatures, c, 1)
	}

	classIndex := make(map[int]int, len(m.classes))
	for i, v := range m.classes {
		classIndex[v] = i
	}

	sum := mat.NewDense(r, len(m.classes), nil)
	for _, clf := range m.trees {
		p, err := clf.PredictProba(X)
		if err != nil {
			return nil, err
		}
		// A tree fit on a bootstrap sample may have missed some classes;
		// map its columns onto the forest's class order.
		treeClasses := clf.Classes()
		for i := 0; i < r; i++ {
			for k, class := range treeClasses {
				col := classIndex[class]
				sum.Set(i, col, sum.At(i, col)+p.At(i, k))
			}
		}
	}
	sum.Scale(1/float64(len(m.trees)), sum)
	return sum, nil
}

// Predict returns the class with the highest averaged probability. Ties
// break toward the smaller label.
func (m *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	r, _ := proba.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		best, bestP := 0, proba.At(i, 0)
		for k := 1; k < len(m.classes); k++ {
			if p := proba.At(i, k); p > bestP {
				best, bestP = k, p
			}
		}
		out.Set(i, 0, float64(m.classes[best]))
	}
	return out, nil
}

// Score returns the mean accuracy on the given data.
func (m *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError("RandomForestClassifier", "Score")
	}
	yPred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	correct := 0
	for i := 0; i < r; i++ {
		if y.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(r), nil
}

// Classes returns the sorted class labels seen during fitting.
func (m *RandomForestClassifier) Classes() []int {
	return append([]int(nil), m.classes...)
}

// NTrees returns the number of fitted trees.
func (m *RandomForestClassifier) NTrees() int {
	return len(m.trees)
}

// GetParams returns the model hyperparameters.
func (m *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      m.nEstimators,
		"max_depth":         m.maxDepth,
		"min_samples_split": m.minSamplesSplit,
		"max_features":      m.maxFeatures,
	}
}

func (m *RandomForestClassifier) String() string {
	return "RandomForestClassifier()"
}
