// Package tree implements a CART decision tree classifier with Gini
// impurity splitting.
package tree

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
)

// TreeOption configures a DecisionTreeClassifier.
type TreeOption func(*DecisionTreeClassifier)

// WithMaxDepth caps the tree depth; 0 means unlimited.
func WithMaxDepth(d int) TreeOption {
	return func(m *DecisionTreeClassifier) { m.maxDepth = d }
}

// WithMinSamplesSplit sets the minimum number of samples a node needs to be
// considered for splitting (default 2).
func WithMinSamplesSplit(n int) TreeOption {
	return func(m *DecisionTreeClassifier) { m.minSamplesSplit = n }
}

// WithMaxFeatures limits how many features each split examines; 0 means all.
// Features are subsampled with the tree's RNG, which is how random forests
// decorrelate their trees.
func WithMaxFeatures(n int) TreeOption {
	return func(m *DecisionTreeClassifier) { m.maxFeatures = n }
}

// WithSeed seeds the feature subsampling RNG.
func WithSeed(seed int64) TreeOption {
	return func(m *DecisionTreeClassifier) { m.seed = seed }
}

// node is a tree node. Leaves have feature == -1.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	// counts holds per-class sample counts at the leaf, indexed like classes.
	counts []int
}

// DecisionTreeClassifier grows a binary tree by greedily choosing the
// feature/threshold split with the lowest weighted Gini impurity.
type DecisionTreeClassifier struct {
	model.BaseEstimator

	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
	seed            int64

	root      *node
	classes   []int
	nFeatures int
	depth     int
}

// NewDecisionTreeClassifier creates a classifier with the given options.
func NewDecisionTreeClassifier(opts ...TreeOption) *DecisionTreeClassifier {
	m := &DecisionTreeClassifier{minSamplesSplit: 2}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit grows the tree on X and the integer-valued labels in y.
func (m *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "y must be a column vector")
	}
	if m.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", m.minSamplesSplit)
	}
	if m.maxDepth < 0 {
		return errors.NewValidationError("max_depth", "must not be negative", m.maxDepth)
	}
	if m.maxFeatures < 0 || m.maxFeatures > c {
		return errors.NewValidationError("max_features", "must be in [0, n_features]", m.maxFeatures)
	}

	labels := make([]int, r)
	classSet := map[int]bool{}
	for i := 0; i < r; i++ {
		v := y.At(i, 0)
		if v != math.Trunc(v) || math.IsNaN(v) {
			return errors.NewValueError("DecisionTreeClassifier.Fit", "class labels must be integer-valued")
		}
		labels[i] = int(v)
		classSet[int(v)] = true
	}
	m.classes = make([]int, 0, len(classSet))
	for v := range classSet {
		m.classes = append(m.classes, v)
	}
	sort.Ints(m.classes)

	classIndex := make(map[int]int, len(m.classes))
	for i, v := range m.classes {
		classIndex[v] = i
	}

	start := time.Now()
	m.nFeatures = c
	m.depth = 0
	rng := rand.New(rand.NewSource(m.seed))

	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}
	m.root = m.grow(X, labels, classIndex, idx, 0, rng)
	m.SetFitted()

	lg := log.With("tree")

	lg.Debug().
		Str(log.ModelNameKey, "DecisionTreeClassifier").
		Str(log.OperationKey, "fit").
		Int(log.SamplesKey, r).
		Int(log.FeaturesKey, c).
		Int("tree.depth", m.depth).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("tree grown")
	return nil
}

func (m *DecisionTreeClassifier) grow(X mat.Matrix, labels []int, classIndex map[int]int, idx []int, depth int, rng *rand.Rand) *node {
	if depth > m.depth {
		m.depth = depth
	}

	counts := make([]int, len(m.classes))
	for _, i := range idx {
		counts[classIndex[labels[i]]]++
	}

	if m.pure(counts) ||
		len(idx) < m.minSamplesSplit ||
		(m.maxDepth > 0 && depth >= m.maxDepth) {
		return &node{feature: -1, counts: counts}
	}

	feature, threshold, ok := m.bestSplit(X, labels, classIndex, idx, rng)
	if !ok {
		return &node{feature: -1, counts: counts}
	}

	var left, right []int
	for _, i := range idx {
		if X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &node{feature: -1, counts: counts}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      m.grow(X, labels, classIndex, left, depth+1, rng),
		right:     m.grow(X, labels, classIndex, right, depth+1, rng),
	}
}

func (m *DecisionTreeClassifier) pure(counts []int) bool {
	nonzero := 0
	for _, c := range counts {
		if c > 0 {
			nonzero++
		}
	}
	return nonzero <= 1
}

// bestSplit scans candidate features for the threshold minimizing the
// weighted Gini impurity of the two children. Thresholds are midpoints
// between consecutive distinct feature values.
func (m *DecisionTreeClassifier) bestSplit(X mat.Matrix, labels []int, classIndex map[int]int, idx []int, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	features := m.candidateFeatures(rng)

	bestGini := math.Inf(1)
	for _, f := range features {
		vals := make([]float64, len(idx))
		for k, i := range idx {
			vals[k] = X.At(i, f)
		}
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)

		for k := 1; k < len(sorted); k++ {
			if sorted[k] == sorted[k-1] {
				continue
			}
			t := (sorted[k] + sorted[k-1]) / 2

			leftCounts := make([]int, len(m.classes))
			rightCounts := make([]int, len(m.classes))
			nLeft := 0
			for p, i := range idx {
				if vals[p] <= t {
					leftCounts[classIndex[labels[i]]]++
					nLeft++
				} else {
					rightCounts[classIndex[labels[i]]]++
				}
			}
			nRight := len(idx) - nLeft

			g := (float64(nLeft)*gini(leftCounts, nLeft) +
				float64(nRight)*gini(rightCounts, nRight)) / float64(len(idx))
			if g < bestGini {
				bestGini, feature, threshold, ok = g, f, t, true
			}
		}
	}
	return feature, threshold, ok
}

// candidateFeatures returns the feature indices a split may use, subsampled
// without replacement when maxFeatures is set.
func (m *DecisionTreeClassifier) candidateFeatures(rng *rand.Rand) []int {
	all := make([]int, m.nFeatures)
	for i := range all {
		all[i] = i
	}
	if m.maxFeatures == 0 || m.maxFeatures >= m.nFeatures {
		return all
	}
	rng.Shuffle(len(all), func(a, b int) { all[a], all[b] = all[b], all[a] })
	return all[:m.maxFeatures]
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		g -= p * p
	}
	return g
}

func (m *DecisionTreeClassifier) leaf(X mat.Matrix, row int) *node {
	nd := m.root
	for nd.feature >= 0 {
		if X.At(row, nd.feature) <= nd.threshold {
			nd = nd.left
		} else {
			nd = nd.right
		}
	}
	return nd
}

// Predict returns the majority class of the leaf each sample lands in.
// Leaf ties break toward the smaller label.
func (m *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}
	r, c := X.Dims()
	if c != m.nFeatures {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.Predict", m.nFeatures, c, 1)
	}

	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		counts := m.leaf(X, i).counts
		best, bestCount := 0, -1
		for k, cnt := range counts {
			if cnt > bestCount {
				best, bestCount = k, cnt
			}
		}
		out.Set(i, 0, float64(m.classes[best]))
	}
	return out, nil
}

// PredictProba returns the leaf class fractions, n x n_classes in
// Classes() order.
func (m *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}
	r, c := X.Dims()
	if c != m.nFeatures {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", m.nFeatures, c, 1)
	}

	proba := mat.NewDense(r, len(m.classes), nil)
	for i := 0; i < r; i++ {
		counts := m.leaf(X, i).counts
		total := 0
		for _, cnt := range counts {
			total += cnt
		}
		for k, cnt := range counts {
			proba.Set(i, k, float64(cnt)/float64(total))
		}
	}
	return proba, nil
}

// Score returns the mean accuracy on the given data.
func (m *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError("DecisionTreeClassifier", "Score")
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
func (m *DecisionTreeClassifier) Classes() []int {
	return append([]int(nil), m.classes...)
}

// Depth returns the depth of the grown tree.
func (m *DecisionTreeClassifier) Depth() int {
	return m.depth
}

// GetParams returns the model hyperparameters.
func (m *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         m.maxDepth,
		"min_samples_split": m.minSamplesSplit,
		"max_features":      m.maxFeatures,
	}
}

func (m *DecisionTreeClassifier) String() string {
	return "DecisionTreeClassifier()"
}
