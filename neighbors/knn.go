// Package neighbors implements the k-nearest neighbors classifier.
package neighbors

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
)

// Metric selects the distance function used for neighbor search.
type Metric string

const (
	// Euclidean is the L2 distance (default).
	Euclidean Metric = "euclidean"
	// Manhattan is the L1 distance.
	Manhattan Metric = "manhattan"
)

// KNNOption configures a KNeighborsClassifier.
type KNNOption func(*KNeighborsClassifier)

// WithK sets the number of neighbors (default 5).
func WithK(k int) KNNOption {
	return func(m *KNeighborsClassifier) { m.k = k }
}

// WithMetric sets the distance metric (default Euclidean).
func WithMetric(metric Metric) KNNOption {
	return func(m *KNeighborsClassifier) { m.metric = metric }
}

// KNeighborsClassifier predicts by majority vote among the k training
// samples closest to the query point. Ties between classes are broken
// toward the smaller label.
type KNeighborsClassifier struct {
	model.BaseEstimator

	k      int
	metric Metric

	X       *mat.Dense
	y       []int
	classes []int
}

// NewKNeighborsClassifier creates a classifier with the given options.
func NewKNeighborsClassifier(opts ...KNNOption) *KNeighborsClassifier {
	m := &KNeighborsClassifier{k: 5, metric: Euclidean}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit stores the training data. y must be an n x 1 matrix of integer-valued
// labels and n must be at least k.
func (m *KNeighborsClassifier) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("KNeighborsClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("KNeighborsClassifier.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("KNeighborsClassifier.Fit", "y must be a column vector")
	}
	if m.k < 1 {
		return errors.NewValidationError("n_neighbors", "must be at least 1", m.k)
	}
	if m.k > r {
		return errors.NewValueError("KNeighborsClassifier.Fit",
			fmt.Sprintf("n_neighbors=%d exceeds the %d training samples", m.k, r))
	}
	switch m.metric {
	case Euclidean, Manhattan:
	default:
		return errors.NewValidationError("metric", "must be euclidean or manhattan", string(m.metric))
	}

	m.X = mat.DenseCopyOf(X)
	m.y = make([]int, r)
	classSet := map[int]bool{}
	for i := 0; i < r; i++ {
		v := y.At(i, 0)
		if v != math.Trunc(v) || math.IsNaN(v) {
			return errors.NewValueError("KNeighborsClassifier.Fit", "class labels must be integer-valued")
		}
		m.y[i] = int(v)
		classSet[int(v)] = true
	}
	m.classes = make([]int, 0, len(classSet))
	for v := range classSet {
		m.classes = append(m.classes, v)
	}
	sort.Ints(m.classes)

	m.SetFitted()
	lg := log.With("neighbors")
	lg.Debug().
		Str(log.ModelNameKey, "KNeighborsClassifier").
		Str(log.OperationKey, "fit").
		Int(log.SamplesKey, r).
		Int(log.FeaturesKey, c).
		Msg("training data stored")
	return nil
}

func (m *KNeighborsClassifier) distance(query mat.Matrix, qi, ti int) float64 {
	_, c := m.X.Dims()
	sum := 0.0
	for j := 0; j < c; j++ {
		d := query.At(qi, j) - m.X.At(ti, j)
		if m.metric == Manhattan {
			sum += math.Abs(d)
		} else {
			sum += d * d
		}
	}
	if m.metric == Manhattan {
		return sum
	}
	return math.Sqrt(sum)
}

// neighborVotes tallies the class votes of the k nearest training samples.
func (m *KNeighborsClassifier) neighborVotes(X mat.Matrix, qi int) map[int]int {
	n, _ := m.X.Dims()
	type neighbor struct {
		dist float64
		idx  int
	}
	all := make([]neighbor, n)
	for t := 0; t < n; t++ {
		all[t] = neighbor{dist: m.distance(X, qi, t), idx: t}
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].dist != all[b].dist {
			return all[a].dist < all[b].dist
		}
		return all[a].idx < all[b].idx
	})

	votes := map[int]int{}
	for _, nb := range all[:m.k] {
		votes[m.y[nb.idx]]++
	}
	return votes
}

// Predict returns the majority-vote label for each query row.
func (m *KNeighborsClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("KNeighborsClassifier", "Predict")
	}
	r, c := X.Dims()
	if _, tc := m.X.Dims(); c != tc {
		return nil, errors.NewDimensionError("KNeighborsClassifier.Predict", tc, c, 1)
	}

	start := time.Now()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		votes := m.neighborVotes(X, i)
		best, bestVotes := 0, -1
		for _, class := range m.classes {
			if v := votes[class]; v > bestVotes {
				best, bestVotes = class, v
			}
		}
		out.Set(i, 0, float64(best))
	}

	lg := log.With("neighbors")

	lg.Debug().
		Str(log.OperationKey, "predict").
		Int(log.SamplesKey, r).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("prediction finished")
	return out, nil
}

// PredictProba returns the neighbor vote fractions per class,
// n x n_classes in Classes() order.
func (m *KNeighborsClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("KNeighborsClassifier", "PredictProba")
	}
	r, c := X.Dims()
	if _, tc := m.X.Dims(); c != tc {
		return nil, errors.NewDimensionError("KNeighborsClassifier.PredictProba", tc, c, 1)
	}

	proba := mat.NewDense(r, len(m.classes), nil)
	for i := 0; i < r; i++ {
		votes := m.neighborVotes(X, i)
		for k, class := range m.classes {
			proba.Set(i, k, float64(votes[class])/float64(m.k))
		}
	}
	return proba, nil
}

// Score returns the mean accuracy on the given data.
func (m *KNeighborsClassifier) Score(X, y mat.Matrix) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError("KNeighborsClassifier", "Score")
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
func (m *KNeighborsClassifier) Classes() []int {
	return append([]int(nil), m.classes...)
}

// GetParams returns the model hyperparameters.
func (m *KNeighborsClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_neighbors": m.k,
		"metric":      string(m.metric),
	}
}

func (m *KNeighborsClassifier) String() string {
	return fmt.Sprintf("KNeighborsClassifier(n_neighbors=%d, metric=%s)", m.k, m.metric)
}
