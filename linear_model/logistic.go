package linear_model

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
)

// LogisticOption configures a LogisticRegression.
type LogisticOption func(*LogisticRegression)

// WithLearningRate sets the gradient descent step size (default 0.1).
func WithLearningRate(lr float64) LogisticOption {
	return func(m *LogisticRegression) { m.learningRate = lr }
}

// WithMaxIter sets the maximum number of gradient steps (default 1000).
func WithMaxIter(n int) LogisticOption {
	return func(m *LogisticRegression) { m.maxIter = n }
}

// WithTol sets the convergence tolerance on the gradient norm (default 1e-4).
func WithTol(tol float64) LogisticOption {
	return func(m *LogisticRegression) { m.tol = tol }
}

// WithC sets the inverse L2 regularization strength (default 1.0). Smaller
// values mean stronger regularization; the intercept is never penalized.
func WithC(c float64) LogisticOption {
	return func(m *LogisticRegression) { m.c = c }
}

// LogisticRegression is a logistic regression classifier trained by
// full-batch gradient descent with L2 regularization. Multiclass problems
// are handled one-vs-rest.
type LogisticRegression struct {
	model.BaseEstimator

	learningRate float64
	maxIter      int
	tol          float64
	c            float64

	classes   []int
	nFeatures int
	// weights[k] and intercepts[k] belong to the binary problem
	// "classes[k] vs rest".
	weights    []*mat.VecDense
	intercepts []float64
	iterations int
}

// NewLogisticRegression creates a logistic regression model with the given
// options.
func NewLogisticRegression(opts ...LogisticOption) *LogisticRegression {
	m := &LogisticRegression{
		learningRate: 0.1,
		maxIter:      1000,
		tol:          1e-4,
		c:            1.0,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fit trains the classifier. y must be an n x 1 matrix of integer-valued
// class labels; at least two distinct classes are required.
func (m *LogisticRegression) Fit(X, y mat.Matrix) error {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != r {
		return errors.NewDimensionError("LogisticRegression.Fit", r, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("LogisticRegression.Fit", "y must be a column vector")
	}
	if m.learningRate <= 0 {
		return errors.NewValidationError("learning_rate", "must be positive", m.learningRate)
	}
	if m.c <= 0 {
		return errors.NewValidationError("C", "must be positive", m.c)
	}

	classes, err := intClasses(y, r)
	if err != nil {
		return err
	}
	if len(classes) < 2 {
		return errors.NewValueError("LogisticRegression.Fit", "need at least two classes")
	}

	start := time.Now()
	m.classes = classes
	m.nFeatures = c
	m.weights = make([]*mat.VecDense, len(classes))
	m.intercepts = make([]float64, len(classes))
	m.iterations = 0

	if len(classes) == 2 {
		// One binary problem suffices: fit "positive = classes[1]" and
		// mirror the coefficients for the negative class.
		w, b, iters := m.fitBinary(X, y, r, c, classes[1])
		m.weights[1], m.intercepts[1] = w, b
		neg := mat.NewVecDense(c, nil)
		neg.ScaleVec(-1, w)
		m.weights[0], m.intercepts[0] = neg, -b
		m.iterations = iters
	} else {
		for k, class := range classes {
			w, b, iters := m.fitBinary(X, y, r, c, class)
			m.weights[k], m.intercepts[k] = w, b
			if iters > m.iterations {
				m.iterations = iters
			}
		}
	}
	m.SetFitted()

	lg := log.With("linear_model")

	lg.Debug().
		Str(log.ModelNameKey, "LogisticRegression").
		Str(log.OperationKey, "fit").
		Int(log.SamplesKey, r).
		Int(log.FeaturesKey, c).
		Int(log.ClassesKey, len(classes)).
		Int(log.IterationsKey, m.iterations).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("model fitted")
	return nil
}

// fitBinary runs gradient descent on the binary problem y == positive.
func (m *LogisticRegression) fitBinary(X, y mat.Matrix, r, c, positive int) (*mat.VecDense, float64, int) {
	target := make([]float64, r)
	for i := 0; i < r; i++ {
		if int(y.At(i, 0)) == positive {
			target[i] = 1
		}
	}

	w := mat.NewVecDense(c, nil)
	b := 0.0
	lambda := 1.0 / m.c

	iter := 0
	for ; iter < m.maxIter; iter++ {
		gradW := make([]float64, c)
		gradB := 0.0
		for i := 0; i < r; i++ {
			z := b
			for j := 0; j < c; j++ {
				z += X.At(i, j) * w.AtVec(j)
			}
			diff := sigmoid(z) - target[i]
			for j := 0; j < c; j++ {
				gradW[j] += diff * X.At(i, j)
			}
			gradB += diff
		}

		norm := 0.0
		for j := 0; j < c; j++ {
			gradW[j] = gradW[j]/float64(r) + lambda*w.AtVec(j)/float64(r)
			norm += gradW[j] * gradW[j]
		}
		gradB /= float64(r)
		norm += gradB * gradB
		norm = math.Sqrt(norm)

		for j := 0; j < c; j++ {
			w.SetVec(j, w.AtVec(j)-m.learningRate*gradW[j])
		}
		b -= m.learningRate * gradB

		if norm < m.tol {
			return w, b, iter + 1
		}
	}

	errors.Warn(errors.NewConvergenceWarning("LogisticRegression", m.maxIter,
		"gradient norm did not reach tol; consider increasing max_iter"))
	return w, b, iter
}

// decision computes the raw scores X*w + b for every class, n x n_classes.
func (m *LogisticRegression) decision(X mat.Matrix) *mat.Dense {
	r, _ := X.Dims()
	scores := mat.NewDense(r, len(m.classes), nil)
	for i := 0; i < r; i++ {
		for k := range m.classes {
			z := m.intercepts[k]
			for j := 0; j < m.nFeatures; j++ {
				z += X.At(i, j) * m.weights[k].AtVec(j)
			}
			scores.Set(i, k, z)
		}
	}
	return scores
}

// Predict returns the most probable class label for each sample.
func (m *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
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

// PredictProba returns per-class probabilities, n x n_classes, columns in
// Classes() order. One-vs-rest sigmoid scores are normalized to sum to one.
func (m *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !m.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "PredictProba")
	}
	r, c := X.Dims()
	if c != m.nFeatures {
		return nil, errors.NewDimensionError("LogisticRegression.PredictProba", m.nFeatures, c, 1)
	}

	scores := m.decision(X)
	proba := mat.NewDense(r, len(m.classes), nil)
	for i := 0; i < r; i++ {
		sum := 0.0
		for k := range m.classes {
			p := sigmoid(scores.At(i, k))
			proba.Set(i, k, p)
			sum += p
		}
		if sum > 0 {
			for k := range m.classes {
				proba.Set(i, k, proba.At(i, k)/sum)
			}
		}
	}
	return proba, nil
}

// Score returns the mean accuracy on the given data.
func (m *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	if !m.IsFitted() {
		return 0, errors.NewNotFittedError("LogisticRegression", "Score")
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
func (m *LogisticRegression) Classes() []int {
	return append([]int(nil), m.classes...)
}

// NIter returns the number of gradient steps the longest binary problem took.
func (m *LogisticRegression) NIter() int {
	return m.iterations
}

// GetParams returns the model hyperparameters.
func (m *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"learning_rate": m.learningRate,
		"max_iter":      m.maxIter,
		"tol":           m.tol,
		"C":             m.c,
	}
}

func (m *LogisticRegression) String() string {
	return "LogisticRegression()"
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + errors.StabilizeExp(-z))
}

// intClasses collects the sorted distinct labels of y, requiring every label
// to be integer-valued.
func intClasses(y mat.Matrix, n int) ([]int, error) {
	set := map[int]bool{}
	for i := 0; i < n; i++ {
		v := y.At(i, 0)
		if v != math.Trunc(v) || math.IsNaN(v) {
			return nil, errors.NewValueError("Fit", "class labels must be integer-valued")
		}
		set[int(v)] = true
	}
	classes := make([]int, 0, len(set))
	for v := range set {
		classes = append(classes, v)
	}
	sort.Ints(classes)
	return classes, nil
}
