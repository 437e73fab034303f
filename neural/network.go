package neural

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/model_selection"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
)

// FitOptions controls Sequential training.
type FitOptions struct {
	// Epochs is the number of full passes over the data (default 10).
	Epochs int

	// BatchSize is the mini-batch size; 0 means full batch.
	BatchSize int

	// Seed seeds weight initialization and epoch shuffling.
	Seed int64
}

// Sequential is a stack of dense layers trained with mini-batch gradient
// descent using a configured loss and optimizer.
type Sequential struct {
	model.BaseEstimator

	layers  []*Dense
	loss    Loss
	opt     Optimizer
	history []float64
}

// NewSequential builds a network from the given layers. Consecutive layer
// shapes must agree.
func NewSequential(layers ...*Dense) (*Sequential, error) {
	if len(layers) == 0 {
		return nil, errors.NewValueError("NewSequential", "need at least one layer")
	}
	for i := 1; i < len(layers); i++ {
		if layers[i-1].Out != layers[i].In {
			return nil, errors.NewDimensionError("NewSequential", layers[i-1].Out, layers[i].In, i)
		}
	}
	return &Sequential{layers: layers}, nil
}

// Compile sets the training objective and optimizer. Must be called before
// Fit.
func (s *Sequential) Compile(loss Loss, opt Optimizer) error {
	if loss == nil || opt == nil {
		return errors.NewValueError("Sequential.Compile", "loss and optimizer must not be nil")
	}
	s.loss = loss
	s.opt = opt
	return nil
}

// Fit trains the network. Y must have one column per output unit (one-hot
// for classification). The per-epoch training loss, including regularization
// penalties, is recorded in History.
func (s *Sequential) Fit(X, Y mat.Matrix, opts FitOptions) error {
	if s.loss == nil || s.opt == nil {
		return errors.NewValueError("Sequential.Fit", "network is not compiled")
	}
	r, c := X.Dims()
	ry, cy := Y.Dims()
	if r == 0 {
		return errors.NewModelError("Sequential.Fit", "empty data", errors.ErrEmptyData)
	}
	if c != s.layers[0].In {
		return errors.NewDimensionError("Sequential.Fit", s.layers[0].In, c, 1)
	}
	if ry != r {
		return errors.NewDimensionError("Sequential.Fit", r, ry, 0)
	}
	last := s.layers[len(s.layers)-1]
	if cy != last.Out {
		return errors.NewDimensionError("Sequential.Fit", last.Out, cy, 1)
	}
	if opts.Epochs == 0 {
		opts.Epochs = 10
	}
	if opts.Epochs < 0 {
		return errors.NewValidationError("epochs", "must be positive", opts.Epochs)
	}
	batch := opts.BatchSize
	if batch <= 0 || batch > r {
		batch = r
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	for _, l := range s.layers {
		l.init(rng)
	}
	s.history = make([]float64, 0, opts.Epochs)

	Xd := mat.DenseCopyOf(X)
	Yd := mat.DenseCopyOf(Y)
	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}

	start := time.Now()
	logger := log.With("neural")
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		rng.Shuffle(r, func(a, b int) { idx[a], idx[b] = idx[b], idx[a] })

		epochLoss := 0.0
		batches := 0
		for at := 0; at < r; at += batch {
			end := at + batch
			if end > r {
				end = r
			}
			Xb := model_selection.SubsetRows(Xd, idx[at:end])
			Yb := model_selection.SubsetRows(Yd, idx[at:end])

			yPred := s.forward(Xb)
			epochLoss += s.loss.Loss(Yb, yPred) + s.penalty()
			batches++

			s.backward(Yb, yPred)
		}

		s.history = append(s.history, epochLoss/float64(batches))
		if err := errors.CheckScalar("Sequential.Fit", s.history[epoch], epoch+1); err != nil {
			return err
		}
		logger.Debug().
			Int(log.EpochKey, epoch+1).
			Float64(log.LossKey, s.history[epoch]).
			Msg("epoch finished")
	}
	s.SetFitted()

	logger.Debug().
		Str(log.ModelNameKey, "Sequential").
		Str(log.OperationKey, "fit").
		Int(log.SamplesKey, r).
		Int("train.epochs", opts.Epochs).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("training finished")
	return nil
}

func (s *Sequential) forward(X *mat.Dense) *mat.Dense {
	a := X
	for _, l := range s.layers {
		a = l.forward(a)
	}
	return a
}

func (s *Sequential) penalty() float64 {
	p := 0.0
	for _, l := range s.layers {
		p += l.Reg.Penalty(l.W)
	}
	return p
}

// backward runs one optimizer step from the cached forward pass.
func (s *Sequential) backward(Y, yPred *mat.Dense) {
	last := len(s.layers) - 1
	out := s.layers[last]

	var dZ *mat.Dense
	if s.loss.Name() == "categorical_crossentropy" && out.Activation.Name() == "softmax" {
		// The softmax/cross-entropy pair collapses to (a - y) / n.
		r, c := Y.Dims()
		dZ = mat.NewDense(r, c, nil)
		scale := 1.0 / float64(r)
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				dZ.Set(i, j, scale*(yPred.At(i, j)-Y.At(i, j)))
			}
		}
	} else {
		dA := s.loss.Gradient(Y, yPred)
		dZ = hadamard(dA, out.Activation.Derivative(out.z, out.a))
	}

	for l := last; l >= 0; l-- {
		dAPrev := s.layers[l].backward(dZ, s.opt, fmt.Sprintf("layer%d", l))
		if l > 0 {
			prev := s.layers[l-1]
			dZ = hadamard(dAPrev, prev.Activation.Derivative(prev.z, prev.a))
		}
	}
}

func hadamard(a, b *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.MulElem(a, b)
	return &out
}

// Predict runs the forward pass, n x out_units.
func (s *Sequential) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("Sequential", "Predict")
	}
	_, c := X.Dims()
	if c != s.layers[0].In {
		return nil, errors.NewDimensionError("Sequential.Predict", s.layers[0].In, c, 1)
	}
	return s.forward(mat.DenseCopyOf(X)), nil
}

// PredictClasses returns the argmax column index per row as an n x 1 matrix.
func (s *Sequential) PredictClasses(X mat.Matrix) (mat.Matrix, error) {
	pred, err := s.Predict(X)
	if err != nil {
		return nil, err
	}
	r, c := pred.Dims()
	out := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		best, bestV := 0, math.Inf(-1)
		for j := 0; j < c; j++ {
			if v := pred.At(i, j); v > bestV {
				best, bestV = j, v
			}
		}
		out.Set(i, 0, float64(best))
	}
	return out, nil
}

// PredictProba returns the network outputs as class probabilities. Meaningful
// when the final activation is softmax (or sigmoid for a single output).
func (s *Sequential) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	return s.Predict(X)
}

// Classes returns the output class labels, which for one-hot training targets
// are the column indices 0..outputs-1.
func (s *Sequential) Classes() []int {
	out := s.layers[len(s.layers)-1].Out
	classes := make([]int, out)
	for i := range classes {
		classes[i] = i
	}
	return classes
}

// History returns the per-epoch mean training loss of the last Fit call.
func (s *Sequential) History() []float64 {
	return append([]float64(nil), s.history...)
}

// GetParams describes the network configuration.
func (s *Sequential) GetParams() map[string]interface{} {
	params := map[string]interface{}{
		"layers": len(s.layers),
	}
	if s.loss != nil {
		params["loss"] = s.loss.Name()
	}
	if s.opt != nil {
		params["optimizer"] = s.opt.Name()
	}
	return params
}

func (s *Sequential) String() string {
	parts := make([]string, len(s.layers))
	for i, l := range s.layers {
		parts[i] = l.String()
	}
	return "Sequential(" + strings.Join(parts, ", ") + ")"
}

// OneHot encodes an n x 1 matrix of class indices in [0, nClasses) as an
// n x nClasses one-hot matrix.
func OneHot(y mat.Matrix, nClasses int) (*mat.Dense, error) {
	r, c := y.Dims()
	if c != 1 {
		return nil, errors.NewValueError("OneHot", "y must be a column vector")
	}
	if nClasses < 2 {
		return nil, errors.NewValidationError("n_classes", "must be at least 2", nClasses)
	}

	out := mat.NewDense(r, nClasses, nil)
	for i := 0; i < r; i++ {
		v := y.At(i, 0)
		if v != math.Trunc(v) || v < 0 || int(v) >= nClasses {
			return nil, errors.NewValueError("OneHot",
				fmt.Sprintf("label %g at row %d is outside [0, %d)", v, i, nClasses))
		}
		out.Set(i, int(v), 1)
	}
	return out, nil
}
