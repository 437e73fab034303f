package model_selection

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
)

// FitScorer is the estimator surface cross-validation needs: trainable and
// self-scoring.
type FitScorer interface {
	model.Fitter
	model.Scorer
}

// CrossValScore evaluates an estimator with k-fold cross-validation and
// returns one score per fold. newModel must return a fresh, unfitted
// estimator each call so no state crosses folds.
func CrossValScore(newModel func() FitScorer, X, y mat.Matrix, cv KFold) ([]float64, error) {
	if newModel == nil {
		return nil, errors.NewValueError("CrossValScore", "newModel must not be nil")
	}
	n, _ := X.Dims()
	yr, _ := y.Dims()
	if yr != n {
		return nil, errors.NewDimensionError("CrossValScore", n, yr, 0)
	}

	folds, err := cv.Split(n)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	scores := make([]float64, len(folds))
	for f, fold := range folds {
		est := newModel()
		XTrain := SubsetRows(X, fold.Train)
		yTrain := SubsetRows(y, fold.Train)
		XTest := SubsetRows(X, fold.Test)
		yTest := SubsetRows(y, fold.Test)

		if err := est.Fit(XTrain, yTrain); err != nil {
			return nil, errors.Wrapf(err, "fold %d fit", f)
		}
		score, err := est.Score(XTest, yTest)
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d score", f)
		}
		scores[f] = score
	}

	lg := log.With("model_selection")

	lg.Debug().
		Str(log.OperationKey, "cross_val_score").
		Int("folds", len(folds)).
		Int(log.SamplesKey, n).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Msg("cross-validation finished")
	return scores, nil
}

// MeanScore returns the mean of fold scores.
func MeanScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
