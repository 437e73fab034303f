package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/pkg/errors"
)

// Average selects how per-class precision, recall and F1 are combined.
type Average string

const (
	// AverageMacro is the unweighted mean over classes.
	AverageMacro Average = "macro"
	// AverageWeighted weights each class by its support.
	AverageWeighted Average = "weighted"
)

// Accuracy computes the fraction of exact matches between yTrue and yPred,
// both n x 1 matrices.
func Accuracy(yTrue, yPred mat.Matrix) (float64, error) {
	n, err := checkTargets("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.At(i, 0) == yPred.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix computes the confusion matrix C where C[i][j] is the number
// of samples with true label labels[i] predicted as labels[j]. Labels are the
// sorted union of values seen in yTrue and yPred.
func ConfusionMatrix(yTrue, yPred mat.Matrix) (cm [][]int, labels []float64, err error) {
	n, err := checkTargets("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return nil, nil, err
	}

	labels = unionLabels(yTrue, yPred, n)
	index := make(map[float64]int, len(labels))
	for i, v := range labels {
		index[v] = i
	}

	cm = make([][]int, len(labels))
	for i := range cm {
		cm[i] = make([]int, len(labels))
	}
	for i := 0; i < n; i++ {
		cm[index[yTrue.At(i, 0)]][index[yPred.At(i, 0)]]++
	}
	return cm, labels, nil
}

// ClassStats holds per-class precision, recall, F1 and support.
type ClassStats struct {
	Label     float64
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// PrecisionRecallF1 computes per-class statistics from yTrue and yPred.
// Zero-division cases (a class never predicted, or absent from yTrue) yield
// 0 for the affected metric and emit an UndefinedMetricWarning.
func PrecisionRecallF1(yTrue, yPred mat.Matrix) ([]ClassStats, error) {
	cm, labels, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	stats := make([]ClassStats, len(labels))
	for c := range labels {
		tp := cm[c][c]
		predicted, actual := 0, 0
		for k := range labels {
			predicted += cm[k][c]
			actual += cm[c][k]
		}

		var precision, recall float64
		if predicted == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("precision",
				fmt.Sprintf("no predicted samples for class %g", labels[c]), 0))
		} else {
			precision = float64(tp) / float64(predicted)
		}
		if actual == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("recall",
				fmt.Sprintf("no true samples for class %g", labels[c]), 0))
		} else {
			recall = float64(tp) / float64(actual)
		}

		var f1 float64
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		stats[c] = ClassStats{
			Label:     labels[c],
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   actual,
		}
	}
	return stats, nil
}

// Precision computes the averaged precision over classes.
func Precision(yTrue, yPred mat.Matrix, avg Average) (float64, error) {
	stats, err := PrecisionRecallF1(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return average(stats, avg, func(s ClassStats) float64 { return s.Precision })
}

// Recall computes the averaged recall over classes.
func Recall(yTrue, yPred mat.Matrix, avg Average) (float64, error) {
	stats, err := PrecisionRecallF1(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return average(stats, avg, func(s ClassStats) float64 { return s.Recall })
}

// F1Score computes the averaged F1 over classes.
func F1Score(yTrue, yPred mat.Matrix, avg Average) (float64, error) {
	stats, err := PrecisionRecallF1(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return average(stats, avg, func(s ClassStats) float64 { return s.F1 })
}

// ClassificationReport renders per-class precision, recall, F1 and support
// plus accuracy and macro/weighted averages as an aligned text table.
func ClassificationReport(yTrue, yPred mat.Matrix) (string, error) {
	stats, err := PrecisionRecallF1(yTrue, yPred)
	if err != nil {
		return "", err
	}
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return "", err
	}

	total := 0
	for _, s := range stats {
		total += s.Support
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%14s %9s %9s %9s %9s\n", "", "precision", "recall", "f1-score", "support")
	b.WriteString("\n")
	for _, s := range stats {
		fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n",
			trimFloat(s.Label), s.Precision, s.Recall, s.F1, s.Support)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%14s %9s %9s %9.2f %9d\n", "accuracy", "", "", acc, total)

	macroP, _ := average(stats, AverageMacro, func(s ClassStats) float64 { return s.Precision })
	macroR, _ := average(stats, AverageMacro, func(s ClassStats) float64 { return s.Recall })
	macroF, _ := average(stats, AverageMacro, func(s ClassStats) float64 { return s.F1 })
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "macro avg", macroP, macroR, macroF, total)

	wP, _ := average(stats, AverageWeighted, func(s ClassStats) float64 { return s.Precision })
	wR, _ := average(stats, AverageWeighted, func(s ClassStats) float64 { return s.Recall })
	wF, _ := average(stats, AverageWeighted, func(s ClassStats) float64 { return s.F1 })
	fmt.Fprintf(&b, "%14s %9.2f %9.2f %9.2f %9d\n", "weighted avg", wP, wR, wF, total)

	return b.String(), nil
}

// logLossEps bounds predicted probabilities away from 0 and 1 so the log
// stays finite.
const logLossEps = 1e-15

// LogLoss computes the negative mean log-likelihood of binary targets given
// predicted probabilities of the positive class. Probabilities are clipped
// to [eps, 1-eps].
func LogLoss(yTrue mat.Matrix, proba mat.Matrix) (float64, error) {
	n, err := checkTargets("LogLoss", yTrue, proba)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		t := yTrue.At(i, 0)
		if t != 0 && t != 1 {
			return 0, errors.NewValueError("LogLoss",
				fmt.Sprintf("targets must be 0 or 1, got %g at row %d", t, i))
		}
		p := math.Min(math.Max(proba.At(i, 0), logLossEps), 1-logLossEps)
		sum += t*math.Log(p) + (1-t)*math.Log(1-p)
	}
	return -sum / float64(n), nil
}

func checkTargets(op string, yTrue, yPred mat.Matrix) (int, error) {
	n, c := yTrue.Dims()
	np, cp := yPred.Dims()
	if n == 0 {
		return 0, errors.NewModelError(op, "empty data", errors.ErrEmptyData)
	}
	if c != 1 || cp != 1 {
		return 0, errors.NewValueError(op, "inputs must be column vectors (n×1 matrices)")
	}
	if np != n {
		return 0, errors.NewDimensionError(op, n, np, 0)
	}
	return n, nil
}

func unionLabels(yTrue, yPred mat.Matrix, n int) []float64 {
	set := map[float64]bool{}
	for i := 0; i < n; i++ {
		set[yTrue.At(i, 0)] = true
		set[yPred.At(i, 0)] = true
	}
	labels := make([]float64, 0, len(set))
	for v := range set {
		labels = append(labels, v)
	}
	sort.Float64s(labels)
	return labels
}

func average(stats []ClassStats, avg Average, value func(ClassStats) float64) (float64, error) {
	if len(stats) == 0 {
		return 0, errors.NewValueError("metrics", "no classes")
	}
	switch avg {
	case AverageMacro:
		sum := 0.0
		for _, s := range stats {
			sum += value(s)
		}
		return sum / float64(len(stats)), nil
	case AverageWeighted:
		sum, total := 0.0, 0
		for _, s := range stats {
			sum += value(s) * float64(s.Support)
			total += s.Support
		}
		if total == 0 {
			return 0, errors.NewValueError("metrics", "zero total support")
		}
		return sum / float64(total), nil
	default:
		return 0, errors.NewValueError("metrics", fmt.Sprintf("unknown average %q", avg))
	}
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
