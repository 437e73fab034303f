// Package pipeline chains preprocessing transforms and an optional final
// estimator behind a single fit/predict surface. Statistics for every step
// are computed exclusively from the data passed to Fit, so held-out data can
// never leak into preprocessing.
package pipeline

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/mizupe/appliedml/core/model"
	"github.com/mizupe/appliedml/pkg/errors"
	"github.com/mizupe/appliedml/pkg/log"
)

// Step is a named transformer inside a pipeline.
type Step struct {
	Name        string
	Transformer model.Transformer
}

// Pipeline applies its steps in order. With a final estimator attached it
// behaves like that estimator over transformed inputs.
type Pipeline struct {
	model.BaseEstimator

	steps     []Step
	finalName string
	final     model.Estimator
}

// New creates a transform-only pipeline. Step names must be unique and
// non-empty.
func New(steps ...Step) (*Pipeline, error) {
	if len(steps) == 0 {
		return nil, errors.NewValueError("pipeline.New", "at least one step is required")
	}
	seen := map[string]bool{}
	for _, s := range steps {
		if s.Name == "" {
			return nil, errors.NewValueError("pipeline.New", "step name must not be empty")
		}
		if s.Transformer == nil {
			return nil, errors.NewValueError("pipeline.New", fmt.Sprintf("step %q has a nil transformer", s.Name))
		}
		if seen[s.Name] {
			return nil, errors.NewValueError("pipeline.New", fmt.Sprintf("duplicate step name %q", s.Name))
		}
		seen[s.Name] = true
	}
	return &Pipeline{steps: steps}, nil
}

// NewWithEstimator creates a pipeline ending in an estimator. steps may be
// empty, in which case the pipeline is just the estimator.
func NewWithEstimator(estName string, est model.Estimator, steps ...Step) (*Pipeline, error) {
	if est == nil {
		return nil, errors.NewValueError("pipeline.NewWithEstimator", "estimator must not be nil")
	}
	if estName == "" {
		return nil, errors.NewValueError("pipeline.NewWithEstimator", "estimator name must not be empty")
	}
	p := &Pipeline{steps: steps, finalName: estName, final: est}
	seen := map[string]bool{estName: true}
	for _, s := range steps {
		if s.Name == "" || s.Transformer == nil {
			return nil, errors.NewValueError("pipeline.NewWithEstimator", "steps must have a name and a transformer")
		}
		if seen[s.Name] {
			return nil, errors.NewValueError("pipeline.NewWithEstimator", fmt.Sprintf("duplicate step name %q", s.Name))
		}
		seen[s.Name] = true
	}
	return p, nil
}

// Names returns the step names in order, including the final estimator.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.steps)+1)
	for _, s := range p.steps {
		names = append(names, s.Name)
	}
	if p.final != nil {
		names = append(names, p.finalName)
	}
	return names
}

// Step returns the named transformer, or an error if the name is unknown or
// refers to the final estimator.
func (p *Pipeline) Step(name string) (model.Transformer, error) {
	for _, s := range p.steps {
		if s.Name == name {
			return s.Transformer, nil
		}
	}
	return nil, errors.NewValueError("Pipeline.Step", fmt.Sprintf("no step named %q", name))
}

// Estimator returns the final estimator, or nil for a transform-only
// pipeline.
func (p *Pipeline) Estimator() model.Estimator {
	return p.final
}

// Fit trains the pipeline: each transformer is fitted on the output of its
// predecessors and applied before the next step sees the data; the final
// estimator (if any) is fitted last. For a transform-only pipeline y may be
// nil.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	start := time.Now()
	current := X
	for _, s := range p.steps {
		out, err := s.Transformer.FitTransform(current)
		if err != nil {
			return errors.Wrapf(err, "pipeline step %q", s.Name)
		}
		current = out
	}
	if p.final != nil {
		if y == nil {
			return errors.NewValueError("Pipeline.Fit", "y is required when the pipeline has an estimator")
		}
		if err := p.final.Fit(current, y); err != nil {
			return errors.Wrapf(err, "pipeline estimator %q", p.finalName)
		}
	}

	r, c := X.Dims()
	lg := log.With("pipeline")
	lg.Debug().
		Str(log.OperationKey, "fit").
		Int(log.SamplesKey, r).
		Int(log.FeaturesKey, c).
		Int64(log.DurationMsKey, time.Since(start).Milliseconds()).
		Strs("steps", p.Names()).
		Msg("pipeline fitted")

	p.SetFitted()
	return nil
}

// Transform runs X through every fitted transformer step.
func (p *Pipeline) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Transform")
	}
	current := X
	for _, s := range p.steps {
		out, err := s.Transformer.Transform(current)
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline step %q", s.Name)
		}
		current = out
	}
	return current, nil
}

// FitTransform fits the pipeline's transformer steps on X and returns the
// transformed X. The final estimator, if present, is not fitted.
func (p *Pipeline) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	current := X
	for _, s := range p.steps {
		out, err := s.Transformer.FitTransform(current)
		if err != nil {
			return nil, errors.Wrapf(err, "pipeline step %q", s.Name)
		}
		current = out
	}
	p.SetFitted()
	return current, nil
}

// Predict transforms X and predicts with the final estimator.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	if p.final == nil {
		return nil, errors.NewValueError("Pipeline.Predict", "pipeline has no estimator")
	}
	transformed, err := p.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.final.Predict(transformed)
}

// PredictProba transforms X and returns the final classifier's probability
// estimates. The final estimator must implement model.Classifier.
func (p *Pipeline) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	clf, ok := p.final.(model.Classifier)
	if !ok {
		return nil, errors.NewValueError("Pipeline.PredictProba", "final estimator is not a classifier")
	}
	transformed, err := p.Transform(X)
	if err != nil {
		return nil, err
	}
	return clf.PredictProba(transformed)
}

// Score transforms X and delegates scoring to the final estimator.
func (p *Pipeline) Score(X, y mat.Matrix) (float64, error) {
	scorer, ok := p.final.(model.Scorer)
	if !ok {
		return 0, errors.NewValueError("Pipeline.Score", "final estimator does not implement Score")
	}
	transformed, err := p.Transform(X)
	if err != nil {
		return 0, err
	}
	return scorer.Score(transformed, y)
}
