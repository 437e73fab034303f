package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is a supervised estimator that can be trained.
type Fitter interface {
	// Fit trains the estimator on X (n_samples x n_features) and
	// y (n_samples x 1).
	Fit(X, y mat.Matrix) error
}

// Predictor produces predictions for new data.
type Predictor interface {
	// Predict returns predictions for X as an n_samples x 1 matrix.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Transformer is the fit/transform contract for preprocessing steps.
type Transformer interface {
	// Fit learns the parameters needed for the transformation.
	Fit(X mat.Matrix) error

	// Transform applies the transformation and returns a new matrix.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits on X and returns the transformed X.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InverseTransformer is a Transformer whose mapping can be reversed.
type InverseTransformer interface {
	Transformer

	// InverseTransform maps transformed data back to the original space.
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// Scorer computes a quality score for predictions: R² for regressors,
// mean accuracy for classifiers.
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Estimator is a trainable, predicting model.
type Estimator interface {
	Fitter
	Predictor
}

// Regressor combines the interfaces of a regression model.
type Regressor interface {
	Estimator
	Scorer
}

// Classifier combines the interfaces of a classification model.
type Classifier interface {
	Estimator
	Scorer

	// PredictProba returns per-class probability estimates,
	// n_samples x n_classes, columns ordered as Classes().
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the sorted unique class labels seen during fitting.
	Classes() []int
}

// ParameterGetter exposes an estimator's hyperparameters.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}

// Persistable estimators can be saved to and loaded from a file.
type Persistable interface {
	Save(path string) error
	Load(path string) error
}
