// Standard attribute keys for machine learning log events. Using the same
// keys everywhere keeps the structured output filterable: a dashboard can
// select on ml.operation=fit or data.samples without per-package variation.
package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type, e.g. "StandardScaler".
	ModelNameKey = "model.name"

	// OperationKey is the ML operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "score".
	OperationKey = "ml.operation"

	// ComponentKey identifies the package performing the operation,
	// e.g. "preprocessing", "pipeline", "neural".
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of rows being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of columns being processed.
	FeaturesKey = "data.features"

	// ClassesKey is the number of target classes for classification.
	ClassesKey = "data.classes"
)

// Performance and training progress.
const (
	// DurationMsKey records operation execution time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// EpochKey is the current training epoch.
	EpochKey = "train.epoch"

	// LossKey is the training loss at the logged step.
	LossKey = "train.loss"

	// IterationsKey is the number of solver iterations actually run.
	IterationsKey = "train.iterations"
)

// Error context.
const (
	// StacktraceKey carries a formatted stack trace extracted from the error.
	StacktraceKey = "stacktrace"
)
