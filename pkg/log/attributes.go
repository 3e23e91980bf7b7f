// Package log defines standard attribute keys for estimator operations.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that log output can be filtered consistently.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "PolynomialRegression", "PolynomialFeatures"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "linear", "preprocessing", "metrics"
	ComponentKey = "ml.component"
)

// Data shape.
const (
	// SamplesKey is the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns).
	FeaturesKey = "data.features"

	// OutputFeaturesKey is the number of columns produced by a transformer.
	OutputFeaturesKey = "data.output_features"
)

// Performance and results.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records a loss or error metric value such as RMSE.
	LossKey = "metrics.loss"

	// R2ScoreKey records the coefficient of determination.
	R2ScoreKey = "metrics.r2_score"

	// PredsKey is the number of predictions made.
	PredsKey = "preds.count"
)

// Hyperparameters.
const (
	// DegreeKey records the polynomial degree or order.
	DegreeKey = "hyperparams.degree"

	// RankKey records the numerical rank of a least-squares design matrix.
	RankKey = "fit.rank"
)

// Error context.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorUnderdetermined   = "UNDERDETERMINED"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
