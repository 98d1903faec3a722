// Package log defines standard attribute keys for evaluation runs.
//
// Keys follow a hierarchical naming convention ("data.samples",
// "search.iteration") so that logs of many runs can be filtered the same
// way by an external sweep driver.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator under evaluation.
	// Examples: "LinearRegression", "DecisionTreeRegressor"
	ModelNameKey = "model.name"

	// EstimatorIDKey is the registry name of the estimator plugin.
	// Examples: "ridge", "genetic"
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "fit_transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is logging.
	// Examples: "benchmark", "model_selection", "preprocessing"
	ComponentKey = "ml.component"

	// PhaseKey indicates the pipeline phase.
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// DatasetKey is the dataset identifier derived from the input file name.
	DatasetKey = "data.dataset"

	// PathKey is a filesystem path read or written by the run.
	PathKey = "data.path"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// DurationSecondsKey records the wall-clock time in seconds.
	DurationSecondsKey = "perf.duration_seconds"

	// ProcessSecondsKey records the CPU time in seconds.
	ProcessSecondsKey = "perf.process_seconds"

	// R2ScoreKey records R² coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// MSEKey records the mean squared error.
	MSEKey = "metrics.mse"

	// MAEKey records the mean absolute error.
	MAEKey = "metrics.mae"

	// IterationKey records the successive-halving iteration (rung).
	IterationKey = "search.iteration"

	// CandidatesKey records the number of candidates evaluated in a rung.
	CandidatesKey = "search.candidates"

	// ResourcesKey records the number of training samples allotted per candidate.
	ResourcesKey = "search.n_resources"

	// FoldsKey records the number of cross-validation folds.
	FoldsKey = "search.folds"
)

// Error and Warning Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated for cockroachdb/errors values.
	StacktraceKey = "error.stacktrace"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Hyperparameters and Configuration
const (
	// HyperParamsKey contains model hyperparameters as a structured object.
	HyperParamsKey = "model.hyperparams"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// TestModeKey records whether the cheap test mode is enabled.
	TestModeKey = "config.test_mode"

	// NoiseKey records an injected noise fraction.
	NoiseKey = "config.noise_fraction"

	// RunIDKey is a unique identifier attached to every line of one run.
	RunIDKey = "run.id"
)

// Standard attribute value constants for common operations.
const (
	// Standard ML operations
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"

	// Pipeline phases, in execution order
	PhaseResampling  = "resampling"
	PhaseScaling     = "scaling"
	PhaseNoise       = "noise"
	PhasePreTrain    = "pre_train"
	PhaseSearch      = "search"
	PhaseScoring     = "scoring"
	PhasePersistence = "persistence"

	// Standard error codes
	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorFitFailed         = "FIT_FAILED"
)
