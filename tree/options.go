package tree

// Option is a function that configures a DecisionTreeRegressor
type Option func(*DecisionTreeRegressor)

// WithMaxDepth sets the maximum depth of the tree (0 means unlimited)
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples required to split a node
func WithMinSamplesSplit(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.minSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples required at a leaf
func WithMinSamplesLeaf(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.minSamplesLeaf = n
	}
}

// WithMaxFeatures sets the number of features considered per split (0 means all)
func WithMaxFeatures(n int) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.maxFeatures = n
	}
}

// WithRandomState sets the seed for feature sampling
func WithRandomState(seed int64) Option {
	return func(dt *DecisionTreeRegressor) {
		dt.randomState = seed
	}
}
