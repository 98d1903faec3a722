package linear

// config holds the hyperparameters shared by the linear estimators.
// Each estimator reads only the fields it exposes through GetParams.
type config struct {
	fitIntercept bool
	alpha        float64
	maxIter      int
	tol          float64
}

func defaultConfig() config {
	return config{
		fitIntercept: true,
		alpha:        1.0,
		maxIter:      1000,
		tol:          1e-4,
	}
}

// Option is a function that configures a linear estimator
type Option func(*config)

// WithFitIntercept sets whether to calculate the intercept
func WithFitIntercept(fit bool) Option {
	return func(c *config) {
		c.fitIntercept = fit
	}
}

// WithAlpha sets the regularization strength (Ridge, Lasso)
func WithAlpha(alpha float64) Option {
	return func(c *config) {
		c.alpha = alpha
	}
}

// WithMaxIter sets the maximum number of coordinate descent sweeps (Lasso)
func WithMaxIter(n int) Option {
	return func(c *config) {
		c.maxIter = n
	}
}

// WithTol sets the tolerance for the optimization (Lasso)
func WithTol(tol float64) Option {
	return func(c *config) {
		c.tol = tol
	}
}
