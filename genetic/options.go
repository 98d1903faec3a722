package genetic

// Option is a function that configures a GeneticRegressor
type Option func(*GeneticRegressor)

// WithPopsize sets the population size
func WithPopsize(n int) Option {
	return func(g *GeneticRegressor) {
		g.popsize = n
	}
}

// WithGenerations sets the number of generations, the initial one included
func WithGenerations(n int) Option {
	return func(g *GeneticRegressor) {
		g.generations = n
	}
}

// WithMutationRate sets the per-gene flip probability
func WithMutationRate(rate float64) Option {
	return func(g *GeneticRegressor) {
		g.mutationRate = rate
	}
}

// WithTournamentSize sets the number of contestants per selection
func WithTournamentSize(n int) Option {
	return func(g *GeneticRegressor) {
		g.tournamentSize = n
	}
}

// WithMaxTerms sets the maximum number of basis terms in a model
func WithMaxTerms(n int) Option {
	return func(g *GeneticRegressor) {
		g.maxTerms = n
	}
}

// WithRandomState sets the seed of the evolutionary search
func WithRandomState(seed int64) Option {
	return func(g *GeneticRegressor) {
		g.randomState = seed
	}
}
