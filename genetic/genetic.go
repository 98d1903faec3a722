// Package genetic implements a symbolic regressor that evolves a sparse set
// of basis terms.
//
// The basis holds xj and xj^2 for every feature j. An individual selects at
// most max_terms of them; its fitness is the AIC of the ordinary least squares
// fit on the selected terms, n*log(mse) + 2*k, lower being better. Evolution
// uses tournament selection, uniform crossover, bit-flip mutation and keeps
// the best individual of every generation.
package genetic

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/core/parallel"
	"github.com/YuminosukeSato/regbench/linear"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// 個体評価を並列化する個体数の閾値
const parallelThreshold = 32

// Term is one basis function: feature raised to power 1 or 2.
type Term struct {
	Feature int
	Power   int
}

func (t Term) eval(X mat.Matrix, i int) float64 {
	v := X.At(i, t.Feature)
	if t.Power == 2 {
		return v * v
	}
	return v
}

func (t Term) name(names []string) string {
	n := fmt.Sprintf("x%d", t.Feature)
	if t.Feature < len(names) {
		n = names[t.Feature]
	}
	if t.Power == 2 {
		return n + "^2"
	}
	return n
}

// individual is a selection mask over the basis.
type individual struct {
	genes   []bool
	fitness float64
}

// GeneticRegressor evolves which basis terms enter a linear model.
type GeneticRegressor struct {
	state *model.StateManager

	// Hyperparameters
	popsize        int
	generations    int
	mutationRate   float64
	tournamentSize int
	maxTerms       int
	randomState    int64

	// Learned model
	terms     []Term
	coef      []float64
	intercept float64
	fitness   float64
	history   []float64
}

// NewGeneticRegressor creates a regressor with the given options.
// Defaults: popsize=100, generations=50, mutation_rate=0.1,
// tournament_size=3, max_terms=5, random_state=0.
func NewGeneticRegressor(opts ...Option) *GeneticRegressor {
	g := &GeneticRegressor{
		state:          model.NewStateManager(),
		popsize:        100,
		generations:    50,
		mutationRate:   0.1,
		tournamentSize: 3,
		maxTerms:       5,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *GeneticRegressor) validate() error {
	if g.popsize < 2 {
		return errors.NewValidationError("popsize", "must be at least 2", g.popsize)
	}
	if g.generations < 1 {
		return errors.NewValidationError("generations", "must be at least 1", g.generations)
	}
	if g.mutationRate < 0 || g.mutationRate > 1 || math.IsNaN(g.mutationRate) {
		return errors.NewValidationError("mutation_rate", "must be in [0, 1]", g.mutationRate)
	}
	if g.tournamentSize < 1 {
		return errors.NewValidationError("tournament_size", "must be at least 1", g.tournamentSize)
	}
	if g.maxTerms < 1 {
		return errors.NewValidationError("max_terms", "must be at least 1", g.maxTerms)
	}
	return nil
}

// evolver carries the per-Fit state.
type evolver struct {
	g     *GeneticRegressor
	basis []Term
	X     mat.Matrix
	y     mat.Matrix
	rng   *rand.Rand
}

// Fit evolves the term selection and fits the final coefficients.
func (g *GeneticRegressor) Fit(X, y mat.Matrix) error {
	if err := g.validate(); err != nil {
		return err
	}

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("GeneticRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("GeneticRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("GeneticRegressor.Fit", "y must be a column vector")
	}

	e := &evolver{
		g:   g,
		X:   X,
		y:   y,
		rng: rand.New(rand.NewPCG(uint64(g.randomState), uint64(g.randomState))),
	}
	for j := 0; j < cols; j++ {
		e.basis = append(e.basis, Term{Feature: j, Power: 1}, Term{Feature: j, Power: 2})
	}

	population := make([]*individual, g.popsize)
	for i := range population {
		population[i] = e.random()
	}
	e.evaluate(population)
	best := e.best(population)
	if err := errors.CheckScalar("GeneticRegressor.Fit", best.fitness, 0); err != nil {
		return err
	}

	g.history = []float64{best.fitness}
	improved := false
	for gen := 1; gen < g.generations; gen++ {
		next := make([]*individual, 0, g.popsize)
		// エリート保存
		next = append(next, e.copyOf(best))
		for len(next) < g.popsize {
			a := e.tournament(population)
			b := e.tournament(population)
			child := e.crossover(a, b)
			e.mutate(child)
			e.repair(child)
			next = append(next, child)
		}
		e.evaluate(next[1:])

		population = next
		if cand := e.best(population); cand.fitness < best.fitness {
			best = cand
			improved = true
		}
		g.history = append(g.history, best.fitness)
	}

	if g.generations > 1 && !improved {
		errors.Warn(errors.NewConvergenceWarning("GeneticRegressor", g.generations,
			"no generation improved on the initial population"))
	}

	terms := e.selected(best)
	lr, err := e.ols(terms)
	if err != nil {
		return err
	}

	g.terms = terms
	g.coef = lr.Coef()[:len(terms)]
	g.intercept = lr.Intercept()
	g.fitness = best.fitness
	g.state.SetDimensions(cols, rows)
	g.state.SetFitted()
	return nil
}

func (e *evolver) random() *individual {
	ind := &individual{genes: make([]bool, len(e.basis))}
	k := 1 + e.rng.IntN(min(e.g.maxTerms, len(e.basis)))
	for _, j := range e.rng.Perm(len(e.basis))[:k] {
		ind.genes[j] = true
	}
	return ind
}

func (e *evolver) copyOf(src *individual) *individual {
	genes := make([]bool, len(src.genes))
	copy(genes, src.genes)
	return &individual{genes: genes, fitness: src.fitness}
}

// tournament returns the fittest of tournament_size random picks.
func (e *evolver) tournament(population []*individual) *individual {
	best := population[e.rng.IntN(len(population))]
	for i := 1; i < e.g.tournamentSize; i++ {
		cand := population[e.rng.IntN(len(population))]
		if cand.fitness < best.fitness {
			best = cand
		}
	}
	return best
}

func (e *evolver) crossover(a, b *individual) *individual {
	child := &individual{genes: make([]bool, len(a.genes))}
	for j := range child.genes {
		if e.rng.Float64() < 0.5 {
			child.genes[j] = a.genes[j]
		} else {
			child.genes[j] = b.genes[j]
		}
	}
	return child
}

func (e *evolver) mutate(ind *individual) {
	for j := range ind.genes {
		if e.rng.Float64() < e.g.mutationRate {
			ind.genes[j] = !ind.genes[j]
		}
	}
}

// repair drops random terms until at most max_terms remain.
func (e *evolver) repair(ind *individual) {
	var on []int
	for j, g := range ind.genes {
		if g {
			on = append(on, j)
		}
	}
	for len(on) > e.g.maxTerms {
		k := e.rng.IntN(len(on))
		ind.genes[on[k]] = false
		on = append(on[:k], on[k+1:]...)
	}
}

func (e *evolver) selected(ind *individual) []Term {
	var terms []Term
	for j, g := range ind.genes {
		if g {
			terms = append(terms, e.basis[j])
		}
	}
	return terms
}

// evaluate scores every individual; a failed fit gets +Inf fitness.
func (e *evolver) evaluate(population []*individual) {
	rows, _ := e.X.Dims()
	parallel.Chunks(len(population), parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			ind := population[i]
			terms := e.selected(ind)
			lr, err := e.ols(terms)
			if err != nil {
				ind.fitness = math.Inf(1)
				continue
			}
			pred, err := lr.Predict(design(e.X, terms))
			if err != nil {
				ind.fitness = math.Inf(1)
				continue
			}
			var sse float64
			for r := 0; r < rows; r++ {
				d := e.y.At(r, 0) - pred.At(r, 0)
				sse += d * d
			}
			mse := math.Max(sse/float64(rows), 1e-12)
			ind.fitness = float64(rows)*math.Log(mse) + 2*float64(len(terms))
		}
	})
}

// best returns the fittest individual, the earliest one on ties.
func (e *evolver) best(population []*individual) *individual {
	best := population[0]
	for _, ind := range population[1:] {
		if ind.fitness < best.fitness {
			best = ind
		}
	}
	return best
}

// ols fits the terms by least squares; no terms means an intercept-only model.
func (e *evolver) ols(terms []Term) (*linear.LinearRegression, error) {
	lr := linear.NewLinearRegression()
	if err := lr.Fit(design(e.X, terms), e.y); err != nil {
		return nil, err
	}
	return lr, nil
}

// design evaluates the terms on every row of X. An empty term list yields
// a single zero column.
func design(X mat.Matrix, terms []Term) *mat.Dense {
	rows, _ := X.Dims()
	if len(terms) == 0 {
		return mat.NewDense(rows, 1, nil)
	}
	D := mat.NewDense(rows, len(terms), nil)
	for i := 0; i < rows; i++ {
		for k, t := range terms {
			D.Set(i, k, t.eval(X, i))
		}
	}
	return D
}

// Predict evaluates the fitted expression on X.
func (g *GeneticRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := g.state.RequireFitted("GeneticRegressor", "Predict"); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	if err := g.state.RequireFeatures("GeneticRegressor.Predict", cols); err != nil {
		return nil, err
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		v := g.intercept
		for k, t := range g.terms {
			v += g.coef[k] * t.eval(X, i)
		}
		predictions.Set(i, 0, v)
	}
	return predictions, nil
}

// NTerms returns the number of selected basis terms.
func (g *GeneticRegressor) NTerms() int {
	return len(g.terms)
}

// Terms returns the selected basis terms.
func (g *GeneticRegressor) Terms() []Term {
	return append([]Term(nil), g.terms...)
}

// Fitness returns the AIC of the selected model.
func (g *GeneticRegressor) Fitness() float64 {
	return g.fitness
}

// History returns the best fitness after each generation.
func (g *GeneticRegressor) History() []float64 {
	return append([]float64(nil), g.history...)
}

// IsFitted returns whether the model has been fitted
func (g *GeneticRegressor) IsFitted() bool {
	return g.state.IsFitted()
}

// Equation renders the model as "b + c0*x0 + c1*x1^2 ...". A term whose
// coefficient came out as exactly zero is omitted.
func (g *GeneticRegressor) Equation(names []string) string {
	var sb strings.Builder
	sb.WriteString(formatFloat(g.intercept))
	for k, t := range g.terms {
		c := g.coef[k]
		if c == 0 {
			continue
		}
		if c < 0 {
			sb.WriteString(" - ")
		} else {
			sb.WriteString(" + ")
		}
		sb.WriteString(formatFloat(math.Abs(c)))
		sb.WriteString("*")
		sb.WriteString(t.name(names))
	}
	return sb.String()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6g", v)
}

// SetRandomState sets the seed of the evolutionary search.
func (g *GeneticRegressor) SetRandomState(seed int64) {
	g.randomState = seed
}

// GetParams returns the hyperparameters.
func (g *GeneticRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"popsize":         g.popsize,
		"generations":     g.generations,
		"mutation_rate":   g.mutationRate,
		"tournament_size": g.tournamentSize,
		"max_terms":       g.maxTerms,
		"random_state":    g.randomState,
	}
}

// SetParams sets hyperparameters by name.
func (g *GeneticRegressor) SetParams(params map[string]interface{}) error {
	for name, value := range params {
		var err error
		switch name {
		case "popsize":
			g.popsize, err = model.ParamInt(name, value)
		case "generations":
			g.generations, err = model.ParamInt(name, value)
		case "mutation_rate":
			g.mutationRate, err = model.ParamFloat(name, value)
		case "tournament_size":
			g.tournamentSize, err = model.ParamInt(name, value)
		case "max_terms":
			g.maxTerms, err = model.ParamInt(name, value)
		case "random_state":
			var seed int
			if seed, err = model.ParamInt(name, value); err == nil {
				g.randomState = int64(seed)
			}
		default:
			err = model.UnknownParam("GeneticRegressor", name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (g *GeneticRegressor) Clone() model.Estimator {
	return NewGeneticRegressor(
		WithPopsize(g.popsize),
		WithGenerations(g.generations),
		WithMutationRate(g.mutationRate),
		WithTournamentSize(g.tournamentSize),
		WithMaxTerms(g.maxTerms),
		WithRandomState(g.randomState),
	)
}

func (g *GeneticRegressor) String() string {
	return fmt.Sprintf("GeneticRegressor(popsize=%d, generations=%d, max_terms=%d)",
		g.popsize, g.generations, g.maxTerms)
}
