// Package tree implements a CART regression tree.
//
// Splits minimize the weighted variance (squared error) of the children.
// Candidate thresholds are midpoints between consecutive distinct feature
// values, and the first best split in feature-sampling order wins ties, so a
// fixed random_state always grows the same tree.
package tree

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/YuminosukeSato/regbench/core/model"
	"github.com/YuminosukeSato/regbench/core/parallel"
	"github.com/YuminosukeSato/regbench/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

const parallelThreshold = 1000

// node is one entry of the flattened tree. Leaves have left == right == -1.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
	impurity  float64
	nSamples  int
}

func (n *node) isLeaf() bool {
	return n.left < 0
}

// DecisionTreeRegressor is a CART regressor with squared-error splits.
type DecisionTreeRegressor struct {
	state *model.StateManager

	// Hyperparameters
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	randomState     int64

	// Learned structure
	nodes []node
	depth int
}

// NewDecisionTreeRegressor creates a regressor with the given options.
// Defaults: unlimited depth, min_samples_split=2, min_samples_leaf=1,
// all features, random_state=0.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	dt := &DecisionTreeRegressor{
		state:           model.NewStateManager(),
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// builder carries the per-Fit scratch state.
type builder struct {
	dt  *DecisionTreeRegressor
	X   *mat.Dense
	y   []float64
	rng *rand.Rand
	// features is the scratch permutation used for feature sampling
	features []int
}

// Fit grows the tree on X, y.
func (dt *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	if err := dt.validate(); err != nil {
		return err
	}

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 || cols == 0 {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("DecisionTreeRegressor.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("DecisionTreeRegressor.Fit", "y must be a column vector")
	}

	b := &builder{
		dt:       dt,
		X:        mat.DenseCopyOf(X),
		y:        make([]float64, rows),
		rng:      rand.New(rand.NewPCG(uint64(dt.randomState), uint64(dt.randomState))),
		features: make([]int, cols),
	}
	for i := 0; i < rows; i++ {
		b.y[i] = y.At(i, 0)
	}
	if err := errors.CheckNumericalStability("DecisionTreeRegressor.Fit", b.y, 0); err != nil {
		return err
	}
	for j := range b.features {
		b.features[j] = j
	}

	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}

	dt.nodes = dt.nodes[:0]
	dt.depth = 0
	b.grow(indices, 0)

	dt.state.SetDimensions(cols, rows)
	dt.state.SetFitted()
	return nil
}

func (dt *DecisionTreeRegressor) validate() error {
	if dt.maxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be non-negative (0 means unlimited)", dt.maxDepth)
	}
	if dt.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", dt.minSamplesSplit)
	}
	if dt.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be at least 1", dt.minSamplesLeaf)
	}
	if dt.maxFeatures < 0 {
		return errors.NewValidationError("max_features", "must be non-negative (0 means all)", dt.maxFeatures)
	}
	return nil
}

// grow appends the subtree for indices and returns its node id.
func (b *builder) grow(indices []int, depth int) int {
	mean, sse := meanSSE(b.y, indices)
	id := len(b.dt.nodes)
	b.dt.nodes = append(b.dt.nodes, node{
		feature:  -1,
		left:     -1,
		right:    -1,
		value:    mean,
		impurity: sse / float64(len(indices)),
		nSamples: len(indices),
	})
	if depth > b.dt.depth {
		b.dt.depth = depth
	}

	if b.dt.maxDepth > 0 && depth >= b.dt.maxDepth {
		return id
	}
	if len(indices) < b.dt.minSamplesSplit || len(indices) < 2*b.dt.minSamplesLeaf {
		return id
	}
	if sse <= 1e-12*float64(len(indices)) {
		return id
	}

	feature, threshold, ok := b.bestSplit(indices, sse)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range indices {
		if b.X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)

	n := &b.dt.nodes[id]
	n.feature = feature
	n.threshold = threshold
	n.left = l
	n.right = r
	return id
}

// bestSplit scans the sampled features for the split with the largest
// reduction of squared error.
func (b *builder) bestSplit(indices []int, parentSSE float64) (int, float64, bool) {
	nFeatures := len(b.features)
	k := nFeatures
	if b.dt.maxFeatures > 0 && b.dt.maxFeatures < nFeatures {
		k = b.dt.maxFeatures
		// 部分 Fisher-Yates で先頭 k 個を選ぶ
		for j := 0; j < k; j++ {
			s := j + b.rng.IntN(nFeatures-j)
			b.features[j], b.features[s] = b.features[s], b.features[j]
		}
	}

	n := len(indices)
	minLeaf := b.dt.minSamplesLeaf
	sorted := make([]int, n)

	bestGain := 0.0
	bestFeature := -1
	bestThreshold := 0.0

	var total, totalSq float64
	for _, i := range indices {
		total += b.y[i]
		totalSq += b.y[i] * b.y[i]
	}

	for _, f := range b.features[:k] {
		copy(sorted, indices)
		sort.SliceStable(sorted, func(a, c int) bool {
			return b.X.At(sorted[a], f) < b.X.At(sorted[c], f)
		})

		var leftSum, leftSq float64
		for pos := 0; pos < n-1; pos++ {
			yi := b.y[sorted[pos]]
			leftSum += yi
			leftSq += yi * yi

			nLeft := pos + 1
			nRight := n - nLeft
			if nLeft < minLeaf || nRight < minLeaf {
				continue
			}
			cur := b.X.At(sorted[pos], f)
			next := b.X.At(sorted[pos+1], f)
			if next <= cur {
				continue
			}

			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			childSSE := (leftSq - leftSum*leftSum/float64(nLeft)) +
				(rightSq - rightSum*rightSum/float64(nRight))
			gain := parentSSE - childSSE
			if gain > bestGain+1e-12 {
				bestGain = gain
				bestFeature = f
				bestThreshold = cur + (next-cur)/2
				// 中点が丸めで next に一致したら cur を使う
				if bestThreshold >= next {
					bestThreshold = cur
				}
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func meanSSE(y []float64, indices []int) (float64, float64) {
	var mean float64
	for _, i := range indices {
		mean += y[i]
	}
	mean /= float64(len(indices))
	var sse float64
	for _, i := range indices {
		d := y[i] - mean
		sse += d * d
	}
	return mean, sse
}

// apply returns the leaf id reached by row i of X.
func (dt *DecisionTreeRegressor) apply(X mat.Matrix, i int) int {
	id := 0
	for {
		n := &dt.nodes[id]
		if n.isLeaf() {
			return id
		}
		if X.At(i, n.feature) <= n.threshold {
			id = n.left
		} else {
			id = n.right
		}
	}
}

func (dt *DecisionTreeRegressor) checkInput(method string, X mat.Matrix) error {
	if err := dt.state.RequireFitted("DecisionTreeRegressor", method); err != nil {
		return err
	}
	_, cols := X.Dims()
	return dt.state.RequireFeatures("DecisionTreeRegressor."+method, cols)
}

// Predict returns the leaf mean for each row of X.
func (dt *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.checkInput("Predict", X); err != nil {
		return nil, err
	}
	rows, _ := X.Dims()
	predictions := mat.NewDense(rows, 1, nil)
	parallel.Chunks(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			predictions.Set(i, 0, dt.nodes[dt.apply(X, i)].value)
		}
	})
	return predictions, nil
}

// NodeCount returns the number of nodes (internal and leaves).
func (dt *DecisionTreeRegressor) NodeCount() int {
	return len(dt.nodes)
}

// NLeaves returns the number of leaves.
func (dt *DecisionTreeRegressor) NLeaves() int {
	n := 0
	for i := range dt.nodes {
		if dt.nodes[i].isLeaf() {
			n++
		}
	}
	return n
}

// Depth returns the depth of the fitted tree (a single leaf has depth 0).
func (dt *DecisionTreeRegressor) Depth() int {
	return dt.depth
}

// IsFitted returns whether the model has been fitted
func (dt *DecisionTreeRegressor) IsFitted() bool {
	return dt.state.IsFitted()
}

// Rules renders the fitted tree as indented if/else rules. Each leaf shows
// its value and the number of rows of X that reach it; names overrides the
// default xj feature names.
//
//	|--- x0 <= 4.5
//	|   |--- value: 0 (samples: 5)
//	|--- x0 >  4.5
//	|   |--- value: 10 (samples: 5)
func (dt *DecisionTreeRegressor) Rules(X mat.Matrix, names []string) (string, error) {
	if err := dt.checkInput("Rules", X); err != nil {
		return "", err
	}

	counts := make([]int, len(dt.nodes))
	rows, _ := X.Dims()
	for i := 0; i < rows; i++ {
		counts[dt.apply(X, i)]++
	}

	name := func(f int) string {
		if f < len(names) {
			return names[f]
		}
		return fmt.Sprintf("x%d", f)
	}

	var sb strings.Builder
	var walk func(id, depth int)
	walk = func(id, depth int) {
		prefix := strings.Repeat("|   ", depth) + "|--- "
		n := &dt.nodes[id]
		if n.isLeaf() {
			fmt.Fprintf(&sb, "%svalue: %s (samples: %d)\n", prefix, formatFloat(n.value), counts[id])
			return
		}
		fmt.Fprintf(&sb, "%s%s <= %s\n", prefix, name(n.feature), formatFloat(n.threshold))
		walk(n.left, depth+1)
		fmt.Fprintf(&sb, "%s%s >  %s\n", prefix, name(n.feature), formatFloat(n.threshold))
		walk(n.right, depth+1)
	}
	walk(0, 0)
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

func formatFloat(v float64) string {
	if v == 0 {
		// -0 を 0 として表示
		v = math.Abs(v)
	}
	return fmt.Sprintf("%.6g", v)
}

// SetRandomState sets the seed used for feature sampling.
func (dt *DecisionTreeRegressor) SetRandomState(seed int64) {
	dt.randomState = seed
}

// GetParams returns the hyperparameters.
func (dt *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         dt.maxDepth,
		"min_samples_split": dt.minSamplesSplit,
		"min_samples_leaf":  dt.minSamplesLeaf,
		"max_features":      dt.maxFeatures,
		"random_state":      dt.randomState,
	}
}

// SetParams sets hyperparameters by name.
func (dt *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	for name, value := range params {
		var err error
		switch name {
		case "max_depth":
			dt.maxDepth, err = model.ParamInt(name, value)
		case "min_samples_split":
			dt.minSamplesSplit, err = model.ParamInt(name, value)
		case "min_samples_leaf":
			dt.minSamplesLeaf, err = model.ParamInt(name, value)
		case "max_features":
			dt.maxFeatures, err = model.ParamInt(name, value)
		case "random_state":
			var seed int
			if seed, err = model.ParamInt(name, value); err == nil {
				dt.randomState = int64(seed)
			}
		default:
			err = model.UnknownParam("DecisionTreeRegressor", name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Clone returns an unfitted copy with the same hyperparameters.
func (dt *DecisionTreeRegressor) Clone() model.Estimator {
	return NewDecisionTreeRegressor(
		WithMaxDepth(dt.maxDepth),
		WithMinSamplesSplit(dt.minSamplesSplit),
		WithMinSamplesLeaf(dt.minSamplesLeaf),
		WithMaxFeatures(dt.maxFeatures),
		WithRandomState(dt.randomState),
	)
}

func (dt *DecisionTreeRegressor) String() string {
	return fmt.Sprintf("DecisionTreeRegressor(max_depth=%d, min_samples_split=%d, min_samples_leaf=%d, max_features=%d)",
		dt.maxDepth, dt.minSamplesSplit, dt.minSamplesLeaf, dt.maxFeatures)
}
