package model_selection

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Trial is the record of one candidate evaluated on one fold in one
// successive-halving iteration.
type Trial struct {
	Row        int                    `json:"row"`
	Candidate  int                    `json:"candidate"`
	Fold       int                    `json:"fold"`
	Iteration  int                    `json:"iter"`
	NResources int                    `json:"n_resources"`
	Params     map[string]interface{} `json:"params"`
	TrainScore float64                `json:"train_score"`
	TestScore  float64                `json:"test_score"`
	FitTime    float64                `json:"fit_time"`
	ScoreTime  float64                `json:"score_time"`
	Failed     bool                   `json:"failed"`
}

// CVResults is the search trace in the column layout of scikit-learn's
// cv_results_: one row per (candidate, iteration), one column per field.
type CVResults struct {
	NSplits int

	Params           []map[string]interface{}
	Iter             []int
	NResources       []int
	SplitTestScores  [][]float64
	SplitTrainScores [][]float64
	MeanTestScore    []float64
	StdTestScore     []float64
	MeanTrainScore   []float64
	StdTrainScore    []float64
	MeanFitTime      []float64
	StdFitTime       []float64
	MeanScoreTime    []float64
	StdScoreTime     []float64
	RankTestScore    []int

	fitTimes   [][]float64
	scoreTimes [][]float64
}

func newCVResults(nSplits int) *CVResults {
	return &CVResults{NSplits: nSplits}
}

// Len returns the number of rows.
func (r *CVResults) Len() int {
	return len(r.Params)
}

func (r *CVResults) addRow(params map[string]interface{}, itr, nResources int) int {
	r.Params = append(r.Params, params)
	r.Iter = append(r.Iter, itr)
	r.NResources = append(r.NResources, nResources)
	r.SplitTestScores = append(r.SplitTestScores, make([]float64, r.NSplits))
	r.SplitTrainScores = append(r.SplitTrainScores, make([]float64, r.NSplits))
	r.fitTimes = append(r.fitTimes, make([]float64, r.NSplits))
	r.scoreTimes = append(r.scoreTimes, make([]float64, r.NSplits))
	r.MeanTestScore = append(r.MeanTestScore, 0)
	r.StdTestScore = append(r.StdTestScore, 0)
	r.MeanTrainScore = append(r.MeanTrainScore, 0)
	r.StdTrainScore = append(r.StdTrainScore, 0)
	r.MeanFitTime = append(r.MeanFitTime, 0)
	r.StdFitTime = append(r.StdFitTime, 0)
	r.MeanScoreTime = append(r.MeanScoreTime, 0)
	r.StdScoreTime = append(r.StdScoreTime, 0)
	return len(r.Params) - 1
}

func (r *CVResults) setSplit(row, fold int, tr Trial) {
	r.SplitTestScores[row][fold] = tr.TestScore
	r.SplitTrainScores[row][fold] = tr.TrainScore
	r.fitTimes[row][fold] = tr.FitTime
	r.scoreTimes[row][fold] = tr.ScoreTime
}

func (r *CVResults) finalizeRow(row int) {
	r.MeanTestScore[row], r.StdTestScore[row] = stat.PopMeanStdDev(r.SplitTestScores[row], nil)
	r.MeanTrainScore[row], r.StdTrainScore[row] = stat.PopMeanStdDev(r.SplitTrainScores[row], nil)
	r.MeanFitTime[row], r.StdFitTime[row] = stat.PopMeanStdDev(r.fitTimes[row], nil)
	r.MeanScoreTime[row], r.StdScoreTime[row] = stat.PopMeanStdDev(r.scoreTimes[row], nil)
}

// rank assigns 1 to the best mean test score, shares the minimum rank among
// ties and puts NaN scores last.
func (r *CVResults) rank() {
	n := r.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return better(r.MeanTestScore[order[a]], r.MeanTestScore[order[b]])
	})

	r.RankTestScore = make([]int, n)
	for pos, row := range order {
		if pos > 0 {
			prev := order[pos-1]
			if sameScore(r.MeanTestScore[prev], r.MeanTestScore[row]) {
				r.RankTestScore[row] = r.RankTestScore[prev]
				continue
			}
		}
		r.RankTestScore[row] = pos + 1
	}
}

func sameScore(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// ParamNames returns every parameter name seen in any row, sorted.
func (r *CVResults) ParamNames() []string {
	seen := map[string]struct{}{}
	for _, p := range r.Params {
		for k := range p {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Map renders the results as a column dictionary keyed like scikit-learn's
// cv_results_ (params, param_<name>, split<k>_test_score, mean_test_score,
// rank_test_score, iter, n_resources, ...). Missing parameter values are nil.
func (r *CVResults) Map() map[string]interface{} {
	n := r.Len()
	out := map[string]interface{}{
		"params":           r.Params,
		"iter":             r.Iter,
		"n_resources":      r.NResources,
		"mean_test_score":  r.MeanTestScore,
		"std_test_score":   r.StdTestScore,
		"mean_train_score": r.MeanTrainScore,
		"std_train_score":  r.StdTrainScore,
		"mean_fit_time":    r.MeanFitTime,
		"std_fit_time":     r.StdFitTime,
		"mean_score_time":  r.MeanScoreTime,
		"std_score_time":   r.StdScoreTime,
		"rank_test_score":  r.RankTestScore,
	}

	for _, name := range r.ParamNames() {
		col := make([]interface{}, n)
		for i, p := range r.Params {
			col[i] = p[name]
		}
		out["param_"+name] = col
	}

	for k := 0; k < r.NSplits; k++ {
		test := make([]float64, n)
		train := make([]float64, n)
		for i := 0; i < n; i++ {
			test[i] = r.SplitTestScores[i][k]
			train[i] = r.SplitTrainScores[i][k]
		}
		out[fmt.Sprintf("split%d_test_score", k)] = test
		out[fmt.Sprintf("split%d_train_score", k)] = train
	}
	return out
}
