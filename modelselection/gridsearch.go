package modelselection

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo/core/model"
	"github.com/YuminosukeSato/scigo/core/parallel"
	"github.com/YuminosukeSato/scigo/pkg/errors"
	"github.com/YuminosukeSato/scigo/pkg/log"
)

// ParamGrid maps a hyperparameter name to its candidate values. The search
// covers the full Cartesian product.
type ParamGrid map[string][]interface{}

// Params is one cell of the grid: an immutable name-to-value combination.
type Params map[string]interface{}

// Estimator is the model surface grid search needs: fit, predict, and
// scikit-learn style parameter injection. Both tree.Classifier and
// ensemble.RandomForestClassifier satisfy it.
type Estimator interface {
	model.Model
	SetParams(params map[string]interface{}) error
	IsFitted() bool
}

// SearchResult aggregates the k-fold evaluation of one combination.
type SearchResult struct {
	Params Params

	// MeanAccuracy is the mean validation accuracy across folds.
	MeanAccuracy float64

	// MeanDepth and MeanNodeCount are complexity measures averaged across
	// folds, used as tie-breaks; zero when the model exposes no structure.
	MeanDepth     float64
	MeanNodeCount float64
}

// GridSearchCV selects hyperparameters by exhaustive grid search under k-fold
// cross-validation, then refits the winner on the full training data.
//
// Selection policy: among combinations whose mean accuracy reaches
// AcceptableAccuracy, the winner has the highest accuracy, then the lowest
// mean depth, then the lowest mean node count. When no combination reaches
// the threshold the search falls back to the globally best accuracy (first
// found), sets Fallback, and raises a FallbackWarning.
type GridSearchCV struct {
	newEstimator func() Estimator
	grid         ParamGrid

	nSplits            int
	shuffle            bool
	randomSeed         int64
	acceptableAccuracy float64

	// Results of the last Fit.
	Results       []SearchResult
	BestParams    Params
	BestResult    SearchResult
	BestEstimator Estimator
	Fallback      bool

	fitted bool
}

// SearchOption configures a GridSearchCV.
type SearchOption func(*GridSearchCV)

// WithFolds sets the fold count k (default 5).
func WithFolds(k int) SearchOption {
	return func(g *GridSearchCV) { g.nSplits = k }
}

// WithAcceptableAccuracy sets the accuracy a combination must reach to be
// eligible for the complexity tie-breaks (default 0: every combination is
// eligible).
func WithAcceptableAccuracy(threshold float64) SearchOption {
	return func(g *GridSearchCV) { g.acceptableAccuracy = threshold }
}

// WithShuffle enables the deterministic pre-shuffle of the k-fold partition.
func WithShuffle(shuffle bool) SearchOption {
	return func(g *GridSearchCV) { g.shuffle = shuffle }
}

// WithRandomState seeds the k-fold shuffle.
func WithRandomState(seed int64) SearchOption {
	return func(g *GridSearchCV) { g.randomSeed = seed }
}

// NewGridSearchCV creates a grid search over the given grid. newEstimator
// must return a fresh unfitted model carrying any parameters held fixed
// across the grid; the search overrides the grid's parameters per candidate.
func NewGridSearchCV(newEstimator func() Estimator, grid ParamGrid, opts ...SearchOption) *GridSearchCV {
	g := &GridSearchCV{
		newEstimator: newEstimator,
		grid:         grid,
		nSplits:      5,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Fit evaluates every combination of the grid with k-fold cross-validation
// over X and y, selects the winner, and refits it on the full data. All
// (combination × fold) evaluations run on the worker pool; any evaluation
// failure aborts the search and discards partial results.
func (g *GridSearchCV) Fit(X, y mat.Matrix) error {
	rows, _ := X.Dims()
	if yRows, _ := y.Dims(); yRows != rows {
		return errors.NewDimensionError("GridSearchCV.Fit", rows, yRows, 0)
	}

	combos, err := enumerate(g.grid)
	if err != nil {
		return err
	}

	folds, err := NewKFold(g.nSplits, g.shuffle, g.randomSeed).Split(rows)
	if err != nil {
		return err
	}

	logger := log.GetLoggerWithName("modelselection.gridsearch")
	logger.Info("grid search started",
		"combinations", len(combos), "folds", len(folds), "rows", rows)

	nTasks := len(combos) * len(folds)
	accuracy := make([]float64, nTasks)
	depth := make([]float64, nTasks)
	nodes := make([]float64, nTasks)

	err = parallel.ForEach(nTasks, "GridSearchCV.Fit", func(task int) error {
		combo := combos[task/len(folds)]
		fold := folds[task%len(folds)]

		est := g.newEstimator()
		if err := est.SetParams(combo); err != nil {
			return err
		}

		XTrain, yTrain := subsetRows(X, y, fold.Train)
		XVal, yVal := subsetRows(X, y, fold.Validation)

		if err := est.Fit(XTrain, yTrain); err != nil {
			return err
		}
		preds, err := est.Predict(XVal)
		if err != nil {
			return err
		}

		correct := 0
		for i := range fold.Validation {
			if preds.At(i, 0) == yVal.At(i, 0) {
				correct++
			}
		}
		accuracy[task] = float64(correct) / float64(len(fold.Validation))

		if in, ok := est.(model.Introspectable); ok {
			depth[task] = float64(in.GetDepth())
			nodes[task] = float64(in.CountNodes())
		}
		return nil
	})
	if err != nil {
		return err
	}

	results := make([]SearchResult, len(combos))
	k := float64(len(folds))
	for c := range combos {
		var accSum, depthSum, nodeSum float64
		for f := 0; f < len(folds); f++ {
			task := c*len(folds) + f
			accSum += accuracy[task]
			depthSum += depth[task]
			nodeSum += nodes[task]
		}
		results[c] = SearchResult{
			Params:        combos[c],
			MeanAccuracy:  accSum / k,
			MeanDepth:     depthSum / k,
			MeanNodeCount: nodeSum / k,
		}
	}

	best, fallback := g.selectWinner(results)

	if fallback {
		w := errors.NewFallbackWarning("GridSearchCV", g.acceptableAccuracy, results[best].MeanAccuracy)
		errors.Warn(w)
		logger.Warn("no combination reached the acceptance threshold; using best available",
			"threshold", g.acceptableAccuracy, "best_accuracy", results[best].MeanAccuracy)
	}

	final := g.newEstimator()
	if err := final.SetParams(results[best].Params); err != nil {
		return err
	}
	if err := final.Fit(X, y); err != nil {
		return err
	}

	g.Results = results
	g.BestResult = results[best]
	g.BestParams = results[best].Params
	g.BestEstimator = final
	g.Fallback = fallback
	g.fitted = true

	logger.Info("grid search finished",
		"best_accuracy", results[best].MeanAccuracy, "fallback", fallback)
	return nil
}

// IsFitted reports whether Fit has completed.
func (g *GridSearchCV) IsFitted() bool { return g.fitted }

// Predict delegates to the refitted best estimator.
func (g *GridSearchCV) Predict(X mat.Matrix) (*mat.Dense, error) {
	if !g.fitted {
		return nil, errors.NewNotFittedError("GridSearchCV", "Predict")
	}
	return g.BestEstimator.Predict(X)
}

// selectWinner applies the accuracy-then-complexity policy and reports
// whether the fallback path was taken.
func (g *GridSearchCV) selectWinner(results []SearchResult) (int, bool) {
	best := -1
	for i, r := range results {
		if r.MeanAccuracy < g.acceptableAccuracy {
			continue
		}
		if best < 0 || betterResult(r, results[best]) {
			best = i
		}
	}
	if best >= 0 {
		return best, false
	}

	// Fallback: globally highest accuracy, first found on ties.
	best = 0
	for i, r := range results {
		if r.MeanAccuracy > results[best].MeanAccuracy {
			best = i
		}
	}
	return best, true
}

// betterResult reports whether a strictly beats b under the selection policy
// (accuracy desc, mean depth asc, mean node count asc). Equal results do not
// beat each other, so the first encountered wins.
func betterResult(a, b SearchResult) bool {
	if a.MeanAccuracy != b.MeanAccuracy {
		return a.MeanAccuracy > b.MeanAccuracy
	}
	if a.MeanDepth != b.MeanDepth {
		return a.MeanDepth < b.MeanDepth
	}
	return a.MeanNodeCount < b.MeanNodeCount
}

// enumerate expands the grid into its Cartesian product, iterating parameter
// names in sorted order so the combination order is deterministic.
func enumerate(grid ParamGrid) ([]Params, error) {
	if len(grid) == 0 {
		return nil, errors.NewValidationError("param_grid", "must not be empty", grid)
	}

	names := make([]string, 0, len(grid))
	for name, values := range grid {
		if len(values) == 0 {
			return nil, errors.NewValidationError("param_grid",
				"parameter has no candidate values", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	combos := []Params{{}}
	for _, name := range names {
		next := make([]Params, 0, len(combos)*len(grid[name]))
		for _, combo := range combos {
			for _, value := range grid[name] {
				expanded := make(Params, len(combo)+1)
				for k, v := range combo {
					expanded[k] = v
				}
				expanded[name] = value
				next = append(next, expanded)
			}
		}
		combos = next
	}
	return combos, nil
}
