// Package ensemble implements a bootstrap-aggregated random forest on top of
// the tree package. Members are grown independently on resampled data with
// per-split feature subsampling and aggregated by majority vote.
package ensemble

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo/core/model"
	"github.com/YuminosukeSato/scigo/core/parallel"
	"github.com/YuminosukeSato/scigo/pkg/errors"
	"github.com/YuminosukeSato/scigo/pkg/log"
	"github.com/YuminosukeSato/scigo/tree"
)

// RandomForestClassifier is an ensemble of independently grown decision
// trees. Each member fits a bootstrap resample of the training data under a
// seed derived from the forest seed and the member index, so fits are
// reproducible regardless of parallel scheduling.
type RandomForestClassifier struct {
	state *model.StateManager

	// Hyperparameters shared by all members
	nEstimators     int
	criterionName   string
	maxDepth        int
	minSamplesSplit int
	minGain         float64
	maxFeatures     tree.MaxFeatures
	maxCandidates   int
	featureKinds    []tree.FeatureKind
	randomState     int64

	// Fitted state
	trees       []*tree.Classifier
	importances []float64
}

// Option configures a RandomForestClassifier.
type Option func(*RandomForestClassifier)

// WithNEstimators sets the number of trees in the forest.
func WithNEstimators(n int) Option {
	return func(f *RandomForestClassifier) { f.nEstimators = n }
}

// WithCriterion selects the impurity criterion for all members.
func WithCriterion(name string) Option {
	return func(f *RandomForestClassifier) { f.criterionName = name }
}

// WithMaxDepth limits member depth; negative means unlimited.
func WithMaxDepth(depth int) Option {
	return func(f *RandomForestClassifier) { f.maxDepth = depth }
}

// WithMinSamplesSplit sets the member minimum split size.
func WithMinSamplesSplit(n int) Option {
	return func(f *RandomForestClassifier) { f.minSamplesSplit = n }
}

// WithMinImpurityDecrease sets the member pruning threshold.
func WithMinImpurityDecrease(gain float64) Option {
	return func(f *RandomForestClassifier) { f.minGain = gain }
}

// WithMaxFeatures sets the per-split feature subsampling policy for all
// members. The forest default is sqrt, decorrelating members.
func WithMaxFeatures(mf tree.MaxFeatures) Option {
	return func(f *RandomForestClassifier) { f.maxFeatures = mf }
}

// WithMaxSplitCandidates overrides the per-feature candidate cap.
func WithMaxSplitCandidates(n int) Option {
	return func(f *RandomForestClassifier) { f.maxCandidates = n }
}

// WithFeatureKinds tags each column Ordered or Categorical for all members.
func WithFeatureKinds(kinds []tree.FeatureKind) Option {
	return func(f *RandomForestClassifier) {
		f.featureKinds = append([]tree.FeatureKind(nil), kinds...)
	}
}

// WithRandomState seeds the forest. Member seeds and bootstrap draws derive
// from it deterministically.
func WithRandomState(seed int64) Option {
	return func(f *RandomForestClassifier) { f.randomState = seed }
}

// NewRandomForestClassifier returns a forest. With no options it is
// equivalent to:
//
//	NewRandomForestClassifier(WithNEstimators(10), WithCriterion("gini"),
//	    WithMaxDepth(-1), WithMinSamplesSplit(2),
//	    WithMaxFeatures(tree.MaxFeaturesSqrt()))
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	f := &RandomForestClassifier{
		state:           model.NewStateManager(),
		nEstimators:     10,
		criterionName:   tree.CriterionGini,
		maxDepth:        -1,
		minSamplesSplit: 2,
		minGain:         0,
		maxFeatures:     tree.MaxFeaturesSqrt(),
		maxCandidates:   tree.DefaultMaxSplitCandidates,
		randomState:     0,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// newMember builds the i-th member tree with the shared hyperparameters and a
// seed derived from the forest seed and the member index.
func (f *RandomForestClassifier) newMember(i int) *tree.Classifier {
	opts := []tree.Option{
		tree.WithCriterion(f.criterionName),
		tree.WithMaxDepth(f.maxDepth),
		tree.WithMinSamplesSplit(f.minSamplesSplit),
		tree.WithMinImpurityDecrease(f.minGain),
		tree.WithMaxFeatures(f.maxFeatures),
		tree.WithMaxSplitCandidates(f.maxCandidates),
		tree.WithRandomState(f.randomState + int64(i) + 1),
	}
	if f.featureKinds != nil {
		opts = append(opts, tree.WithFeatureKinds(f.featureKinds))
	}
	return tree.NewClassifier(opts...)
}

// Fit grows all members in parallel. Any member failure aborts the fit with
// that error; no partially fitted forest is exposed.
func (f *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "ensemble.Fit")
	}
	if yRows, _ := y.Dims(); yRows != rows {
		return errors.NewDimensionError("ensemble.Fit", rows, yRows, 0)
	}
	if f.nEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be positive", f.nEstimators)
	}

	logger := log.GetLoggerWithName("ensemble.forest")
	logger.Debug("fitting forest", "n_estimators", f.nEstimators, "rows", rows, "features", cols)

	members := make([]*tree.Classifier, f.nEstimators)
	err := parallel.ForEach(f.nEstimators, "ensemble.Fit", func(i int) error {
		// Each member owns a private source; draws are independent of
		// scheduling order.
		rng := rand.New(rand.NewPCG(uint64(f.randomState), uint64(i)))
		Xb, yb := bootstrapSample(X, y, rng)

		member := f.newMember(i)
		if err := member.Fit(Xb, yb); err != nil {
			return errors.Wrapf(err, "member %d", i)
		}
		members[i] = member
		return nil
	})
	if err != nil {
		return err
	}

	f.trees = members

	f.importances = make([]float64, cols)
	for _, member := range f.trees {
		floats.Add(f.importances, member.GetFeatureImportances())
	}
	if total := floats.Sum(f.importances); total > 0 {
		floats.Scale(1/total, f.importances)
	}

	f.state.SetDimensions(rows, cols)
	f.state.SetFitted()
	return nil
}

// bootstrapSample draws a with-replacement resample of the same size.
func bootstrapSample(X, y mat.Matrix, rng *rand.Rand) (*mat.Dense, *mat.Dense) {
	rows, cols := X.Dims()
	Xb := mat.NewDense(rows, cols, nil)
	yb := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		src := rng.IntN(rows)
		for j := 0; j < cols; j++ {
			Xb.Set(i, j, X.At(src, j))
		}
		yb.Set(i, 0, y.At(src, 0))
	}
	return Xb, yb
}

// Predict returns the per-row majority vote across members, ties broken by
// smallest label id.
func (f *RandomForestClassifier) Predict(X mat.Matrix) (*mat.Dense, error) {
	if err := f.state.RequireFitted("RandomForestClassifier", "Predict"); err != nil {
		return nil, err
	}
	if err := f.state.ValidateX("ensemble.Predict", X); err != nil {
		return nil, err
	}

	rows, _ := X.Dims()
	votes := make([]map[int]int, rows)
	for i := range votes {
		votes[i] = make(map[int]int)
	}

	for _, member := range f.trees {
		pred, err := member.Predict(X)
		if err != nil {
			return nil, err
		}
		for i := 0; i < rows; i++ {
			votes[i][int(pred.At(i, 0))]++
		}
	}

	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		best, bestCount := -1, -1
		for label, count := range votes[i] {
			if count > bestCount || (count == bestCount && label < best) {
				best, bestCount = label, count
			}
		}
		out.Set(i, 0, float64(best))
	}
	return out, nil
}

// Score returns the mean accuracy of Predict(X) against y.
func (f *RandomForestClassifier) Score(X, y mat.Matrix) float64 {
	preds, err := f.Predict(X)
	if err != nil {
		return 0
	}
	rows, _ := y.Dims()
	if rows == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < rows; i++ {
		if preds.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(rows)
}

// GetFeatureImportances returns the normalized sum of member importances.
func (f *RandomForestClassifier) GetFeatureImportances() []float64 {
	return append([]float64(nil), f.importances...)
}

// Trees returns the fitted members for read-only inspection.
func (f *RandomForestClassifier) Trees() []*tree.Classifier {
	return f.trees
}

// GetDepth returns the maximum depth over members.
func (f *RandomForestClassifier) GetDepth() int {
	maxDepth := 0
	for _, member := range f.trees {
		if d := member.GetDepth(); d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

// CountNodes returns the total node count over members.
func (f *RandomForestClassifier) CountNodes() int {
	total := 0
	for _, member := range f.trees {
		total += member.CountNodes()
	}
	return total
}

// IsFitted reports whether Fit has completed.
func (f *RandomForestClassifier) IsFitted() bool {
	return f.state.IsFitted()
}

// GetParams returns the hyperparameters in scikit-learn naming.
func (f *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":          f.nEstimators,
		"criterion":             f.criterionName,
		"max_depth":             f.maxDepth,
		"min_samples_split":     f.minSamplesSplit,
		"min_impurity_decrease": f.minGain,
		"max_features":          f.maxFeatures.Param(),
		"max_split_candidates":  f.maxCandidates,
		"random_state":          f.randomState,
	}
}

// SetParams updates hyperparameters from a scikit-learn style map. Tree
// parameter names apply to every member. Unknown names and mistyped values
// fail with a ValidationError.
func (f *RandomForestClassifier) SetParams(params map[string]interface{}) error {
	for name, value := range params {
		switch name {
		case "n_estimators":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError(name, "must be an integer", value)
			}
			f.nEstimators = n
		case "criterion":
			s, ok := value.(string)
			if !ok {
				return errors.NewValidationError(name, "must be a string", value)
			}
			f.criterionName = s
		case "max_depth":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError(name, "must be an integer", value)
			}
			f.maxDepth = n
		case "min_samples_split":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError(name, "must be an integer", value)
			}
			f.minSamplesSplit = n
		case "min_impurity_decrease":
			x, ok := value.(float64)
			if !ok {
				return errors.NewValidationError(name, "must be a number", value)
			}
			f.minGain = x
		case "max_features":
			mf, err := tree.ParseMaxFeatures(value)
			if err != nil {
				return err
			}
			f.maxFeatures = mf
		case "max_split_candidates":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError(name, "must be an integer", value)
			}
			f.maxCandidates = n
		case "random_state":
			n, ok := value.(int)
			if !ok {
				return errors.NewValidationError(name, "must be an integer", value)
			}
			f.randomState = int64(n)
		default:
			return errors.NewValidationError(name, "unknown parameter", value)
		}
	}
	return nil
}
