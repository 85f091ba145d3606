package tree

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo/core/model"
	"github.com/YuminosukeSato/scigo/pkg/errors"
)

// Node is one node of a fitted tree. Leaf nodes carry the predicted class,
// internal nodes carry the split and own both children. The exported fields
// form the read-only traversal view used for visualization; callers must not
// mutate them.
type Node struct {
	// Leaf marks a terminal node.
	Leaf bool

	// ClassID is the predicted class of a leaf: the majority label of the
	// training rows that reached it, ties broken by smallest label id.
	ClassID int

	// Feature is the column index an internal node splits on.
	Feature int

	// Kind is the split kind of an internal node.
	Kind FeatureKind

	// Threshold is the split value: rows go left iff value <= Threshold for
	// ordered splits, or value == Threshold for categorical splits.
	Threshold float64

	// Gain is the impurity decrease recorded when the node was created.
	Gain float64

	// Depth is the node's depth; children are exactly one deeper.
	Depth int

	Left  *Node
	Right *Node
}

// Classifier is a binary decision tree classifier grown by recursive
// best-first splitting. Integer labels beyond two classes work as a natural
// generalization. The zero value is not usable; construct with NewClassifier.
type Classifier struct {
	state *model.StateManager

	// Hyperparameters
	criterionName   string
	maxDepth        int // -1 means unlimited
	minSamplesSplit int
	minGain         float64 // pruning threshold on impurity decrease
	maxFeatures     MaxFeatures
	maxCandidates   int
	randomState     int64
	featureKinds    []FeatureKind // nil means all Ordered

	// Fitted state
	criterion   Criterion
	root        *Node
	importances []float64
	nFeatures   int
	rng         *rand.Rand
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithCriterion selects the impurity criterion by name: "gini", "entropy",
// "error" or "sqrt". Validated at Fit.
func WithCriterion(name string) Option {
	return func(t *Classifier) { t.criterionName = name }
}

// WithMaxDepth limits tree depth; a negative value means unlimited.
func WithMaxDepth(depth int) Option {
	return func(t *Classifier) { t.maxDepth = depth }
}

// WithMinSamplesSplit sets the minimum number of rows a node needs to be
// considered for splitting.
func WithMinSamplesSplit(n int) Option {
	return func(t *Classifier) { t.minSamplesSplit = n }
}

// WithMinImpurityDecrease sets the pruning threshold: a split whose impurity
// decrease falls below it is discarded and the node becomes a leaf.
func WithMinImpurityDecrease(gain float64) Option {
	return func(t *Classifier) { t.minGain = gain }
}

// WithMaxFeatures sets the per-split feature subsampling policy.
func WithMaxFeatures(mf MaxFeatures) Option {
	return func(t *Classifier) { t.maxFeatures = mf }
}

// WithMaxSplitCandidates overrides DefaultMaxSplitCandidates.
func WithMaxSplitCandidates(n int) Option {
	return func(t *Classifier) { t.maxCandidates = n }
}

// WithRandomState seeds the tree's private random source, used only for
// feature subsampling. Trees with equal seeds and data grow identically.
func WithRandomState(seed int64) Option {
	return func(t *Classifier) { t.randomState = seed }
}

// WithFeatureKinds tags each column Ordered or Categorical. Defaults to all
// Ordered. The slice is copied; its length must match the data at Fit.
func WithFeatureKinds(kinds []FeatureKind) Option {
	return func(t *Classifier) {
		t.featureKinds = append([]FeatureKind(nil), kinds...)
	}
}

// NewClassifier returns a decision tree classifier. With no options it is
// equivalent to:
//
//	NewClassifier(WithCriterion("gini"), WithMaxDepth(-1),
//	    WithMinSamplesSplit(2), WithMinImpurityDecrease(0))
func NewClassifier(opts ...Option) *Classifier {
	t := &Classifier{
		state:           model.NewStateManager(),
		criterionName:   CriterionGini,
		maxDepth:        -1,
		minSamplesSplit: 2,
		minGain:         0,
		maxCandidates:   DefaultMaxSplitCandidates,
		randomState:     0,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fit grows the tree on features X and integer labels y (an n×1 matrix).
// Configuration and shape errors surface before any growth work begins.
func (t *Classifier) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return errors.Wrap(errors.ErrEmptyData, "tree.Fit")
	}

	labels, err := labelVector("tree.Fit", y, rows)
	if err != nil {
		return err
	}

	if t.featureKinds != nil && len(t.featureKinds) != cols {
		return errors.NewDimensionError("tree.Fit: feature kinds", cols, len(t.featureKinds), 1)
	}

	t.criterion, err = NewCriterion(t.criterionName)
	if err != nil {
		return err
	}
	if _, err := t.maxFeatures.resolve(cols); err != nil {
		return err
	}
	if t.maxCandidates < 2 {
		return errors.NewValidationError("max_split_candidates", "must be at least 2", t.maxCandidates)
	}
	if t.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be at least 2", t.minSamplesSplit)
	}

	t.nFeatures = cols
	t.rng = rand.New(rand.NewPCG(uint64(t.randomState), uint64(t.randomState)))
	t.importances = make([]float64, cols)

	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}

	t.root = t.grow(X, labels, indices, 0)

	if total := floats.Sum(t.importances); total > 0 {
		floats.Scale(1/total, t.importances)
	}

	t.state.SetDimensions(rows, cols)
	t.state.SetFitted()
	return nil
}

// grow recursively builds the subtree over the given rows at the given depth.
// Stopping rules run in a fixed order: depth/size/purity, then split search
// over the active feature subset, then the pruning threshold.
func (t *Classifier) grow(X mat.Matrix, y []int, rows []int, depth int) *Node {
	if (t.maxDepth >= 0 && depth >= t.maxDepth) ||
		len(rows) < t.minSamplesSplit ||
		isPure(y, rows) {
		return t.leaf(y, rows, depth)
	}

	features := t.activeFeatures()
	parentImpurity := t.criterion.Impurity(subsetLabels(y, rows))

	best, ok := t.findBestSplit(X, y, rows, features, parentImpurity)
	if !ok {
		return t.leaf(y, rows, depth)
	}

	gain := parentImpurity - best.score
	if gain < t.minGain {
		// The computed split is discarded, not applied.
		return t.leaf(y, rows, depth)
	}

	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))
	for _, r := range rows {
		if goesLeft(X.At(r, best.feature), best.kind, best.value) {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	t.importances[best.feature] += gain

	node := &Node{
		Feature:   best.feature,
		Kind:      best.kind,
		Threshold: best.value,
		Gain:      gain,
		Depth:     depth,
	}
	node.Left = t.grow(X, y, left, depth+1)
	node.Right = t.grow(X, y, right, depth+1)
	return node
}

// activeFeatures draws the feature subset for one split, or returns all
// features when no subsampling policy is configured.
func (t *Classifier) activeFeatures() []int {
	k, _ := t.maxFeatures.resolve(t.nFeatures) // validated at Fit
	if k >= t.nFeatures {
		all := make([]int, t.nFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return t.rng.Perm(t.nFeatures)[:k]
}

func (t *Classifier) leaf(y []int, rows []int, depth int) *Node {
	return &Node{Leaf: true, ClassID: majorityLabel(y, rows), Depth: depth}
}

func (t *Classifier) featureKind(feature int) FeatureKind {
	if t.featureKinds == nil {
		return Ordered
	}
	return t.featureKinds[feature]
}

// Predict returns an n×1 matrix of predicted labels, walking each row from
// the root to a leaf.
func (t *Classifier) Predict(X mat.Matrix) (*mat.Dense, error) {
	if err := t.state.RequireFitted("Classifier", "Predict"); err != nil {
		return nil, err
	}
	if err := t.state.ValidateX("tree.Predict", X); err != nil {
		return nil, err
	}

	rows, _ := X.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		node := t.root
		for !node.Leaf {
			if goesLeft(X.At(i, node.Feature), node.Kind, node.Threshold) {
				node = node.Left
			} else {
				node = node.Right
			}
		}
		out.Set(i, 0, float64(node.ClassID))
	}
	return out, nil
}

// Score returns the mean accuracy of Predict(X) against y. An unfitted model
// or shape mismatch scores 0.
func (t *Classifier) Score(X, y mat.Matrix) float64 {
	preds, err := t.Predict(X)
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

// GetFeatureImportances returns the normalized per-feature impurity decrease,
// aligned to the input columns. All-zero when no split reduced impurity.
func (t *Classifier) GetFeatureImportances() []float64 {
	return append([]float64(nil), t.importances...)
}

// GetDepth returns the depth of the fitted tree; a lone leaf has depth 0.
func (t *Classifier) GetDepth() int {
	return maxNodeDepth(t.root)
}

// CountNodes returns the total number of nodes, internal and leaf.
func (t *Classifier) CountNodes() int {
	return countNodes(t.root)
}

// GetNLeaves returns the number of leaves.
func (t *Classifier) GetNLeaves() int {
	return countLeaves(t.root)
}

// Root returns the root of the fitted tree for read-only traversal, or nil
// before fitting.
func (t *Classifier) Root() *Node {
	return t.root
}

// IsFitted reports whether Fit has completed.
func (t *Classifier) IsFitted() bool {
	return t.state.IsFitted()
}

// GetParams returns the hyperparameters in scikit-learn naming.
func (t *Classifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":             t.criterionName,
		"max_depth":             t.maxDepth,
		"min_samples_split":     t.minSamplesSplit,
		"min_impurity_decrease": t.minGain,
		"max_features":          t.maxFeatures.Param(),
		"max_split_candidates":  t.maxCandidates,
		"random_state":          t.randomState,
	}
}

// SetParams updates hyperparameters from a scikit-learn style map. Unknown
// names and mistyped values fail with a ValidationError.
func (t *Classifier) SetParams(params map[string]interface{}) error {
	for name, value := range params {
		switch name {
		case "criterion":
			s, ok := value.(string)
			if !ok {
				return errors.NewValidationError(name, "must be a string", value)
			}
			t.criterionName = s
		case "max_depth":
			n, err := intParam(name, value)
			if err != nil {
				return err
			}
			t.maxDepth = n
		case "min_samples_split":
			n, err := intParam(name, value)
			if err != nil {
				return err
			}
			t.minSamplesSplit = n
		case "min_impurity_decrease":
			f, err := floatParam(name, value)
			if err != nil {
				return err
			}
			t.minGain = f
		case "max_features":
			mf, err := ParseMaxFeatures(value)
			if err != nil {
				return err
			}
			t.maxFeatures = mf
		case "max_split_candidates":
			n, err := intParam(name, value)
			if err != nil {
				return err
			}
			t.maxCandidates = n
		case "random_state":
			n, err := intParam(name, value)
			if err != nil {
				return err
			}
			t.randomState = int64(n)
		default:
			return errors.NewValidationError(name, "unknown parameter", value)
		}
	}
	return nil
}

// FeatureKinds returns a copy of the configured column tagging, or nil when
// all columns are ordered.
func (t *Classifier) FeatureKinds() []FeatureKind {
	return append([]FeatureKind(nil), t.featureKinds...)
}

// ---------------------------------------------------------------------------
// helpers shared with ensemble
// ---------------------------------------------------------------------------

// labelVector validates an n×1 matrix of non-negative integer labels and
// returns it as a slice.
func labelVector(op string, y mat.Matrix, rows int) ([]int, error) {
	yRows, yCols := y.Dims()
	if yRows != rows {
		return nil, errors.NewDimensionError(op, rows, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewValueError(op, "y must be a column vector (n×1 matrix)")
	}

	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		v := y.At(i, 0)
		if v < 0 || v != math.Trunc(v) {
			return nil, errors.NewValueError(op, "labels must be non-negative integers")
		}
		labels[i] = int(v)
	}
	return labels, nil
}

func subsetLabels(y []int, rows []int) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = y[r]
	}
	return out
}

func isPure(y []int, rows []int) bool {
	first := y[rows[0]]
	for _, r := range rows[1:] {
		if y[r] != first {
			return false
		}
	}
	return true
}

// majorityLabel returns the most frequent label, ties to the smallest id.
func majorityLabel(y []int, rows []int) int {
	counts := make(map[int]int)
	for _, r := range rows {
		counts[y[r]]++
	}

	best, bestCount := -1, -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < best) {
			best, bestCount = label, count
		}
	}
	return best
}

func maxNodeDepth(n *Node) int {
	if n == nil {
		return 0
	}
	if n.Leaf {
		return n.Depth
	}
	l := maxNodeDepth(n.Left)
	r := maxNodeDepth(n.Right)
	if l > r {
		return l
	}
	return r
}

func countNodes(n *Node) int {
	if n == nil {
		return 0
	}
	if n.Leaf {
		return 1
	}
	return 1 + countNodes(n.Left) + countNodes(n.Right)
}

func countLeaves(n *Node) int {
	if n == nil {
		return 0
	}
	if n.Leaf {
		return 1
	}
	return countLeaves(n.Left) + countLeaves(n.Right)
}

func intParam(name string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	}
	return 0, errors.NewValidationError(name, "must be an integer", value)
}

func floatParam(name string, value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, errors.NewValidationError(name, "must be a number", value)
}
