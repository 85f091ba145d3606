package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FeatureKind tags a column as ordered (numeric, split by threshold) or
// categorical (split by one-category-vs-rest). The tagging is supplied by the
// caller and immutable for the lifetime of a fit.
type FeatureKind int

const (
	// Ordered features are comparable with <= and split by threshold.
	Ordered FeatureKind = iota
	// Categorical features are only comparable with == and split by category.
	Categorical
)

// DefaultMaxSplitCandidates caps the number of candidate thresholds (ordered
// features) or candidate categories (categorical features) examined per
// feature. Overridable per-tree with WithMaxSplitCandidates.
const DefaultMaxSplitCandidates = 10

// split describes the best binary partition found for one feature.
type split struct {
	feature int
	kind    FeatureKind
	// value is the threshold (ordered: left iff v <= value) or the category
	// (categorical: left iff v == value).
	value float64
	// score is the size-weighted post-split impurity.
	score float64
}

// findBestSplit evaluates every feature in features independently and returns
// the split with the globally lowest weighted impurity, keeping the first
// encountered on ties. A candidate is only considered when both sides are
// non-empty, its score strictly improves on the running best, and its gain
// relative to parentImpurity is non-negative. Returns ok=false when no
// feature yields a valid candidate.
func (t *Classifier) findBestSplit(X mat.Matrix, y []int, rows []int, features []int, parentImpurity float64) (split, bool) {
	best := split{score: math.MaxFloat64}
	found := false

	for _, f := range features {
		kind := t.featureKind(f)
		var candidates []float64
		if kind == Ordered {
			candidates = t.thresholdCandidates(X, rows, f)
		} else {
			candidates = t.categoryCandidates(X, rows, f)
		}

		for _, v := range candidates {
			score, valid := t.partitionScore(X, y, rows, f, kind, v)
			if !valid {
				continue
			}
			if score < best.score && parentImpurity-score >= 0 {
				best = split{feature: f, kind: kind, value: v, score: score}
				found = true
			}
		}
	}

	return best, found
}

// thresholdCandidates returns the distinct values of an ordered column,
// reduced to the values at evenly spaced percentiles (0, 100/9, ..., 100)
// when there are more distinct values than the candidate cap.
func (t *Classifier) thresholdCandidates(X mat.Matrix, rows []int, feature int) []float64 {
	distinct := distinctValues(X, rows, feature)
	sort.Float64s(distinct)

	limit := t.maxCandidates
	if len(distinct) <= limit {
		return distinct
	}

	candidates := make([]float64, 0, limit)
	for i := 0; i < limit; i++ {
		q := float64(i) / float64(limit-1)
		v := stat.Quantile(q, stat.Empirical, distinct, nil)
		// Deduplicate; quantiles of a short distinct set can repeat.
		if len(candidates) == 0 || candidates[len(candidates)-1] != v {
			candidates = append(candidates, v)
		}
	}
	return candidates
}

// categoryCandidates returns the distinct values of a categorical column,
// keeping only the most frequent ones when there are more than the candidate
// cap. Frequency ties break toward the smaller encoded value so the candidate
// set is deterministic.
func (t *Classifier) categoryCandidates(X mat.Matrix, rows []int, feature int) []float64 {
	counts := make(map[float64]int)
	for _, r := range rows {
		counts[X.At(r, feature)]++
	}

	values := make([]float64, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Float64s(values)

	if len(values) <= t.maxCandidates {
		return values
	}

	sort.SliceStable(values, func(i, j int) bool {
		return counts[values[i]] > counts[values[j]]
	})
	top := values[:t.maxCandidates]
	sort.Float64s(top)
	return top
}

// partitionScore computes the size-weighted impurity of the binary partition
// induced by (feature, kind, value) over rows. valid=false marks a degenerate
// partition with an empty side, which split search skips.
func (t *Classifier) partitionScore(X mat.Matrix, y []int, rows []int, feature int, kind FeatureKind, value float64) (score float64, valid bool) {
	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))
	for _, r := range rows {
		if goesLeft(X.At(r, feature), kind, value) {
			left = append(left, y[r])
		} else {
			right = append(right, y[r])
		}
	}

	if len(left) == 0 || len(right) == 0 {
		return 0, false
	}

	n := float64(len(rows))
	score = (float64(len(left))*t.criterion.Impurity(left) +
		float64(len(right))*t.criterion.Impurity(right)) / n
	return score, true
}

// goesLeft reports whether a feature value falls on the left side of a split.
func goesLeft(v float64, kind FeatureKind, value float64) bool {
	if kind == Ordered {
		return v <= value
	}
	return v == value
}

func distinctValues(X mat.Matrix, rows []int, feature int) []float64 {
	seen := make(map[float64]struct{}, len(rows))
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		v := X.At(r, feature)
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
