package tree

import (
	"sort"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func TestThresholdCandidates_FewDistinct(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{3, 1, 2, 3, 1, 2})
	clf := NewClassifier()
	clf.maxCandidates = DefaultMaxSplitCandidates

	got := clf.thresholdCandidates(X, allRows(6), 0)
	want := []float64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidates = %v, want %v", got, want)
		}
	}
}

func TestThresholdCandidates_CappedAtPercentiles(t *testing.T) {
	// 20 distinct values get reduced to the 10 evenly spaced percentiles.
	n := 20
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i)
	}
	X := mat.NewDense(n, 1, data)

	clf := NewClassifier()
	clf.maxCandidates = DefaultMaxSplitCandidates

	got := clf.thresholdCandidates(X, allRows(n), 0)
	if len(got) > DefaultMaxSplitCandidates {
		t.Fatalf("got %d candidates, cap is %d", len(got), DefaultMaxSplitCandidates)
	}
	if !sort.Float64sAreSorted(got) {
		t.Errorf("candidates not sorted: %v", got)
	}
	// Extremes survive the percentile selection.
	if got[0] != 0 || got[len(got)-1] != float64(n-1) {
		t.Errorf("candidates %v should span [0, %d]", got, n-1)
	}
	// All candidates are actual column values.
	for _, v := range got {
		if v != float64(int(v)) || v < 0 || v >= float64(n) {
			t.Errorf("candidate %v is not a column value", v)
		}
	}
	// Deduplication leaves strictly increasing values.
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Errorf("candidates contain duplicates: %v", got)
		}
	}
}

func TestCategoryCandidates_KeepsMostFrequent(t *testing.T) {
	// Categories 0 and 1 appear once, categories 2..11 twice; the cap keeps
	// the ten frequent ones.
	var data []float64
	data = append(data, 0, 1)
	for c := 2; c <= 11; c++ {
		data = append(data, float64(c), float64(c))
	}
	X := mat.NewDense(len(data), 1, data)

	clf := NewClassifier()
	clf.maxCandidates = DefaultMaxSplitCandidates

	got := clf.categoryCandidates(X, allRows(len(data)), 0)
	if len(got) != DefaultMaxSplitCandidates {
		t.Fatalf("got %d candidates, want %d", len(got), DefaultMaxSplitCandidates)
	}
	for _, v := range got {
		if v == 0 || v == 1 {
			t.Errorf("rare category %v should have been dropped: %v", v, got)
		}
	}
}

func TestPartitionScore_RejectsEmptySide(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{5, 5, 5})
	y := []int{0, 1, 0}

	clf := NewClassifier()
	var err error
	clf.criterion, err = NewCriterion(CriterionGini)
	if err != nil {
		t.Fatalf("NewCriterion failed: %v", err)
	}

	// Threshold 5 puts every row on the left.
	if _, valid := clf.partitionScore(X, y, allRows(3), 0, Ordered, 5); valid {
		t.Error("partition with an empty side should be rejected")
	}
}

func TestFindBestSplit_NoValidSplit(t *testing.T) {
	// A constant column admits no non-degenerate partition.
	X := mat.NewDense(4, 1, []float64{7, 7, 7, 7})
	y := []int{0, 1, 0, 1}

	clf := NewClassifier()
	var err error
	clf.criterion, err = NewCriterion(CriterionGini)
	if err != nil {
		t.Fatalf("NewCriterion failed: %v", err)
	}
	clf.nFeatures = 1

	if _, ok := clf.findBestSplit(X, y, allRows(4), []int{0}, 0.5); ok {
		t.Error("expected no split to be found on a constant column")
	}
}

func TestFindBestSplit_PrefersCleanSeparation(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		1, 9,
		2, 8,
		3, 7,
		4, 9,
		5, 8,
		6, 7,
	})
	y := []int{0, 0, 0, 1, 1, 1}

	clf := NewClassifier()
	var err error
	clf.criterion, err = NewCriterion(CriterionGini)
	if err != nil {
		t.Fatalf("NewCriterion failed: %v", err)
	}
	clf.nFeatures = 2

	best, ok := clf.findBestSplit(X, y, allRows(6), []int{0, 1}, 0.5)
	if !ok {
		t.Fatal("expected a split to be found")
	}
	if best.feature != 0 || best.value != 3 {
		t.Errorf("best split = feature %d at %v, want feature 0 at 3", best.feature, best.value)
	}
	if best.score != 0 {
		t.Errorf("best score = %v, want 0", best.score)
	}
}
