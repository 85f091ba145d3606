package modelselection

import (
	"sort"
	"testing"
)

func TestKFold_Split(t *testing.T) {
	tests := []struct {
		name     string
		nSamples int
		nSplits  int
	}{
		{"even split", 10, 5},
		{"uneven split", 10, 3},
		{"two folds", 7, 2},
		{"one sample per fold", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kf := NewKFold(tt.nSplits, false, 0)
			folds, err := kf.Split(tt.nSamples)
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}
			if len(folds) != tt.nSplits {
				t.Fatalf("got %d folds, want %d", len(folds), tt.nSplits)
			}

			seen := make(map[int]int)
			for _, fold := range folds {
				if len(fold.Train)+len(fold.Validation) != tt.nSamples {
					t.Errorf("train+validation = %d, want %d",
						len(fold.Train)+len(fold.Validation), tt.nSamples)
				}
				for _, idx := range fold.Validation {
					seen[idx]++
				}

				// Fold sizes differ by at most one.
				base := tt.nSamples / tt.nSplits
				if len(fold.Validation) != base && len(fold.Validation) != base+1 {
					t.Errorf("validation size %d, want %d or %d", len(fold.Validation), base, base+1)
				}

				// Train and validation are disjoint.
				inVal := make(map[int]bool)
				for _, idx := range fold.Validation {
					inVal[idx] = true
				}
				for _, idx := range fold.Train {
					if inVal[idx] {
						t.Errorf("index %d in both train and validation", idx)
					}
				}
			}

			// Validation sets cover every row exactly once.
			for i := 0; i < tt.nSamples; i++ {
				if seen[i] != 1 {
					t.Errorf("row %d appears in %d validation sets, want 1", i, seen[i])
				}
			}
		})
	}
}

func TestKFold_NoShuffleIsSequential(t *testing.T) {
	kf := NewKFold(2, false, 0)
	folds, err := kf.Split(6)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := [][]int{{0, 1, 2}, {3, 4, 5}}
	for i, fold := range folds {
		for j, idx := range fold.Validation {
			if idx != want[i][j] {
				t.Fatalf("fold %d validation = %v, want %v", i, fold.Validation, want[i])
			}
		}
	}
}

func TestKFold_ShuffleDeterministic(t *testing.T) {
	a, err := NewKFold(3, true, 42).Split(10)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	b, err := NewKFold(3, true, 42).Split(10)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	for i := range a {
		for j := range a[i].Validation {
			if a[i].Validation[j] != b[i].Validation[j] {
				t.Fatal("same seed should produce identical folds")
			}
		}
	}

	// A different seed permutes differently (with overwhelming likelihood for
	// 10 rows).
	c, err := NewKFold(3, true, 43).Split(10)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	same := true
	for i := range a {
		for j := range a[i].Validation {
			if a[i].Validation[j] != c[i].Validation[j] {
				same = false
			}
		}
	}
	if same {
		t.Error("different seeds produced identical folds")
	}
}

func TestKFold_Errors(t *testing.T) {
	if _, err := NewKFold(1, false, 0).Split(10); err == nil {
		t.Error("expected error for n_splits < 2")
	}
	if _, err := NewKFold(5, false, 0).Split(3); err == nil {
		t.Error("expected error for n_splits > n_samples")
	}
}

func TestStratifiedSplitIndices(t *testing.T) {
	// 40 rows of class 0 and 20 rows of class 1 at a quarter test fraction
	// give exactly 10 and 5 test rows per class.
	strat := make([]int, 60)
	for i := 40; i < 60; i++ {
		strat[i] = 1
	}

	train, test, err := StratifiedSplitIndices(strat, 0.25, 11)
	if err != nil {
		t.Fatalf("StratifiedSplitIndices failed: %v", err)
	}
	if len(train) != 45 || len(test) != 15 {
		t.Fatalf("split sizes = %d/%d, want 45/15", len(train), len(test))
	}

	count := func(indices []int, class int) int {
		n := 0
		for _, idx := range indices {
			if strat[idx] == class {
				n++
			}
		}
		return n
	}
	if got := count(test, 0); got != 10 {
		t.Errorf("test rows of class 0 = %d, want 10", got)
	}
	if got := count(test, 1); got != 5 {
		t.Errorf("test rows of class 1 = %d, want 5", got)
	}

	// Disjoint union of all rows.
	all := append(append([]int(nil), train...), test...)
	sort.Ints(all)
	for i, idx := range all {
		if idx != i {
			t.Fatalf("train+test is not a permutation of the rows: %v", all)
		}
	}
}

func TestStratifiedSplitIndices_Deterministic(t *testing.T) {
	strat := []int{0, 0, 0, 0, 1, 1, 1, 1, 1, 1}

	tr1, te1, err := StratifiedSplitIndices(strat, 0.5, 3)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	tr2, te2, err := StratifiedSplitIndices(strat, 0.5, 3)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	for i := range tr1 {
		if tr1[i] != tr2[i] {
			t.Fatal("same seed should reproduce the train side")
		}
	}
	for i := range te1 {
		if te1[i] != te2[i] {
			t.Fatal("same seed should reproduce the test side")
		}
	}
}

func TestStratifiedSplitIndices_Errors(t *testing.T) {
	if _, _, err := StratifiedSplitIndices(nil, 0.5, 0); err == nil {
		t.Error("expected error for empty strata")
	}
	if _, _, err := StratifiedSplitIndices([]int{0, 1}, 0, 0); err == nil {
		t.Error("expected error for zero test fraction")
	}
	if _, _, err := StratifiedSplitIndices([]int{0, 1}, 1, 0); err == nil {
		t.Error("expected error for full test fraction")
	}
}
