package tree

import (
	"math"
	"testing"
)

func TestCriterion_PureLabels(t *testing.T) {
	// Every criterion scores a single-class set as perfectly pure.
	for _, name := range []string{"gini", "entropy", "error", "sqrt"} {
		t.Run(name, func(t *testing.T) {
			c, err := NewCriterion(name)
			if err != nil {
				t.Fatalf("NewCriterion(%q) failed: %v", name, err)
			}
			if got := c.Impurity([]int{3, 3, 3, 3}); got != 0 {
				t.Errorf("%s impurity of pure labels = %v, want 0", name, got)
			}
		})
	}
}

func TestCriterion_Gini(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
		want   float64
	}{
		{
			// Binary case keeps the 2p(1-p) form exactly.
			name:   "binary balanced",
			labels: []int{0, 0, 1, 1},
			want:   0.5,
		},
		{
			name:   "binary 3:1",
			labels: []int{0, 0, 0, 1},
			want:   2 * 0.75 * 0.25,
		},
		{
			// Three classes fall back to 1 - sum(p^2), without the factor 2.
			name:   "three classes",
			labels: []int{0, 1, 2},
			want:   1 - 3.0/9.0,
		},
	}

	c, err := NewCriterion(CriterionGini)
	if err != nil {
		t.Fatalf("NewCriterion failed: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Impurity(tt.labels); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("gini(%v) = %v, want %v", tt.labels, got, tt.want)
			}
		})
	}
}

func TestCriterion_Entropy(t *testing.T) {
	c, err := NewCriterion(CriterionEntropy)
	if err != nil {
		t.Fatalf("NewCriterion failed: %v", err)
	}

	// Balanced binary entropy is 1 bit; the criterion halves it.
	if got := c.Impurity([]int{0, 1}); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("entropy([0,1]) = %v, want 0.5", got)
	}

	// 3:1 split: -(0.75 log2 0.75 + 0.25 log2 0.25) / 2
	want := -(0.75*math.Log2(0.75) + 0.25*math.Log2(0.25)) / 2
	if got := c.Impurity([]int{0, 0, 0, 1}); math.Abs(got-want) > 1e-12 {
		t.Errorf("entropy([0,0,0,1]) = %v, want %v", got, want)
	}
}

func TestCriterion_Error(t *testing.T) {
	c, err := NewCriterion(CriterionError)
	if err != nil {
		t.Fatalf("NewCriterion failed: %v", err)
	}
	if got := c.Impurity([]int{0, 0, 0, 1, 1}); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("error([0,0,0,1,1]) = %v, want 0.4", got)
	}
}

func TestCriterion_Sqrt(t *testing.T) {
	c, err := NewCriterion(CriterionSqrt)
	if err != nil {
		t.Fatalf("NewCriterion failed: %v", err)
	}
	if got := c.Impurity([]int{0, 1}); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("sqrt([0,1]) = %v, want 0.5", got)
	}
	if got := c.Impurity([]int{1, 1, 1}); got != 0 {
		t.Errorf("sqrt single class = %v, want 0", got)
	}
}

func TestNewCriterion_Unknown(t *testing.T) {
	if _, err := NewCriterion("deviance"); err == nil {
		t.Error("expected error for unknown criterion name")
	}
}
