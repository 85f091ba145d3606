package ensemble

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	scierrors "github.com/YuminosukeSato/scigo/pkg/errors"
	"github.com/YuminosukeSato/scigo/tree"
)

// separableData builds two well-separated clusters of 10 points each.
func separableData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(20, 2, nil)
	y := mat.NewDense(20, 1, nil)
	for i := 0; i < 10; i++ {
		X.Set(i, 0, float64(i)*0.1)
		X.Set(i, 1, float64(i)*0.2)
		y.Set(i, 0, 0)
	}
	for i := 10; i < 20; i++ {
		X.Set(i, 0, 10+float64(i-10)*0.1)
		X.Set(i, 1, 10+float64(i-10)*0.2)
		y.Set(i, 0, 1)
	}
	return X, y
}

func TestRandomForest_FitPredict(t *testing.T) {
	X, y := separableData()

	rf := NewRandomForestClassifier(
		WithNEstimators(15),
		WithRandomState(42),
	)
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit forest: %v", err)
	}

	if !rf.IsFitted() {
		t.Error("forest should report fitted after Fit")
	}
	if got := len(rf.Trees()); got != 15 {
		t.Errorf("Trees() length = %d, want 15", got)
	}
	if score := rf.Score(X, y); score != 1.0 {
		t.Errorf("training accuracy on separable data = %v, want 1.0", score)
	}

	XTest := mat.NewDense(2, 2, []float64{
		0.5, 0.5, // near cluster 0
		10.5, 10.5, // near cluster 1
	})
	preds, err := rf.Predict(XTest)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	if preds.At(0, 0) != 0 || preds.At(1, 0) != 1 {
		t.Errorf("predictions = [%v %v], want [0 1]", preds.At(0, 0), preds.At(1, 0))
	}
}

// TestRandomForest_Deterministic verifies the same seed reproduces the forest
// exactly.
func TestRandomForest_Deterministic(t *testing.T) {
	X, y := separableData()

	fit := func() (*mat.Dense, []float64) {
		rf := NewRandomForestClassifier(
			WithNEstimators(8),
			WithRandomState(7),
		)
		if err := rf.Fit(X, y); err != nil {
			t.Fatalf("Failed to fit: %v", err)
		}
		preds, err := rf.Predict(X)
		if err != nil {
			t.Fatalf("Failed to predict: %v", err)
		}
		return preds, rf.GetFeatureImportances()
	}

	p1, imp1 := fit()
	p2, imp2 := fit()
	if !mat.Equal(p1, p2) {
		t.Error("same seed should yield identical predictions")
	}
	for i := range imp1 {
		if imp1[i] != imp2[i] {
			t.Errorf("importance[%d] differs across runs: %v vs %v", i, imp1[i], imp2[i])
		}
	}
}

func TestRandomForest_FeatureImportances(t *testing.T) {
	X, y := separableData()

	rf := NewRandomForestClassifier(WithNEstimators(10), WithRandomState(1))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	importances := rf.GetFeatureImportances()
	if len(importances) != 2 {
		t.Fatalf("Expected 2 importances, got %d", len(importances))
	}
	sum := 0.0
	for _, imp := range importances {
		if imp < 0 {
			t.Errorf("negative importance %v", imp)
		}
		sum += imp
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Errorf("importances should sum to 1, got %v", sum)
	}
}

func TestRandomForest_Introspection(t *testing.T) {
	X, y := separableData()

	rf := NewRandomForestClassifier(WithNEstimators(5), WithRandomState(3))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit: %v", err)
	}

	sum, maxDepth := 0, 0
	for _, member := range rf.Trees() {
		sum += member.CountNodes()
		if d := member.GetDepth(); d > maxDepth {
			maxDepth = d
		}
	}
	if got := rf.CountNodes(); got != sum {
		t.Errorf("CountNodes() = %d, want member sum %d", got, sum)
	}
	if got := rf.GetDepth(); got != maxDepth {
		t.Errorf("GetDepth() = %d, want member max %d", got, maxDepth)
	}
}

func TestRandomForest_NotFitted(t *testing.T) {
	rf := NewRandomForestClassifier()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	_, err := rf.Predict(X)
	if err == nil {
		t.Fatal("Expected error when predicting without fitting")
	}
	var nf *scierrors.NotFittedError
	if !scierrors.As(err, &nf) {
		t.Errorf("expected NotFittedError, got %v", err)
	}
}

func TestRandomForest_FitErrors(t *testing.T) {
	X, y := separableData()

	if err := NewRandomForestClassifier(WithNEstimators(0)).Fit(X, y); err == nil {
		t.Error("expected error for n_estimators = 0")
	}

	yShort := mat.NewDense(5, 1, nil)
	if err := NewRandomForestClassifier().Fit(X, yShort); err == nil {
		t.Error("expected error for mismatched label count")
	}

	// Member validation failures surface from the parallel fit.
	rf := NewRandomForestClassifier(WithCriterion("deviance"))
	if err := rf.Fit(X, y); err == nil {
		t.Error("expected error for unknown member criterion")
	}
	if rf.IsFitted() {
		t.Error("failed fit must not mark the forest fitted")
	}
}

func TestRandomForest_GetSetParams(t *testing.T) {
	rf := NewRandomForestClassifier()

	params := rf.GetParams()
	if params["n_estimators"].(int) != 10 {
		t.Errorf("default n_estimators should be 10, got %v", params["n_estimators"])
	}
	if params["max_features"] != "sqrt" {
		t.Errorf("default max_features should be sqrt, got %v", params["max_features"])
	}

	err := rf.SetParams(map[string]interface{}{
		"n_estimators": 25,
		"criterion":    "entropy",
		"max_depth":    4,
		"max_features": 0.5,
	})
	if err != nil {
		t.Fatalf("Failed to set params: %v", err)
	}
	if rf.nEstimators != 25 || rf.criterionName != tree.CriterionEntropy || rf.maxDepth != 4 {
		t.Error("parameters not applied")
	}

	if err := rf.SetParams(map[string]interface{}{"bootstrap": false}); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
