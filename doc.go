// Package scigo provides tree-based classification for Go with a
// scikit-learn-like API: decision trees over mixed ordered/categorical
// features, bootstrap-aggregated random forests, and cross-validated grid
// search for hyperparameter selection.
//
// # Quick Start
//
// Fit a decision tree and predict:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/scigo/tree"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(6, 2, []float64{
//	        1, 0,
//	        2, 0,
//	        3, 0,
//	        4, 1,
//	        5, 1,
//	        6, 1,
//	    })
//	    y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})
//
//	    clf := tree.NewClassifier(
//	        tree.WithCriterion("gini"),
//	        tree.WithFeatureKinds([]tree.FeatureKind{tree.Ordered, tree.Categorical}),
//	    )
//	    if err := clf.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    preds, err := clf.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(preds))
//	}
//
// # Packages
//
//   - tree: decision tree classifier with pluggable impurity criteria,
//     capped threshold/category split search, and impurity-gain pruning
//   - ensemble: random forest built from bootstrap resamples with per-split
//     feature subsampling and majority-vote aggregation
//   - modelselection: k-fold, stratified train/test split, and GridSearchCV
//     with an accuracy-then-complexity selection policy
//   - metrics: accuracy, confusion matrix, classification report, AUC
//   - core/model, core/parallel: shared estimator state and fork/join helpers
//   - pkg/errors, pkg/log: structured errors/warnings and zerolog logging
//
// Inputs are gonum matrices: X is n×d with caller-supplied column tagging
// (ordered or categorical, encoded as float64), y is an n×1 matrix of
// non-negative integer class labels. Fitting is deterministic under a fixed
// random state regardless of parallelism.
package scigo
