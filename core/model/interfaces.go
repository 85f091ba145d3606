package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is a model that can be trained.
type Fitter interface {
	// Fit trains the model on features X and labels y.
	Fit(X, y mat.Matrix) error
}

// Predictor is a model that can predict.
type Predictor interface {
	// Predict returns one predicted label per row of X.
	Predict(X mat.Matrix) (*mat.Dense, error)
}

// Model is the basic supervised-learning interface.
type Model interface {
	Fitter
	Predictor
}

// SKLearnCompatible exposes scikit-learn style hyperparameter access. Grid
// search relies on SetParams to configure fresh estimators per candidate.
type SKLearnCompatible interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}

	// SetParams updates the model's hyperparameters.
	SetParams(params map[string]interface{}) error
}

// Introspectable is implemented by fitted models whose structure can be
// summarized; trees report their depth and node count, ensembles aggregate
// over their members.
type Introspectable interface {
	// GetDepth returns the depth of the fitted structure.
	GetDepth() int

	// CountNodes returns the total number of nodes in the fitted structure.
	CountNodes() int
}

// FeatureImportancer is implemented by fitted models that attribute importance
// to input features. The returned vector is aligned to the input columns and
// sums to 1 unless no split ever reduced impurity.
type FeatureImportancer interface {
	GetFeatureImportances() []float64
}
