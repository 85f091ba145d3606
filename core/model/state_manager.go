// Package model provides shared state management and interfaces for
// estimators.
package model

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo/pkg/errors"
)

// StateManager tracks the fitted state of an estimator in a thread-safe way.
// Estimators embed it by composition rather than inheritance.
type StateManager struct {
	fitted bool

	// Dimensions recorded at fit time.
	nFeatures int
	nSamples  int
}

// NewStateManager creates a StateManager in the not-fitted state.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted reports whether the estimator has been fitted.
func (s *StateManager) IsFitted() bool {
	return s.fitted
}

// SetFitted marks the estimator as fitted.
func (s *StateManager) SetFitted() {
	s.fitted = true
}

// Reset returns the estimator to the not-fitted state.
func (s *StateManager) Reset() {
	s.fitted = false
	s.nFeatures = 0
	s.nSamples = 0
}

// SetDimensions records the training data shape.
func (s *StateManager) SetDimensions(nSamples, nFeatures int) {
	s.nSamples = nSamples
	s.nFeatures = nFeatures
}

// NFeatures returns the number of features seen at fit time.
func (s *StateManager) NFeatures() int {
	return s.nFeatures
}

// NSamples returns the number of samples seen at fit time.
func (s *StateManager) NSamples() int {
	return s.nSamples
}

// RequireFitted returns a NotFittedError naming the model and method if the
// estimator has not been fitted yet.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.fitted {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// ValidateX checks that X matches the feature count seen at fit time.
func (s *StateManager) ValidateX(op string, X mat.Matrix) error {
	_, cols := X.Dims()
	if cols != s.nFeatures {
		return errors.NewDimensionError(op, s.nFeatures, cols, 1)
	}
	return nil
}
