// Package modelselection provides resampling utilities (k-fold, stratified
// train/test split) and exhaustive grid search under cross-validation.
package modelselection

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo/pkg/errors"
)

// Fold is one train/validation partition of row indices.
type Fold struct {
	Train      []int
	Validation []int
}

// KFold splits row indices into k folds. Validation blocks are contiguous
// runs of the (optionally shuffled) index sequence; the first n mod k folds
// get one extra row, so fold sizes differ by at most 1.
type KFold struct {
	NSplits    int
	Shuffle    bool
	RandomSeed int64
}

// NewKFold creates a k-fold splitter. With Shuffle, indices are permuted once
// under RandomSeed before the blocks are cut, deterministically.
func NewKFold(nSplits int, shuffle bool, randomSeed int64) *KFold {
	return &KFold{NSplits: nSplits, Shuffle: shuffle, RandomSeed: randomSeed}
}

// Split generates the k (train, validation) index pairs for nSamples rows.
// Validation sets are disjoint and cover every row; train sets preserve the
// relative order of the remaining indices.
func (kf *KFold) Split(nSamples int) ([]Fold, error) {
	if kf.NSplits < 2 {
		return nil, errors.NewValidationError("n_splits", "must be at least 2", kf.NSplits)
	}
	if kf.NSplits > nSamples {
		return nil, errors.NewValidationError("n_splits",
			"cannot exceed the number of samples", kf.NSplits)
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}

	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.RandomSeed), uint64(kf.RandomSeed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]Fold, kf.NSplits)
	foldSize := nSamples / kf.NSplits
	remainder := nSamples % kf.NSplits

	start := 0
	for i := 0; i < kf.NSplits; i++ {
		size := foldSize
		if i < remainder {
			size++
		}
		end := start + size

		validation := make([]int, size)
		copy(validation, indices[start:end])

		train := make([]int, 0, nSamples-size)
		train = append(train, indices[:start]...)
		train = append(train, indices[end:]...)

		folds[i] = Fold{Train: train, Validation: validation}
		start = end
	}

	return folds, nil
}

// subsetRows materializes the selected rows of X and y as fresh matrices.
func subsetRows(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	_, cols := X.Dims()
	Xs := mat.NewDense(len(indices), cols, nil)
	ys := mat.NewDense(len(indices), 1, nil)
	for i, idx := range indices {
		for j := 0; j < cols; j++ {
			Xs.Set(i, j, X.At(idx, j))
		}
		ys.Set(i, 0, y.At(idx, 0))
	}
	return Xs, ys
}
