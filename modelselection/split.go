package modelselection

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo/pkg/errors"
)

// StratifiedSplitIndices partitions row indices into train and test sets,
// preserving the per-stratum proportions within rounding tolerance. Indices
// are shuffled independently within each stratum, each stratum is split at
// testFraction, and the concatenated sides are reshuffled separately.
// Deterministic under a fixed seed.
func StratifiedSplitIndices(strat []int, testFraction float64, seed int64) (train, test []int, err error) {
	if len(strat) == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "modelselection.StratifiedSplitIndices")
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.NewValidationError("test_fraction", "must be in (0, 1)", testFraction)
	}

	groups := make(map[int][]int)
	for i, s := range strat {
		groups[s] = append(groups[s], i)
	}

	// Iterate strata in sorted order so the draw sequence is reproducible.
	values := make([]int, 0, len(groups))
	for v := range groups {
		values = append(values, v)
	}
	sort.Ints(values)

	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	for _, v := range values {
		group := groups[v]
		r.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		nTest := int(math.Round(testFraction * float64(len(group))))
		test = append(test, group[:nTest]...)
		train = append(train, group[nTest:]...)
	}

	r.Shuffle(len(train), func(i, j int) {
		train[i], train[j] = train[j], train[i]
	})
	r.Shuffle(len(test), func(i, j int) {
		test[i], test[j] = test[j], test[i]
	})

	return train, test, nil
}

// TrainTestSplit splits X and y into train and test partitions stratified by
// the labels in y, keeping class proportions on both sides.
func TrainTestSplit(X, y mat.Matrix, testFraction float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	rows, _ := X.Dims()
	yRows, _ := y.Dims()
	if yRows != rows {
		return nil, nil, nil, nil, errors.NewDimensionError("modelselection.TrainTestSplit", rows, yRows, 0)
	}

	strat := make([]int, rows)
	for i := 0; i < rows; i++ {
		strat[i] = int(y.At(i, 0))
	}

	trainIdx, testIdx, err := StratifiedSplitIndices(strat, testFraction, seed)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	XTrain, yTrain = subsetRows(X, y, trainIdx)
	XTest, yTest = subsetRows(X, y, testIdx)
	return XTrain, XTest, yTrain, yTest, nil
}
