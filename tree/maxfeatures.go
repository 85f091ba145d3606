package tree

import (
	"math"

	"github.com/YuminosukeSato/scigo/pkg/errors"
)

// MaxFeatures is the per-split feature subsampling policy. The zero value
// uses all features. Non-trivial policies draw that many feature indices
// without replacement from the tree's own random source before each split.
type MaxFeatures struct {
	mode     string // "", "count", "sqrt", "log2", "fraction"
	count    int
	fraction float64
}

// MaxFeaturesAll disables feature subsampling; every split sees all features.
func MaxFeaturesAll() MaxFeatures { return MaxFeatures{} }

// MaxFeaturesCount considers a fixed number of features per split.
func MaxFeaturesCount(n int) MaxFeatures { return MaxFeatures{mode: "count", count: n} }

// MaxFeaturesSqrt considers floor(sqrt(n_features)) features per split.
func MaxFeaturesSqrt() MaxFeatures { return MaxFeatures{mode: "sqrt"} }

// MaxFeaturesLog2 considers floor(log2(n_features)) features per split.
func MaxFeaturesLog2() MaxFeatures { return MaxFeatures{mode: "log2"} }

// MaxFeaturesFraction considers floor(f * n_features) features per split.
func MaxFeaturesFraction(f float64) MaxFeatures { return MaxFeatures{mode: "fraction", fraction: f} }

// resolve turns the policy into a concrete feature count for nFeatures input
// columns, floored at 1 and capped at nFeatures. Invalid policies fail fast.
func (m MaxFeatures) resolve(nFeatures int) (int, error) {
	var k int
	switch m.mode {
	case "":
		return nFeatures, nil
	case "count":
		if m.count <= 0 {
			return 0, errors.NewValidationError("max_features", "count must be positive", m.count)
		}
		k = m.count
	case "sqrt":
		k = int(math.Sqrt(float64(nFeatures)))
	case "log2":
		k = int(math.Log2(float64(nFeatures)))
	case "fraction":
		if m.fraction <= 0 || m.fraction > 1 {
			return 0, errors.NewValidationError("max_features", "fraction must be in (0, 1]", m.fraction)
		}
		k = int(m.fraction * float64(nFeatures))
	default:
		return 0, errors.NewValidationError("max_features", "unknown policy", m.mode)
	}

	if k < 1 {
		k = 1
	}
	if k > nFeatures {
		k = nFeatures
	}
	return k, nil
}

// Param returns the policy in GetParams form: nil (all), an int, a fraction,
// or the policy name.
func (m MaxFeatures) Param() interface{} {
	switch m.mode {
	case "":
		return nil
	case "count":
		return m.count
	case "fraction":
		return m.fraction
	default:
		return m.mode
	}
}

// ParseMaxFeatures converts a SetParams value into a policy: nil means all
// features, an int a fixed count, a float64 a fraction, "sqrt"/"log2"/"all"
// the named policy. A MaxFeatures value passes through.
func ParseMaxFeatures(v interface{}) (MaxFeatures, error) {
	switch value := v.(type) {
	case nil:
		return MaxFeaturesAll(), nil
	case MaxFeatures:
		return value, nil
	case int:
		return MaxFeaturesCount(value), nil
	case float64:
		return MaxFeaturesFraction(value), nil
	case string:
		switch value {
		case "sqrt":
			return MaxFeaturesSqrt(), nil
		case "log2":
			return MaxFeaturesLog2(), nil
		case "all":
			return MaxFeaturesAll(), nil
		}
	}
	return MaxFeatures{}, errors.NewValidationError("max_features",
		"must be nil, an int, a fraction, or one of \"sqrt\", \"log2\", \"all\"", v)
}
