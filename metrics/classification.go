// Package metrics provides classification evaluation utilities: accuracy,
// confusion matrix, per-class precision/recall/F1 reporting, and AUC.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo/pkg/errors"
)

// AccuracyScore computes the fraction of exact label matches.
func AccuracyScore(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AccuracyScore", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AccuracyScore", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AccuracyScoreMatrix computes accuracy over the first column of matrix
// inputs.
func AccuracyScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, err := firstColumn("AccuracyScoreMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	p, err := firstColumn("AccuracyScoreMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return AccuracyScore(t, p)
}

// ConfusionMatrix computes the label × label count grid. The returned labels
// are the sorted distinct labels observed across both vectors; cell (i, j)
// counts rows with true label labels[i] and predicted label labels[j].
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (*mat.Dense, []int, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, nil, errors.NewValueError("ConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return nil, nil, errors.NewDimensionError("ConfusionMatrix", n, yPred.Len(), 0)
	}

	labels := distinctLabels(yTrue, yPred)
	index := make(map[int]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	cm := mat.NewDense(len(labels), len(labels), nil)
	for i := 0; i < n; i++ {
		ti := index[int(yTrue.AtVec(i))]
		pi := index[int(yPred.AtVec(i))]
		cm.Set(ti, pi, cm.At(ti, pi)+1)
	}
	return cm, labels, nil
}

// ClassMetrics holds precision, recall, F1 and support for one label, or the
// support-weighted average when Label is -1.
type ClassMetrics struct {
	Label     int
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a per-label classification report plus the support-weighted
// average row.
type Report struct {
	Classes     []ClassMetrics
	WeightedAvg ClassMetrics
}

// ClassificationReport computes precision, recall and F1 per label (labels
// sorted ascending, observed across both vectors) and a support-weighted
// average. Ill-defined ratios are set to 0 with an UndefinedMetricWarning.
func ClassificationReport(yTrue, yPred *mat.VecDense) (*Report, error) {
	cm, labels, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	report := &Report{Classes: make([]ClassMetrics, len(labels))}
	total := 0

	for i, label := range labels {
		tp := cm.At(i, i)

		var predicted, support float64
		for j := range labels {
			predicted += cm.At(j, i)
			support += cm.At(i, j)
		}

		var precision, recall float64
		if predicted == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("precision",
				"no predicted samples for a label", 0))
		} else {
			precision = tp / predicted
		}
		if support == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("recall",
				"no true samples for a label", 0))
		} else {
			recall = tp / support
		}

		var f1 float64
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		report.Classes[i] = ClassMetrics{
			Label:     label,
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   int(support),
		}
		total += int(support)
	}

	avg := ClassMetrics{Label: -1, Support: total}
	if total > 0 {
		for _, c := range report.Classes {
			w := float64(c.Support) / float64(total)
			avg.Precision += w * c.Precision
			avg.Recall += w * c.Recall
			avg.F1 += w * c.F1
		}
	}
	report.WeightedAvg = avg

	return report, nil
}

// AUC computes the area under the ROC curve for binary labels {0, 1} and
// real-valued scores, using average ranks for tied scores. When only one
// class is present the metric is undefined and 0.5 is returned with an
// UndefinedMetricWarning.
func AUC(yTrue, yPred *mat.VecDense) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError("AUC", "nil input")
	}
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AUC", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AUC", n, yPred.Len(), 0)
	}

	nPos := 0
	for i := 0; i < n; i++ {
		switch yTrue.AtVec(i) {
		case 1:
			nPos++
		case 0:
		default:
			return 0, errors.NewValueError("AUC", "labels must be binary (0 or 1)")
		}
	}
	nNeg := n - nPos
	if nPos == 0 || nNeg == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("AUC",
			"only one class present", 0.5))
		return 0.5, nil
	}

	// Rank the scores ascending, averaging ranks across ties.
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return yPred.AtVec(order[a]) < yPred.AtVec(order[b])
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && yPred.AtVec(order[j]) == yPred.AtVec(order[i]) {
			j++
		}
		// Ranks are 1-based; ties share the mean rank of their run.
		avg := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	rankSum := 0.0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == 1 {
			rankSum += ranks[i]
		}
	}

	p := float64(nPos)
	return (rankSum - p*(p+1)/2) / (p * float64(nNeg)), nil
}

// AUCMatrix computes AUC over the first column of matrix inputs.
func AUCMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, err := firstColumn("AUCMatrix", yTrue)
	if err != nil {
		return 0, err
	}
	p, err := firstColumn("AUCMatrix", yPred)
	if err != nil {
		return 0, err
	}
	return AUC(t, p)
}

func firstColumn(op string, m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValueError(op, "nil matrix")
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError(op, "empty matrix")
	}
	v := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}

func distinctLabels(yTrue, yPred *mat.VecDense) []int {
	seen := make(map[int]struct{})
	for i := 0; i < yTrue.Len(); i++ {
		seen[int(yTrue.AtVec(i))] = struct{}{}
	}
	for i := 0; i < yPred.Len(); i++ {
		seen[int(yPred.AtVec(i))] = struct{}{}
	}

	labels := make([]int, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	return labels
}
