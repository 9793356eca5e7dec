// Package labels converts raw model scores into ranked, labelled predictions.
package labels

import (
	"fmt"
	"math"
	"sort"

	"github.com/Brownie44l1/flower-predict/internal/checkpoint"
)

// Prediction is one ranked class and its probability in [0,1].
type Prediction struct {
	Probability float64
	Label       string
}

// Probabilities turns one score per class into a distribution. Log-softmax
// output is only exponentiated; it must already be normalized.
func Probabilities(scores []float32, kind checkpoint.ScoreKind) []float64 {
	probs := make([]float64, len(scores))
	if kind != checkpoint.Logits {
		for i, s := range scores {
			probs[i] = math.Exp(float64(s))
		}
		return probs
	}

	hi := math.Inf(-1)
	for _, s := range scores {
		hi = math.Max(hi, float64(s))
	}
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(float64(s) - hi)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

type scoreIdx struct {
	index int
	prob  float64
}

// TopK returns the indices of the k largest probabilities, highest first.
// Equal probabilities keep the lower index first.
func TopK(probs []float64, k int) []int {
	ranked := make([]scoreIdx, len(probs))
	for i, p := range probs {
		ranked[i] = scoreIdx{index: i, prob: p}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].prob > ranked[j].prob })

	if k > len(ranked) {
		k = len(ranked)
	}
	if k < 0 {
		k = 0
	}
	out := make([]int, k)
	for i := range out {
		out[i] = ranked[i].index
	}
	return out
}

// Resolve ranks scores and maps the top k onto class identifiers, or onto
// display names when names is non-nil.
func Resolve(scores []float32, kind checkpoint.ScoreKind, classes checkpoint.ClassIndex, topK int, names CategoryNames) ([]Prediction, error) {
	if topK < 1 {
		return nil, fmt.Errorf("top_k must be positive, got %d", topK)
	}

	probs := Probabilities(scores, kind)
	top := TopK(probs, topK)

	preds := make([]Prediction, 0, len(top))
	for _, idx := range top {
		id, ok := classes.ClassID(idx)
		if !ok {
			return nil, &UnknownIndexError{Index: idx}
		}

		label := id
		if names != nil {
			name, ok := names[id]
			if !ok {
				return nil, &MissingCategoryNameError{ClassID: id}
			}
			label = name
		}

		preds = append(preds, Prediction{Probability: probs[idx], Label: label})
	}
	return preds, nil
}
