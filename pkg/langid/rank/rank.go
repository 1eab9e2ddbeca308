package rank

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/cognicore/langid/pkg/langid/internalerr"
)

// Default policy values
const (
	DefaultThreshold     = 0.1
	DefaultMinConfidence = 0.1
)

// Language is one candidate of a ranked result
type Language struct {
	Lang string  `json:"lang"`
	Prob float64 `json:"prob"`
}

// String renders the candidate as "lang:prob", e.g. "en:0.9999"
func (l Language) String() string {
	return l.Lang + ":" + strconv.FormatFloat(l.Prob, 'g', -1, 64)
}

// Ranker turns a raw distribution into the public result forms
type Ranker struct {
	Threshold     float64 // entries at or below are dropped from Ranked
	MinConfidence float64 // Best refuses a top entry below this
}

// NewRanker creates a ranker with the given policy
func NewRanker(threshold, minConfidence float64) *Ranker {
	return &Ranker{
		Threshold:     threshold,
		MinConfidence: minConfidence,
	}
}

// DefaultRanker uses the default threshold and minimum confidence
func DefaultRanker() *Ranker {
	return NewRanker(DefaultThreshold, DefaultMinConfidence)
}

// All pairs every language with its probability in language index order,
// without filtering.
func All(langs []string, probs []float64) []Language {
	n := min(len(langs), len(probs))
	out := make([]Language, n)
	for i := range n {
		out[i] = Language{Lang: langs[i], Prob: probs[i]}
	}
	return out
}

// Ranked returns the candidates above Threshold by descending probability.
// Equal probabilities keep language index order.
func (r *Ranker) Ranked(langs []string, probs []float64) []Language {
	out := make([]Language, 0, 4)
	for _, l := range All(langs, probs) {
		if l.Prob > r.Threshold {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b Language) int {
		switch {
		case a.Prob > b.Prob:
			return -1
		case a.Prob < b.Prob:
			return 1
		}
		return 0
	})
	return out
}

// Best returns the most probable language
//
// It fails with ErrNoCandidate when nothing passes Threshold or the top
// probability is below MinConfidence; a low-confidence guess is never
// returned silently.
func (r *Ranker) Best(langs []string, probs []float64) (Language, error) {
	ranked := r.Ranked(langs, probs)
	if len(ranked) == 0 {
		return Language{}, fmt.Errorf("%w: no language above %v", internalerr.ErrNoCandidate, r.Threshold)
	}
	top := ranked[0]
	if top.Prob < r.MinConfidence {
		return Language{}, fmt.Errorf("%w: best candidate %s below %v", internalerr.ErrNoCandidate, top, r.MinConfidence)
	}
	return top, nil
}
