// Package profile defines per-language n-gram frequency profiles and the
// sources they are read from.
//
// A profile is the on-disk statistic for one language:
//
//	{"name": "en", "freq": {"th": 100, "he": 80, ...}, "n_words": [n1, n2, n3]}
//
// freq maps an n-gram of 1 to 3 characters to its occurrence count and
// n_words holds the per-length totals used as the probability denominator.
package profile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/langid/pkg/langid/internalerr"
)

// MaxGramLength is the longest n-gram a profile may hold.
const MaxGramLength = 3

// Record is one parsed language profile.
type Record struct {
	Name   string         `json:"name" yaml:"name" msgpack:"name"`
	Freq   map[string]int `json:"freq" yaml:"freq" msgpack:"freq"`
	NWords []int          `json:"n_words" yaml:"n_words" msgpack:"n_words"`
}

// Source yields the profiles of one language set, in index order.
type Source interface {
	Profiles(ctx context.Context) ([]Record, error)
}

// Validate checks the record against the profile schema. All failures wrap
// internalerr.ErrFormat.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: missing name", internalerr.ErrFormat)
	}
	if r.Freq == nil {
		return fmt.Errorf("%w: profile %q: missing freq", internalerr.ErrFormat, r.Name)
	}
	if len(r.NWords) != MaxGramLength {
		return fmt.Errorf("%w: profile %q: n_words must have %d entries, got %d",
			internalerr.ErrFormat, r.Name, MaxGramLength, len(r.NWords))
	}

	var sums [MaxGramLength]int
	var seen [MaxGramLength]bool
	for _, gram := range r.Grams() {
		count := r.Freq[gram]
		n := utf8.RuneCountInString(gram)
		if n < 1 || n > MaxGramLength {
			return fmt.Errorf("%w: profile %q: n-gram %q has length %d", internalerr.ErrFormat, r.Name, gram, n)
		}
		if count < 0 {
			return fmt.Errorf("%w: profile %q: negative count %d for %q", internalerr.ErrFormat, r.Name, count, gram)
		}
		sums[n-1] += count
		seen[n-1] = true
	}

	for i, total := range r.NWords {
		if total < 0 {
			return fmt.Errorf("%w: profile %q: negative n_words[%d]", internalerr.ErrFormat, r.Name, i)
		}
		if seen[i] && total == 0 {
			return fmt.Errorf("%w: profile %q: n_words[%d] is zero but %d-grams are present",
				internalerr.ErrFormat, r.Name, i, i+1)
		}
		if sums[i] > total {
			return fmt.Errorf("%w: profile %q: n_words[%d]=%d is below the %d-gram count sum %d",
				internalerr.ErrFormat, r.Name, i, total, i+1, sums[i])
		}
	}
	return nil
}

// Grams returns the profile's n-grams in sorted order.
func (r Record) Grams() []string {
	grams := make([]string, 0, len(r.Freq))
	for g := range r.Freq {
		grams = append(grams, g)
	}
	sort.Strings(grams)
	return grams
}

// Static is a Source over records already in memory.
type Static []Record

// Profiles implements Source.
func (s Static) Profiles(ctx context.Context) ([]Record, error) {
	out := make([]Record, len(s))
	copy(out, s)
	return out, nil
}
