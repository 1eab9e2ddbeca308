// Package model holds the dense n-gram probability table shared by every
// classification call.
//
// A Builder accumulates profiles, assigning each language the next index.
// Finalize freezes the table into a Model, which is read-only and safe for
// concurrent use. Reloading means building a new Model, never mutating one.
package model

import (
	"context"
	"crypto/rand"
	"fmt"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/langid/pkg/langid/internalerr"
	"github.com/cognicore/langid/pkg/langid/profile"
)

// Model is a frozen probability table: for every known n-gram, one
// probability per language index.
type Model struct {
	id    ulid.ULID
	langs []string
	probs map[string][]float64
}

// ID identifies this build of the model.
func (m *Model) ID() string { return m.id.String() }

// Languages returns the language identifiers in index order.
func (m *Model) Languages() []string {
	out := make([]string, len(m.langs))
	copy(out, m.langs)
	return out
}

// Language returns the identifier at index i.
func (m *Model) Language(i int) string { return m.langs[i] }

// Len returns the number of languages.
func (m *Model) Len() int { return len(m.langs) }

// NumNGrams returns the number of distinct n-grams in the table.
func (m *Model) NumNGrams() int { return len(m.probs) }

// Lookup returns the per-language probabilities of gram. The slice is
// shared and must not be modified.
func (m *Model) Lookup(gram string) ([]float64, bool) {
	v, ok := m.probs[gram]
	return v, ok
}

// Has reports whether any loaded language observed gram.
func (m *Model) Has(gram string) bool {
	_, ok := m.probs[gram]
	return ok
}

// Builder accumulates profiles into a probability table.
// It is not safe for concurrent use.
type Builder struct {
	langs   []string
	index   map[string]int
	probs   map[string][]float64
	frozen  bool
	entropy *ulid.MonotonicEntropy
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		index:   make(map[string]int),
		probs:   make(map[string][]float64),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// AddProfile adds rec as language number index out of total.
//
// Index must equal the number of languages already added, so index
// assignment follows presentation order. Every n-gram vector is sized to
// total; a later, larger total grows existing vectors with zeros.
func (b *Builder) AddProfile(rec profile.Record, index, total int) error {
	if b.frozen {
		return internalerr.ErrFrozen
	}
	if _, dup := b.index[rec.Name]; dup {
		return fmt.Errorf("%w: %q", internalerr.ErrDuplicateLanguage, rec.Name)
	}
	if index != len(b.langs) {
		return fmt.Errorf("%w: profile %q has index %d, expected %d",
			internalerr.ErrInvalidConfig, rec.Name, index, len(b.langs))
	}
	if total <= index {
		return fmt.Errorf("%w: total %d cannot hold index %d", internalerr.ErrInvalidConfig, total, index)
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	b.index[rec.Name] = index
	b.langs = append(b.langs, rec.Name)

	for _, gram := range rec.Grams() {
		n := utf8.RuneCountInString(gram)
		vec := b.probs[gram]
		if len(vec) < total {
			vec = append(vec, make([]float64, total-len(vec))...)
		}
		vec[index] = float64(rec.Freq[gram]) / float64(rec.NWords[n-1])
		b.probs[gram] = vec
	}
	return nil
}

// Languages returns the languages added so far, in index order.
func (b *Builder) Languages() []string {
	out := make([]string, len(b.langs))
	copy(out, b.langs)
	return out
}

// Finalize freezes the builder and returns the resulting Model. Every
// vector is resized to the final language count.
func (b *Builder) Finalize() (*Model, error) {
	if b.frozen {
		return nil, internalerr.ErrFrozen
	}
	if len(b.langs) == 0 {
		return nil, fmt.Errorf("%w: no profiles added", internalerr.ErrNeedProfiles)
	}

	n := len(b.langs)
	for gram, vec := range b.probs {
		switch {
		case len(vec) < n:
			b.probs[gram] = append(vec, make([]float64, n-len(vec))...)
		case len(vec) > n:
			b.probs[gram] = vec[:n:n]
		}
	}

	b.frozen = true
	return &Model{
		id:    ulid.MustNew(ulid.Now(), b.entropy),
		langs: b.langs,
		probs: b.probs,
	}, nil
}

// Clear resets the builder to empty. Models finalized earlier are not
// affected.
func (b *Builder) Clear() {
	b.langs = nil
	b.index = make(map[string]int)
	b.probs = make(map[string][]float64)
	b.frozen = false
}

// Load builds a Model from records, in order. At least two profiles are
// required, and any invalid or duplicate profile aborts the whole load.
func Load(records []profile.Record) (*Model, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: got %d", internalerr.ErrNeedProfiles, len(records))
	}

	b := NewBuilder()
	for i, rec := range records {
		if err := b.AddProfile(rec, i, len(records)); err != nil {
			return nil, fmt.Errorf("add profile %q: %w", rec.Name, err)
		}
	}
	return b.Finalize()
}

// LoadSource reads all profiles from src and builds a Model.
func LoadSource(ctx context.Context, src profile.Source) (*Model, error) {
	records, err := src.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	return Load(records)
}
