package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/cognicore/langid/pkg/langid/profile"
	"github.com/cognicore/langid/pkg/langid/store"
)

type entry struct {
	rec     profile.Record
	updated time.Time
}

// Store is an in-memory implementation of store.Store for tests and
// one-off imports.
type Store struct {
	mu       sync.RWMutex
	order    []string
	profiles map[string]entry
	now      func() time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		profiles: make(map[string]entry),
		now:      time.Now,
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertProfile validates and stores a copy of rec, keyed by name.
func (s *Store) UpsertProfile(ctx context.Context, rec profile.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[rec.Name]; !ok {
		s.order = append(s.order, rec.Name)
	}
	s.profiles[rec.Name] = entry{rec: copyRecord(rec), updated: s.now()}
	return nil
}

// GetProfile returns a profile by language name.
func (s *Store) GetProfile(ctx context.Context, name string) (profile.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.profiles[name]
	if !ok {
		return profile.Record{}, false, nil
	}
	return copyRecord(e.rec), true, nil
}

// DeleteProfile removes a profile; deleting an unknown name is a no-op.
func (s *Store) DeleteProfile(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[name]; !ok {
		return nil
	}
	delete(s.profiles, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return nil
}

// Profiles returns all profiles in insertion order.
func (s *Store) Profiles(ctx context.Context) ([]profile.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]profile.Record, 0, len(s.order))
	for _, name := range s.order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, copyRecord(s.profiles[name].rec))
	}
	return out, nil
}

// Languages summarizes the stored profiles in insertion order.
func (s *Store) Languages(ctx context.Context) ([]store.LanguageInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.LanguageInfo, 0, len(s.order))
	for _, name := range s.order {
		e := s.profiles[name]
		out = append(out, store.LanguageInfo{
			Name:      name,
			NGrams:    len(e.rec.Freq),
			NWords:    slices.Clone(e.rec.NWords),
			UpdatedAt: e.updated,
		})
	}
	return out, nil
}

func copyRecord(rec profile.Record) profile.Record {
	return profile.Record{
		Name:   rec.Name,
		Freq:   maps.Clone(rec.Freq),
		NWords: slices.Clone(rec.NWords),
	}
}

var _ store.Store = (*Store)(nil)
