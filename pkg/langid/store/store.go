package store

import (
	"context"
	"time"

	"github.com/cognicore/langid/pkg/langid/profile"
)

// Store is the main interface for persisting language profiles.
//
// Profiles are kept in insertion order: re-upserting a language replaces
// its counts but keeps its position, so the language indexes of a model
// loaded from the store are stable across imports. Every Store is also a
// profile.Source.
type Store interface {
	Close() error

	UpsertProfile(ctx context.Context, rec profile.Record) error
	GetProfile(ctx context.Context, name string) (profile.Record, bool, error)
	DeleteProfile(ctx context.Context, name string) error

	// Profiles returns every stored profile in insertion order
	Profiles(ctx context.Context) ([]profile.Record, error)
	// Languages summarizes the stored profiles without loading the counts
	Languages(ctx context.Context) ([]LanguageInfo, error)
}

// LanguageInfo describes a stored profile
type LanguageInfo struct {
	Name      string
	NGrams    int   // distinct n-grams
	NWords    []int // totals per n-gram length
	UpdatedAt time.Time
}
