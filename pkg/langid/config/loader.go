package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cognicore/langid/pkg/langid/classify"
	"github.com/cognicore/langid/pkg/langid/model"
	"github.com/cognicore/langid/pkg/langid/ngram"
	"github.com/cognicore/langid/pkg/langid/profile"
	"github.com/cognicore/langid/pkg/langid/rank"
	"github.com/cognicore/langid/pkg/langid/store/sqlite"
)

// Loader turns a Config into ready-to-use components
type Loader struct {
	Config *Config
	Logger *slog.Logger
	// Rebuild ignores an existing snapshot and rewrites it from the
	// profile source.
	Rebuild bool
	// Now is the clock for timestamped profile selection
	Now func() time.Time
}

// Components holds everything a detector needs
type Components struct {
	Model     *model.Model
	Params    classify.Params
	Ranker    *rank.Ranker
	Extractor *ngram.Extractor
	Source    string // where the model came from: snapshot, database or dir
}

// Load builds the model and the tuning from the configuration.
//
// The model comes from the snapshot when one exists, otherwise from the
// profile database, otherwise from the profile directory. A model built
// from profiles is written back to the snapshot path when one is set.
func (l *Loader) Load(ctx context.Context) (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		return nil, fmt.Errorf("loader: nil config")
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	comp := &Components{
		Params:    cfg.Detector.Params(),
		Ranker:    rank.NewRanker(cfg.Ranking.Threshold, cfg.Ranking.MinConfidence),
		Extractor: cfg.Detector.Extractor(),
	}

	// Snapshot
	if cfg.Profiles.Snapshot != "" && !l.Rebuild {
		m, ok, err := model.OpenSnapshot(cfg.Profiles.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		if ok {
			comp.Model = m
			comp.Source = "snapshot"
			logger.Info("model loaded",
				"source", comp.Source,
				"path", cfg.Profiles.Snapshot,
				"languages", m.Len(),
				"ngrams", m.NumNGrams(),
				"id", m.ID())
			return comp, nil
		}
	}

	src, name, closeFn, err := l.source(ctx, logger)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	m, err := model.LoadSource(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("load profiles from %s: %w", name, err)
	}
	comp.Model = m
	comp.Source = name
	logger.Info("model loaded",
		"source", name,
		"languages", m.Len(),
		"ngrams", m.NumNGrams(),
		"id", m.ID())

	if cfg.Profiles.Snapshot != "" {
		if err := model.SaveSnapshot(cfg.Profiles.Snapshot, m); err != nil {
			return nil, fmt.Errorf("write snapshot: %w", err)
		}
		logger.Info("snapshot written", "path", cfg.Profiles.Snapshot)
	}
	return comp, nil
}

func (l *Loader) source(ctx context.Context, logger *slog.Logger) (profile.Source, string, func(), error) {
	cfg := l.Config.Profiles
	switch {
	case cfg.Database != "":
		st, err := sqlite.OpenSQLite(ctx, cfg.Database)
		if err != nil {
			return nil, "", nil, fmt.Errorf("open profile database: %w", err)
		}
		return st, "database", func() { st.Close() }, nil
	case cfg.Dir != "":
		mode, err := profile.ParseMode(cfg.Mode)
		if err != nil {
			return nil, "", nil, err
		}
		return profile.DirSource{Dir: cfg.Dir, Mode: mode, Now: l.Now, Logger: logger}, "dir", func() {}, nil
	default:
		return nil, "", nil, fmt.Errorf("no profile source configured and no snapshot at %q", cfg.Snapshot)
	}
}

// Params converts the detector settings to classifier parameters.
func (d DetectorConfig) Params() classify.Params {
	return classify.Params{
		Alpha:                d.Alpha,
		AlphaWidth:           d.AlphaWidth,
		Trials:               d.Trials,
		MaxIterations:        d.MaxIterations,
		CheckInterval:        classify.DefaultParams().CheckInterval,
		ConvergenceThreshold: d.ConvergenceThreshold,
		Epsilon:              d.Epsilon,
		MinNGrams:            d.MinNGrams,
		Parallelism:          d.Parallelism,
		Seeded:               d.Seeded,
		Seed:                 d.Seed,
	}
}

// Extractor builds the n-gram extractor for the detector settings.
func (d DetectorConfig) Extractor() *ngram.Extractor {
	return ngram.New(
		ngram.WithMaxTextLength(d.MaxTextLength),
		ngram.WithHTML(d.HTML),
	)
}
