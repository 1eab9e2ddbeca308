package langid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cognicore/langid/pkg/langid/model"
	"github.com/cognicore/langid/pkg/langid/profile"
)

// Reloader swaps a newer timestamped profile version into a Detector once
// it becomes current. A zero Reloader loads whatever version is current on
// its first Check; NewReloader starts from the version already installed.
type Reloader struct {
	Detector *Detector
	Source   profile.DirSource // a timestamped profile root
	Interval time.Duration
	Logger   *slog.Logger

	current atomic.Value // string
}

// NewReloader creates a Reloader for a Detector whose model was built from
// the version src resolves to now.
func NewReloader(d *Detector, src profile.DirSource, interval time.Duration, logger *slog.Logger) (*Reloader, error) {
	version, err := src.ResolveVersion()
	if err != nil {
		return nil, err
	}
	r := &Reloader{Detector: d, Source: src, Interval: interval, Logger: logger}
	r.current.Store(version)
	return r, nil
}

// ReloadResult summarizes a Run.
type ReloadResult struct {
	Checks  int
	Reloads int
	Errors  int
}

// Check resolves the current profile version and, when it differs from the
// one last loaded, builds and installs its model. A failed build leaves
// the running model in place.
func (r *Reloader) Check(ctx context.Context) (bool, error) {
	if r.Detector == nil {
		return false, errors.New("reloader: invalid configuration")
	}
	version, err := r.Source.ResolveVersion()
	if err != nil {
		return false, err
	}
	if version == r.Current() {
		return false, nil
	}

	src := profile.DirSource{Dir: version, Mode: profile.ModeClassic, Logger: r.Source.Logger}
	m, err := model.LoadSource(ctx, src)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", version, err)
	}
	if _, err := r.Detector.Swap(m); err != nil {
		return false, err
	}
	r.logger().Info("profiles reloaded", "dir", version, "model", m.ID())
	r.current.Store(version)
	return true, nil
}

// Run checks every Interval until ctx is done.
func (r *Reloader) Run(ctx context.Context) ReloadResult {
	var res ReloadResult
	interval := r.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return res
		case <-ticker.C:
		}
		res.Checks++
		reloaded, err := r.Check(ctx)
		if err != nil {
			res.Errors++
			r.logger().Warn("profile reload failed", "err", err)
			continue
		}
		if reloaded {
			res.Reloads++
		}
	}
}

// Current returns the profile version directory last installed.
func (r *Reloader) Current() string {
	v, _ := r.current.Load().(string)
	return v
}

func (r *Reloader) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
