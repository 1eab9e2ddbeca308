package langid

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/langid/pkg/langid/internalerr"
	"github.com/cognicore/langid/pkg/langid/profile"
)

func writeVersion(t *testing.T, root, version string, profiles map[string]string) {
	t.Helper()
	dir := filepath.Join(root, version)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, body := range profiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

const (
	enProfileJSON = `{"name":"en","freq":{"th":100,"he":80,"t":5},"n_words":[10,200,0]}`
	frProfileJSON = `{"name":"fr","freq":{"le":90,"es":70,"t":10},"n_words":[20,160,0]}`
	deProfileJSON = `{"name":"de","freq":{"ch":50,"ei":40},"n_words":[0,100,0]}`
)

func TestReloaderCheck(t *testing.T) {
	root := t.TempDir()
	writeVersion(t, root, "010120240000", map[string]string{"en": enProfileJSON, "fr": frProfileJSON})
	writeVersion(t, root, "060120240000", map[string]string{"en": enProfileJSON, "de": deProfileJSON})

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	d := newDetector(t, 1)
	r := &Reloader{
		Detector: d,
		Source:   profile.DirSource{Dir: root, Mode: profile.ModeTimestamped, Now: func() time.Time { return now }},
	}

	reloaded, err := r.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.Equal(t, filepath.Join(root, "010120240000"), r.Current())
	assert.Equal(t, []string{"en", "fr"}, d.Languages())

	reloaded, err = r.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded, "same version must not rebuild")

	now = time.Date(2024, 7, 1, 0, 0, 0, 0, time.Local)
	reloaded, err = r.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.Equal(t, []string{"de", "en"}, d.Languages())
}

func TestNewReloaderStartsFromInstalledVersion(t *testing.T) {
	root := t.TempDir()
	writeVersion(t, root, "010120240000", map[string]string{"en": enProfileJSON, "fr": frProfileJSON})
	writeVersion(t, root, "060120240000", map[string]string{"en": enProfileJSON, "de": deProfileJSON})

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	src := profile.DirSource{Dir: root, Mode: profile.ModeTimestamped, Now: func() time.Time { return now }}
	d := newDetector(t, 1)
	id := d.ModelID()

	r, err := NewReloader(d, src, time.Minute, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "010120240000"), r.Current())

	reloaded, err := r.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, reloaded)
	assert.Equal(t, id, d.ModelID(), "the installed version must not be rebuilt")

	now = time.Date(2024, 7, 1, 0, 0, 0, 0, time.Local)
	reloaded, err = r.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, reloaded)
	assert.Equal(t, []string{"de", "en"}, d.Languages())
}

func TestNewReloaderNoSuitableVersion(t *testing.T) {
	root := t.TempDir()
	writeVersion(t, root, "010120990000", map[string]string{"en": enProfileJSON, "fr": frProfileJSON})

	_, err := NewReloader(newDetector(t, 1), profile.DirSource{Dir: root, Mode: profile.ModeTimestamped}, 0, nil)
	assert.ErrorIs(t, err, internalerr.ErrNoSuitableVersion)
}

func TestReloaderCurrentWhileRunning(t *testing.T) {
	root := t.TempDir()
	writeVersion(t, root, "010120240000", map[string]string{"en": enProfileJSON, "fr": frProfileJSON})

	r := &Reloader{
		Detector: newDetector(t, 1),
		Source:   profile.DirSource{Dir: root, Mode: profile.ModeTimestamped},
		Interval: time.Millisecond,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan ReloadResult)
	go func() { done <- r.Run(ctx) }()
	for ctx.Err() == nil {
		_ = r.Current()
		time.Sleep(time.Millisecond)
	}
	res := <-done
	assert.Equal(t, 1, res.Reloads)
	assert.Equal(t, filepath.Join(root, "010120240000"), r.Current())
}

func TestReloaderKeepsModelOnBadVersion(t *testing.T) {
	root := t.TempDir()
	writeVersion(t, root, "010120240000", map[string]string{"en": enProfileJSON, "en2": enProfileJSON})

	d := newDetector(t, 1)
	id := d.ModelID()
	r := &Reloader{
		Detector: d,
		Source:   profile.DirSource{Dir: root, Mode: profile.ModeTimestamped},
	}

	_, err := r.Check(context.Background())
	assert.ErrorIs(t, err, internalerr.ErrDuplicateLanguage)
	assert.Equal(t, id, d.ModelID())
	assert.Empty(t, r.Current())
}

func TestReloaderNoSuitableVersion(t *testing.T) {
	root := t.TempDir()
	writeVersion(t, root, "010120990000", map[string]string{"en": enProfileJSON, "fr": frProfileJSON})

	r := &Reloader{
		Detector: newDetector(t, 1),
		Source:   profile.DirSource{Dir: root, Mode: profile.ModeTimestamped},
	}
	_, err := r.Check(context.Background())
	assert.ErrorIs(t, err, internalerr.ErrNoSuitableVersion)
}

func TestReloaderRunStopsWithContext(t *testing.T) {
	root := t.TempDir()
	writeVersion(t, root, "010120240000", map[string]string{"en": enProfileJSON, "fr": frProfileJSON})

	r := &Reloader{
		Detector: newDetector(t, 1),
		Source:   profile.DirSource{Dir: root, Mode: profile.ModeTimestamped},
		Interval: 5 * time.Millisecond,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res := r.Run(ctx)
	assert.Positive(t, res.Checks)
	assert.Equal(t, 1, res.Reloads)
	assert.Zero(t, res.Errors)
}
