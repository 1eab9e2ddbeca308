package profile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cognicore/langid/pkg/langid/internalerr"
)

// Mode selects how a profile directory is laid out.
type Mode string

const (
	// ModeClassic reads every profile file directly under the directory.
	ModeClassic Mode = "classic"
	// ModeTimestamped expects subdirectories named MMDDYYYYHHMM and reads the
	// latest one that is not in the future.
	ModeTimestamped Mode = "timestamped"
)

// VersionLayout is the time layout of timestamped profile directories.
const VersionLayout = "010220061504"

// ParseMode accepts "classic", "timestamped" and the legacy "expiration".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "classic":
		return ModeClassic, nil
	case "timestamped", "expiration":
		return ModeTimestamped, nil
	default:
		return "", fmt.Errorf("%w: unknown profile mode %q", internalerr.ErrInvalidConfig, s)
	}
}

// DirSource reads profiles from the filesystem.
type DirSource struct {
	Dir    string
	Mode   Mode
	Now    func() time.Time // defaults to time.Now
	Logger *slog.Logger
}

// Profiles implements Source. Files are read in name order so language
// indices are stable between runs.
func (s DirSource) Profiles(ctx context.Context) ([]Record, error) {
	dir := s.Dir
	if s.Mode == ModeTimestamped {
		resolved, err := s.ResolveVersion()
		if err != nil {
			return nil, err
		}
		s.logger().Info("using timestamped profiles", "dir", resolved)
		dir = resolved
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read profile dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !e.Type().IsRegular() {
			continue
		}
		files = append(files, e.Name())
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no profiles found in %s", internalerr.ErrNeedProfiles, dir)
	}
	sort.Strings(files)

	records := make([]Record, 0, len(files))
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, name)
		rec, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	s.logger().Debug("loaded profiles", "dir", dir, "count", len(records))
	return records, nil
}

// ResolveVersion returns the timestamped subdirectory that Profiles would read.
func (s DirSource) ResolveVersion() (string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return "", fmt.Errorf("read profile dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	best, err := SelectVersion(names, now())
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, best), nil
}

func (s DirSource) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// ReadFile parses one profile file. ".yaml" and ".yml" files are YAML,
// everything else is JSON.
func ReadFile(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("open profile %q: %w", path, err)
	}

	var rec Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		rec, err = ParseYAML(data)
	default:
		rec, err = ParseJSON(data)
	}
	if err != nil {
		return Record{}, fmt.Errorf("profile %q: %w", path, err)
	}
	return rec, nil
}

// SelectVersion picks the latest version name whose timestamp is not after
// now. Names that are not timestamps are ignored; 11-digit names are treated
// as having lost their leading zero.
func SelectVersion(names []string, now time.Time) (string, error) {
	var (
		best     string
		bestTime time.Time
		found    bool
	)
	for _, name := range names {
		ts, ok := parseVersion(name, now.Location())
		if !ok || ts.After(now) {
			continue
		}
		if !found || ts.After(bestTime) {
			best, bestTime, found = name, ts, true
		}
	}
	if !found {
		return "", fmt.Errorf("%w: %d candidates", internalerr.ErrNoSuitableVersion, len(names))
	}
	return best, nil
}

func parseVersion(name string, loc *time.Location) (time.Time, bool) {
	if len(name) == len(VersionLayout)-1 {
		name = "0" + name
	}
	if len(name) != len(VersionLayout) {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(VersionLayout, name, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
