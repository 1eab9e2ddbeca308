package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/langid/pkg/langid/profile"
	"github.com/cognicore/langid/pkg/langid/store/sqlite"
)

const enJSON = `{"name":"en","freq":{"th":100,"he":80,"t":5},"n_words":[10,200,0]}`
const frJSON = `{"name":"fr","freq":{"le":90,"es":70,"t":10},"n_words":[20,160,0]}`

func writeProfiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{"en": enJSON, "fr": frJSON} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoaderFromDirWritesSnapshot(t *testing.T) {
	cfg := validConfig()
	cfg.Profiles.Dir = writeProfiles(t)
	cfg.Profiles.Snapshot = filepath.Join(t.TempDir(), "model.msgpack")

	comp, err := (&Loader{Config: &cfg}).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Source != "dir" {
		t.Errorf("Source = %q, want dir", comp.Source)
	}
	langs := comp.Model.Languages()
	if len(langs) != 2 || langs[0] != "en" || langs[1] != "fr" {
		t.Errorf("languages = %v", langs)
	}
	if comp.Ranker.Threshold != 0.1 || comp.Params.Trials != 7 || comp.Extractor == nil {
		t.Errorf("components not built from config: %+v", comp)
	}
	if _, err := os.Stat(cfg.Profiles.Snapshot); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	again, err := (&Loader{Config: &cfg}).Load(context.Background())
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again.Source != "snapshot" {
		t.Errorf("Source = %q, want snapshot", again.Source)
	}
	if again.Model.ID() != comp.Model.ID() {
		t.Errorf("snapshot model id = %s, want %s", again.Model.ID(), comp.Model.ID())
	}

	rebuilt, err := (&Loader{Config: &cfg, Rebuild: true}).Load(context.Background())
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if rebuilt.Source != "dir" || rebuilt.Model.ID() == comp.Model.ID() {
		t.Errorf("rebuild reused the snapshot: source=%s id=%s", rebuilt.Source, rebuilt.Model.ID())
	}
}

func TestLoaderPrefersDatabase(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "profiles.db")
	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, body := range []string{frJSON, enJSON} {
		rec, err := profile.ParseJSON([]byte(body))
		if err != nil {
			t.Fatal(err)
		}
		if err := st.UpsertProfile(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	st.Close()

	cfg := validConfig()
	cfg.Profiles.Dir = writeProfiles(t)
	cfg.Profiles.Database = dbPath

	comp, err := (&Loader{Config: &cfg}).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Source != "database" {
		t.Errorf("Source = %q, want database", comp.Source)
	}
	if langs := comp.Model.Languages(); langs[0] != "fr" {
		t.Errorf("languages = %v, want database order [fr en]", langs)
	}
}

func TestLoaderSnapshotOnlyMissing(t *testing.T) {
	cfg := validConfig()
	cfg.Profiles = ProfilesConfig{Snapshot: filepath.Join(t.TempDir(), "none.msgpack")}

	if _, err := (&Loader{Config: &cfg}).Load(context.Background()); err == nil {
		t.Fatal("expected error when the snapshot is missing and nothing else is configured")
	}
}

func TestDetectorParams(t *testing.T) {
	d := validConfig().Detector
	d.Seeded = true
	d.Seed = 5
	p := d.Params()
	if p.Alpha != 0.5 || p.Trials != 7 || !p.Seeded || p.Seed != 5 || p.CheckInterval != 5 {
		t.Errorf("Params() = %+v", p)
	}
}
