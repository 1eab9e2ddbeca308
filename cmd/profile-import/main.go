package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cognicore/langid/pkg/langid/model"
	"github.com/cognicore/langid/pkg/langid/profile"
	"github.com/cognicore/langid/pkg/langid/store"
	"github.com/cognicore/langid/pkg/langid/store/sqlite"
)

func main() {
	var (
		dir     = flag.String("dir", "", "Profile directory (required)")
		dbPath  = flag.String("db", "", "SQLite profile database (required)")
		mode    = flag.String("mode", "classic", "Directory layout: classic or timestamped")
		prune   = flag.Bool("prune", false, "Delete stored languages that are not in the directory")
		verify  = flag.Bool("verify", true, "Build a model from the database after importing")
		timeout = flag.Duration("timeout", 5*time.Minute, "Overall import deadline")
	)
	flag.Parse()

	if *dir == "" {
		log.Fatal("--dir required")
	}
	if *dbPath == "" {
		log.Fatal("--db required")
	}

	m, err := profile.ParseMode(*mode)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	st, err := sqlite.OpenSQLite(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	src := profile.DirSource{Dir: *dir, Mode: m}
	imported, removed, err := importProfiles(ctx, st, src, *prune)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Imported %d profiles into %s", imported, *dbPath)
	if removed > 0 {
		log.Printf("Pruned %d stale profiles", removed)
	}

	if *verify {
		built, err := model.LoadSource(ctx, st)
		if err != nil {
			log.Fatalf("verify: %v", err)
		}
		fmt.Fprintf(os.Stdout, "model %s: %d languages, %d n-grams\n", built.ID(), built.Len(), built.NumNGrams())
	}
}

// importProfiles upserts every profile of src into st. With prune set,
// stored languages missing from src are deleted. The directory is fully
// parsed before anything is written, so a bad file leaves the store as it was.
func importProfiles(ctx context.Context, st store.Store, src profile.Source, prune bool) (int, int, error) {
	recs, err := src.Profiles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read profiles: %w", err)
	}

	seen := make(map[string]bool, len(recs))
	for _, rec := range recs {
		if err := st.UpsertProfile(ctx, rec); err != nil {
			return 0, 0, fmt.Errorf("store profile %q: %w", rec.Name, err)
		}
		seen[rec.Name] = true
		log.Printf("  %s: %d n-grams", rec.Name, len(rec.Freq))
	}

	removed := 0
	if prune {
		infos, err := st.Languages(ctx)
		if err != nil {
			return len(recs), 0, err
		}
		for _, info := range infos {
			if seen[info.Name] {
				continue
			}
			if err := st.DeleteProfile(ctx, info.Name); err != nil {
				return len(recs), removed, fmt.Errorf("delete profile %q: %w", info.Name, err)
			}
			removed++
		}
	}
	return len(recs), removed, nil
}
