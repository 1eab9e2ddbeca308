package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fortio.org/safecast"
	_ "modernc.org/sqlite"

	"github.com/cognicore/langid/pkg/langid/internalerr"
	"github.com/cognicore/langid/pkg/langid/profile"
	"github.com/cognicore/langid/pkg/langid/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// profile tables if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// n-gram rows cascade with their profile
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS profiles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT UNIQUE NOT NULL,
	n_words_1 INTEGER NOT NULL,
	n_words_2 INTEGER NOT NULL,
	n_words_3 INTEGER NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS profile_ngrams (
	profile_id INTEGER NOT NULL,
	ngram TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(profile_id, ngram),
	FOREIGN KEY(profile_id) REFERENCES profiles(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertProfile validates rec and replaces its stored counts. An existing
// profile keeps its id, and with it its position in Profiles.
func (s *sqliteStore) UpsertProfile(ctx context.Context, rec profile.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO profiles (name, n_words_1, n_words_2, n_words_3, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	n_words_1=excluded.n_words_1,
	n_words_2=excluded.n_words_2,
	n_words_3=excluded.n_words_3,
	updated_at=excluded.updated_at
RETURNING id;
`

	var id int64
	err = tx.QueryRowContext(
		ctx,
		stmt,
		rec.Name,
		rec.NWords[0],
		rec.NWords[1],
		rec.NWords[2],
		s.now().UTC().Format(time.RFC3339Nano),
	).Scan(&id)
	if err != nil {
		return err
	}

	if err := replaceNGrams(ctx, tx, id, rec); err != nil {
		return err
	}

	return tx.Commit()
}

func replaceNGrams(ctx context.Context, tx *sql.Tx, profileID int64, rec profile.Record) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM profile_ngrams WHERE profile_id=?`, profileID); err != nil {
		return err
	}
	if len(rec.Freq) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO profile_ngrams (profile_id, ngram, count) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, gram := range rec.Grams() {
		if _, err := stmt.ExecContext(ctx, profileID, gram, rec.Freq[gram]); err != nil {
			return err
		}
	}
	return nil
}

// GetProfile retrieves a profile by language name
func (s *sqliteStore) GetProfile(ctx context.Context, name string) (profile.Record, bool, error) {
	var id int64
	var n1, n2, n3 int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, n_words_1, n_words_2, n_words_3 FROM profiles WHERE name = ?`, name,
	).Scan(&id, &n1, &n2, &n3)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.Record{}, false, nil
	}
	if err != nil {
		return profile.Record{}, false, err
	}

	rec, err := s.loadProfile(ctx, id, name, n1, n2, n3)
	if err != nil {
		return profile.Record{}, false, err
	}
	return rec, true, nil
}

// DeleteProfile removes a profile and its n-grams
func (s *sqliteStore) DeleteProfile(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = ?`, name)
	return err
}

// Profiles returns every profile in insertion order
func (s *sqliteStore) Profiles(ctx context.Context) ([]profile.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, n_words_1, n_words_2, n_words_3 FROM profiles ORDER BY id`)
	if err != nil {
		return nil, err
	}

	type header struct {
		id         int64
		name       string
		n1, n2, n3 int64
	}
	var headers []header
	for rows.Next() {
		var h header
		if err := rows.Scan(&h.id, &h.name, &h.n1, &h.n2, &h.n3); err != nil {
			rows.Close()
			return nil, err
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	out := make([]profile.Record, 0, len(headers))
	for _, h := range headers {
		rec, err := s.loadProfile(ctx, h.id, h.name, h.n1, h.n2, h.n3)
		if err != nil {
			return nil, fmt.Errorf("load profile %q: %w", h.name, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Languages summarizes stored profiles in insertion order
func (s *sqliteStore) Languages(ctx context.Context) ([]store.LanguageInfo, error) {
	const query = `
SELECT p.name, p.n_words_1, p.n_words_2, p.n_words_3, p.updated_at, COUNT(g.ngram)
FROM profiles p
LEFT JOIN profile_ngrams g ON g.profile_id = p.id
GROUP BY p.id
ORDER BY p.id;
`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.LanguageInfo
	for rows.Next() {
		var (
			info       store.LanguageInfo
			n1, n2, n3 int64
			updated    string
			ngrams     int64
		)
		if err := rows.Scan(&info.Name, &n1, &n2, &n3, &updated, &ngrams); err != nil {
			return nil, err
		}
		if info.NWords, err = toInts(n1, n2, n3); err != nil {
			return nil, err
		}
		if info.NGrams, err = safecast.Conv[int](ngrams); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			info.UpdatedAt = ts
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *sqliteStore) loadProfile(ctx context.Context, id int64, name string, n1, n2, n3 int64) (profile.Record, error) {
	nWords, err := toInts(n1, n2, n3)
	if err != nil {
		return profile.Record{}, err
	}
	rec := profile.Record{Name: name, Freq: make(map[string]int), NWords: nWords}

	rows, err := s.db.QueryContext(ctx, `SELECT ngram, count FROM profile_ngrams WHERE profile_id = ?`, id)
	if err != nil {
		return profile.Record{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var gram string
		var count int64
		if err := rows.Scan(&gram, &count); err != nil {
			return profile.Record{}, err
		}
		c, err := safecast.Conv[int](count)
		if err != nil {
			return profile.Record{}, fmt.Errorf("%w: count for %q: %v", internalerr.ErrFormat, gram, err)
		}
		rec.Freq[gram] = c
	}
	if err := rows.Err(); err != nil {
		return profile.Record{}, err
	}
	return rec, nil
}

func toInts(vals ...int64) ([]int, error) {
	out := make([]int, len(vals))
	for i, v := range vals {
		n, err := safecast.Conv[int](v)
		if err != nil {
			return nil, fmt.Errorf("%w: n_words: %v", internalerr.ErrFormat, err)
		}
		out[i] = n
	}
	return out, nil
}
