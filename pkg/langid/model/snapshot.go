package model

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cognicore/langid/pkg/langid/internalerr"
)

// Current schema version - increment when snapshotPayload changes
const snapshotSchema uint16 = 1

type snapshotPayload struct {
	Schema    uint16               `msgpack:"schema"`
	ID        string               `msgpack:"id"`
	Languages []string             `msgpack:"languages"`
	Probs     map[string][]float64 `msgpack:"probs"`
}

// WriteSnapshot encodes m so it can be reopened without the source profiles.
func WriteSnapshot(w io.Writer, m *Model) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(&snapshotPayload{
		Schema:    snapshotSchema,
		ID:        m.ID(),
		Languages: m.langs,
		Probs:     m.probs,
	})
}

// ReadSnapshot decodes a model written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Model, error) {
	var p snapshotPayload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: snapshot: %v", internalerr.ErrFormat, err)
	}
	if p.Schema != snapshotSchema {
		return nil, fmt.Errorf("%w: snapshot schema %d, want %d", internalerr.ErrFormat, p.Schema, snapshotSchema)
	}
	id, err := ulid.Parse(p.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: snapshot id: %v", internalerr.ErrFormat, err)
	}
	if len(p.Languages) == 0 {
		return nil, fmt.Errorf("%w: snapshot has no languages", internalerr.ErrNeedProfiles)
	}

	seen := make(map[string]struct{}, len(p.Languages))
	for _, lang := range p.Languages {
		if _, dup := seen[lang]; dup {
			return nil, fmt.Errorf("%w: %q", internalerr.ErrDuplicateLanguage, lang)
		}
		seen[lang] = struct{}{}
	}
	for gram, vec := range p.Probs {
		if len(vec) != len(p.Languages) {
			return nil, fmt.Errorf("%w: snapshot vector for %q has %d entries, want %d",
				internalerr.ErrFormat, gram, len(vec), len(p.Languages))
		}
	}
	if p.Probs == nil {
		p.Probs = make(map[string][]float64)
	}

	return &Model{id: id, langs: p.Languages, probs: p.Probs}, nil
}

// SaveSnapshot writes m to path atomically.
func SaveSnapshot(path string, m *Model) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "snapshot-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = WriteSnapshot(f, m); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// OpenSnapshot reads the snapshot at path. The bool is false when the file
// does not exist.
func OpenSnapshot(path string) (*Model, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	m, err := ReadSnapshot(f)
	if err != nil {
		return nil, false, fmt.Errorf("snapshot %q: %w", path, err)
	}
	return m, true, nil
}
