package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/langid/pkg/langid/internalerr"
)

// ParseJSON decodes and validates a single JSON profile.
func ParseJSON(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", internalerr.ErrFormat, err)
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// ParseYAML decodes and validates a single YAML profile.
func ParseYAML(data []byte) (Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var rec Record
	if err := dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, fmt.Errorf("%w: empty document", internalerr.ErrFormat)
		}
		return Record{}, fmt.Errorf("%w: %v", internalerr.ErrFormat, err)
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// JSONSource is a list of raw JSON profile documents.
type JSONSource []string

// Profiles implements Source. A single malformed document fails the whole set.
func (s JSONSource) Profiles(ctx context.Context) ([]Record, error) {
	if len(s) < 2 {
		return nil, fmt.Errorf("%w: got %d", internalerr.ErrNeedProfiles, len(s))
	}
	out := make([]Record, 0, len(s))
	for i, doc := range s {
		rec, err := ParseJSON([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("profile #%d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
