package report

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// ErrNoReport signals that a source has nothing to serve. It is a valid state,
// not a failure: the dashboard renders no charts.
var ErrNoReport = errors.New("report: no report available")

// Format identifies the payload encoding.
type Format string

// Supported payload encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Source yields a raw report payload.
type Source interface {
	Fetch(ctx context.Context) ([]byte, Format, error)
}

// Store is the process-wide, read-only report holder.
type Store struct {
	report      *Report
	fingerprint string
	loadedAt    time.Time
}

// NewStore wraps an already decoded report. raw is hashed for the
// fingerprint; a nil report yields an empty store.
func NewStore(r *Report, raw []byte) *Store {
	s := &Store{report: r, loadedAt: time.Now().UTC()}
	if r != nil {
		s.fingerprint = strconv.FormatUint(xxhash.Sum64(raw), 16)
	}
	return s
}

// Load fetches and decodes a report from src. A source reporting ErrNoReport
// produces an empty store and no error.
func Load(ctx context.Context, src Source) (*Store, error) {
	if src == nil {
		return NewStore(nil, nil), nil
	}
	raw, format, err := src.Fetch(ctx)
	if err != nil {
		if errors.Is(err, ErrNoReport) {
			return NewStore(nil, nil), nil
		}
		return NewStore(nil, nil), err
	}
	r, err := Decode(raw, format)
	if err != nil {
		return NewStore(nil, nil), err
	}
	return NewStore(r, raw), nil
}

// Decode parses raw into a Report. An empty or null payload decodes to nil.
func Decode(raw []byte, format Format) (*Report, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var r Report
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(trimmed, &r); err != nil {
			return nil, fmt.Errorf("report: decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(trimmed, &r); err != nil {
			return nil, fmt.Errorf("report: decode json: %w", err)
		}
	}
	return &r, nil
}

// Report returns the loaded report, or nil when none is available.
func (s *Store) Report() *Report {
	if s == nil {
		return nil
	}
	return s.report
}

// Available reports whether a report was loaded.
func (s *Store) Available() bool {
	return s != nil && s.report != nil
}

// Fingerprint identifies the payload content; empty when no report.
func (s *Store) Fingerprint() string {
	if s == nil {
		return ""
	}
	return s.fingerprint
}

// LoadedAt returns when the store was built.
func (s *Store) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}
