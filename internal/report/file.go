package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSource reads a JSON or YAML report from disk.
type FileSource struct {
	Path string
}

// Fetch implements Source. A missing file is ErrNoReport.
func (s FileSource) Fetch(ctx context.Context) ([]byte, Format, error) {
	if strings.TrimSpace(s.Path) == "" {
		return nil, "", ErrNoReport
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNoReport
		}
		return nil, "", fmt.Errorf("report: read %s: %w", s.Path, err)
	}
	return raw, FormatFor(s.Path), nil
}

// FormatFor picks the decoder from the file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}
