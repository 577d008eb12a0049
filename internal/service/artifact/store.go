package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound reports a result artifact that does not exist on disk.
var ErrNotFound = errors.New("artifact not found")

// Store keeps synthesized result images under a single directory and
// builds the public URLs they are served from. Every save gets a unique
// filename, so concurrent syntheses never overwrite each other's result.
type Store struct {
	dir     string
	baseURL string
}

// NewStore prepares the artifact directory and returns a store that
// links results under publicBaseURL.
func NewStore(dir, publicBaseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}
	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Save writes a PNG-encoded result image and returns its filename and
// public URL.
func (s *Store) Save(png []byte) (string, string, error) {
	name := uuid.NewString()[:8] + "_result.png"
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, png, 0644); err != nil {
		return "", "", fmt.Errorf("write artifact: %w", err)
	}
	return name, s.baseURL + "/static/" + name, nil
}

// Path resolves a stored artifact filename to its location on disk for
// serving. Names that do not survive sanitization unchanged are treated
// as absent rather than resolved.
func (s *Store) Path(filename string) (string, error) {
	safe := sanitizeFilename(filename)
	if safe == "" || safe != filename {
		return "", ErrNotFound
	}

	path := filepath.Join(s.dir, safe)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

// sanitizeFilename strips path separators and traversal sequences from a
// requested filename.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	base = strings.ReplaceAll(base, "..", "")
	base = strings.ReplaceAll(base, "/", "_")
	base = strings.ReplaceAll(base, "\\", "_")
	return base
}
