package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists downloaded media and returns the path/URL to record on
// the entity. Implementations keep the original basename so gallery
// dedup-by-basename keeps working across runs.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// LocalStore writes media files under a base directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the base directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes data under the sanitized basename and returns the relative
// path. An existing file with the same name is reused, matching the
// import rule that attached media is never overwritten.
func (s *LocalStore) Save(_ context.Context, name string, data []byte) (string, error) {
	base := SafeBasename(name)
	full := filepath.Join(s.dir, base)

	if _, err := os.Stat(full); err == nil {
		return base, nil
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return base, nil
}

// SafeBasename reduces a feed path to a storable file name, falling back
// to a generated one when the path has no usable basename.
func SafeBasename(name string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "" || base == "." || base == "/" {
		return uuid.NewString()
	}
	return base
}
