package photo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store accepts raw image bytes and hands back an opaque reference.
// The domain only ever persists references.
type Store interface {
	Save(ctx context.Context, data []byte, ext string) (string, error)
}

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type diskStore struct {
	dir string
}

// NewDiskStore stores photos as uuid-named files under dir.
func NewDiskStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

func (s *diskStore) Save(_ context.Context, data []byte, ext string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty photo payload")
	}

	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if !allowedExts[ext] {
		return "", fmt.Errorf("unsupported photo extension %q", ext)
	}

	ref := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("write photo: %w", err)
	}

	return ref, nil
}
