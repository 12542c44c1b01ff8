package storage

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/stmiyata/seibi-backend/pkg/logger"
)

// LocalStorage writes photos to a directory served under /uploads.
// Stored names are timestamp-random plus the original extension, so
// concurrent uploads never collide on the original filename.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Save(ctx context.Context, originalName, contentType string, data []byte) (string, error) {
	ext := filepath.Ext(originalName)
	filename := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Intn(1_000_000_000), ext)

	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Error("Failed to write uploaded file", err, map[string]interface{}{
			"filename": filename,
		})
		return "", err
	}

	logger.Debug("Uploaded file written to disk", map[string]interface{}{
		"filename": filename,
		"size":     len(data),
	})
	return filename, nil
}

func (s *LocalStorage) PublicURL(filename string) string {
	return "/uploads/" + filename
}

// Dir returns the directory files are written to, for the static route
func (s *LocalStorage) Dir() string {
	return s.dir
}
