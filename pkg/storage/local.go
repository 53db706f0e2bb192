package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Local stores uploads on the filesystem under {base}/uploads.
type Local struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocal creates the local storage backend, ensuring the uploads directory
// exists. MkdirAll is idempotent, so repeated starts are safe.
func NewLocal(basePath string, logger *zap.Logger) (*Local, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := filepath.Join(basePath, FolderUploads)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	logger.Info("local storage ready", zap.String("dir", dir))
	return &Local{baseDir: dir, logger: logger}, nil
}

// Save writes the stream to {base}/uploads/{key} and returns the file path.
func (l *Local) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	filePath := filepath.Join(l.baseDir, filepath.Base(key))
	f, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return filePath, nil
}
