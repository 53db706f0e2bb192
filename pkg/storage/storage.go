package storage

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FolderUploads is the subpath/prefix under which uploaded payloads live.
const FolderUploads = "uploads"

// BlobStorage persists an uploaded byte stream under a caller-supplied key.
// The stream is consumed exactly once, fully, before Save returns. The caller
// is responsible for supplying an already-unique key (see NewObjectKey).
// The returned locator is backend-specific: a filesystem path for the local
// backend, an s3://bucket/key URI for the object-store backend.
type BlobStorage interface {
	Save(ctx context.Context, key string, r io.Reader) (locator string, err error)
}

// Presigner exchanges an object key for a time-limited download URL.
// Only the object-store backend implements it.
type Presigner interface {
	PresignDownload(ctx context.Context, key string) (url string, expires time.Duration, err error)
}

// NewObjectKey derives a collision-resistant storage key for an upload:
// a random token plus the original file's extension taken verbatim.
// No content-type sniffing and no extension allow-list.
func NewObjectKey(originalName string) string {
	return uuid.New().String() + filepath.Ext(originalName)
}

// ObjectKey returns the object key under the uploads prefix: uploads/{filename}.
func ObjectKey(filename string) string {
	return path.Join(FolderUploads, path.Base(filename))
}

// ObjectKeyFromLocator extracts the object key from an s3://bucket/key locator
// by stripping the known bucket prefix. Returns ok=false when the locator does
// not belong to the given bucket, so callers can degrade instead of signing a
// foreign URL.
func ObjectKeyFromLocator(locator, bucket string) (string, bool) {
	prefix := "s3://" + bucket + "/"
	if !strings.HasPrefix(locator, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(locator, prefix)
	if key == "" {
		return "", false
	}
	return key, true
}
