package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSave(t *testing.T) {
	base := t.TempDir()
	l, err := NewLocal(base, nil)
	require.NoError(t, err)

	locator, err := l.Save(context.Background(), "a1b2c3d4.mp4", strings.NewReader("movie bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, FolderUploads, "a1b2c3d4.mp4"), locator)

	data, err := os.ReadFile(locator)
	require.NoError(t, err)
	assert.Equal(t, "movie bytes", string(data))
}

func TestNewLocalIsIdempotent(t *testing.T) {
	base := t.TempDir()
	_, err := NewLocal(base, nil)
	require.NoError(t, err)
	_, err = NewLocal(base, nil)
	require.NoError(t, err)
}

func TestLocalSaveStripsPathComponents(t *testing.T) {
	base := t.TempDir()
	l, err := NewLocal(base, nil)
	require.NoError(t, err)

	locator, err := l.Save(context.Background(), "../escape.mp4", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, FolderUploads, "escape.mp4"), locator)
}
