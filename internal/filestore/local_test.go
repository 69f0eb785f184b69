package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisionFileName(t *testing.T) {
	assert.Equal(t, "design_v1.stl", RevisionFileName("design", 1, ".STL"))
	assert.Equal(t, "document_v12", RevisionFileName("document", 12, ""))
	assert.Equal(t, "p1/cnc_program_v3.nc", RevisionKey("p1", "cnc_program", 3, ".nc"))
}

func TestLocalPutRemove(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads")
	fs, err := NewLocal(root)
	require.NoError(t, err)
	ctx := context.Background()

	path, err := fs.Put(ctx, "part-1/design_v1.stl", strings.NewReader("solid"), 5, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "part-1", "design_v1.stl"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "solid", string(data))

	// overwrite replaces the file atomically
	_, err = fs.Put(ctx, "part-1/design_v1.stl", strings.NewReader("solid v2"), 8, "")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "solid v2", string(data))

	require.NoError(t, fs.Remove(ctx, "part-1/design_v1.stl"))
	require.NoError(t, fs.Remove(ctx, "part-1/design_v1.stl"), "removing twice is fine")

	_, err = fs.Put(ctx, "part-1/document_v2.pdf", strings.NewReader("%PDF"), 4, "")
	require.NoError(t, err)
	require.NoError(t, fs.RemoveAll(ctx, "part-1"))
	_, err = os.Stat(filepath.Join(root, "part-1"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	fs, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../x", "a/../../x", "a//b"} {
		_, err := fs.Put(ctx, key, strings.NewReader("x"), 1, "")
		assert.Error(t, err, key)
	}
	assert.Error(t, fs.RemoveAll(ctx, ".."))
}
