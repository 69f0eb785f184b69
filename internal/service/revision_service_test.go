package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"fabtrack/internal/apperrors"
	"fabtrack/internal/domain/parts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRevision_VersionsCountUpFromOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	id := env.part(t, ws.ID, "bracket", nil)

	latest, err := env.Revisions.Latest(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, latest)

	for i := 0; i < 3; i++ {
		rev, err := env.Revisions.AddRevision(ctx, id, FileMetadata{FileName: "bracket.step", FilePath: "/nas/bracket.step"})
		require.NoError(t, err)
		assert.Equal(t, i+1, rev.VersionNumber)
		assert.Equal(t, parts.StageDesign, rev.UploadStage)
		assert.Equal(t, "step", rev.FileType)
	}

	list, err := env.Revisions.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, rev := range list {
		assert.Equal(t, i+1, rev.VersionNumber)
	}

	latest, err = env.Revisions.Latest(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.VersionNumber)
}

func TestAddRevision_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	id := env.part(t, ws.ID, "bracket", nil)

	_, err := env.Revisions.AddRevision(ctx, id, FileMetadata{FileName: " "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.Revisions.AddRevision(ctx, id, FileMetadata{FileName: "a.pdf", UploadStage: "assembly"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.Revisions.AddRevision(ctx, "missing", FileMetadata{FileName: "a.pdf"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.Revisions.Latest(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	rev, err := env.Revisions.AddRevision(ctx, id, FileMetadata{FileName: "notes.pdf", UploadStage: "document"})
	require.NoError(t, err)
	assert.Equal(t, parts.StageDocument, rev.UploadStage, "explicit stage wins over the extension")
	assert.Equal(t, 1, rev.VersionNumber, "rejected revisions leave no gap")
}

func TestAddRevision_ConcurrentUploadsStayGapFree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	id := env.part(t, ws.ID, "bracket", nil)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = env.Revisions.AddRevision(ctx, id, FileMetadata{FileName: "bracket.stl"})
		}()
	}
	wg.Wait()

	list, err := env.Revisions.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, n)
	for i, rev := range list {
		assert.Equal(t, i+1, rev.VersionNumber)
	}
}

func TestUploadRevision_StoresFileUnderStageName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	id := env.part(t, ws.ID, "bracket", nil)

	rev, err := env.Revisions.UploadRevision(ctx, id, FileUpload{
		FileName:   "Bracket.DXF",
		Size:       7,
		Body:       strings.NewReader("0\nLINE\n"),
		UploadedBy: "dana",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rev.VersionNumber)
	assert.Equal(t, parts.Stage2DDrawing, rev.UploadStage)
	assert.Equal(t, "Bracket.DXF", rev.FileName)
	assert.Equal(t, "dxf", rev.FileType)
	assert.Equal(t, "dana", rev.UploadedBy)
	assert.Equal(t, filepath.Join(env.files.Root, id, "2d_drawing_v1.dxf"), rev.FilePath)

	data, err := os.ReadFile(rev.FilePath)
	require.NoError(t, err)
	assert.Equal(t, "0\nLINE\n", string(data))

	rev, err = env.Revisions.UploadRevision(ctx, id, FileUpload{FileName: "bracket.gcode", Size: 3, Body: strings.NewReader("G01")})
	require.NoError(t, err)
	assert.Equal(t, 2, rev.VersionNumber)
	assert.Equal(t, filepath.Join(env.files.Root, id, "cnc_program_v2.gcode"), rev.FilePath)
}

func TestUploadRevision_SniffsMIME(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	id := env.part(t, ws.ID, "bracket", nil)

	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	rev, err := env.Revisions.UploadRevision(ctx, id, FileUpload{FileName: "photo.png", Size: int64(len(png)), Body: strings.NewReader(string(png))})
	require.NoError(t, err)
	assert.Equal(t, "image/png", rev.MimeType)

	data, err := os.ReadFile(rev.FilePath)
	require.NoError(t, err)
	assert.Equal(t, png, data, "sniffing must not consume bytes")
}

func TestUploadRevision_Rejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Revisions.UploadRevision(ctx, "missing", FileUpload{FileName: "a.stl", Size: 1, Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.Revisions.UploadRevision(ctx, "missing", FileUpload{FileName: "a.stl", Size: 0, Body: strings.NewReader("")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	entries, err := os.ReadDir(env.files.Root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
