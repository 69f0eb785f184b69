package service

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"fabtrack/internal/apperrors"
	"fabtrack/internal/domain/parts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uniqueIDPattern = regexp.MustCompile(`^FAB-\d{4,}$`)

func TestPartCreate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	pr := env.project(t, ws.ID, "Gearbox", nil)

	first, err := env.Parts.Create(ctx, CreatePartInput{PartName: " bracket ", WorkspaceID: ws.ID})
	require.NoError(t, err)
	second, err := env.Parts.Create(ctx, CreatePartInput{PartName: "shaft", WorkspaceID: ws.ID, ProjectID: &pr})
	require.NoError(t, err)

	assert.Equal(t, "FAB-0001", first.UniqueID)
	assert.Equal(t, "FAB-0002", second.UniqueID)
	assert.Regexp(t, uniqueIDPattern, second.UniqueID)
	assert.Equal(t, "bracket", first.PartName)
	assert.Equal(t, parts.StatusNew, first.Status)
	assert.Equal(t, int64(1), first.PriorityOrder)
	assert.Equal(t, int64(2), second.PriorityOrder)
	require.NotNil(t, second.ProjectID)
	assert.Equal(t, pr, *second.ProjectID)

	history, err := env.History.List(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, parts.StatusNew, history[0].Status)
}

func TestPartCreate_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	other := env.workspace(t, "Other")
	foreign := env.project(t, other.ID, "Foreign", nil)

	_, err := env.Parts.Create(ctx, CreatePartInput{PartName: "", WorkspaceID: ws.ID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.Parts.Create(ctx, CreatePartInput{PartName: "x", WorkspaceID: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.Parts.Create(ctx, CreatePartInput{PartName: "x", WorkspaceID: ws.ID, ProjectID: &foreign})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	// rejected creates do not consume a number
	p, err := env.Parts.Create(ctx, CreatePartInput{PartName: "x", WorkspaceID: ws.ID})
	require.NoError(t, err)
	assert.Equal(t, "FAB-0001", p.UniqueID)
}

func TestPartPriorityIsGlobal(t *testing.T) {
	env := newTestEnv(t)
	a := env.workspace(t, "A")
	b := env.workspace(t, "B")

	env.part(t, a.ID, "one", nil)
	id := env.part(t, b.ID, "two", nil)

	p, err := env.Parts.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.PriorityOrder)
}

func TestPartStatusHistorySequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	id := env.part(t, ws.ID, "bracket", nil)

	_, err := env.Parts.UpdateStatus(ctx, id, "manufacturing")
	require.NoError(t, err)
	p, err := env.Parts.UpdateStatus(ctx, id, " COMPLETED ")
	require.NoError(t, err)
	assert.Equal(t, parts.StatusCompleted, p.Status)

	history, err := env.History.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, parts.StatusNew, history[0].Status)
	assert.Equal(t, parts.StatusManufacturing, history[1].Status)
	assert.Equal(t, parts.StatusCompleted, history[2].Status)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].ChangedAt.After(history[i-1].ChangedAt), "entry %d not after entry %d", i, i-1)
	}

	_, err = env.Parts.UpdateStatus(ctx, id, "shipped")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	_, err = env.Parts.UpdateStatus(ctx, "missing", "review")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	history, err = env.History.List(ctx, id)
	require.NoError(t, err)
	assert.Len(t, history, 3, "rejected changes leave no trace")
}

func TestPartListOrderingAndFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	pr := env.project(t, ws.ID, "Gearbox", nil)

	a := env.part(t, ws.ID, "a", nil)
	b := env.part(t, ws.ID, "b", &pr)
	c := env.part(t, ws.ID, "c", nil)

	_, err := env.Parts.Reorder(ctx, c, 0)
	require.NoError(t, err)
	_, err = env.Parts.UpdateStatus(ctx, a, "urgent")
	require.NoError(t, err)

	list, err := env.Parts.List(ctx, PartFilter{WorkspaceID: ws.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{c, a, b}, []string{list[0].ID, list[1].ID, list[2].ID})

	unassigned, err := env.Parts.List(ctx, PartFilter{WorkspaceID: ws.ID, Unassigned: true})
	require.NoError(t, err)
	assert.Len(t, unassigned, 2)

	inProject, err := env.Parts.List(ctx, PartFilter{ProjectID: pr})
	require.NoError(t, err)
	require.Len(t, inProject, 1)
	assert.Equal(t, b, inProject[0].ID)

	urgent, err := env.Parts.List(ctx, PartFilter{Status: "urgent"})
	require.NoError(t, err)
	require.Len(t, urgent, 1)
	assert.Equal(t, a, urgent[0].ID)
}

func TestPartAssignAndRename(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	other := env.workspace(t, "Other")
	pr := env.project(t, ws.ID, "Gearbox", nil)
	foreign := env.project(t, other.ID, "Foreign", nil)
	id := env.part(t, ws.ID, "bracket", nil)

	p, err := env.Parts.Assign(ctx, id, &pr)
	require.NoError(t, err)
	require.NotNil(t, p.ProjectID)

	_, err = env.Parts.Assign(ctx, id, &foreign)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	p, err = env.Parts.Assign(ctx, id, nil)
	require.NoError(t, err)
	assert.Nil(t, p.ProjectID)

	p, err = env.Parts.Rename(ctx, id, "bracket left")
	require.NoError(t, err)
	assert.Equal(t, "bracket left", p.PartName)
	_, err = env.Parts.Rename(ctx, id, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPartGetByUniqueID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	id := env.part(t, ws.ID, "bracket", nil)

	p, err := env.Parts.GetByUniqueID(ctx, "fab-0001")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)

	_, err = env.Parts.GetByUniqueID(ctx, "FAB-9999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPartDelete_Cascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ws := env.workspace(t, "Shop")
	other := env.workspace(t, "Other")
	id := env.part(t, ws.ID, "bracket", nil)

	rev, err := env.Revisions.UploadRevision(ctx, id, FileUpload{
		FileName: "bracket.stl",
		Size:     5,
		Body:     strings.NewReader("solid"),
	})
	require.NoError(t, err)
	_, err = env.Workspaces.SharePart(ctx, id, other.ID)
	require.NoError(t, err)

	require.NoError(t, env.Parts.Delete(ctx, id))

	_, err = env.Parts.Get(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = env.Revisions.List(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	history, err := env.History.ListForParts(ctx, []string{id})
	require.NoError(t, err)
	assert.Empty(t, history[id])

	shared, err := env.Workspaces.SharedParts(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, shared)

	_, err = os.Stat(rev.FilePath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(env.files.Root, id))
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, env.Parts.Delete(ctx, id), apperrors.ErrNotFound)
}
