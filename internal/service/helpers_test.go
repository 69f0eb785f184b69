package service

import (
	"context"
	"testing"

	"fabtrack/internal/domain/workspaces"
	"fabtrack/internal/filestore"
	"fabtrack/internal/testutil"

	"github.com/stretchr/testify/require"
)

type testEnv struct {
	*Services
	files *filestore.Local
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	files := testutil.SetupFileStore(t)
	return &testEnv{
		Services: NewServices(testutil.SetupStore(t), files, nil, 4),
		files:    files,
	}
}

func (e *testEnv) workspace(t *testing.T, name string) *workspaces.Workspace {
	t.Helper()
	ws, err := e.Workspaces.Create(context.Background(), CreateWorkspaceInput{Name: name})
	require.NoError(t, err)
	return ws
}

func (e *testEnv) project(t *testing.T, wsID, name string, parentID *string) string {
	t.Helper()
	p, err := e.Projects.Create(context.Background(), CreateProjectInput{Name: name, WorkspaceID: wsID, ParentID: parentID})
	require.NoError(t, err)
	return p.ID
}

func (e *testEnv) part(t *testing.T, wsID, name string, projectID *string) string {
	t.Helper()
	p, err := e.Parts.Create(context.Background(), CreatePartInput{PartName: name, WorkspaceID: wsID, ProjectID: projectID})
	require.NoError(t, err)
	return p.ID
}

func strPtr(s string) *string { return &s }
