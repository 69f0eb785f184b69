package service

import (
	"context"

	"fabtrack/internal/domain/parts"
	"fabtrack/internal/domain/projects"
	"fabtrack/internal/domain/workspaces"
	"fabtrack/internal/store"
)

// DefaultTreeDepth matches the two levels the project sidebar renders.
const DefaultTreeDepth = 2

type partCountRow struct {
	ProjectID string
	Total     int64
}

// Tree returns the workspace's project forest, sorted by sort order at every
// level. depth bounds the traversal; depth <= 0 walks the whole tree.
func (s *ProjectService) Tree(ctx context.Context, workspaceID string, depth int) ([]projects.Node, error) {
	if depth < 0 {
		depth = 0
	}
	if nodes, ok := s.trees.Get(ctx, workspaceID, depth); ok {
		return nodes, nil
	}

	db := s.store.DB(ctx)
	var ws workspaces.Workspace
	if err := loadWorkspace(db, workspaceID, &ws); err != nil {
		return nil, store.Translate(err, "load workspace")
	}

	var all []projects.Project
	if err := db.Where("workspace_id = ?", ws.ID).
		Order("sort_order ASC, created_at ASC").
		Find(&all).Error; err != nil {
		return nil, store.Translate(err, "list projects")
	}

	var counts []partCountRow
	if err := db.Model(&parts.Part{}).
		Select("project_id, COUNT(*) AS total").
		Where("workspace_id = ? AND project_id IS NOT NULL", ws.ID).
		Group("project_id").
		Scan(&counts).Error; err != nil {
		return nil, store.Translate(err, "count parts")
	}

	nodes := buildForest(all, counts, depth)
	s.trees.Set(ctx, ws.ID, depth, nodes)
	return nodes, nil
}

// buildForest links projects into nodes. all must already be in display order.
// A project whose parent is missing from the set is treated as a root.
func buildForest(all []projects.Project, counts []partCountRow, depth int) []projects.Node {
	byID := make(map[string]bool, len(all))
	for _, p := range all {
		byID[p.ID] = true
	}
	total := make(map[string]int64, len(counts))
	for _, c := range counts {
		total[c.ProjectID] = c.Total
	}

	children := map[string][]projects.Project{}
	for _, p := range all {
		key := ""
		if p.ParentID != nil && byID[*p.ParentID] {
			key = *p.ParentID
		}
		children[key] = append(children[key], p)
	}

	var build func(parent string, level int) []projects.Node
	build = func(parent string, level int) []projects.Node {
		out := make([]projects.Node, 0, len(children[parent]))
		for _, p := range children[parent] {
			n := projects.Node{Project: p, PartCount: total[p.ID], Children: []projects.Node{}}
			if depth == 0 || level < depth {
				n.Children = build(p.ID, level+1)
			}
			out = append(out, n)
		}
		return out
	}
	return build("", 1)
}
