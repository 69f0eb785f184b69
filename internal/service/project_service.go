package service

import (
	"context"
	"errors"
	"strings"

	"fabtrack/internal/apperrors"
	"fabtrack/internal/cache"
	"fabtrack/internal/domain/parts"
	"fabtrack/internal/domain/projects"
	"fabtrack/internal/domain/workspaces"
	"fabtrack/internal/store"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CreateProjectInput struct {
	Name        string
	ParentID    *string
	WorkspaceID string
}

type ProjectPatch struct {
	Name    *string
	Starred *bool
}

// DeleteProjectResult reports what a project deletion touched. RerootedProjects
// are grandchildren whose parent was deleted; their parts keep their project.
type DeleteProjectResult struct {
	UnlinkedParts    int64    `json:"unlinked_parts"`
	DeletedChildren  []string `json:"deleted_children"`
	RerootedProjects []string `json:"rerooted_projects"`
}

type ProjectService struct {
	store *store.Store
	trees cache.TreeCache
}

func NewProjectService(st *store.Store, trees cache.TreeCache) *ProjectService {
	if trees == nil {
		trees = cache.Noop{}
	}
	return &ProjectService{store: st, trees: trees}
}

func loadProject(tx *gorm.DB, id string, p *projects.Project) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ErrInvalidInput.Msg("project id is required")
	}
	if err := tx.First(p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound.Msg("project not found")
		}
		return err
	}
	return nil
}

// siblingScope narrows q to projects sharing workspace and parent.
func siblingScope(q *gorm.DB, workspaceID string, parentID *string) *gorm.DB {
	q = q.Where("workspace_id = ?", workspaceID)
	if parentID == nil {
		return q.Where("parent_id IS NULL")
	}
	return q.Where("parent_id = ?", *parentID)
}

func nextSortOrder(tx *gorm.DB, workspaceID string, parentID *string) (int, error) {
	var top int
	err := siblingScope(tx.Model(&projects.Project{}), workspaceID, parentID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&top).Error
	if err != nil {
		return 0, err
	}
	return top + 1, nil
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	v := strings.TrimSpace(*id)
	if v == "" {
		return nil
	}
	return &v
}

func (s *ProjectService) Create(ctx context.Context, in CreateProjectInput) (*projects.Project, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.ErrInvalidInput.Msg("project name is required")
	}
	parentID := normalizeID(in.ParentID)

	p := projects.Project{Name: name, ParentID: parentID, WorkspaceID: in.WorkspaceID}
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var ws workspaces.Workspace
		if err := loadWorkspace(tx, in.WorkspaceID, &ws); err != nil {
			return err
		}
		if parentID != nil {
			var parent projects.Project
			if err := loadProject(tx, *parentID, &parent); err != nil {
				return err
			}
			if parent.WorkspaceID != ws.ID {
				return apperrors.ErrInvalidInput.Msg("parent project belongs to another workspace")
			}
		}

		order, err := nextSortOrder(tx, ws.ID, parentID)
		if err != nil {
			return err
		}
		p.SortOrder = order
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, err
	}

	s.trees.Invalidate(ctx, p.WorkspaceID)
	return &p, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*projects.Project, error) {
	var p projects.Project
	if err := loadProject(s.store.DB(ctx), id, &p); err != nil {
		return nil, store.Translate(err, "load project")
	}
	return &p, nil
}

func (s *ProjectService) Update(ctx context.Context, id string, patch ProjectPatch) (*projects.Project, error) {
	var p projects.Project
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := loadProject(tx, id, &p); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return apperrors.ErrInvalidInput.Msg("project name cannot be empty")
			}
			updates["name"] = name
		}
		if patch.Starred != nil {
			updates["starred"] = *patch.Starred
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&p).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&p, "id = ?", p.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.trees.Invalidate(ctx, p.WorkspaceID)
	return &p, nil
}

// Move re-parents a project inside its workspace. A nil parent makes it a root.
func (s *ProjectService) Move(ctx context.Context, id string, newParentID *string) (*projects.Project, error) {
	parentID := normalizeID(newParentID)

	var p projects.Project
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := loadProject(tx, id, &p); err != nil {
			return err
		}
		if parentID != nil {
			var parent projects.Project
			if err := loadProject(tx, *parentID, &parent); err != nil {
				return err
			}
			if parent.WorkspaceID != p.WorkspaceID {
				return apperrors.ErrInvalidInput.Msg("parent project belongs to another workspace")
			}
			if err := ensureNotDescendant(tx, p.ID, parent); err != nil {
				return err
			}
		}

		order, err := nextSortOrder(tx, p.WorkspaceID, parentID)
		if err != nil {
			return err
		}
		if err := tx.Model(&p).Updates(map[string]interface{}{
			"parent_id":  parentID,
			"sort_order": order,
		}).Error; err != nil {
			return err
		}
		return tx.First(&p, "id = ?", p.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.trees.Invalidate(ctx, p.WorkspaceID)
	return &p, nil
}

// ensureNotDescendant walks from candidate up to its root and fails if it meets id.
func ensureNotDescendant(tx *gorm.DB, id string, candidate projects.Project) error {
	seen := map[string]bool{}
	cur := candidate
	for {
		if cur.ID == id {
			return apperrors.ErrInvalidOperation.Msg("a project cannot be moved under itself or its descendants")
		}
		if cur.ParentID == nil || seen[cur.ID] {
			return nil
		}
		seen[cur.ID] = true

		var next projects.Project
		err := tx.First(&next, "id = ?", *cur.ParentID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		cur = next
	}
}

// Delete removes a project and its direct children. Parts of both levels are
// unlinked, never deleted. Grandchildren become roots and keep their parts;
// the cascade deliberately stops one level down.
func (s *ProjectService) Delete(ctx context.Context, id string) (*DeleteProjectResult, error) {
	var (
		p   projects.Project
		res = &DeleteProjectResult{DeletedChildren: []string{}, RerootedProjects: []string{}}
	)

	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := loadProject(tx, id, &p); err != nil {
			return err
		}

		if err := tx.Model(&projects.Project{}).
			Where("parent_id = ?", p.ID).
			Order("sort_order ASC").
			Pluck("id", &res.DeletedChildren).Error; err != nil {
			return err
		}

		unlink := append([]string{p.ID}, res.DeletedChildren...)
		r := tx.Model(&parts.Part{}).
			Where("project_id IN ?", unlink).
			Update("project_id", nil)
		if r.Error != nil {
			return r.Error
		}
		res.UnlinkedParts = r.RowsAffected

		if len(res.DeletedChildren) > 0 {
			if err := tx.Model(&projects.Project{}).
				Where("parent_id IN ?", res.DeletedChildren).
				Pluck("id", &res.RerootedProjects).Error; err != nil {
				return err
			}
			if len(res.RerootedProjects) > 0 {
				if err := tx.Model(&projects.Project{}).
					Where("id IN ?", res.RerootedProjects).
					Update("parent_id", nil).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("id IN ?", res.DeletedChildren).
				Delete(&projects.Project{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&projects.Project{}, "id = ?", p.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.trees.Invalidate(ctx, p.WorkspaceID)
	log.Ctx(ctx).Info().
		Str("project_id", p.ID).
		Int64("parts_unlinked", res.UnlinkedParts).
		Int("children_deleted", len(res.DeletedChildren)).
		Int("projects_rerooted", len(res.RerootedProjects)).
		Msg("project deleted")
	return res, nil
}
