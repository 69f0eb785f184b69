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

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateWorkspaceInput struct {
	Name       string
	Color      string
	Visibility string
}

// WorkspacePatch carries the fields to change; nil fields are left alone.
type WorkspacePatch struct {
	Name       *string
	Color      *string
	Visibility *string
}

type FieldInput struct {
	Key     string
	Label   string
	Type    string
	Options []string
}

type WorkspaceService struct {
	store    *store.Store
	trees    cache.TreeCache
	validate *validator.Validate
}

func NewWorkspaceService(st *store.Store, trees cache.TreeCache) *WorkspaceService {
	if trees == nil {
		trees = cache.Noop{}
	}
	return &WorkspaceService{store: st, trees: trees, validate: validator.New()}
}

func (s *WorkspaceService) normalizeColor(raw string) (string, error) {
	color := strings.TrimSpace(raw)
	if color == "" {
		return workspaces.DefaultColor, nil
	}
	if err := s.validate.Var(color, "hexcolor"); err != nil {
		return "", apperrors.ErrInvalidInput.Msg("color must be a hex colour such as #1f2937")
	}
	return strings.ToLower(color), nil
}

func (s *WorkspaceService) Create(ctx context.Context, in CreateWorkspaceInput) (*workspaces.Workspace, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.ErrInvalidInput.Msg("workspace name is required")
	}
	color, err := s.normalizeColor(in.Color)
	if err != nil {
		return nil, err
	}
	visibility, ok := workspaces.ParseVisibility(in.Visibility)
	if !ok {
		visibility = workspaces.VisibilityOpen
	}

	ws := workspaces.Workspace{
		Name:       name,
		Slug:       workspaces.MakeSlug(name),
		Color:      color,
		Visibility: visibility,
	}

	err = s.store.Transaction(ctx, func(tx *gorm.DB) error {
		taken, err := slugTaken(tx, ws.Slug, "")
		if err != nil {
			return err
		}
		if taken {
			return apperrors.ErrConflict.Msg("workspace slug " + ws.Slug + " already exists")
		}
		return tx.Create(&ws).Error
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().Str("workspace_id", ws.ID).Str("slug", ws.Slug).Msg("workspace created")
	return &ws, nil
}

func slugTaken(tx *gorm.DB, slug, exceptID string) (bool, error) {
	q := tx.Model(&workspaces.Workspace{}).Where("slug = ?", slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *WorkspaceService) Update(ctx context.Context, id string, patch WorkspacePatch) (*workspaces.Workspace, error) {
	var ws workspaces.Workspace
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := loadWorkspace(tx, id, &ws); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return apperrors.ErrInvalidInput.Msg("workspace name cannot be empty")
			}
			if name != ws.Name {
				slug := workspaces.MakeSlug(name)
				taken, err := slugTaken(tx, slug, ws.ID)
				if err != nil {
					return err
				}
				if taken {
					return apperrors.ErrConflict.Msg("workspace slug " + slug + " already exists")
				}
				updates["name"] = name
				updates["slug"] = slug
			}
		}
		if patch.Color != nil {
			color, err := s.normalizeColor(*patch.Color)
			if err != nil {
				return err
			}
			updates["color"] = color
		}
		if patch.Visibility != nil {
			// unknown visibility values are ignored
			if v, ok := workspaces.ParseVisibility(*patch.Visibility); ok {
				updates["visibility"] = v
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&ws).Updates(updates).Error; err != nil {
				return err
			}
		}
		return tx.First(&ws, "id = ?", ws.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// Delete removes a workspace after moving everything it owns to the oldest
// remaining workspace. It returns that fallback workspace.
func (s *WorkspaceService) Delete(ctx context.Context, id string) (*workspaces.Workspace, error) {
	var (
		fallback      workspaces.Workspace
		movedParts    int64
		movedProjects int64
	)

	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var target workspaces.Workspace
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&target, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound.Msg("workspace not found")
			}
			return err
		}

		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id <> ?", target.ID).
			Order("created_at ASC, id ASC").
			First(&fallback).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrInvalidOperation.Msg("cannot delete the only workspace")
			}
			return err
		}

		res := tx.Model(&parts.Part{}).
			Where("workspace_id = ?", target.ID).
			Update("workspace_id", fallback.ID)
		if res.Error != nil {
			return res.Error
		}
		movedParts = res.RowsAffected

		res = tx.Model(&projects.Project{}).
			Where("workspace_id = ?", target.ID).
			Update("workspace_id", fallback.ID)
		if res.Error != nil {
			return res.Error
		}
		movedProjects = res.RowsAffected

		if err := tx.Where("workspace_id = ?", target.ID).
			Delete(&workspaces.SharedPart{}).Error; err != nil {
			return err
		}
		// a part that moved into the fallback no longer needs a link into it
		if err := tx.Where("workspace_id = ? AND part_id IN (?)",
			fallback.ID,
			tx.Model(&parts.Part{}).Select("id").Where("workspace_id = ?", fallback.ID),
		).Delete(&workspaces.SharedPart{}).Error; err != nil {
			return err
		}

		if err := tx.Where("workspace_id = ?", target.ID).
			Delete(&workspaces.FieldDefinition{}).Error; err != nil {
			return err
		}
		return tx.Delete(&workspaces.Workspace{}, "id = ?", target.ID).Error
	})
	if err != nil {
		return nil, err
	}

	s.trees.Invalidate(ctx, id, fallback.ID)
	log.Ctx(ctx).Info().
		Str("workspace_id", id).
		Str("fallback_id", fallback.ID).
		Int64("parts_moved", movedParts).
		Int64("projects_moved", movedProjects).
		Msg("workspace deleted")
	return &fallback, nil
}

func loadWorkspace(tx *gorm.DB, id string, ws *workspaces.Workspace) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ErrInvalidInput.Msg("workspace id is required")
	}
	if err := tx.First(ws, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound.Msg("workspace not found")
		}
		return err
	}
	return nil
}

func (s *WorkspaceService) Get(ctx context.Context, id string) (*workspaces.Workspace, error) {
	var ws workspaces.Workspace
	if err := loadWorkspace(s.store.DB(ctx), id, &ws); err != nil {
		return nil, store.Translate(err, "load workspace")
	}
	return &ws, nil
}

// List returns every workspace, oldest first.
func (s *WorkspaceService) List(ctx context.Context) ([]workspaces.Workspace, error) {
	var out []workspaces.Workspace
	if err := s.store.DB(ctx).Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, store.Translate(err, "list workspaces")
	}
	return out, nil
}

// Default returns the oldest workspace.
func (s *WorkspaceService) Default(ctx context.Context) (*workspaces.Workspace, error) {
	var ws workspaces.Workspace
	err := s.store.DB(ctx).Order("created_at ASC, id ASC").First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNoWorkspaceAvailable.Msg("no workspace exists")
	}
	if err != nil {
		return nil, store.Translate(err, "load default workspace")
	}
	return &ws, nil
}

// EnsureDefault creates a workspace called name when none exists yet.
func (s *WorkspaceService) EnsureDefault(ctx context.Context, name string) (*workspaces.Workspace, error) {
	ws, err := s.Default(ctx)
	if err == nil {
		return ws, nil
	}
	if !errors.Is(err, apperrors.ErrNoWorkspaceAvailable) {
		return nil, err
	}
	ws, err = s.Create(ctx, CreateWorkspaceInput{Name: name})
	if errors.Is(err, apperrors.ErrConflict) {
		// another instance bootstrapped concurrently
		return s.Default(ctx)
	}
	return ws, err
}

// SetFields replaces the workspace's field schema.
func (s *WorkspaceService) SetFields(ctx context.Context, workspaceID string, fields []FieldInput) ([]workspaces.FieldDefinition, error) {
	rows := make([]workspaces.FieldDefinition, 0, len(fields))
	seen := map[string]bool{}
	for i, f := range fields {
		key := strings.ToLower(strings.TrimSpace(f.Key))
		if key == "" {
			return nil, apperrors.ErrInvalidInput.Msg("field key is required")
		}
		if seen[key] {
			return nil, apperrors.ErrInvalidInput.Msg("duplicate field key " + key)
		}
		seen[key] = true

		ft, ok := workspaces.ParseFieldType(f.Type)
		if !ok {
			return nil, apperrors.ErrInvalidInput.Msg("unknown field type " + f.Type)
		}
		label := strings.TrimSpace(f.Label)
		if label == "" {
			label = key
		}
		rows = append(rows, workspaces.FieldDefinition{
			WorkspaceID: workspaceID,
			Key:         key,
			Label:       label,
			Type:        ft,
			Options:     workspaces.EncodeOptions(f.Options),
			SortOrder:   i + 1,
		})
	}

	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var ws workspaces.Workspace
		if err := loadWorkspace(tx, workspaceID, &ws); err != nil {
			return err
		}
		if err := tx.Where("workspace_id = ?", ws.ID).Delete(&workspaces.FieldDefinition{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *WorkspaceService) Fields(ctx context.Context, workspaceID string) ([]workspaces.FieldDefinition, error) {
	if _, err := s.Get(ctx, workspaceID); err != nil {
		return nil, err
	}
	var out []workspaces.FieldDefinition
	if err := s.store.DB(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("sort_order ASC").
		Find(&out).Error; err != nil {
		return nil, store.Translate(err, "list fields")
	}
	return out, nil
}

// StatusOptions returns the workspace specific statuses on top of the core set.
func (s *WorkspaceService) StatusOptions(ctx context.Context, workspaceID string) ([]string, error) {
	opts, err := statusOptions(s.store.DB(ctx), workspaceID)
	if err != nil {
		return nil, store.Translate(err, "load status options")
	}
	return opts, nil
}

func statusOptions(tx *gorm.DB, workspaceID string) ([]string, error) {
	var fields []workspaces.FieldDefinition
	if err := tx.Where("workspace_id = ? AND field_key = ? AND field_type = ?",
		workspaceID, workspaces.StatusFieldKey, workspaces.FieldSelect).
		Limit(1).
		Find(&fields).Error; err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return fields[0].OptionList(), nil
}

// SharePart links a part into another workspace. Sharing twice is a no-op.
func (s *WorkspaceService) SharePart(ctx context.Context, partID, workspaceID string) (*workspaces.SharedPart, error) {
	var link workspaces.SharedPart
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var ws workspaces.Workspace
		if err := loadWorkspace(tx, workspaceID, &ws); err != nil {
			return err
		}
		var p parts.Part
		if err := loadPart(tx, partID, &p, false); err != nil {
			return err
		}
		if p.WorkspaceID == ws.ID {
			return apperrors.ErrInvalidOperation.Msg("part already belongs to this workspace")
		}

		var existing []workspaces.SharedPart
		if err := tx.Where("part_id = ? AND workspace_id = ?", p.ID, ws.ID).
			Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) == 1 {
			link = existing[0]
			return nil
		}
		link = workspaces.SharedPart{PartID: p.ID, WorkspaceID: ws.ID}
		return tx.Create(&link).Error
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *WorkspaceService) UnsharePart(ctx context.Context, partID, workspaceID string) error {
	res := s.store.DB(ctx).
		Where("part_id = ? AND workspace_id = ?", partID, workspaceID).
		Delete(&workspaces.SharedPart{})
	if res.Error != nil {
		return store.Translate(res.Error, "unshare part")
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound.Msg("shared part not found")
	}
	return nil
}

// SharedParts lists parts shared into a workspace, in priority order.
func (s *WorkspaceService) SharedParts(ctx context.Context, workspaceID string) ([]parts.Part, error) {
	if _, err := s.Get(ctx, workspaceID); err != nil {
		return nil, err
	}
	var out []parts.Part
	if err := s.store.DB(ctx).
		Joins("JOIN shared_parts ON shared_parts.part_id = parts.id").
		Where("shared_parts.workspace_id = ?", workspaceID).
		Order("parts.priority_order ASC, parts.created_at ASC").
		Find(&out).Error; err != nil {
		return nil, store.Translate(err, "list shared parts")
	}
	return out, nil
}
