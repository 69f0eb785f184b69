package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"fabtrack/internal/apperrors"
	"fabtrack/internal/cache"
	"fabtrack/internal/domain/parts"
	"fabtrack/internal/domain/projects"
	"fabtrack/internal/domain/workspaces"
	"fabtrack/internal/filestore"
	"fabtrack/internal/store"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreatePartInput struct {
	PartName    string
	WorkspaceID string
	ProjectID   *string
}

// PartFilter narrows List. Empty fields do not filter.
type PartFilter struct {
	WorkspaceID string
	ProjectID   string
	Unassigned  bool
	Status      string
}

type PartService struct {
	store   *store.Store
	seq     *SequenceAllocator
	history *HistoryService
	files   filestore.FileStore
	trees   cache.TreeCache
}

func NewPartService(st *store.Store, seq *SequenceAllocator, history *HistoryService, files filestore.FileStore, trees cache.TreeCache) *PartService {
	if trees == nil {
		trees = cache.Noop{}
	}
	return &PartService{store: st, seq: seq, history: history, files: files, trees: trees}
}

func loadPart(tx *gorm.DB, id string, p *parts.Part, lock bool) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ErrInvalidInput.Msg("part id is required")
	}
	q := tx
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound.Msg("part not found")
		}
		return err
	}
	return nil
}

// projectInWorkspace checks that projectID exists and lives in workspaceID.
func projectInWorkspace(tx *gorm.DB, projectID, workspaceID string) error {
	var pr projects.Project
	if err := loadProject(tx, projectID, &pr); err != nil {
		return err
	}
	if pr.WorkspaceID != workspaceID {
		return apperrors.ErrInvalidInput.Msg("project belongs to another workspace")
	}
	return nil
}

// Create allocates the next FAB number and inserts the part with its first
// history entry. Allocation and insert commit together.
func (s *PartService) Create(ctx context.Context, in CreatePartInput) (*parts.Part, error) {
	name := strings.TrimSpace(in.PartName)
	if name == "" {
		return nil, apperrors.ErrInvalidInput.Msg("part name is required")
	}
	projectID := normalizeID(in.ProjectID)

	var p parts.Part
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		var ws workspaces.Workspace
		if err := loadWorkspace(tx, in.WorkspaceID, &ws); err != nil {
			return err
		}
		if projectID != nil {
			if err := projectInWorkspace(tx, *projectID, ws.ID); err != nil {
				return err
			}
		}

		n, err := s.seq.NextTx(tx)
		if err != nil {
			return err
		}

		// priority order is global across workspaces
		var top int64
		if err := tx.Model(&parts.Part{}).
			Select("COALESCE(MAX(priority_order), 0)").
			Scan(&top).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		p = parts.Part{
			UniqueID:      parts.FormatUniqueID(n),
			PartName:      name,
			Status:        parts.StatusNew,
			ProjectID:     projectID,
			WorkspaceID:   ws.ID,
			PriorityOrder: top + 1,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		_, err = s.history.Append(tx, p.ID, parts.StatusNew, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if p.ProjectID != nil {
		s.trees.Invalidate(ctx, p.WorkspaceID)
	}
	log.Ctx(ctx).Debug().Str("part_id", p.ID).Str("unique_id", p.UniqueID).Msg("part created")
	return &p, nil
}

func (s *PartService) Get(ctx context.Context, id string) (*parts.Part, error) {
	var p parts.Part
	if err := loadPart(s.store.DB(ctx), id, &p, false); err != nil {
		return nil, store.Translate(err, "load part")
	}
	return &p, nil
}

func (s *PartService) GetByUniqueID(ctx context.Context, uniqueID string) (*parts.Part, error) {
	var p parts.Part
	err := s.store.DB(ctx).First(&p, "unique_id = ?", strings.ToUpper(strings.TrimSpace(uniqueID))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrNotFound.Msg("part not found")
	}
	if err != nil {
		return nil, store.Translate(err, "load part")
	}
	return &p, nil
}

// List returns parts in priority order; ties fall back to creation time.
func (s *PartService) List(ctx context.Context, f PartFilter) ([]parts.Part, error) {
	q := s.store.DB(ctx).Model(&parts.Part{})
	if f.WorkspaceID != "" {
		q = q.Where("workspace_id = ?", f.WorkspaceID)
	}
	switch {
	case f.Unassigned:
		q = q.Where("project_id IS NULL")
	case f.ProjectID != "":
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", strings.ToLower(strings.TrimSpace(f.Status)))
	}

	var out []parts.Part
	if err := q.Order("priority_order ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, store.Translate(err, "list parts")
	}
	return out, nil
}

// UpdateStatus moves a part into a new status and appends the transition to
// its history in the same transaction.
func (s *PartService) UpdateStatus(ctx context.Context, id, rawStatus string) (*parts.Part, error) {
	var p parts.Part
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := loadPart(tx, id, &p, true); err != nil {
			return err
		}
		extra, err := statusOptions(tx, p.WorkspaceID)
		if err != nil {
			return err
		}
		status, ok := parts.ParseStatus(rawStatus, extra)
		if !ok {
			return apperrors.ErrInvalidInput.Msg("unknown status " + strings.TrimSpace(rawStatus))
		}

		now := time.Now().UTC()
		if err := tx.Model(&p).Updates(map[string]interface{}{
			"status":     status,
			"updated_at": now,
		}).Error; err != nil {
			return err
		}
		p.Status = status
		_, err = s.history.Append(tx, p.ID, status, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Reorder sets a part's priority rank. Equal ranks are allowed.
func (s *PartService) Reorder(ctx context.Context, id string, priority int64) (*parts.Part, error) {
	var p parts.Part
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := loadPart(tx, id, &p, true); err != nil {
			return err
		}
		if err := tx.Model(&p).Update("priority_order", priority).Error; err != nil {
			return err
		}
		p.PriorityOrder = priority
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Assign moves a part into a project of its own workspace, or out of any
// project when projectID is nil.
func (s *PartService) Assign(ctx context.Context, id string, projectID *string) (*parts.Part, error) {
	target := normalizeID(projectID)

	var p parts.Part
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := loadPart(tx, id, &p, true); err != nil {
			return err
		}
		if target != nil {
			if err := projectInWorkspace(tx, *target, p.WorkspaceID); err != nil {
				return err
			}
		}
		if err := tx.Model(&p).Update("project_id", target).Error; err != nil {
			return err
		}
		p.ProjectID = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.trees.Invalidate(ctx, p.WorkspaceID)
	return &p, nil
}

func (s *PartService) Rename(ctx context.Context, id, name string) (*parts.Part, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrInvalidInput.Msg("part name is required")
	}
	var p parts.Part
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := loadPart(tx, id, &p, true); err != nil {
			return err
		}
		if err := tx.Model(&p).Update("part_name", name).Error; err != nil {
			return err
		}
		p.PartName = name
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a part together with its revisions, history and share links.
// Stored files are removed after the commit; a failure there only leaves
// unreachable bytes behind.
func (s *PartService) Delete(ctx context.Context, id string) error {
	var p parts.Part
	err := s.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := loadPart(tx, id, &p, true); err != nil {
			return err
		}
		if err := tx.Where("part_id = ?", p.ID).Delete(&parts.Revision{}).Error; err != nil {
			return err
		}
		if err := tx.Where("part_id = ?", p.ID).Delete(&parts.StatusHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("part_id = ?", p.ID).Delete(&workspaces.SharedPart{}).Error; err != nil {
			return err
		}
		return tx.Delete(&parts.Part{}, "id = ?", p.ID).Error
	})
	if err != nil {
		return err
	}

	if s.files != nil {
		if err := s.files.RemoveAll(context.WithoutCancel(ctx), p.ID); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("part_id", p.ID).Msg("failed to remove part files")
		}
	}
	if p.ProjectID != nil {
		s.trees.Invalidate(ctx, p.WorkspaceID)
	}
	return nil
}
