package service

import (
	"context"
	"strings"
	"time"

	"fabtrack/internal/apperrors"
	"fabtrack/internal/domain/parts"
	"fabtrack/internal/store"

	"gorm.io/gorm"
)

// HistoryService owns the append-only status log.
type HistoryService struct {
	store *store.Store
}

func NewHistoryService(st *store.Store) *HistoryService {
	return &HistoryService{store: st}
}

// Append records a transition into status. changedAt is pushed past the part's
// latest entry when the clock has not advanced, so the log orders strictly by time.
func (h *HistoryService) Append(tx *gorm.DB, partID string, status parts.Status, changedAt time.Time) (*parts.StatusHistory, error) {
	at := changedAt.UTC().Truncate(time.Microsecond)

	var last []parts.StatusHistory
	if err := tx.Where("part_id = ?", partID).
		Order("changed_at DESC").
		Limit(1).
		Find(&last).Error; err != nil {
		return nil, store.Translate(err, "load latest status")
	}
	if len(last) == 1 && !at.After(last[0].ChangedAt) {
		at = last[0].ChangedAt.UTC().Add(time.Microsecond)
	}

	entry := parts.StatusHistory{PartID: partID, Status: status, ChangedAt: at}
	if err := tx.Create(&entry).Error; err != nil {
		return nil, store.Translate(err, "append status history")
	}
	return &entry, nil
}

// List returns the timeline of one part, oldest first.
func (h *HistoryService) List(ctx context.Context, partID string) ([]parts.StatusHistory, error) {
	out, err := h.ListForParts(ctx, []string{partID})
	if err != nil {
		return nil, err
	}
	return out[partID], nil
}

// ListForParts returns the timeline of every requested part. Parts without
// entries map to an empty slice.
func (h *HistoryService) ListForParts(ctx context.Context, partIDs []string) (map[string][]parts.StatusHistory, error) {
	ids := make([]string, 0, len(partIDs))
	seen := make(map[string]bool, len(partIDs))
	for _, id := range partIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, apperrors.ErrInvalidInput.Msg("at least one part id is required")
	}

	var rows []parts.StatusHistory
	if err := h.store.DB(ctx).
		Where("part_id IN ?", ids).
		Order("changed_at ASC").
		Find(&rows).Error; err != nil {
		return nil, store.Translate(err, "list status history")
	}

	out := make(map[string][]parts.StatusHistory, len(ids))
	for _, id := range ids {
		out[id] = []parts.StatusHistory{}
	}
	for _, row := range rows {
		out[row.PartID] = append(out[row.PartID], row)
	}
	return out, nil
}
