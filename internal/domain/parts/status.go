package parts

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusNew           Status = "new"
	StatusDesign        Status = "design"
	StatusManufacturing Status = "manufacturing"
	StatusReview        Status = "review"
	StatusCompleted     Status = "completed"
	StatusUrgent        Status = "urgent"
)

// CoreStatuses lists the statuses every workspace accepts, in workflow order.
var CoreStatuses = []Status{
	StatusNew,
	StatusDesign,
	StatusManufacturing,
	StatusReview,
	StatusCompleted,
	StatusUrgent,
}

func (s Status) IsCore() bool {
	switch s {
	case StatusNew, StatusDesign, StatusManufacturing, StatusReview, StatusCompleted, StatusUrgent:
		return true
	}
	return false
}

// ParseStatus maps raw input onto a core status or one of the workspace's extra
// status options. ok is false for anything else.
func ParseStatus(raw string, extra []string) (Status, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	if s := Status(v); s.IsCore() {
		return s, true
	}
	for _, e := range extra {
		if strings.ToLower(strings.TrimSpace(e)) == v {
			return Status(v), true
		}
	}
	return "", false
}

// StatusHistory is one entry of a part's append-only transition log.
type StatusHistory struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PartID    string    `gorm:"type:varchar(36);not null;index:idx_status_history_part,priority:1" json:"part_id"`
	Status    Status    `gorm:"type:varchar(32);not null" json:"status"`
	ChangedAt time.Time `gorm:"not null;index:idx_status_history_part,priority:2" json:"changed_at"`
}

func (StatusHistory) TableName() string {
	return "status_history"
}

func (h *StatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
