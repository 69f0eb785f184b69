package parts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const UniqueIDPrefix = "FAB-"

type Part struct {
	ID            string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	UniqueID      string  `gorm:"not null;uniqueIndex" json:"unique_id"`
	PartName      string  `gorm:"not null" json:"part_name"`
	Status        Status  `gorm:"type:varchar(32);not null;default:'new';index" json:"status"`
	ProjectID     *string `gorm:"type:varchar(36);index" json:"project_id"`
	WorkspaceID   string  `gorm:"type:varchar(36);not null;index" json:"workspace_id"`
	PriorityOrder int64   `gorm:"not null;default:0;index" json:"priority_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Part) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// FormatUniqueID renders a counter value as FAB-0001. Values past 9999 keep every digit.
func FormatUniqueID(n int64) string {
	return fmt.Sprintf("%s%04d", UniqueIDPrefix, n)
}

// Counter backs the part identifier sequence.
type Counter struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value int64  `gorm:"not null;default:0"`
}

const PartSequence = "part_seq"
