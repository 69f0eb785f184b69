package workspaces

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultColor = "#4f46e5"

type Workspace struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string     `gorm:"not null" json:"name"`
	Slug       string     `gorm:"not null;uniqueIndex" json:"slug"`
	Color      string     `gorm:"not null;default:'#4f46e5'" json:"color"`
	Visibility Visibility `gorm:"type:varchar(16);not null;default:'open'" json:"visibility"`

	Fields []FieldDefinition `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE;" json:"fields,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// SharedPart makes a part visible in a workspace other than its own.
type SharedPart struct {
	ID          string `gorm:"type:varchar(36);primaryKey" json:"id"`
	PartID      string `gorm:"type:varchar(36);not null;uniqueIndex:idx_shared_part_ws,priority:1" json:"part_id"`
	WorkspaceID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_shared_part_ws,priority:2;index" json:"workspace_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (s *SharedPart) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
