package projects

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID          string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	ParentID    *string `gorm:"type:varchar(36);index:idx_projects_parent_sort,priority:2" json:"parent_id"`
	WorkspaceID string  `gorm:"type:varchar(36);not null;index:idx_projects_parent_sort,priority:1" json:"workspace_id"`
	SortOrder   int     `gorm:"not null;default:0;index:idx_projects_parent_sort,priority:3" json:"sort_order"`
	Starred     bool    `gorm:"not null;default:false" json:"starred"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Node is a project annotated for tree listings.
type Node struct {
	Project
	PartCount int64  `json:"part_count"`
	Children  []Node `json:"children"`
}
