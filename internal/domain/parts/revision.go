package parts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadStage string

const (
	StageDesign     UploadStage = "design"
	Stage2DDrawing  UploadStage = "2d_drawing"
	StageCNCProgram UploadStage = "cnc_program"
	StageDocument   UploadStage = "document"
)

func ParseUploadStage(raw string) (UploadStage, bool) {
	switch UploadStage(raw) {
	case StageDesign, Stage2DDrawing, StageCNCProgram, StageDocument:
		return UploadStage(raw), true
	}
	return "", false
}

// Revision is an immutable file record. VersionNumber runs 1..N per part without gaps.
type Revision struct {
	ID            string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	PartID        string      `gorm:"type:varchar(36);not null;uniqueIndex:idx_revisions_part_version,priority:1" json:"part_id"`
	VersionNumber int         `gorm:"not null;uniqueIndex:idx_revisions_part_version,priority:2" json:"version_number"`
	FileName      string      `gorm:"not null" json:"file_name"`
	FilePath      string      `gorm:"not null" json:"file_path"`
	FileType      string      `gorm:"type:varchar(32)" json:"file_type"`
	MimeType      string      `gorm:"type:varchar(128)" json:"mime_type,omitempty"`
	FileSize      int64       `gorm:"not null;default:0" json:"file_size"`
	UploadStage   UploadStage `gorm:"type:varchar(32);not null;default:'document'" json:"upload_stage"`
	UploadedBy    string      `json:"uploaded_by"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *Revision) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
