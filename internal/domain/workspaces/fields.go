package workspaces

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldSelect FieldType = "select"
)

// StatusFieldKey is the select field whose options extend the part status set.
const StatusFieldKey = "status"

func ParseFieldType(raw string) (FieldType, bool) {
	switch FieldType(strings.ToLower(strings.TrimSpace(raw))) {
	case FieldText:
		return FieldText, true
	case FieldNumber:
		return FieldNumber, true
	case FieldSelect:
		return FieldSelect, true
	default:
		return "", false
	}
}

// FieldDefinition is one column of a workspace's part field schema.
type FieldDefinition struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	WorkspaceID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_field_ws_key,priority:1" json:"workspace_id"`
	Key         string    `gorm:"column:field_key;not null;uniqueIndex:idx_field_ws_key,priority:2" json:"key"`
	Label       string    `gorm:"not null" json:"label"`
	Type        FieldType `gorm:"column:field_type;type:varchar(16);not null" json:"type"`
	Options     string    `gorm:"type:text;not null;default:'[]'" json:"-"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *FieldDefinition) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// OptionList decodes the stored select options. Malformed rows yield nil.
func (f FieldDefinition) OptionList() []string {
	var out []string
	if err := json.Unmarshal([]byte(f.Options), &out); err != nil {
		return nil
	}
	return out
}

func EncodeOptions(opts []string) string {
	if opts == nil {
		opts = []string{}
	}
	b, _ := json.Marshal(opts)
	return string(b)
}
