package workspaces

import (
	"time"

	"fabtrack/internal/domain/workspaces"
)

type createWorkspaceRequest struct {
	Name       string `json:"name" binding:"required"`
	Color      string `json:"color"`
	Visibility string `json:"visibility"`
}

type updateWorkspaceRequest struct {
	Name       *string `json:"name"`
	Color      *string `json:"color"`
	Visibility *string `json:"visibility"`
}

type fieldRequest struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

type setFieldsRequest struct {
	Fields []fieldRequest `json:"fields"`
}

type FieldDTO struct {
	ID        string   `json:"id"`
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Type      string   `json:"type"`
	Options   []string `json:"options"`
	SortOrder int      `json:"sort_order"`
}

type WorkspaceDTO struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Slug       string     `json:"slug"`
	Color      string     `json:"color"`
	Visibility string     `json:"visibility"`
	Fields     []FieldDTO `json:"fields,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toFieldDTO(f workspaces.FieldDefinition) FieldDTO {
	opts := f.OptionList()
	if opts == nil {
		opts = []string{}
	}
	return FieldDTO{
		ID:        f.ID,
		Key:       f.Key,
		Label:     f.Label,
		Type:      string(f.Type),
		Options:   opts,
		SortOrder: f.SortOrder,
	}
}

func toFieldDTOs(fields []workspaces.FieldDefinition) []FieldDTO {
	out := make([]FieldDTO, 0, len(fields))
	for _, f := range fields {
		out = append(out, toFieldDTO(f))
	}
	return out
}

func toWorkspaceDTO(ws workspaces.Workspace) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:         ws.ID,
		Name:       ws.Name,
		Slug:       ws.Slug,
		Color:      ws.Color,
		Visibility: string(ws.Visibility),
		CreatedAt:  ws.CreatedAt,
		UpdatedAt:  ws.UpdatedAt,
	}
	if len(ws.Fields) > 0 {
		dto.Fields = toFieldDTOs(ws.Fields)
	}
	return dto
}
