package parts

type createPartRequest struct {
	PartName    string  `json:"part_name" binding:"required"`
	WorkspaceID string  `json:"workspace_id" binding:"required"`
	ProjectID   *string `json:"project_id"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type priorityRequest struct {
	PriorityOrder *int64 `json:"priority_order" binding:"required"`
}

type assignRequest struct {
	ProjectID *string `json:"project_id"`
}

type renameRequest struct {
	PartName string `json:"part_name" binding:"required"`
}

type addRevisionRequest struct {
	FileName    string `json:"file_name" binding:"required"`
	FilePath    string `json:"file_path"`
	FileType    string `json:"file_type"`
	MimeType    string `json:"mime_type"`
	FileSize    int64  `json:"file_size"`
	UploadStage string `json:"upload_stage"`
	UploadedBy  string `json:"uploaded_by"`
}
