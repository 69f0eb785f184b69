package parts

import (
	"fabtrack/internal/api/respond"
	"fabtrack/internal/app/http/middleware"
	"fabtrack/internal/service"

	"github.com/gin-gonic/gin"
)

type RevisionHandler struct {
	revisions *service.RevisionService
}

func NewRevisionHandler(rs *service.RevisionService) *RevisionHandler {
	return &RevisionHandler{revisions: rs}
}

func (h *RevisionHandler) List(c *gin.Context) {
	list, err := h.revisions.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"revisions": list})
}

// Latest answers with a null revision when the part has none yet.
func (h *RevisionHandler) Latest(c *gin.Context) {
	rev, err := h.revisions.Latest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"revision": rev})
}

// POST /parts/:id/revisions records metadata for a file stored elsewhere.
func (h *RevisionHandler) Add(c *gin.Context) {
	var req addRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	uploadedBy := req.UploadedBy
	if uploadedBy == "" {
		uploadedBy = middleware.UploadedBy(c)
	}
	rev, err := h.revisions.AddRevision(c.Request.Context(), c.Param("id"), service.FileMetadata{
		FileName:    req.FileName,
		FilePath:    req.FilePath,
		FileType:    req.FileType,
		MimeType:    req.MimeType,
		FileSize:    req.FileSize,
		UploadStage: req.UploadStage,
		UploadedBy:  uploadedBy,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, rev)
}

// POST /parts/:id/revisions/upload (multipart field "file").
func (h *RevisionHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		respond.BadRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.BadRequest(c, "cannot read uploaded file")
		return
	}
	defer f.Close()

	rev, err := h.revisions.UploadRevision(c.Request.Context(), c.Param("id"), service.FileUpload{
		FileName:   fh.Filename,
		Size:       fh.Size,
		Body:       f,
		UploadedBy: middleware.UploadedBy(c),
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, rev)
}
