package ingest

import (
	"io"
	"mime/multipart"
	"net/http"

	"fabtrack/internal/api/respond"
	"fabtrack/internal/app/http/middleware"
	"fabtrack/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.IngestService
}

func NewHandler(svc *service.IngestService) *Handler {
	return &Handler{svc: svc}
}

func fromHeader(fh *multipart.FileHeader) service.IngestFile {
	return service.IngestFile{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// POST /ingest (multipart: files[], optional workspace_id, stop_on_error).
// The response lists one result per file in upload order; the status is 207
// when some files did not make it.
func (h *Handler) Ingest(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respond.BadRequest(c, "multipart form expected")
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		respond.BadRequest(c, "at least one file is required")
		return
	}

	files := make([]service.IngestFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, fromHeader(fh))
	}

	results, err := h.svc.Ingest(c.Request.Context(), service.IngestRequest{
		WorkspaceID: c.PostForm("workspace_id"),
		UploadedBy:  middleware.UploadedBy(c),
		Files:       files,
		StopOnError: c.PostForm("stop_on_error") == "true",
	})
	if err != nil && results == nil {
		respond.Error(c, err)
		return
	}

	status := http.StatusCreated
	for _, r := range results {
		if r.Status == service.IngestFailed || r.Status == service.IngestAbandoned {
			status = http.StatusMultiStatus
			break
		}
	}
	c.JSON(status, gin.H{"results": results})
}
