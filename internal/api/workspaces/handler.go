package workspaces

import (
	"fabtrack/internal/api/respond"
	"fabtrack/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.WorkspaceService
}

func NewHandler(svc *service.WorkspaceService) *Handler {
	return &Handler{svc: svc}
}

// ------------------------------
// GET /workspaces
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]WorkspaceDTO, 0, len(list))
	for _, ws := range list {
		out = append(out, toWorkspaceDTO(ws))
	}
	respond.OK(c, gin.H{"workspaces": out})
}

func (h *Handler) Create(c *gin.Context) {
	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	ws, err := h.svc.Create(c.Request.Context(), service.CreateWorkspaceInput{
		Name:       req.Name,
		Color:      req.Color,
		Visibility: req.Visibility,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, toWorkspaceDTO(*ws))
}

func (h *Handler) Get(c *gin.Context) {
	ws, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, toWorkspaceDTO(*ws))
}

func (h *Handler) Update(c *gin.Context) {
	var req updateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	ws, err := h.svc.Update(c.Request.Context(), c.Param("id"), service.WorkspacePatch{
		Name:       req.Name,
		Color:      req.Color,
		Visibility: req.Visibility,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, toWorkspaceDTO(*ws))
}

// DELETE /workspaces/:id moves everything into the fallback workspace and
// reports which one received it.
func (h *Handler) Delete(c *gin.Context) {
	fallback, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"status": "deleted", "fallback": toWorkspaceDTO(*fallback)})
}

// ------------------------------
// Field schema
// ------------------------------
func (h *Handler) GetFields(c *gin.Context) {
	fields, err := h.svc.Fields(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"fields": toFieldDTOs(fields)})
}

func (h *Handler) SetFields(c *gin.Context) {
	var req setFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	in := make([]service.FieldInput, 0, len(req.Fields))
	for _, f := range req.Fields {
		in = append(in, service.FieldInput{Key: f.Key, Label: f.Label, Type: f.Type, Options: f.Options})
	}
	fields, err := h.svc.SetFields(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"fields": toFieldDTOs(fields)})
}

// ------------------------------
// Sharing
// ------------------------------
func (h *Handler) ListShared(c *gin.Context) {
	list, err := h.svc.SharedParts(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"parts": list})
}

func (h *Handler) Share(c *gin.Context) {
	link, err := h.svc.SharePart(c.Request.Context(), c.Param("partId"), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, link)
}

func (h *Handler) Unshare(c *gin.Context) {
	if err := h.svc.UnsharePart(c.Request.Context(), c.Param("partId"), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"status": "unshared"})
}
