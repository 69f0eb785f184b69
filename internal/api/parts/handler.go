package parts

import (
	"strings"

	"fabtrack/internal/api/respond"
	"fabtrack/internal/service"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	parts *service.PartService
}

func NewHandler(ps *service.PartService) *Handler {
	return &Handler{parts: ps}
}

// GET /parts?workspace_id=&project_id=&unassigned=true&status=
func (h *Handler) List(c *gin.Context) {
	list, err := h.parts.List(c.Request.Context(), service.PartFilter{
		WorkspaceID: c.Query("workspace_id"),
		ProjectID:   c.Query("project_id"),
		Unassigned:  c.Query("unassigned") == "true",
		Status:      c.Query("status"),
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"parts": list})
}

func (h *Handler) Create(c *gin.Context) {
	var req createPartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	p, err := h.parts.Create(c.Request.Context(), service.CreatePartInput{
		PartName:    req.PartName,
		WorkspaceID: req.WorkspaceID,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, p)
}

// GET /parts/:id accepts the row id or the FAB number.
func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	get := h.parts.Get
	if strings.HasPrefix(strings.ToUpper(id), "FAB-") {
		get = h.parts.GetByUniqueID
	}
	p, err := get(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	p, err := h.parts.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) Reorder(c *gin.Context) {
	var req priorityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "priority_order required")
		return
	}
	p, err := h.parts.Reorder(c.Request.Context(), c.Param("id"), *req.PriorityOrder)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, p)
}

// PUT /parts/:id/project with a null project_id moves the part out of its project.
func (h *Handler) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	p, err := h.parts.Assign(c.Request.Context(), c.Param("id"), req.ProjectID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) Rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	p, err := h.parts.Rename(c.Request.Context(), c.Param("id"), req.PartName)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.parts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"status": "deleted"})
}
