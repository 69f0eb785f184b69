package projects

import (
	"strconv"

	"fabtrack/internal/api/respond"
	"fabtrack/internal/service"

	"github.com/gin-gonic/gin"
)

type createProjectRequest struct {
	Name        string  `json:"name" binding:"required"`
	ParentID    *string `json:"parent_id"`
	WorkspaceID string  `json:"workspace_id" binding:"required"`
}

type updateProjectRequest struct {
	Name    *string `json:"name"`
	Starred *bool   `json:"starred"`
}

type moveProjectRequest struct {
	ParentID *string `json:"parent_id"`
}

type Handler struct {
	svc *service.ProjectService
}

func NewHandler(svc *service.ProjectService) *Handler {
	return &Handler{svc: svc}
}

// GET /workspaces/:id/projects/tree?depth=N. depth=0 returns every level.
func (h *Handler) Tree(c *gin.Context) {
	depth := service.DefaultTreeDepth
	if raw := c.Query("depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.BadRequest(c, "depth must be a non-negative integer")
			return
		}
		depth = n
	}
	nodes, err := h.svc.Tree(c.Request.Context(), c.Param("id"), depth)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"projects": nodes, "depth": depth})
}

func (h *Handler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Create(c.Request.Context(), service.CreateProjectInput{
		Name:        req.Name,
		ParentID:    req.ParentID,
		WorkspaceID: req.WorkspaceID,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.Created(c, p)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) Update(c *gin.Context) {
	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), service.ProjectPatch{
		Name:    req.Name,
		Starred: req.Starred,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) Move(c *gin.Context) {
	var req moveProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, err.Error())
		return
	}
	p, err := h.svc.Move(c.Request.Context(), c.Param("id"), req.ParentID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) Delete(c *gin.Context) {
	res, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, res)
}
