package parts

import (
	"strings"

	"fabtrack/internal/api/respond"
	"fabtrack/internal/service"

	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	history *service.HistoryService
}

func NewHistoryHandler(hs *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: hs}
}

func (h *HistoryHandler) ForPart(c *gin.Context) {
	entries, err := h.history.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"history": entries})
}

// GET /status-history?part_ids=a,b
func (h *HistoryHandler) ForParts(c *gin.Context) {
	var ids []string
	for _, raw := range c.QueryArray("part_ids") {
		ids = append(ids, strings.Split(raw, ",")...)
	}
	byPart, err := h.history.ListForParts(c.Request.Context(), ids)
	if err != nil {
		respond.Error(c, err)
		return
	}
	respond.OK(c, gin.H{"history": byPart})
}
