package routes

import (
	ingestapi "fabtrack/internal/api/ingest"
	partsapi "fabtrack/internal/api/parts"
	projectsapi "fabtrack/internal/api/projects"
	workspacesapi "fabtrack/internal/api/workspaces"
	"fabtrack/internal/app/http/middleware"
	"fabtrack/internal/service"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, svc *service.Services, jwtSecret string) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	workspaces := workspacesapi.NewHandler(svc.Workspaces)
	projects := projectsapi.NewHandler(svc.Projects)
	parts := partsapi.NewHandler(svc.Parts)
	revisions := partsapi.NewRevisionHandler(svc.Revisions)
	history := partsapi.NewHistoryHandler(svc.History)
	ingest := ingestapi.NewHandler(svc.Ingest)

	api := r.Group("/")
	api.Use(middleware.Identity(jwtSecret), middleware.SanitizeInput())

	api.GET("/workspaces", workspaces.List)
	api.POST("/workspaces", workspaces.Create)
	api.GET("/workspaces/:id", workspaces.Get)
	api.PUT("/workspaces/:id", workspaces.Update)
	api.DELETE("/workspaces/:id", workspaces.Delete)

	api.GET("/workspaces/:id/fields", workspaces.GetFields)
	api.PUT("/workspaces/:id/fields", workspaces.SetFields)

	api.GET("/workspaces/:id/shared-parts", workspaces.ListShared)
	api.POST("/workspaces/:id/shared-parts/:partId", workspaces.Share)
	api.DELETE("/workspaces/:id/shared-parts/:partId", workspaces.Unshare)

	api.GET("/workspaces/:id/projects/tree", projects.Tree)
	api.POST("/projects", projects.Create)
	api.GET("/projects/:id", projects.Get)
	api.PUT("/projects/:id", projects.Update)
	api.DELETE("/projects/:id", projects.Delete)
	api.POST("/projects/:id/move", projects.Move)

	api.GET("/parts", parts.List)
	api.POST("/parts", parts.Create)
	api.GET("/parts/:id", parts.Get)
	api.DELETE("/parts/:id", parts.Delete)
	api.PUT("/parts/:id/status", parts.UpdateStatus)
	api.PUT("/parts/:id/priority", parts.Reorder)
	api.PUT("/parts/:id/project", parts.Assign)
	api.PUT("/parts/:id/name", parts.Rename)

	api.GET("/parts/:id/revisions", revisions.List)
	api.GET("/parts/:id/revisions/latest", revisions.Latest)
	api.POST("/parts/:id/revisions", revisions.Add)
	api.POST("/parts/:id/revisions/upload", revisions.Upload)

	api.GET("/parts/:id/history", history.ForPart)
	api.GET("/status-history", history.ForParts)

	api.POST("/ingest", ingest.Ingest)
}
