package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	serviceName = "Roster API (Go Version)"
	version     = "3.0.0"
)

// Router builds the gin engine with every route. The server binary and the
// serverless entry point share it.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.RequestLogger())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": serviceName,
			"version": version,
		})
	})
	if h.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))
	}

	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.DELETE("/keys/:id", h.RevokeKey)
	}

	read := r.Group("/api")
	read.Use(h.APIKeyMiddleware())
	{
		read.GET("/areas", h.ListAreas)
		read.GET("/areas/:id", h.GetArea)
		read.GET("/users", h.ListUsers)
		read.GET("/users/:id", h.GetUser)
		read.GET("/work-types", h.ListWorkTypes)

		read.GET("/assignments/:areaId", h.ListAreaAssignments)
		read.GET("/assignments/id/:id", h.GetAssignment)
		read.GET("/assignments/month/:month/:year/:areaId", h.ListMonthAssignments)
		read.GET("/assignments/user/:userId", h.ListUserAssignments)
		read.POST("/assignments/range", h.ListRangeAssignments)
		read.POST("/assignments/validate", h.ValidateAssignment)

		read.GET("/schedule/grid/:month/:year/:areaId", h.Grid)
		read.GET("/schedule/availability/:date/:areaId", h.Availability)
		read.GET("/reports/:month/:year/:areaId", h.Report)
		read.GET("/export/grid/:month/:year/:areaId", h.ExportGrid)
		read.GET("/export/report/:month/:year/:areaId", h.ExportReport)
	}

	write := r.Group("/api")
	write.Use(h.AuthMiddleware())
	{
		write.POST("/areas", h.CreateArea)
		write.PUT("/areas/:id", h.UpdateArea)
		write.DELETE("/areas/:id", h.DeleteArea)

		write.POST("/users", h.CreateUser)
		write.PUT("/users/:id", h.UpdateUser)
		write.DELETE("/users/:id", h.DeleteUser)

		write.POST("/work-types", h.CreateWorkType)
		write.PUT("/work-types/:code", h.UpdateWorkType)
		write.DELETE("/work-types/:code", h.DeleteWorkType)

		write.POST("/assignments", h.CreateAssignment)
		write.PUT("/assignments/:id", h.UpdateAssignment)
		write.DELETE("/assignments/:id", h.DeleteAssignment)
		write.DELETE("/assignments/user/:userId/:month/:year", h.DeleteUserMonth)
	}

	return r
}
