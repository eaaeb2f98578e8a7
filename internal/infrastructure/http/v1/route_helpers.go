package v1

import (
	"github.com/gin-gonic/gin"
)

// RecordsRouteHandler defines the interface for view record handlers.
type RecordsRouteHandler interface {
	List(c *gin.Context)
	Query(c *gin.Context)
}

// MetadataRouteHandler defines the interface for catalogue handlers.
type MetadataRouteHandler interface {
	ListViews(c *gin.Context)
	GetView(c *gin.Context)
	ListModules(c *gin.Context)
	GetModule(c *gin.Context)
}

// RegisterRecordsRoutes registers the record routes of every view under group.
//
// Usage:
//
//	handler := handlers.NewRecordsHandler(base, service, cfg.DevOverrides)
//	RegisterRecordsRoutes(api.Group("/views"), handler)
func RegisterRecordsRoutes(group *gin.RouterGroup, handler RecordsRouteHandler) {
	group.GET("/:view/records", handler.List)
	group.POST("/:view/records/query", handler.Query)
}

// RegisterMetadataRoutes registers the catalogue routes under group.
func RegisterMetadataRoutes(group *gin.RouterGroup, handler MetadataRouteHandler) {
	group.GET("/views", handler.ListViews)
	group.GET("/views/:name", handler.GetView)
	group.GET("/modules", handler.ListModules)
	group.GET("/modules/:name", handler.GetModule)
}
