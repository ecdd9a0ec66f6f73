package bulkupload

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	uploads := protected.Group("/bulk-uploads")
	{
		uploads.POST("/upload", h.Upload)
		uploads.GET("", h.List)
		uploads.GET("/template", h.DownloadTemplate)
		uploads.GET("/:id", h.Get)
		uploads.POST("/:id/process", h.Process)
		uploads.GET("/:id/progress", h.Progress)
	}
}
