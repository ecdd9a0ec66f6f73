package alert

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	alerts := protected.Group("/alerts")
	{
		alerts.POST("/rules", h.CreateRule)
		alerts.GET("/rules", h.ListRules)
		alerts.PUT("/rules/:id", h.UpdateRule)
		alerts.DELETE("/rules/:id", h.DeleteRule)
		alerts.GET("/notifications", h.ListNotifications)
		alerts.GET("/settings", h.GetSettings)
		alerts.PUT("/settings", h.UpdateSettings)
	}
}
