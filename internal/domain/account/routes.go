package account

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	accounts := protected.Group("/accounts")
	{
		accounts.POST("", h.Link)
		accounts.GET("", h.List)
		accounts.GET("/:id", h.Get)
		accounts.DELETE("/:id", h.Deactivate)
	}
}
