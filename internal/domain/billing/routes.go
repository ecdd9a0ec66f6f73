package billing

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/billing/plans", h.GetPlans)

	billing := protected.Group("/billing")
	{
		billing.GET("/subscription", h.GetSubscription)
		billing.GET("/usage", h.GetUsage)
		billing.POST("/subscribe", h.Subscribe)
		billing.POST("/confirm", h.ConfirmCheckout)
		billing.POST("/cancel", h.Cancel)
	}
}
