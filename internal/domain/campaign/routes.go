package campaign

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	campaigns := protected.Group("/campaigns")
	{
		campaigns.POST("", h.Create)
		campaigns.GET("", h.List)
		campaigns.GET("/stats", h.Stats)
		campaigns.GET("/:id", h.Get)
		campaigns.PUT("/:id", h.Update)
		campaigns.DELETE("/:id", h.Delete)
		campaigns.POST("/:id/activate", h.SetStatus(KindCampaign, StatusActive))
		campaigns.POST("/:id/pause", h.SetStatus(KindCampaign, StatusPaused))
		campaigns.POST("/:id/sync", h.SyncStatus(KindCampaign))
		campaigns.GET("/:id/insights", h.Insights)
	}

	adsets := protected.Group("/adsets")
	{
		adsets.POST("/:id/activate", h.SetStatus(KindAdSet, StatusActive))
		adsets.POST("/:id/pause", h.SetStatus(KindAdSet, StatusPaused))
		adsets.POST("/:id/sync", h.SyncStatus(KindAdSet))
	}

	ads := protected.Group("/ads")
	{
		ads.POST("/:id/activate", h.SetStatus(KindAd, StatusActive))
		ads.POST("/:id/pause", h.SetStatus(KindAd, StatusPaused))
		ads.POST("/:id/sync", h.SyncStatus(KindAd))
	}
}
