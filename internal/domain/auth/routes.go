package auth

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/2fa/verify", h.VerifyTwoFactor)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	users := protected.Group("/users")
	{
		users.GET("/me", h.GetMe)
		users.PUT("/me", h.UpdateProfile)
		users.POST("/2fa/setup", h.SetupTwoFactor)
		users.POST("/2fa/enable", h.EnableTwoFactor)
		users.POST("/2fa/disable", h.DisableTwoFactor)
	}
}
