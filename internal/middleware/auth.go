package middleware

import (
	"net/http"
	"strings"

	jwtsvc "adpilot/internal/pkg/jwt"
	"adpilot/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Auth validates the Bearer token and puts user_id and email into the
// gin context. Pending 2FA tokens are rejected; only the verification
// endpoint accepts those, and it lives on the public group.
func Auth(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			abortUnauthorized(c, "Missing or malformed Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			abortUnauthorized(c, "Empty token")
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			abortUnauthorized(c, "Invalid token")
			return
		}
		if claims.Kind != jwtsvc.KindAccess {
			abortUnauthorized(c, "Two-factor verification required")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", msg)
	c.Abort()
}
