package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	jwtsvc "adpilot/internal/pkg/jwt"
)

func protectedRouter(jwt *jwtsvc.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(jwt))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetInt64("user_id"),
			"email":   c.GetString("email"),
		})
	})
	return router
}

func TestAuthValidToken(t *testing.T) {
	jwt := jwtsvc.New("test-secret-123", time.Hour)
	token, _ := jwt.GenerateToken(42, "user@example.com")

	router := protectedRouter(jwt)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
	assert.Contains(t, w.Body.String(), "user@example.com")
}

func TestAuthInvalidToken(t *testing.T) {
	router := protectedRouter(jwtsvc.New("right-secret", time.Hour))

	forged, _ := jwtsvc.New("wrong-secret", time.Hour).GenerateToken(42, "user@example.com")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestAuthMissingHeader(t *testing.T) {
	router := protectedRouter(jwtsvc.New("secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsPendingTwoFactorToken(t *testing.T) {
	jwt := jwtsvc.New("test-secret-123", time.Hour)
	pending, _ := jwt.GenerateTwoFactorToken(42, "user@example.com")

	router := protectedRouter(jwt)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+pending)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Two-factor verification required")
}
