package auth

import (
	"errors"
	"net/http"

	"adpilot/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register creates a new platform account.
// @Summary		Register a user
// @Tags		Auth
// @Param		request	body	RegisterRequest	true	"Registration data"
// @Success	201	{object}	map[string]interface{}
// @Failure	409	{object}	map[string]interface{}
// @Router		/auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
			return
		}
		response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login authenticates by email and password. Accounts with 2FA enabled
// receive a pending token instead of an access token.
// @Summary		Log in
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"Credentials"
// @Success	200	{object}	map[string]interface{}
// @Failure	401	{object}	map[string]interface{}
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// VerifyTwoFactor completes a 2FA login.
// @Summary		Verify two-factor code
// @Tags		Auth
// @Param		request	body	TwoFactorVerifyRequest	true	"Pending token and code"
// @Success	200	{object}	map[string]interface{}
// @Failure	401	{object}	map[string]interface{}
// @Router		/auth/2fa/verify [POST]
func (h *Handler) VerifyTwoFactor(c *gin.Context) {
	var req TwoFactorVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.VerifyTwoFactor(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTwoFactor):
			response.Error(c, http.StatusUnauthorized, "INVALID_2FA_CODE", "The verification code is invalid")
		case errors.Is(err, ErrTwoFactorNotPending):
			response.Error(c, http.StatusUnauthorized, "INVALID_PENDING_TOKEN", "Pending token is invalid or expired")
		default:
			response.Error(c, http.StatusInternalServerError, "2FA_VERIFY_FAILED", "Failed to verify code")
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")
	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Could not update profile")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) SetupTwoFactor(c *gin.Context) {
	userID := c.GetInt64("user_id")

	setup, err := h.service.SetupTwoFactor(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrTwoFactorEnabled) {
			response.Error(c, http.StatusConflict, "2FA_ALREADY_ENABLED", "Two-factor auth is already enabled")
			return
		}
		response.Error(c, http.StatusInternalServerError, "2FA_SETUP_FAILED", "Failed to set up two-factor auth")
		return
	}
	response.Success(c, http.StatusOK, setup)
}

func (h *Handler) EnableTwoFactor(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req TwoFactorEnableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	backupCodes, err := h.service.EnableTwoFactor(c.Request.Context(), userID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTwoFactor):
			response.Error(c, http.StatusBadRequest, "INVALID_2FA_CODE", "The verification code is invalid")
		case errors.Is(err, ErrTwoFactorEnabled):
			response.Error(c, http.StatusConflict, "2FA_ALREADY_ENABLED", "Two-factor auth is already enabled")
		default:
			response.Error(c, http.StatusInternalServerError, "2FA_ENABLE_FAILED", "Failed to enable two-factor auth")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"backup_codes": backupCodes})
}

func (h *Handler) DisableTwoFactor(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req TwoFactorDisableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.DisableTwoFactor(c.Request.Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidTwoFactor):
			response.Error(c, http.StatusUnauthorized, "VERIFICATION_FAILED", "Password or code is incorrect")
		case errors.Is(err, ErrTwoFactorDisabled):
			response.Error(c, http.StatusConflict, "2FA_NOT_ENABLED", "Two-factor auth is not enabled")
		default:
			response.Error(c, http.StatusInternalServerError, "2FA_DISABLE_FAILED", "Failed to disable two-factor auth")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Two-factor auth disabled"})
}
