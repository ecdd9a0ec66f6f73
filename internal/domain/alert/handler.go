package alert

import (
	"errors"
	"net/http"
	"strconv"

	"adpilot/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateRule(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	rule, err := h.service.CreateRule(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidType):
			response.Error(c, http.StatusBadRequest, "INVALID_TYPE", "Unknown alert type")
		case errors.Is(err, ErrRuleCapHit):
			response.Error(c, http.StatusForbidden, "PLAN_LIMIT", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create alert rule")
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"rule": rule})
}

func (h *Handler) ListRules(c *gin.Context) {
	userID := c.GetInt64("user_id")

	rules, err := h.service.ListRules(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list alert rules")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rules": rules})
}

func (h *Handler) UpdateRule(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UpdateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	rule, err := h.service.UpdateRule(c.Request.Context(), userID, id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rule": rule})
}

func (h *Handler) DeleteRule(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteRule(c.Request.Context(), userID, id); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Alert rule deleted"})
}

func (h *Handler) ListNotifications(c *gin.Context) {
	userID := c.GetInt64("user_id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.service.ListNotifications(c.Request.Context(), userID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list notifications")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"notifications": notifications})
}

func (h *Handler) GetSettings(c *gin.Context) {
	userID := c.GetInt64("user_id")

	settings, err := h.service.GetSettings(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load alert settings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update alert settings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid rule ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRuleNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Alert rule not found")
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this alert rule")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process alert rule")
	}
}
