package account

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

func (h *Handler) Link(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	acct, err := h.service.Link(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			response.Error(c, http.StatusConflict, "ACCOUNT_EXISTS", "This ad account is already linked")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LINK_FAILED", "Failed to link ad account")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"account": acct})
}

func (h *Handler) List(c *gin.Context) {
	userID := c.GetInt64("user_id")

	accounts, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list ad accounts")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"accounts": accounts})
}

func (h *Handler) Get(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid account ID")
		return
	}

	acct, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Ad account not found")
		case errors.Is(err, ErrNotOwner):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this ad account")
		default:
			response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to get ad account")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"account": acct})
}

func (h *Handler) Deactivate(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid account ID")
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, ErrAccountNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Ad account not found")
		case errors.Is(err, ErrNotOwner):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this ad account")
		default:
			response.Error(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to deactivate ad account")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Ad account deactivated"})
}
