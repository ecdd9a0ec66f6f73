package campaign

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

// Create godoc
// @Summary Create a campaign with its ad set and ad
// @Tags campaigns
// @Accept json
// @Produce json
// @Param request body CreateRequest true "Campaign payload"
// @Success 201 {object} response.Response
// @Router /campaigns [post]
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	created, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, ErrPlanLimit) {
			response.Error(c, http.StatusForbidden, "PLAN_LIMIT", err.Error())
			return
		}
		response.Error(c, http.StatusBadRequest, "CREATE_FAILED", err.Error())
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"campaign": created})
}

func (h *Handler) List(c *gin.Context) {
	userID := c.GetInt64("user_id")

	campaigns, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list campaigns")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"campaigns": campaigns})
}

func (h *Handler) Get(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	cmp, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err, "Failed to get campaign")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"campaign": cmp})
}

func (h *Handler) Update(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	cmp, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.writeError(c, err, "Failed to update campaign")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"campaign": cmp})
}

func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, ErrAlreadyDeleted) {
			response.Error(c, http.StatusConflict, "ALREADY_DELETED", "Campaign is already deleted")
			return
		}
		h.writeError(c, err, "Failed to delete campaign")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Campaign deleted"})
}

// SetStatus handles activate/pause for any level of the graph. The kind
// comes from the route so campaigns, ad sets and ads share one handler.
func (h *Handler) SetStatus(kind EntityKind, target Status) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64("user_id")
		id, ok := h.pathID(c)
		if !ok {
			return
		}

		if err := h.service.SetStatus(c.Request.Context(), userID, kind, id, target); err != nil {
			h.writeError(c, err, "Failed to change status")
			return
		}
		response.Success(c, http.StatusOK, gin.H{
			"id":     id,
			"kind":   kind,
			"status": target,
		})
	}
}

func (h *Handler) SyncStatus(kind EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt64("user_id")
		id, ok := h.pathID(c)
		if !ok {
			return
		}

		if err := h.service.SyncStatus(c.Request.Context(), userID, kind, id); err != nil {
			h.writeError(c, err, "Failed to schedule status sync")
			return
		}
		response.Success(c, http.StatusAccepted, gin.H{"message": "Status sync scheduled"})
	}
}

func (h *Handler) Insights(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	insights, err := h.service.Insights(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err, "Failed to fetch insights")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"insights": insights})
}

func (h *Handler) Stats(c *gin.Context) {
	userID := c.GetInt64("user_id")

	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to compute stats")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrCampaignNotFound), errors.Is(err, ErrAdSetNotFound), errors.Is(err, ErrAdNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
