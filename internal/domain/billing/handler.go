package billing

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

// GetPlans is public so the pricing page can render without a session.
func (h *Handler) GetPlans(c *gin.Context) {
	plans, err := h.service.GetPlans(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load plans")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plans": plans})
}

func (h *Handler) GetSubscription(c *gin.Context) {
	userID := c.GetInt64("user_id")

	sub, plan, err := h.service.GetCurrentSubscription(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load subscription")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subscription": sub, "plan": plan})
}

func (h *Handler) GetUsage(c *gin.Context) {
	userID := c.GetInt64("user_id")

	usage, err := h.service.GetUsage(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load usage")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"usage": usage})
}

func (h *Handler) Subscribe(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Subscribe(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPlanNotFound):
			response.Error(c, http.StatusNotFound, "PLAN_NOT_FOUND", "Plan not found")
		case errors.Is(err, ErrAlreadySubscribed):
			response.Error(c, http.StatusConflict, "ALREADY_SUBSCRIBED", "Already subscribed to this plan")
		case errors.Is(err, ErrInvalidBillingPeriod):
			response.Error(c, http.StatusBadRequest, "INVALID_PERIOD", "Billing period must be monthly or yearly")
		default:
			response.Error(c, http.StatusInternalServerError, "SUBSCRIBE_FAILED", "Failed to create subscription")
		}
		return
	}
	response.Success(c, http.StatusCreated, result)
}

func (h *Handler) ConfirmCheckout(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sub, err := h.service.ConfirmCheckout(c.Request.Context(), userID, req.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			response.Error(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Checkout session not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "CONFIRM_FAILED", "Failed to confirm checkout")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subscription": sub})
}

func (h *Handler) Cancel(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.service.Cancel(c.Request.Context(), userID, req.Reason); err != nil {
		if errors.Is(err, ErrNoSubscription) {
			response.Error(c, http.StatusNotFound, "NO_SUBSCRIPTION", "No active subscription to cancel")
			return
		}
		response.Error(c, http.StatusInternalServerError, "CANCEL_FAILED", "Failed to cancel subscription")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Subscription cancelled"})
}
