package bulkupload

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

// Upload godoc
// @Summary Upload a CSV of campaigns and validate every row
// @Tags bulk-uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param account_id formData int false "Ad account to materialize under"
// @Success 200 {object} response.Response
// @Router /bulk-uploads/upload [post]
func (h *Handler) Upload(c *gin.Context) {
	userID := c.GetInt64("user_id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "NO_FILE", "No file was selected")
		return
	}

	var selectedAccountID *int64
	if raw := c.PostForm("account_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.Error(c, http.StatusBadRequest, "INVALID_ACCOUNT", "Invalid account_id")
			return
		}
		selectedAccountID = &id
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_ERROR", "Failed to open uploaded file")
		return
	}
	defer file.Close()

	report, err := h.service.UploadAndValidate(c.Request.Context(), userID, fileHeader.Filename, selectedAccountID, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrMissingHeader):
			response.Error(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
		case errors.Is(err, ErrRowLimit):
			response.Error(c, http.StatusForbidden, "PLAN_LIMIT", err.Error())
		default:
			response.Error(c, http.StatusBadRequest, "VALIDATION_FAILED", "Failed to process the file")
		}
		return
	}

	response.Success(c, http.StatusOK, report)
}

// Process godoc
// @Summary Start materializing the validated rows of a batch
// @Tags bulk-uploads
// @Produce json
// @Param id path int true "Batch ID"
// @Success 202 {object} response.Response
// @Router /bulk-uploads/{id}/process [post]
func (h *Handler) Process(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.service.Process(c.Request.Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, ErrBatchNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Upload batch not found")
		case errors.Is(err, ErrNotOwner):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this upload batch")
		case errors.Is(err, ErrAlreadyProcessing):
			response.Error(c, http.StatusConflict, "ALREADY_PROCESSING", "Batch is already being processed")
		default:
			response.Error(c, http.StatusInternalServerError, "PROCESS_FAILED", "Failed to start processing")
		}
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{
		"status":         "processing",
		"bulk_upload_id": id,
	})
}

func (h *Handler) Progress(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	report, err := h.service.Progress(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

func (h *Handler) List(c *gin.Context) {
	userID := c.GetInt64("user_id")

	batches, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to list upload batches")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"uploads": batches})
}

func (h *Handler) Get(c *gin.Context) {
	userID := c.GetInt64("user_id")
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	batch, err := h.service.Get(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"upload": batch})
}

// DownloadTemplate serves the CSV template download.
func (h *Handler) DownloadTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="meta_ads_template.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", Template())
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid batch ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBatchNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Upload batch not found")
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You do not own this upload batch")
	default:
		response.Error(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to load upload batch")
	}
}
