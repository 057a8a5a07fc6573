package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/operations"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/services"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/sheetsync"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	submissionService services.SubmissionService
	notifier          services.Notifier
	syncer            services.Syncer
}

// NewHandlers creates a new Handlers instance
func NewHandlers(submissionService services.SubmissionService, notifier services.Notifier, syncer services.Syncer) *Handlers {
	return &Handlers{
		submissionService: submissionService,
		notifier:          notifier,
		syncer:            syncer,
	}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// SubmitInquiry handles the "request course information" form.
func (h *Handlers) SubmitInquiry(c *gin.Context) {
	var form models.InquiryForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, "Invalid JSON format")
		return
	}

	inquiry, err := h.submissionService.SubmitInquiry(c.Request.Context(), form, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SubmissionResponse{
		Status: "success",
		ID:     inquiry.ID,
		Table:  models.TableInquiries,
	})
}

// SubmitCourseApplication handles the multipart course application form.
func (h *Handlers) SubmitCourseApplication(c *gin.Context) {
	var form models.CourseApplicationForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "Invalid form data")
		return
	}
	// a missing file is reported by validation
	form.Document, _ = c.FormFile("document")

	app, err := h.submissionService.SubmitCourseApplication(c.Request.Context(), form, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.SubmissionResponse{
		Status: "success",
		ID:     app.ID,
		Table:  models.TableCourseApplications,
	})
}

// UploadDocument stores a single document and returns its public URL.
func (h *Handlers) UploadDocument(c *gin.Context) {
	file, err := c.FormFile("document")
	if err != nil {
		badRequest(c, "Error getting file: "+err.Error())
		return
	}

	doc, err := h.submissionService.UploadDocument(c.Request.Context(), file, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// SendNotificationEmail emails staff about a submitted record.
func (h *Handlers) SendNotificationEmail(c *gin.Context) {
	var req models.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		functionError(c, "Failed to send notification email", errors.Wrap(err, "invalid request body"))
		return
	}

	result, err := h.notifier.Notify(c.Request.Context(), req.Table, req.Data)
	if err != nil {
		functionError(c, "Failed to send notification email", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncGoogleSheets appends a record to the staff spreadsheet.
func (h *Handlers) SyncGoogleSheets(c *gin.Context) {
	var req models.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		functionError(c, "Failed to sync to Google Sheets", errors.Wrap(err, "invalid request body"))
		return
	}

	result, err := h.syncer.Sync(c.Request.Context(), req)
	if err != nil {
		h.syncError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Resync replays a stored record into the spreadsheet.
func (h *Handlers) Resync(c *gin.Context) {
	table, id := c.Param("table"), c.Param("id")

	result, err := h.submissionService.Resync(c.Request.Context(), table, id)
	switch {
	case errors.Is(err, operations.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  statusFailed,
			Error:   models.ErrorKindNotFound,
			Message: "No " + table + " record with id " + id,
		})
	case errors.Is(err, services.ErrUnknownTable):
		badRequest(c, "Unknown table: "+table)
	case err != nil:
		h.syncError(c, err)
	default:
		log.Info().Str("table", table).Str("id", id).Msg("Resynced record")
		c.JSON(http.StatusOK, result)
	}
}

func (h *Handlers) syncError(c *gin.Context, err error) {
	if errors.Is(err, sheetsync.ErrNotConfigured) {
		log.Warn().Msg("Missing Google Sheets credentials or Sheet ID")
		c.JSON(http.StatusBadRequest, models.FunctionError{
			Error:   "Google Sheets credentials not configured",
			Message: "Please configure GOOGLE_SHEETS_CREDENTIALS and GOOGLE_SHEETS_ID in the server environment",
		})
		return
	}
	functionError(c, "Failed to sync to Google Sheets", err)
}
