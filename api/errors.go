package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/ratelimit"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/validators"
)

const statusFailed = "Request Failed"

// writeError maps a submission error to one of the three kinds visitors see.
func writeError(c *gin.Context, err error) {
	var ve *validators.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  statusFailed,
			Error:   models.ErrorKindValidation,
			Message: ve.Reason,
			Field:   ve.Field,
		})
		return
	}

	if le, ok := ratelimit.IsLimitExceeded(err); ok {
		seconds := le.RetryAfterSeconds()
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
			Status:            statusFailed,
			Error:             models.ErrorKindRateLimit,
			Message:           "Too many submissions. Please wait " + formatWait(seconds) + " before trying again.",
			RetryAfterSeconds: seconds,
		})
		return
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg("Submission failed")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Status:  statusFailed,
		Error:   models.ErrorKindSubmission,
		Message: "Something went wrong. Please try again.",
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  statusFailed,
		Error:   models.ErrorKindValidation,
		Message: message,
	})
}

func formatWait(seconds int) string {
	if seconds >= 60 {
		minutes := (seconds + 59) / 60
		if minutes == 1 {
			return "1 minute"
		}
		return strconv.Itoa(minutes) + " minutes"
	}
	if seconds == 1 {
		return "1 second"
	}
	return strconv.Itoa(seconds) + " seconds"
}

// functionError answers a function endpoint failure with a 500.
func functionError(c *gin.Context, message string, err error) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
	c.JSON(http.StatusInternalServerError, models.FunctionError{
		Error:     message,
		Details:   err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
