package models

// Error kinds shown to site visitors.
const (
	ErrorKindValidation = "validation_error"
	ErrorKindRateLimit  = "rate_limited"
	ErrorKindSubmission = "submission_failed"
	ErrorKindForbidden  = "forbidden"
	ErrorKindNotFound   = "not_found"
)

// ErrorResponse is the envelope every site endpoint answers failures with.
type ErrorResponse struct {
	Status            string `json:"status"`
	Error             string `json:"error"`
	Message           string `json:"message"`
	Field             string `json:"field,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// FunctionError is the envelope of the notification and sheet-sync functions.
type FunctionError struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type SubmissionResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
	Table  string `json:"table"`
}
