package models

// NotificationRequest is the body accepted by the notification function.
type NotificationRequest struct {
	Table string         `json:"table"`
	Data  map[string]any `json:"data"`
}

type NotificationSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// RecipientResult mirrors a settled send: status is "fulfilled" or "rejected".
type RecipientResult struct {
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
	Success   bool   `json:"success"`
	Details   any    `json:"details"`
}

type NotificationResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Summary NotificationSummary `json:"summary"`
	Results []RecipientResult   `json:"results"`
}

// SyncRequest is the body accepted by the spreadsheet-sync function. Test is
// set by the admin configuration check.
type SyncRequest struct {
	Table     string         `json:"table"`
	Operation string         `json:"operation"`
	Data      map[string]any `json:"data"`
	Test      bool           `json:"test"`
}

type SyncResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	UpdatedRange string `json:"updatedRange,omitempty"`
	Configured   *bool  `json:"configured,omitempty"`
}
