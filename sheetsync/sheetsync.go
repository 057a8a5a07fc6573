package sheetsync

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/clients/sheets"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
)

var (
	ErrNotConfigured = errors.New("Google Sheets credentials not configured")
	ErrUnknownTable  = errors.New("unknown table")
)

const (
	SheetInquiries          = "Applications"
	SheetCourseApplications = "Course Applications"
)

// Syncer appends submitted records to the staff spreadsheet.
type Syncer struct {
	client        sheets.Client
	spreadsheetID string
	// set when credentials were present but unusable
	credsErr error
}

// New builds a Syncer from the raw service-account JSON and sheet ID. Missing
// values leave it unconfigured; every Sync then fails with ErrNotConfigured.
func New(credentialsJSON, spreadsheetID string, opts ...sheets.Option) *Syncer {
	s := &Syncer{spreadsheetID: spreadsheetID}
	if credentialsJSON == "" || spreadsheetID == "" {
		return s
	}

	creds, err := sheets.ParseCredentials(credentialsJSON)
	if err != nil {
		log.Error().Err(err).Msg("Invalid GOOGLE_SHEETS_CREDENTIALS")
		s.credsErr = err
		return s
	}
	s.client = sheets.NewClient(creds, opts...)
	return s
}

func NewWithClient(client sheets.Client, spreadsheetID string) *Syncer {
	return &Syncer{client: client, spreadsheetID: spreadsheetID}
}

func (s *Syncer) Configured() bool {
	return s.spreadsheetID != "" && (s.client != nil || s.credsErr != nil)
}

// Sync appends req.Data to the tab for req.Table. A missing credential or
// sheet ID is ErrNotConfigured for every request, test requests included; a
// test request on a configured syncer only reports that it is configured.
func (s *Syncer) Sync(ctx context.Context, req models.SyncRequest) (*models.SyncResult, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	if req.Test {
		configured := true
		return &models.SyncResult{
			Success:    true,
			Message:    "Google Sheets integration is configured",
			Configured: &configured,
		}, nil
	}
	if s.credsErr != nil {
		return nil, s.credsErr
	}

	sheet, row, err := Row(req.Table, req.Data)
	if err != nil {
		return nil, err
	}

	log.Info().Str("table", req.Table).Str("operation", req.Operation).Msg("Syncing record to Google Sheets")

	updatedRange, err := s.client.Append(ctx, s.spreadsheetID, sheet, row)
	if err != nil {
		return nil, err
	}

	return &models.SyncResult{
		Success:      true,
		Message:      fmt.Sprintf("Successfully synced %s data to Google Sheets", req.Table),
		UpdatedRange: updatedRange,
	}, nil
}

// Row maps a record to its tab and column order.
func Row(table string, data map[string]any) (string, []any, error) {
	switch table {
	case models.TableInquiries:
		return SheetInquiries, []any{
			value(data, "id"),
			value(data, "submitted_at"),
			value(data, "full_name"),
			value(data, "email"),
			value(data, "phone"),
			value(data, "course"),
			value(data, "message"),
		}, nil
	case models.TableCourseApplications:
		terms := "NO"
		if truthy(data["terms_accepted"]) {
			terms = "YES"
		}
		courseCode := value(data, "course_code")
		if courseCode == "" {
			courseCode = models.DefaultCourseCode
		}
		return SheetCourseApplications, []any{
			value(data, "id"),
			value(data, "submitted_at"),
			value(data, "full_name"),
			value(data, "email"),
			value(data, "phone"),
			value(data, "date_of_birth"),
			value(data, "gender"),
			value(data, "street"),
			value(data, "street_second"),
			value(data, "state"),
			value(data, "postcode"),
			value(data, "country"),
			value(data, "passport_ic"),
			value(data, "document_file_name"),
			value(data, "document_file_url"),
			terms,
			courseCode,
		}, nil
	default:
		return "", nil, errors.Wrapf(ErrUnknownTable, "%s", table)
	}
}

func value(data map[string]any, key string) any {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	return v
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "YES" || t == "yes"
	default:
		return false
	}
}
