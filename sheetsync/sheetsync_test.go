package sheetsync

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
)

type fakeSheets struct {
	sheet string
	row   []any
	err   error
}

func (f *fakeSheets) Append(_ context.Context, _ string, sheet string, row []any) (string, error) {
	f.sheet, f.row = sheet, row
	if f.err != nil {
		return "", f.err
	}
	return sheet + "!A2:Q2", nil
}

func TestRow_Inquiry(t *testing.T) {
	sheet, row, err := Row(models.TableInquiries, map[string]any{
		"id":           "id-1",
		"submitted_at": "2025-03-01T09:30:00Z",
		"full_name":    "Asha",
		"email":        "asha@example.com",
		"phone":        "0123",
		"course":       "Diploma",
	})
	require.NoError(t, err)
	assert.Equal(t, "Applications", sheet)
	assert.Equal(t, []any{"id-1", "2025-03-01T09:30:00Z", "Asha", "asha@example.com", "0123", "Diploma", ""}, row)
}

func TestRow_CourseApplication(t *testing.T) {
	sheet, row, err := Row(models.TableCourseApplications, map[string]any{
		"id":             "id-2",
		"full_name":      "Asha",
		"terms_accepted": true,
		"street_second":  nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "Course Applications", sheet)
	require.Len(t, row, 17)
	assert.Equal(t, "id-2", row[0])
	assert.Equal(t, "", row[8], "missing second street line")
	assert.Equal(t, "YES", row[15])
	assert.Equal(t, "MGT1800", row[16])

	_, row, err = Row(models.TableCourseApplications, map[string]any{"terms_accepted": false, "course_code": "BUS100"})
	require.NoError(t, err)
	assert.Equal(t, "NO", row[15])
	assert.Equal(t, "BUS100", row[16])
}

func TestRow_UnknownTable(t *testing.T) {
	_, _, err := Row("members", nil)
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestSync(t *testing.T) {
	client := &fakeSheets{}
	s := NewWithClient(client, "sheet-1")

	res, err := s.Sync(context.Background(), models.SyncRequest{
		Table:     models.TableInquiries,
		Operation: "INSERT",
		Data:      map[string]any{"id": "id-1"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Successfully synced applications data to Google Sheets", res.Message)
	assert.Equal(t, "Applications!A2:Q2", res.UpdatedRange)
	assert.Equal(t, "Applications", client.sheet)
}

func TestSync_NotConfigured(t *testing.T) {
	s := New("", "")
	_, err := s.Sync(context.Background(), models.SyncRequest{Table: models.TableInquiries})
	assert.ErrorIs(t, err, ErrNotConfigured)

	s = New(`{"client_email":"a@b","private_key":"k"}`, "")
	_, err = s.Sync(context.Background(), models.SyncRequest{Table: models.TableInquiries})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSync_InvalidCredentials(t *testing.T) {
	s := New(`{not json`, "sheet-1")
	assert.True(t, s.Configured())

	_, err := s.Sync(context.Background(), models.SyncRequest{Table: models.TableInquiries})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func TestSync_TestRequest(t *testing.T) {
	_, err := New("", "").Sync(context.Background(), models.SyncRequest{Test: true})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = New("", "sheet-1").Sync(context.Background(), models.SyncRequest{Test: true})
	assert.ErrorIs(t, err, ErrNotConfigured)

	client := &fakeSheets{}
	res, err := NewWithClient(client, "sheet-1").Sync(context.Background(), models.SyncRequest{Test: true})
	require.NoError(t, err)
	assert.True(t, *res.Configured)
	assert.Nil(t, client.row, "test request never appends")
}

func TestSync_ProviderError(t *testing.T) {
	s := NewWithClient(&fakeSheets{err: errors.New("Google Sheets API error: 403 - denied")}, "sheet-1")
	_, err := s.Sync(context.Background(), models.SyncRequest{Table: models.TableCourseApplications})
	assert.EqualError(t, err, "Google Sheets API error: 403 - denied")
}
