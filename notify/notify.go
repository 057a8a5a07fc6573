package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/clients/resend"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	statusFulfilled = "fulfilled"
	statusRejected  = "rejected"
)

var ErrUnknownTable = errors.New("unknown table")

var subjects = map[string]string{
	models.TableInquiries:          "New Course Information Request - Aadhvikha Ventures",
	models.TableCourseApplications: "New Course Application Submitted - Aadhvikha Ventures",
}

var templates = template.Must(
	template.New("notify").Funcs(template.FuncMap{"submitted": submitted}).ParseFS(templateFS, "templates/*.html"),
)

// submitted formats the record's submission time for staff. Records from
// older clients only carry created_at.
func submitted(data map[string]any) string {
	raw, _ := data["submitted_at"].(string)
	if raw == "" {
		raw, _ = data["created_at"].(string)
	}
	if raw == "" {
		return "Not provided"
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.UTC().Format("2 Jan 2006, 15:04 MST")
}

// Notifier emails staff about new submissions.
type Notifier struct {
	client     resend.Client
	from       string
	recipients []string
}

func New(client resend.Client, from string, recipients []string) *Notifier {
	return &Notifier{client: client, from: from, recipients: recipients}
}

// Render returns the subject and HTML body for a record of table.
func Render(table string, data map[string]any) (string, string, error) {
	subject, ok := subjects[table]
	if !ok {
		return "", "", errors.Wrapf(ErrUnknownTable, "%s", table)
	}
	if data == nil {
		data = map[string]any{}
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, table+".html", data); err != nil {
		return "", "", errors.Wrap(err, "render notification")
	}
	return subject, buf.String(), nil
}

// Notify sends one email per recipient. Every recipient is attempted; a failed
// send is reported in the result, not returned as an error.
func (n *Notifier) Notify(ctx context.Context, table string, data map[string]any) (*models.NotificationResult, error) {
	subject, html, err := Render(table, data)
	if err != nil {
		return nil, err
	}

	log.Info().Str("table", table).Int("recipients", len(n.recipients)).Msg("Sending submission notification")

	results := make([]models.RecipientResult, len(n.recipients))
	var wg sync.WaitGroup
	for i, recipient := range n.recipients {
		wg.Add(1)
		go func(i int, recipient string) {
			defer wg.Done()
			results[i] = n.send(ctx, recipient, subject, html)
		}(i, recipient)
	}
	wg.Wait()

	successful := lo.CountBy(results, func(r models.RecipientResult) bool { return r.Success })
	summary := models.NotificationSummary{
		Total:      len(results),
		Successful: successful,
		Failed:     len(results) - successful,
	}
	log.Info().Str("table", table).Int("successful", summary.Successful).Int("failed", summary.Failed).
		Msg("Notification summary")

	return &models.NotificationResult{
		Success: true,
		Message: fmt.Sprintf("Email notifications processed for %s submission", table),
		Summary: summary,
		Results: results,
	}, nil
}

func (n *Notifier) send(ctx context.Context, recipient, subject, html string) models.RecipientResult {
	id, err := n.client.Send(ctx, resend.Email{
		From:    n.from,
		To:      []string{recipient},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		log.Error().Err(err).Str("recipient", recipient).Msg("Failed to send notification")

		var details any = err.Error()
		var apiErr *resend.APIError
		if errors.As(err, &apiErr) {
			details = map[string]string{"message": apiErr.Message}
		}
		return models.RecipientResult{Recipient: recipient, Status: statusRejected, Details: details}
	}

	return models.RecipientResult{
		Recipient: recipient,
		Status:    statusFulfilled,
		Success:   true,
		Details:   map[string]string{"id": id},
	}
}
