package services

import (
	"context"
	"mime/multipart"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/ratelimit"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/sheetsync"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/storage"
	"github.com/Niethin69/aadhvikha-learn-empower-succeed/validators"
)

// dispatchTimeout bounds the background notification and sheet sync.
const dispatchTimeout = 30 * time.Second

var ErrUnknownTable = errors.New("unknown table")

// Repository stores submissions.
type Repository interface {
	InsertInquiry(ctx context.Context, inquiry *models.Inquiry) error
	InsertCourseApplication(ctx context.Context, app *models.CourseApplication) error
	GetInquiry(ctx context.Context, id string) (*models.Inquiry, error)
	GetCourseApplication(ctx context.Context, id string) (*models.CourseApplication, error)
}

type Notifier interface {
	Notify(ctx context.Context, table string, data map[string]any) (*models.NotificationResult, error)
}

type Syncer interface {
	Sync(ctx context.Context, req models.SyncRequest) (*models.SyncResult, error)
}

type CaptchaVerifier interface {
	ValidateTurnstileToken(ctx context.Context, token, ip string) error
}

// SubmissionService defines the workflow behind the site's forms
type SubmissionService interface {
	SubmitInquiry(ctx context.Context, form models.InquiryForm, clientKey string) (*models.Inquiry, error)
	SubmitCourseApplication(ctx context.Context, form models.CourseApplicationForm, clientKey string) (*models.CourseApplication, error)
	UploadDocument(ctx context.Context, document *multipart.FileHeader, clientKey string) (*models.Document, error)
	Resync(ctx context.Context, table, id string) (*models.SyncResult, error)
	Wait()
}

type Deps struct {
	Repository    Repository
	Store         storage.Store
	Notifier      Notifier
	Syncer        Syncer
	Captcha       CaptchaVerifier
	FormLimiter   *ratelimit.Limiter
	UploadLimiter *ratelimit.Limiter
}

type submissionServiceImpl struct {
	Deps
	wg sync.WaitGroup
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(deps Deps) SubmissionService {
	return &submissionServiceImpl{Deps: deps}
}

// SubmitInquiry stores a course information request and notifies staff.
func (s *submissionServiceImpl) SubmitInquiry(ctx context.Context, form models.InquiryForm, clientKey string) (*models.Inquiry, error) {
	if err := s.admit(ctx, form.TurnstileToken, clientKey); err != nil {
		return nil, err
	}

	inquiry, err := validators.ValidateProcessInquiry(form)
	if err != nil {
		return nil, err
	}

	if err := s.Repository.InsertInquiry(ctx, &inquiry); err != nil {
		return nil, err
	}

	s.dispatch(models.TableInquiries, inquiry.Record())
	return &inquiry, nil
}

// SubmitCourseApplication validates the application, uploads its document and
// stores it with the document's public URL.
func (s *submissionServiceImpl) SubmitCourseApplication(ctx context.Context, form models.CourseApplicationForm, clientKey string) (*models.CourseApplication, error) {
	if err := s.admit(ctx, form.TurnstileToken, clientKey); err != nil {
		return nil, err
	}

	app, err := validators.ValidateProcessCourseApplication(form)
	if err != nil {
		return nil, err
	}

	doc, err := s.upload(ctx, form.Document, clientKey)
	if err != nil {
		return nil, err
	}
	app.DocumentFileURL = doc.URL

	if err := s.Repository.InsertCourseApplication(ctx, &app); err != nil {
		return nil, err
	}

	s.dispatch(models.TableCourseApplications, app.Record())
	return &app, nil
}

// UploadDocument stores a document on its own, for forms that upload before
// submitting.
func (s *submissionServiceImpl) UploadDocument(ctx context.Context, document *multipart.FileHeader, clientKey string) (*models.Document, error) {
	if err := validators.ValidateDocument(document); err != nil {
		return nil, err
	}
	return s.upload(ctx, document, clientKey)
}

// Resync replays a stored record into the spreadsheet.
func (s *submissionServiceImpl) Resync(ctx context.Context, table, id string) (*models.SyncResult, error) {
	var record map[string]any
	switch table {
	case models.TableInquiries:
		inquiry, err := s.Repository.GetInquiry(ctx, id)
		if err != nil {
			return nil, err
		}
		record = inquiry.Record()
	case models.TableCourseApplications:
		app, err := s.Repository.GetCourseApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		record = app.Record()
	default:
		return nil, errors.Wrapf(ErrUnknownTable, "%s", table)
	}

	return s.Syncer.Sync(ctx, models.SyncRequest{Table: table, Operation: "RESYNC", Data: record})
}

// Wait blocks until every background dispatch has finished.
func (s *submissionServiceImpl) Wait() {
	s.wg.Wait()
}

func (s *submissionServiceImpl) admit(ctx context.Context, token, clientKey string) error {
	if err := s.FormLimiter.Check(ctx, clientKey); err != nil {
		return err
	}
	if s.Captcha != nil {
		if err := s.Captcha.ValidateTurnstileToken(ctx, token, clientKey); err != nil {
			return err
		}
	}
	return nil
}

func (s *submissionServiceImpl) upload(ctx context.Context, document *multipart.FileHeader, clientKey string) (*models.Document, error) {
	if err := s.UploadLimiter.Check(ctx, clientKey); err != nil {
		return nil, err
	}

	src, err := document.Open()
	if err != nil {
		return nil, errors.Wrap(err, "open document")
	}
	defer src.Close()

	key := storage.ObjectKey(document.Filename)
	url, err := s.Store.Put(ctx, key, document.Header.Get("Content-Type"), src, document.Size)
	if err != nil {
		return nil, errors.Wrap(err, "upload document")
	}

	log.Info().Str("key", key).Int64("size", document.Size).Msg("Stored document")
	return &models.Document{Name: validators.SanitizeText(document.Filename, validators.MaxStreetLength), URL: url}, nil
}

// dispatch notifies staff and syncs the spreadsheet without holding up the
// response. Failures are logged; the stored record stays.
func (s *submissionServiceImpl) dispatch(table string, record map[string]any) {
	id, _ := record["id"].(string)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		result, err := s.Notifier.Notify(ctx, table, record)
		if err != nil {
			log.Error().Err(err).Str("table", table).Str("id", id).Msg("Notification failed")
			return
		}
		if result.Summary.Failed > 0 {
			log.Warn().Str("table", table).Str("id", id).Int("failed", result.Summary.Failed).
				Msg("Some notifications were not delivered")
		}
	}()

	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		_, err := s.Syncer.Sync(ctx, models.SyncRequest{Table: table, Operation: "INSERT", Data: record})
		switch {
		case errors.Is(err, sheetsync.ErrNotConfigured):
			log.Debug().Str("table", table).Msg("Google Sheets sync skipped, not configured")
		case err != nil:
			log.Error().Err(err).Str("table", table).Str("id", id).Msg("Google Sheets sync failed")
		}
	}()
}
