package operations

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
)

// Dialect selects placeholder style and column types.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

var ErrNotFound = errors.New("record not found")

// Submissions persists inquiries and course applications. Rows are only ever
// inserted; nothing updates or deletes them.
type Submissions struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	newID   func() string
}

func NewSubmissions(db *sql.DB, dialect Dialect) *Submissions {
	return &Submissions{
		db:      db,
		dialect: dialect,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *Submissions) Migrate(ctx context.Context) error {
	ts := "TEXT"
	if s.dialect == Postgres {
		ts = "TIMESTAMPTZ"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS applications (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			course TEXT NOT NULL,
			message TEXT,
			submitted_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS course_applications (
			id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			date_of_birth TEXT NOT NULL,
			gender TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			street TEXT NOT NULL,
			street_second TEXT,
			state TEXT NOT NULL,
			postcode TEXT NOT NULL,
			country TEXT NOT NULL,
			passport_ic TEXT NOT NULL,
			document_file_name TEXT,
			document_file_url TEXT NOT NULL,
			terms_accepted BOOLEAN NOT NULL,
			course_code TEXT NOT NULL,
			submitted_at ` + ts + ` NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrate submissions schema")
		}
	}
	return nil
}

// InsertInquiry assigns an ID and submission time and stores the inquiry.
func (s *Submissions) InsertInquiry(ctx context.Context, inquiry *models.Inquiry) error {
	inquiry.ID = s.newID()
	inquiry.SubmittedAt = s.now().UTC()

	query := s.rebind(`INSERT INTO applications (
		id, full_name, email, phone, course, message, submitted_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		inquiry.ID, inquiry.FullName, inquiry.Email, inquiry.Phone, inquiry.Course,
		nullable(inquiry.Message), inquiry.SubmittedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(err, "insert inquiry")
	}

	log.Info().Str("table", models.TableInquiries).Str("id", inquiry.ID).Msg("Inserted submission")
	return nil
}

// InsertCourseApplication assigns an ID and submission time and stores the application.
func (s *Submissions) InsertCourseApplication(ctx context.Context, app *models.CourseApplication) error {
	app.ID = s.newID()
	app.SubmittedAt = s.now().UTC()
	if app.CourseCode == "" {
		app.CourseCode = models.DefaultCourseCode
	}

	query := s.rebind(`INSERT INTO course_applications (
		id, full_name, date_of_birth, gender, email, phone, street, street_second, state, postcode,
		country, passport_ic, document_file_name, document_file_url, terms_accepted, course_code, submitted_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := s.db.ExecContext(ctx, query,
		app.ID, app.FullName, app.DateOfBirth, app.Gender, app.Email, app.Phone, app.Street,
		nullable(app.StreetSecond), app.State, app.Postcode, app.Country, app.PassportIC,
		nullable(app.DocumentFileName), app.DocumentFileURL, app.TermsAccepted, app.CourseCode,
		app.SubmittedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(err, "insert course application")
	}

	log.Info().Str("table", models.TableCourseApplications).Str("id", app.ID).Msg("Inserted submission")
	return nil
}

func (s *Submissions) GetInquiry(ctx context.Context, id string) (*models.Inquiry, error) {
	query := s.rebind(`SELECT id, full_name, email, phone, course, message, submitted_at
		FROM applications WHERE id = ?`)

	var (
		inquiry     models.Inquiry
		message     sql.NullString
		submittedAt string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&inquiry.ID, &inquiry.FullName, &inquiry.Email, &inquiry.Phone, &inquiry.Course,
		&message, &submittedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get inquiry")
	}

	inquiry.Message = fromNull(message)
	if inquiry.SubmittedAt, err = parseTimestamp(submittedAt); err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (s *Submissions) GetCourseApplication(ctx context.Context, id string) (*models.CourseApplication, error) {
	query := s.rebind(`SELECT id, full_name, date_of_birth, gender, email, phone, street, street_second,
		state, postcode, country, passport_ic, document_file_name, document_file_url, terms_accepted,
		course_code, submitted_at
		FROM course_applications WHERE id = ?`)

	var (
		app          models.CourseApplication
		streetSecond sql.NullString
		documentName sql.NullString
		submittedAt  string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&app.ID, &app.FullName, &app.DateOfBirth, &app.Gender, &app.Email, &app.Phone, &app.Street,
		&streetSecond, &app.State, &app.Postcode, &app.Country, &app.PassportIC, &documentName,
		&app.DocumentFileURL, &app.TermsAccepted, &app.CourseCode, &submittedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get course application")
	}

	app.StreetSecond = fromNull(streetSecond)
	app.DocumentFileName = fromNull(documentName)
	if app.SubmittedAt, err = parseTimestamp(submittedAt); err != nil {
		return nil, err
	}
	return &app, nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Submissions) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "parse submitted_at %q", s)
	}
	return t.UTC(), nil
}
