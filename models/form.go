package models

import (
	"mime/multipart"
	"time"
)

const (
	TableInquiries          = "applications"
	TableCourseApplications = "course_applications"

	DefaultCourseCode = "MGT1800"
)

// InquiryForm is the raw body of the "request course information" form.
type InquiryForm struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Course         string `json:"course"`
	Message        string `json:"message"`
	TurnstileToken string `json:"turnstile_token"`
}

// CourseApplicationForm is the raw multipart body of the course application form.
type CourseApplicationForm struct {
	FullName       string `form:"full_name"`
	DateOfBirth    string `form:"date_of_birth"`
	Gender         string `form:"gender"`
	Email          string `form:"email"`
	Phone          string `form:"phone"`
	Street         string `form:"street"`
	StreetSecond   string `form:"street_second"`
	State          string `form:"state"`
	Postcode       string `form:"postcode"`
	Country        string `form:"country"`
	PassportIC     string `form:"passport_ic"`
	TermsAccepted  bool   `form:"terms_accepted"`
	TurnstileToken string `form:"turnstile_token"`

	Document *multipart.FileHeader `form:"-"`
}

// Inquiry is a stored general information request.
type Inquiry struct {
	ID          string    `json:"id"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Course      string    `json:"course"`
	Message     *string   `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Document references an uploaded identity document.
type Document struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CourseApplication is a stored enrollment application.
type CourseApplication struct {
	ID               string    `json:"id"`
	FullName         string    `json:"full_name"`
	DateOfBirth      string    `json:"date_of_birth"`
	Gender           string    `json:"gender"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Street           string    `json:"street"`
	StreetSecond     *string   `json:"street_second"`
	State            string    `json:"state"`
	Postcode         string    `json:"postcode"`
	Country          string    `json:"country"`
	PassportIC       string    `json:"passport_ic"`
	DocumentFileName *string   `json:"document_file_name"`
	DocumentFileURL  string    `json:"document_file_url"`
	TermsAccepted    bool      `json:"terms_accepted"`
	CourseCode       string    `json:"course_code"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

// Record flattens an inquiry into the loosely typed map the notification
// and sheet functions receive.
func (i *Inquiry) Record() map[string]any {
	rec := map[string]any{
		"id":           i.ID,
		"full_name":    i.FullName,
		"email":        i.Email,
		"phone":        i.Phone,
		"course":       i.Course,
		"submitted_at": i.SubmittedAt.UTC().Format(time.RFC3339),
	}
	if i.Message != nil {
		rec["message"] = *i.Message
	}
	return rec
}

func (a *CourseApplication) Record() map[string]any {
	rec := map[string]any{
		"id":                a.ID,
		"full_name":         a.FullName,
		"date_of_birth":     a.DateOfBirth,
		"gender":            a.Gender,
		"email":             a.Email,
		"phone":             a.Phone,
		"street":            a.Street,
		"state":             a.State,
		"postcode":          a.Postcode,
		"country":           a.Country,
		"passport_ic":       a.PassportIC,
		"document_file_url": a.DocumentFileURL,
		"terms_accepted":    a.TermsAccepted,
		"course_code":       a.CourseCode,
		"submitted_at":      a.SubmittedAt.UTC().Format(time.RFC3339),
	}
	if a.StreetSecond != nil {
		rec["street_second"] = *a.StreetSecond
	}
	if a.DocumentFileName != nil {
		rec["document_file_name"] = *a.DocumentFileName
	}
	return rec
}
