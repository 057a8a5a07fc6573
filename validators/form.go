package validators

import (
	"regexp"
	"strings"
	"time"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
)

var dateOfBirthPattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

var genders = map[string]bool{"male": true, "female": true, "others": true}

// ValidateProcessInquiry sanitizes an inquiry form and checks its required fields.
func ValidateProcessInquiry(form models.InquiryForm) (models.Inquiry, error) {
	inquiry := models.Inquiry{
		FullName: SanitizeText(form.FullName, MaxNameLength),
		Email:    SanitizeEmail(form.Email),
		Phone:    SanitizePhone(form.Phone),
		Course:   SanitizeText(form.Course, MaxCourseLength),
	}
	if msg := SanitizeText(form.Message, MaxTextLength); msg != "" {
		inquiry.Message = &msg
	}

	switch {
	case inquiry.FullName == "":
		return models.Inquiry{}, invalid("full_name", "please enter your full name")
	case inquiry.Email == "":
		return models.Inquiry{}, invalid("email", "please enter a valid email address")
	case inquiry.Phone == "":
		return models.Inquiry{}, invalid("phone", "please enter your phone number")
	case inquiry.Course == "":
		return models.Inquiry{}, invalid("course", "please select a course you're interested in")
	}
	return inquiry, nil
}

// ValidateProcessCourseApplication sanitizes a course application form and
// checks terms acceptance, required fields and the attached document.
// The document URL is filled in after upload.
func ValidateProcessCourseApplication(form models.CourseApplicationForm) (models.CourseApplication, error) {
	if !form.TermsAccepted {
		return models.CourseApplication{}, invalid("terms_accepted", "please accept the terms and conditions")
	}

	app := models.CourseApplication{
		FullName:      SanitizeText(form.FullName, MaxNameLength),
		DateOfBirth:   SanitizeText(form.DateOfBirth, MaxDateLength),
		Gender:        strings.ToLower(strings.TrimSpace(form.Gender)),
		Email:         SanitizeEmail(form.Email),
		Phone:         SanitizePhone(form.Phone),
		Street:        SanitizeText(form.Street, MaxStreetLength),
		State:         SanitizeText(form.State, MaxRegionLength),
		Postcode:      SanitizeText(form.Postcode, MaxRegionLength),
		Country:       SanitizeText(form.Country, MaxRegionLength),
		PassportIC:    SanitizePassportIC(form.PassportIC),
		TermsAccepted: true,
		CourseCode:    models.DefaultCourseCode,
	}
	if second := SanitizeText(form.StreetSecond, MaxStreetLength); second != "" {
		app.StreetSecond = &second
	}

	required := []struct{ field, value string }{
		{"full_name", app.FullName},
		{"date_of_birth", app.DateOfBirth},
		{"gender", app.Gender},
		{"email", app.Email},
		{"phone", app.Phone},
		{"street", app.Street},
		{"state", app.State},
		{"postcode", app.Postcode},
		{"country", app.Country},
		{"passport_ic", app.PassportIC},
	}
	for _, r := range required {
		if r.value == "" {
			return models.CourseApplication{}, invalid(r.field, "please fill in all required fields")
		}
	}

	if !validDateOfBirth(app.DateOfBirth) {
		return models.CourseApplication{}, invalid("date_of_birth", "expected DD/MM/YYYY")
	}
	if !genders[app.Gender] {
		return models.CourseApplication{}, invalid("gender", "must be male, female or others")
	}
	if err := ValidateDocument(form.Document); err != nil {
		return models.CourseApplication{}, err
	}

	name := SanitizeText(form.Document.Filename, MaxStreetLength)
	app.DocumentFileName = &name
	return app, nil
}

func validDateOfBirth(s string) bool {
	if !dateOfBirthPattern.MatchString(s) {
		return false
	}
	dob, err := time.Parse("02/01/2006", s)
	return err == nil && dob.Before(time.Now())
}
