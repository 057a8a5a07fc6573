package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Niethin69/aadhvikha-learn-empower-succeed/models"
)

func TestValidateProcessInquiry(t *testing.T) {
	form := models.InquiryForm{
		FullName: " Jane <b>Doe</b> ",
		Email:    "Jane@Example.com",
		Phone:    "+60 12-345 6789",
		Course:   "Digital Marketing Fundamentals",
	}

	inquiry, err := ValidateProcessInquiry(form)
	require.NoError(t, err)
	assert.Equal(t, "Jane bDoe/b", inquiry.FullName)
	assert.Equal(t, "jane@example.com", inquiry.Email)
	assert.Nil(t, inquiry.Message)

	form.Message = "  Tell me more  "
	inquiry, err = ValidateProcessInquiry(form)
	require.NoError(t, err)
	require.NotNil(t, inquiry.Message)
	assert.Equal(t, "Tell me more", *inquiry.Message)
}

func TestValidateProcessInquiry_MissingFields(t *testing.T) {
	valid := models.InquiryForm{FullName: "Jane", Email: "jane@example.com", Phone: "123", Course: "SEO"}

	tests := map[string]func(f *models.InquiryForm){
		"full_name": func(f *models.InquiryForm) { f.FullName = "<>" },
		"email":     func(f *models.InquiryForm) { f.Email = "jane" },
		"phone":     func(f *models.InquiryForm) { f.Phone = "abc" },
		"course":    func(f *models.InquiryForm) { f.Course = "" },
	}
	for field, mutate := range tests {
		t.Run(field, func(t *testing.T) {
			form := valid
			mutate(&form)
			_, err := ValidateProcessInquiry(form)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, field, ve.Field)
		})
	}
}

func validApplicationForm(t *testing.T) models.CourseApplicationForm {
	return models.CourseApplicationForm{
		FullName:      "Arun Kumar",
		DateOfBirth:   "01/02/1995",
		Gender:        "Male",
		Email:         "arun@example.com",
		Phone:         "+60123456789",
		Street:        "12 Jalan Ampang",
		State:         "Selangor",
		Postcode:      "50450",
		Country:       "Malaysia",
		PassportIC:    "A1234567",
		TermsAccepted: true,
		Document:      fileHeader(t, "passport.pdf", "application/pdf", pdfContent),
	}
}

func TestValidateProcessCourseApplication(t *testing.T) {
	app, err := ValidateProcessCourseApplication(validApplicationForm(t))
	require.NoError(t, err)
	assert.Equal(t, "male", app.Gender)
	assert.Equal(t, models.DefaultCourseCode, app.CourseCode)
	assert.True(t, app.TermsAccepted)
	assert.Nil(t, app.StreetSecond)
	require.NotNil(t, app.DocumentFileName)
	assert.Equal(t, "passport.pdf", *app.DocumentFileName)
}

func TestValidateProcessCourseApplication_Rejections(t *testing.T) {
	tests := map[string]func(f *models.CourseApplicationForm){
		"terms_accepted": func(f *models.CourseApplicationForm) { f.TermsAccepted = false },
		"passport_ic":    func(f *models.CourseApplicationForm) { f.PassportIC = "!!!" },
		"date_of_birth":  func(f *models.CourseApplicationForm) { f.DateOfBirth = "1995-02-01" },
		"gender":         func(f *models.CourseApplicationForm) { f.Gender = "robot" },
		"country":        func(f *models.CourseApplicationForm) { f.Country = " " },
		"document":       func(f *models.CourseApplicationForm) { f.Document = nil },
	}
	for field, mutate := range tests {
		t.Run(field, func(t *testing.T) {
			form := validApplicationForm(t)
			mutate(&form)
			_, err := ValidateProcessCourseApplication(form)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, field, ve.Field)
		})
	}
}
