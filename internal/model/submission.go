package model

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusResponded = "responded"
	SubmissionStatusArchived  = "archived"

	submissionNameMinLength     = 2
	submissionNameMaxLength     = 100
	submissionEmailMaxLength    = 320
	submissionPhoneMaxLength    = 20
	submissionCompanyMaxLength  = 100
	submissionMessageMinLength  = 10
	submissionMessageMaxLength  = 2000
	submissionResponseMinLength = 1
	submissionResponseMaxLength = 5000

	fieldNameName     = "name"
	fieldNameEmail    = "email"
	fieldNamePhone    = "phone"
	fieldNameCompany  = "company"
	fieldNameMessage  = "message"
	fieldNameStatus   = "status"
	fieldNameResponse = "response_text"
)

var (
	ErrInvalidSubmissionName     = errors.New("invalid_submission_name")
	ErrInvalidSubmissionEmail    = errors.New("invalid_submission_email")
	ErrInvalidSubmissionPhone    = errors.New("invalid_submission_phone")
	ErrInvalidSubmissionCompany  = errors.New("invalid_submission_company")
	ErrInvalidSubmissionMessage  = errors.New("invalid_submission_message")
	ErrInvalidSubmissionStatus   = errors.New("invalid_submission_status")
	ErrInvalidSubmissionResponse = errors.New("invalid_submission_response")
)

// ValidationError reports the first field that violated its constraint.
type ValidationError struct {
	Field  string
	Reason string
	cause  error
}

func (validationError *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", validationError.Field, validationError.Reason)
}

func (validationError *ValidationError) Unwrap() error {
	return validationError.cause
}

func newValidationError(cause error, fieldName string, reason string) *ValidationError {
	return &ValidationError{Field: fieldName, Reason: reason, cause: cause}
}

// ContactSubmission is a single contact-form entry with its lifecycle metadata.
type ContactSubmission struct {
	ID                string     `gorm:"primaryKey;size:36"`
	Name              string     `gorm:"not null;size:100"`
	Email             string     `gorm:"not null;size:320"`
	Phone             string     `gorm:"size:20"`
	Company           string     `gorm:"size:100"`
	Message           string     `gorm:"not null;size:2000"`
	SubmittedAt       time.Time  `gorm:"not null;index"`
	EmailSent         bool       `gorm:"not null;default:false"`
	EmailSentAt       *time.Time
	Status            string     `gorm:"size:16;index"`
	AdminResponse     string     `gorm:"size:5000"`
	ResponseSentAt    *time.Time
	ResponseEmailSent bool       `gorm:"not null;default:false"`
}

// ContactSubmissionInput holds the raw form values used to construct a ContactSubmission.
type ContactSubmissionInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Message string
}

// NewContactSubmission validates and normalizes the input and constructs a
// submission with a fresh identifier, a UTC submission timestamp, and the
// pending defaults.
func NewContactSubmission(input ContactSubmissionInput) (ContactSubmission, error) {
	name := strings.TrimSpace(input.Name)
	nameLength := utf8.RuneCountInString(name)
	if nameLength < submissionNameMinLength || nameLength > submissionNameMaxLength {
		return ContactSubmission{}, newValidationError(ErrInvalidSubmissionName, fieldNameName,
			fmt.Sprintf("must be between %d and %d characters", submissionNameMinLength, submissionNameMaxLength))
	}

	email := strings.TrimSpace(input.Email)
	if validateErr := validateSubmissionEmail(email); validateErr != nil {
		return ContactSubmission{}, newValidationError(validateErr, fieldNameEmail, "must be a valid email address")
	}

	phone := strings.TrimSpace(input.Phone)
	if utf8.RuneCountInString(phone) > submissionPhoneMaxLength {
		return ContactSubmission{}, newValidationError(ErrInvalidSubmissionPhone, fieldNamePhone,
			fmt.Sprintf("must be at most %d characters", submissionPhoneMaxLength))
	}

	company := strings.TrimSpace(input.Company)
	if utf8.RuneCountInString(company) > submissionCompanyMaxLength {
		return ContactSubmission{}, newValidationError(ErrInvalidSubmissionCompany, fieldNameCompany,
			fmt.Sprintf("must be at most %d characters", submissionCompanyMaxLength))
	}

	message := strings.TrimSpace(input.Message)
	messageLength := utf8.RuneCountInString(message)
	if messageLength < submissionMessageMinLength || messageLength > submissionMessageMaxLength {
		return ContactSubmission{}, newValidationError(ErrInvalidSubmissionMessage, fieldNameMessage,
			fmt.Sprintf("must be between %d and %d characters", submissionMessageMinLength, submissionMessageMaxLength))
	}

	return ContactSubmission{
		ID:          uuid.NewString(),
		Name:        name,
		Email:       email,
		Phone:       phone,
		Company:     company,
		Message:     message,
		SubmittedAt: time.Now().UTC(),
		EmailSent:   false,
		Status:      SubmissionStatusPending,
	}, nil
}

// ValidateSubmissionStatus rejects any status outside the allowed set.
func ValidateSubmissionStatus(status string) error {
	switch status {
	case SubmissionStatusPending, SubmissionStatusResponded, SubmissionStatusArchived:
		return nil
	default:
		return newValidationError(ErrInvalidSubmissionStatus, fieldNameStatus,
			"must be one of pending, responded, archived")
	}
}

// ValidateAdminResponse rejects response text outside the allowed length
// range. Lengths count characters, not bytes.
func ValidateAdminResponse(responseText string) error {
	responseLength := utf8.RuneCountInString(responseText)
	if responseLength < submissionResponseMinLength || responseLength > submissionResponseMaxLength {
		return newValidationError(ErrInvalidSubmissionResponse, fieldNameResponse,
			fmt.Sprintf("must be between %d and %d characters", submissionResponseMinLength, submissionResponseMaxLength))
	}
	return nil
}

// BackfillSubmission defaults the workflow fields that records written before
// the admin console existed do not carry. Applied at the read boundary.
func BackfillSubmission(submission ContactSubmission) ContactSubmission {
	if strings.TrimSpace(submission.Status) == "" {
		submission.Status = SubmissionStatusPending
	}
	return submission
}

func validateSubmissionEmail(email string) error {
	if email == "" || len(email) > submissionEmailMaxLength {
		return fmt.Errorf("%w: empty or too long", ErrInvalidSubmissionEmail)
	}
	parsedAddress, parseErr := mail.ParseAddress(email)
	if parseErr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubmissionEmail, parseErr)
	}
	if parsedAddress.Address != email {
		return fmt.Errorf("%w: %s", ErrInvalidSubmissionEmail, email)
	}
	return nil
}
