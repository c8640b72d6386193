package httpapi

import (
	"time"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
)

// submissionView is the admin-facing rendering of a submission. Optional
// fields marshal as null when absent; internal storage identifiers beyond the
// public id are never exposed.
type submissionView struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Phone             *string    `json:"phone"`
	Company           *string    `json:"company"`
	Message           string     `json:"message"`
	SubmittedAt       time.Time  `json:"submitted_at"`
	EmailSent         bool       `json:"email_sent"`
	EmailSentAt       *time.Time `json:"email_sent_at"`
	Status            string     `json:"status"`
	AdminResponse     *string    `json:"admin_response"`
	ResponseSentAt    *time.Time `json:"response_sent_at"`
	ResponseEmailSent bool       `json:"response_email_sent"`
}

func newSubmissionView(submission model.ContactSubmission) submissionView {
	backfilled := model.BackfillSubmission(submission)
	return submissionView{
		ID:                backfilled.ID,
		Name:              backfilled.Name,
		Email:             backfilled.Email,
		Phone:             optionalString(backfilled.Phone),
		Company:           optionalString(backfilled.Company),
		Message:           backfilled.Message,
		SubmittedAt:       backfilled.SubmittedAt,
		EmailSent:         backfilled.EmailSent,
		EmailSentAt:       backfilled.EmailSentAt,
		Status:            backfilled.Status,
		AdminResponse:     optionalString(backfilled.AdminResponse),
		ResponseSentAt:    backfilled.ResponseSentAt,
		ResponseEmailSent: backfilled.ResponseEmailSent,
	}
}

func newSubmissionViews(submissions []model.ContactSubmission) []submissionView {
	views := make([]submissionView, 0, len(submissions))
	for _, submission := range submissions {
		views = append(views, newSubmissionView(submission))
	}
	return views
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
