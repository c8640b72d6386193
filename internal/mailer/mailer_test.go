package mailer_test

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/mailer"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
)

type capturedSend struct {
	address    string
	from       string
	recipients []string
	message    []byte
}

func testSubmission() model.ContactSubmission {
	submittedAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	return model.ContactSubmission{
		ID:          "submission-1",
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		Message:     "I would like to discuss a drilling project.",
		SubmittedAt: submittedAt,
		Status:      model.SubmissionStatusPending,
	}
}

func configuredMailer(capture *capturedSend, sendErr error) *mailer.SMTPMailer {
	configuration := mailer.Config{
		Host:     "smtp.example.com",
		Port:     2525,
		Username: "mailer",
		Password: "secret",
		From:     "noreply@example.com",
		To:       "staff@example.com",
	}
	return mailer.NewSMTPMailer(configuration, zap.NewNop()).WithSendMailFunc(
		func(address string, auth smtp.Auth, from string, recipients []string, message []byte) error {
			if capture != nil {
				capture.address = address
				capture.from = from
				capture.recipients = recipients
				capture.message = message
			}
			return sendErr
		})
}

func TestNotifyNewSubmissionHandsOffToStaffAddress(testingT *testing.T) {
	var capture capturedSend
	smtpMailer := configuredMailer(&capture, nil)

	delivered := smtpMailer.NotifyNewSubmission(context.Background(), testSubmission())
	require.True(testingT, delivered)
	require.Equal(testingT, "smtp.example.com:2525", capture.address)
	require.Equal(testingT, "noreply@example.com", capture.from)
	require.Equal(testingT, []string{"staff@example.com"}, capture.recipients)

	messageText := string(capture.message)
	require.Contains(testingT, messageText, "Subject: New Contact Form Submission - Drilldown Dynamics")
	require.Contains(testingT, messageText, "multipart/alternative")
	require.Contains(testingT, messageText, "Ada Lovelace")
	require.Contains(testingT, messageText, "Phone: Not provided")
	require.Contains(testingT, messageText, "Submission ID: submission-1")
	require.Contains(testingT, messageText, "🔔 New Contact Form Submission")
	require.Contains(testingT, messageText, "2025-06-01 12:30:00 UTC")
}

func TestNotifyNewSubmissionWithoutCredentialsReportsFalse(testingT *testing.T) {
	smtpMailer := mailer.NewSMTPMailer(mailer.Config{Host: "smtp.example.com"}, zap.NewNop()).
		WithSendMailFunc(func(string, smtp.Auth, string, []string, []byte) error {
			testingT.Fatal("transport must not be invoked without credentials")
			return nil
		})

	require.False(testingT, smtpMailer.Configured())
	require.False(testingT, smtpMailer.NotifyNewSubmission(context.Background(), testSubmission()))
}

func TestNotifyNewSubmissionTransportFailureReportsFalse(testingT *testing.T) {
	smtpMailer := configuredMailer(nil, errors.New("connection refused"))
	require.False(testingT, smtpMailer.NotifyNewSubmission(context.Background(), testSubmission()))
}

func TestSendResponseHandsOffToCustomerAddress(testingT *testing.T) {
	var capture capturedSend
	smtpMailer := configuredMailer(&capture, nil)

	delivered := smtpMailer.SendResponse(context.Background(),
		"ada@example.com", "Ada Lovelace", "Original message body.", "Line one\nLine two")
	require.True(testingT, delivered)
	require.Equal(testingT, []string{"ada@example.com"}, capture.recipients)

	messageText := string(capture.message)
	require.Contains(testingT, messageText, "Subject: Re: Your Inquiry - Drilldown Dynamics")
	require.Contains(testingT, messageText, "Dear Ada Lovelace,")
	require.Contains(testingT, messageText, "Original message body.")
	require.Contains(testingT, messageText, "Line one<br>Line two")
}

func TestSendResponseWithoutCredentialsReportsFalse(testingT *testing.T) {
	smtpMailer := mailer.NewSMTPMailer(mailer.Config{}, zap.NewNop())
	delivered := smtpMailer.SendResponse(context.Background(),
		"ada@example.com", "Ada Lovelace", "Original message body.", "Response text.")
	require.False(testingT, delivered)
}

func TestSendResponseEscapesHTMLInCustomerContent(testingT *testing.T) {
	var capture capturedSend
	smtpMailer := configuredMailer(&capture, nil)

	delivered := smtpMailer.SendResponse(context.Background(),
		"ada@example.com", "<script>alert(1)</script>", "Original", "Response <b>bold</b>")
	require.True(testingT, delivered)

	messageText := string(capture.message)
	require.NotContains(testingT, messageText, "<script>alert(1)</script></p>")
	require.Contains(testingT, messageText, "&lt;script&gt;")
}

func TestSendResponseCancelledContextReportsFalse(testingT *testing.T) {
	smtpMailer := configuredMailer(nil, nil)
	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	require.False(testingT, smtpMailer.SendResponse(cancelledContext,
		"ada@example.com", "Ada", "Original", "Response"))
}
