package mailer

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
)

const (
	DefaultSMTPHost = "smtp.gmail.com"
	DefaultSMTPPort = 587
	DefaultFrom     = "noreply@drilldowndynamics.com"
	DefaultTo       = "sales@drilldowndynamics.com"

	subjectNewSubmission = "New Contact Form Submission - Drilldown Dynamics"
	subjectResponse      = "Re: Your Inquiry - Drilldown Dynamics"

	contentTypeText = "text/plain; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"

	logEventNotificationSent       = "contact_notification_sent"
	logEventResponseSent           = "response_email_sent"
	logEventTransportNotConfigured = "smtp_not_configured"
	logEventSendFailed             = "email_send_failed"
	logEventRenderFailed           = "email_render_failed"
	logFieldSubmissionID           = "submission_id"
	logFieldRecipient              = "recipient"
	logFieldBody                   = "body"
)

// Config captures the SMTP transport configuration. Empty credentials leave
// the mailer in a not-configured state where every send reports failure.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

func (configuration Config) withDefaults() Config {
	if strings.TrimSpace(configuration.Host) == "" {
		configuration.Host = DefaultSMTPHost
	}
	if configuration.Port == 0 {
		configuration.Port = DefaultSMTPPort
	}
	if strings.TrimSpace(configuration.From) == "" {
		configuration.From = DefaultFrom
	}
	if strings.TrimSpace(configuration.To) == "" {
		configuration.To = DefaultTo
	}
	return configuration
}

// SendMailFunc hands a fully assembled message to an SMTP endpoint.
type SendMailFunc func(address string, auth smtp.Auth, from string, recipients []string, message []byte) error

// SMTPMailer sends staff notifications and customer responses over SMTP.
// Every send reports a boolean outcome and never an error; transport and
// configuration problems are logged and surface as false.
type SMTPMailer struct {
	configuration Config
	logger        *zap.Logger
	sendMail      SendMailFunc
}

// NewSMTPMailer creates an SMTPMailer with the given configuration.
func NewSMTPMailer(configuration Config, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{
		configuration: configuration.withDefaults(),
		logger:        logger,
		sendMail:      smtp.SendMail,
	}
}

// WithSendMailFunc overrides the SMTP hand-off dependency.
func (mailer *SMTPMailer) WithSendMailFunc(sendMail SendMailFunc) *SMTPMailer {
	mailer.sendMail = sendMail
	return mailer
}

// Configured reports whether SMTP credentials are present.
func (mailer *SMTPMailer) Configured() bool {
	return strings.TrimSpace(mailer.configuration.Username) != "" &&
		strings.TrimSpace(mailer.configuration.Password) != ""
}

// NotifyNewSubmission emails the configured staff address about a new
// submission. Returns true only on confirmed transport hand-off.
func (mailer *SMTPMailer) NotifyNewSubmission(ctx context.Context, submission model.ContactSubmission) bool {
	textBody := renderSubmissionText(submission)
	htmlBody, renderErr := renderSubmissionHTML(submission)
	if renderErr != nil {
		mailer.logger.Error(logEventRenderFailed, zap.Error(renderErr), zap.String(logFieldSubmissionID, submission.ID))
		return false
	}

	if !mailer.Configured() {
		mailer.logger.Warn(logEventTransportNotConfigured, zap.String(logFieldSubmissionID, submission.ID))
		mailer.logger.Debug(logEventTransportNotConfigured, zap.String(logFieldBody, textBody))
		return false
	}

	if sendErr := mailer.send(ctx, mailer.configuration.To, subjectNewSubmission, textBody, htmlBody); sendErr != nil {
		mailer.logger.Error(logEventSendFailed, zap.Error(sendErr), zap.String(logFieldSubmissionID, submission.ID))
		return false
	}

	mailer.logger.Info(logEventNotificationSent, zap.String(logFieldSubmissionID, submission.ID))
	return true
}

// SendResponse emails an administrator's response to the customer. Returns
// true only on confirmed transport hand-off.
func (mailer *SMTPMailer) SendResponse(ctx context.Context, recipient string, customerName string, originalMessage string, responseText string) bool {
	textBody := renderResponseText(customerName, originalMessage, responseText)
	htmlBody, renderErr := renderResponseHTML(customerName, originalMessage, responseText)
	if renderErr != nil {
		mailer.logger.Error(logEventRenderFailed, zap.Error(renderErr), zap.String(logFieldRecipient, recipient))
		return false
	}

	if !mailer.Configured() {
		mailer.logger.Warn(logEventTransportNotConfigured, zap.String(logFieldRecipient, recipient))
		mailer.logger.Debug(logEventTransportNotConfigured, zap.String(logFieldBody, textBody))
		return false
	}

	if sendErr := mailer.send(ctx, recipient, subjectResponse, textBody, htmlBody); sendErr != nil {
		mailer.logger.Error(logEventSendFailed, zap.Error(sendErr), zap.String(logFieldRecipient, recipient))
		return false
	}

	mailer.logger.Info(logEventResponseSent, zap.String(logFieldRecipient, recipient))
	return true
}

func (mailer *SMTPMailer) send(ctx context.Context, recipient string, subject string, textBody string, htmlBody string) error {
	if ctx != nil {
		if contextErr := ctx.Err(); contextErr != nil {
			return contextErr
		}
	}

	message, assembleErr := assembleMessage(mailer.configuration.From, recipient, subject, textBody, htmlBody)
	if assembleErr != nil {
		return assembleErr
	}

	serverAddress := fmt.Sprintf("%s:%d", mailer.configuration.Host, mailer.configuration.Port)
	auth := smtp.PlainAuth("", mailer.configuration.Username, mailer.configuration.Password, mailer.configuration.Host)
	return mailer.sendMail(serverAddress, auth, mailer.configuration.From, []string{recipient}, message)
}

// assembleMessage builds a multipart/alternative MIME message carrying both
// the plain-text and HTML renderings.
func assembleMessage(from string, recipient string, subject string, textBody string, htmlBody string) ([]byte, error) {
	var buffer bytes.Buffer
	alternativeWriter := multipart.NewWriter(&buffer)

	fmt.Fprintf(&buffer, "From: %s\r\n", from)
	fmt.Fprintf(&buffer, "To: %s\r\n", recipient)
	fmt.Fprintf(&buffer, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buffer, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buffer, "Content-Type: multipart/alternative; boundary=%q\r\n", alternativeWriter.Boundary())
	fmt.Fprintf(&buffer, "\r\n")

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", contentTypeText)
	textPart, textErr := alternativeWriter.CreatePart(textHeader)
	if textErr != nil {
		return nil, textErr
	}
	if _, writeErr := textPart.Write([]byte(textBody)); writeErr != nil {
		return nil, writeErr
	}

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", contentTypeHTML)
	htmlPart, htmlErr := alternativeWriter.CreatePart(htmlHeader)
	if htmlErr != nil {
		return nil, htmlErr
	}
	if _, writeErr := htmlPart.Write([]byte(htmlBody)); writeErr != nil {
		return nil, writeErr
	}

	if closeErr := alternativeWriter.Close(); closeErr != nil {
		return nil, closeErr
	}

	return buffer.Bytes(), nil
}
