package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
)

const (
	timestampLayout  = "2006-01-02 15:04:05 UTC"
	valueNotProvided = "Not provided"
)

var submissionHTMLTemplate = htmltemplate.Must(htmltemplate.New("submission").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(135deg, #0EA5E9 0%, #0284C7 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
  .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
  .field { margin-bottom: 20px; }
  .label { font-weight: bold; color: #0EA5E9; margin-bottom: 5px; }
  .value { background: white; padding: 10px; border-radius: 5px; border-left: 3px solid #0EA5E9; }
  .footer { text-align: center; margin-top: 20px; color: #6c757d; font-size: 12px; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>🔔 New Contact Form Submission</h1>
    <p>Drilldown Dynamics</p>
  </div>
  <div class="content">
    <div class="field"><div class="label">Name:</div><div class="value">{{.Name}}</div></div>
    <div class="field"><div class="label">Email:</div><div class="value">{{.Email}}</div></div>
    <div class="field"><div class="label">Phone:</div><div class="value">{{.Phone}}</div></div>
    <div class="field"><div class="label">Company:</div><div class="value">{{.Company}}</div></div>
    <div class="field"><div class="label">Message:</div><div class="value">{{.Message}}</div></div>
    <div class="footer">
      <p>Submitted at: {{.SubmittedAt}}</p>
      <p>Submission ID: {{.SubmissionID}}</p>
    </div>
  </div>
</div>
</body>
</html>
`))

var responseHTMLTemplate = htmltemplate.Must(htmltemplate.New("response").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(135deg, #0EA5E9 0%, #0284C7 100%); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
  .content { background: #f8f9fa; padding: 30px; border-radius: 0 0 10px 10px; }
  .greeting { font-size: 18px; margin-bottom: 20px; }
  .response { background: white; padding: 20px; border-radius: 5px; border-left: 3px solid #0EA5E9; margin-bottom: 20px; }
  .original { background: #e9ecef; padding: 15px; border-radius: 5px; margin-top: 20px; font-size: 14px; color: #666; }
  .original-label { font-weight: bold; color: #333; margin-bottom: 10px; }
  .footer { text-align: center; margin-top: 20px; color: #6c757d; font-size: 12px; }
  .signature { margin-top: 30px; padding-top: 20px; border-top: 1px solid #dee2e6; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h1>Drilldown Dynamics</h1>
    <p>Powering Energy Solutions</p>
  </div>
  <div class="content">
    <p class="greeting">Dear {{.CustomerName}},</p>
    <p>Thank you for reaching out to us. Here is our response to your inquiry:</p>
    <div class="response">{{.ResponseBody}}</div>
    <div class="original">
      <p class="original-label">Your original message:</p>
      <p>{{.OriginalMessage}}</p>
    </div>
    <div class="signature">
      <p>Best regards,<br><strong>Drilldown Dynamics Team</strong></p>
      <p>sales@drilldowndynamics.com<br>+234 806 643 4176</p>
    </div>
  </div>
  <div class="footer">
    <p>&copy; 2025 Drilldown Dynamics. All rights reserved.</p>
  </div>
</div>
</body>
</html>
`))

func renderSubmissionText(submission model.ContactSubmission) string {
	var builder strings.Builder
	builder.WriteString("New Contact Form Submission - Drilldown Dynamics\n\n")
	fmt.Fprintf(&builder, "From: %s\n", submission.Name)
	fmt.Fprintf(&builder, "Email: %s\n", submission.Email)
	fmt.Fprintf(&builder, "Phone: %s\n", orNotProvided(submission.Phone))
	fmt.Fprintf(&builder, "Company: %s\n\n", orNotProvided(submission.Company))
	fmt.Fprintf(&builder, "Message:\n%s\n\n", submission.Message)
	builder.WriteString("---\n")
	fmt.Fprintf(&builder, "Submitted at: %s\n", formatSubmissionTimestamp(submission.SubmittedAt))
	fmt.Fprintf(&builder, "Submission ID: %s\n", submission.ID)
	return builder.String()
}

func renderSubmissionHTML(submission model.ContactSubmission) (string, error) {
	var buffer bytes.Buffer
	executeErr := submissionHTMLTemplate.Execute(&buffer, map[string]any{
		"Name":         submission.Name,
		"Email":        submission.Email,
		"Phone":        orNotProvided(submission.Phone),
		"Company":      orNotProvided(submission.Company),
		"Message":      submission.Message,
		"SubmittedAt":  formatSubmissionTimestamp(submission.SubmittedAt),
		"SubmissionID": submission.ID,
	})
	if executeErr != nil {
		return "", fmt.Errorf("render submission email: %w", executeErr)
	}
	return buffer.String(), nil
}

func renderResponseText(customerName string, originalMessage string, responseText string) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Dear %s,\n\n", customerName)
	builder.WriteString("Thank you for reaching out to us. Here is our response to your inquiry:\n\n")
	fmt.Fprintf(&builder, "%s\n\n", responseText)
	builder.WriteString("---\n")
	fmt.Fprintf(&builder, "Your original message:\n%s\n\n", originalMessage)
	builder.WriteString("---\n")
	builder.WriteString("Best regards,\nDrilldown Dynamics Team\nsales@drilldowndynamics.com\n+234 806 643 4176\n\n")
	builder.WriteString("© 2025 Drilldown Dynamics. All rights reserved.\n")
	return builder.String()
}

func renderResponseHTML(customerName string, originalMessage string, responseText string) (string, error) {
	var buffer bytes.Buffer
	executeErr := responseHTMLTemplate.Execute(&buffer, map[string]any{
		"CustomerName":    customerName,
		"OriginalMessage": originalMessage,
		"ResponseBody":    multilineHTML(responseText),
	})
	if executeErr != nil {
		return "", fmt.Errorf("render response email: %w", executeErr)
	}
	return buffer.String(), nil
}

// multilineHTML escapes the response text and preserves its line breaks.
func multilineHTML(text string) htmltemplate.HTML {
	escaped := htmltemplate.HTMLEscapeString(text)
	return htmltemplate.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func formatSubmissionTimestamp(submittedAt time.Time) string {
	return submittedAt.UTC().Format(timestampLayout)
}

func orNotProvided(value string) string {
	if strings.TrimSpace(value) == "" {
		return valueNotProvided
	}
	return value
}
