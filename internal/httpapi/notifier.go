package httpapi

import (
	"context"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
)

// SubmissionNotifier performs the outbound-email side effects of the
// submission lifecycle. Both operations report true only on confirmed
// transport hand-off and never return an error; misconfiguration and
// transport failures surface as false.
type SubmissionNotifier interface {
	NotifyNewSubmission(ctx context.Context, submission model.ContactSubmission) bool
	SendResponse(ctx context.Context, recipient string, customerName string, originalMessage string, responseText string) bool
}

// noopSubmissionNotifier stands in when no transport is wired; every send
// reports the not-configured outcome.
type noopSubmissionNotifier struct{}

func (noopSubmissionNotifier) NotifyNewSubmission(ctx context.Context, submission model.ContactSubmission) bool {
	return false
}

func (noopSubmissionNotifier) SendResponse(ctx context.Context, recipient string, customerName string, originalMessage string, responseText string) bool {
	return false
}

func resolveSubmissionNotifier(notifier SubmissionNotifier) SubmissionNotifier {
	if notifier == nil {
		return noopSubmissionNotifier{}
	}
	return notifier
}
