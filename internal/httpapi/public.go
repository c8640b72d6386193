package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/task"
)

const (
	jsonKeyDetail       = "detail"
	jsonKeySuccess      = "success"
	jsonKeyMessage      = "message"
	jsonKeySubmissionID = "submission_id"
	jsonKeyField        = "field"

	detailMessageInvalidJSON    = "Invalid JSON body"
	detailMessageStorageFailure = "An error occurred while processing your submission. Please try again later."

	rootStatusMessage        = "Drilldown Dynamics API is running"
	submissionThanksMessage  = "Thank you for contacting us! Your message has been received and stored. We'll get back to you soon."
	columnNameEmailSent      = "email_sent"
	columnNameEmailSentAt    = "email_sent_at"

	logEventSubmissionStored        = "submission_stored"
	logEventSubmissionStoreFailed   = "submission_store_failed"
	logEventStaffNotificationFailed = "staff_notification_skipped"
	logEventEmailStateUpdateFailed  = "email_state_update_failed"
	logFieldSubmissionID            = "submission_id"
	logFieldSubmitterEmail          = "submitter_email"
)

// ContactHandlers serves the public contact-form surface.
type ContactHandlers struct {
	store      *storage.SubmissionStore
	logger     *zap.Logger
	notifier   SubmissionNotifier
	dispatcher *task.Dispatcher
}

// NewContactHandlers creates the public handlers. A nil notifier degrades to
// the not-configured notifier; a nil dispatcher gets a fresh one.
func NewContactHandlers(store *storage.SubmissionStore, logger *zap.Logger, notifier SubmissionNotifier, dispatcher *task.Dispatcher) *ContactHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = task.NewDispatcher(logger)
	}
	return &ContactHandlers{
		store:      store,
		logger:     logger,
		notifier:   resolveSubmissionNotifier(notifier),
		dispatcher: dispatcher,
	}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// Root reports service liveness.
func (handlers *ContactHandlers) Root(context *gin.Context) {
	context.JSON(http.StatusOK, gin.H{jsonKeyMessage: rootStatusMessage})
}

// SubmitContact validates and persists a contact-form submission, responds to
// the submitter, and schedules the staff notification without blocking the
// response. The persisted write must succeed before success is reported; the
// notification outcome never affects the already-returned result.
func (handlers *ContactHandlers) SubmitContact(ginContext *gin.Context) {
	var payload contactRequest
	if bindErr := ginContext.BindJSON(&payload); bindErr != nil {
		ginContext.JSON(http.StatusBadRequest, gin.H{jsonKeyDetail: detailMessageInvalidJSON})
		return
	}

	submission, createErr := model.NewContactSubmission(model.ContactSubmissionInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Phone:   payload.Phone,
		Company: payload.Company,
		Message: payload.Message,
	})
	if createErr != nil {
		respondValidationError(ginContext, createErr)
		return
	}

	if insertErr := handlers.store.Insert(ginContext.Request.Context(), &submission); insertErr != nil {
		handlers.logger.Error(logEventSubmissionStoreFailed, zap.Error(insertErr))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyDetail: detailMessageStorageFailure})
		return
	}

	handlers.logger.Info(logEventSubmissionStored,
		zap.String(logFieldSubmissionID, submission.ID),
		zap.String(logFieldSubmitterEmail, submission.Email),
	)

	ginContext.JSON(http.StatusOK, gin.H{
		jsonKeySuccess:      true,
		jsonKeyMessage:      submissionThanksMessage,
		jsonKeySubmissionID: submission.ID,
	})

	handlers.dispatcher.Dispatch(func() {
		handlers.notifyStaff(submission)
	})
}

// notifyStaff runs in the background with its own context and error handling.
// A failed notification is logged and the record stays marked as not emailed;
// there is no retry and nothing propagates to the submitter.
func (handlers *ContactHandlers) notifyStaff(submission model.ContactSubmission) {
	ctx := context.Background()

	delivered := handlers.notifier.NotifyNewSubmission(ctx, submission)
	if !delivered {
		handlers.logger.Warn(logEventStaffNotificationFailed, zap.String(logFieldSubmissionID, submission.ID))
		return
	}

	sentAt := time.Now().UTC()
	_, updateErr := handlers.store.UpdateFields(ctx, submission.ID, map[string]any{
		columnNameEmailSent:   true,
		columnNameEmailSentAt: &sentAt,
	})
	if updateErr != nil {
		handlers.logger.Error(logEventEmailStateUpdateFailed,
			zap.Error(updateErr),
			zap.String(logFieldSubmissionID, submission.ID),
		)
	}
}

func respondValidationError(ginContext *gin.Context, validationErr error) {
	var validationError *model.ValidationError
	if errors.As(validationErr, &validationError) {
		ginContext.JSON(http.StatusUnprocessableEntity, gin.H{
			jsonKeyDetail: []gin.H{{
				jsonKeyField:   validationError.Field,
				jsonKeyMessage: validationError.Reason,
			}},
		})
		return
	}
	ginContext.JSON(http.StatusUnprocessableEntity, gin.H{jsonKeyDetail: validationErr.Error()})
}
