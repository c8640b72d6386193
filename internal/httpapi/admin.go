package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
)

const (
	jsonKeyUsername  = "username"
	jsonKeyEmailSent = "email_sent"
	jsonKeyTotal     = "total"
	jsonKeyPending   = "pending"
	jsonKeyResponded = "responded"

	detailMessageSubmissionNotFound = "Submission not found"
	detailMessageListFailed         = "Failed to fetch submissions"
	detailMessageFetchFailed        = "Failed to fetch submission"
	detailMessageStatusUpdateFailed = "Failed to update status"
	detailMessageRespondFailed      = "Failed to save response"
	detailMessageDeleteFailed       = "Failed to delete submission"
	detailMessageStatsFailed        = "Failed to fetch statistics"

	successMessageLogin           = "Login successful"
	successMessageStatusUpdated   = "Status updated to %s"
	successMessageDeleted         = "Submission deleted successfully"
	successMessageResponseSaved   = "Response saved successfully"
	successMessageResponseEmailed = "Response saved and email sent to customer"
	successMessageResponseNoEmail = "Response saved but email could not be sent (SMTP not configured)"

	columnNameStatus            = "status"
	columnNameAdminResponse     = "admin_response"
	columnNameResponseSentAt    = "response_sent_at"
	columnNameResponseEmailSent = "response_email_sent"

	logEventListSubmissionsFailed = "list_submissions_failed"
	logEventFetchSubmissionFailed = "fetch_submission_failed"
	logEventStatusUpdateFailed    = "status_update_failed"
	logEventRespondFailed         = "respond_failed"
	logEventDeleteFailed          = "delete_submission_failed"
	logEventStatsFailed           = "fetch_stats_failed"
	logEventAdminLoginRejected    = "admin_login_rejected"
)

// AdminHandlers serves the operator console API.
type AdminHandlers struct {
	store       *storage.SubmissionStore
	logger      *zap.Logger
	notifier    SubmissionNotifier
	credentials AdminCredentials
}

// NewAdminHandlers creates the admin handlers. A nil notifier degrades to the
// not-configured notifier.
func NewAdminHandlers(store *storage.SubmissionStore, logger *zap.Logger, notifier SubmissionNotifier, credentials AdminCredentials) *AdminHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandlers{
		store:       store,
		logger:      logger,
		notifier:    resolveSubmissionNotifier(notifier),
		credentials: credentials,
	}
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type respondRequest struct {
	ResponseText string `json:"response_text"`
	SendEmail    *bool  `json:"send_email"`
}

// Login verifies the operator credentials. Comparison is constant time and a
// mismatch in either field yields the same response.
func (handlers *AdminHandlers) Login(ginContext *gin.Context) {
	var payload adminLoginRequest
	if bindErr := ginContext.BindJSON(&payload); bindErr != nil {
		ginContext.JSON(http.StatusBadRequest, gin.H{jsonKeyDetail: detailMessageInvalidJSON})
		return
	}

	if !handlers.credentials.Matches(payload.Username, payload.Password) {
		handlers.logger.Warn(logEventAdminLoginRejected, zap.String(jsonKeyUsername, payload.Username))
		ginContext.JSON(http.StatusUnauthorized, gin.H{jsonKeyDetail: detailMessageBadCredential})
		return
	}

	ginContext.JSON(http.StatusOK, gin.H{
		jsonKeySuccess:  true,
		jsonKeyMessage:  successMessageLogin,
		jsonKeyUsername: payload.Username,
	})
}

// ListSubmissions returns every submission, newest first, with legacy records
// backfilled at the read boundary.
func (handlers *AdminHandlers) ListSubmissions(ginContext *gin.Context) {
	submissions, listErr := handlers.store.ListAll(ginContext.Request.Context())
	if listErr != nil {
		handlers.logger.Error(logEventListSubmissionsFailed, zap.Error(listErr))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyDetail: detailMessageListFailed})
		return
	}

	ginContext.JSON(http.StatusOK, newSubmissionViews(submissions))
}

// GetSubmission returns a single submission by identifier.
func (handlers *AdminHandlers) GetSubmission(ginContext *gin.Context) {
	submissionID := ginContext.Param("id")

	submission, findErr := handlers.store.FindByID(ginContext.Request.Context(), submissionID)
	if findErr != nil {
		if errors.Is(findErr, storage.ErrSubmissionNotFound) {
			ginContext.JSON(http.StatusNotFound, gin.H{jsonKeyDetail: detailMessageSubmissionNotFound})
			return
		}
		handlers.logger.Error(logEventFetchSubmissionFailed, zap.Error(findErr), zap.String(logFieldSubmissionID, submissionID))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyDetail: detailMessageFetchFailed})
		return
	}

	ginContext.JSON(http.StatusOK, newSubmissionView(submission))
}

// UpdateStatus sets the submission status. Invalid statuses are rejected
// before any storage access.
func (handlers *AdminHandlers) UpdateStatus(ginContext *gin.Context) {
	submissionID := ginContext.Param("id")

	var payload statusUpdateRequest
	if bindErr := ginContext.BindJSON(&payload); bindErr != nil {
		ginContext.JSON(http.StatusBadRequest, gin.H{jsonKeyDetail: detailMessageInvalidJSON})
		return
	}

	if statusErr := model.ValidateSubmissionStatus(payload.Status); statusErr != nil {
		respondValidationError(ginContext, statusErr)
		return
	}

	matched, updateErr := handlers.store.UpdateFields(ginContext.Request.Context(), submissionID, map[string]any{
		columnNameStatus: payload.Status,
	})
	if updateErr != nil {
		handlers.logger.Error(logEventStatusUpdateFailed, zap.Error(updateErr), zap.String(logFieldSubmissionID, submissionID))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyDetail: detailMessageStatusUpdateFailed})
		return
	}
	if matched == 0 {
		ginContext.JSON(http.StatusNotFound, gin.H{jsonKeyDetail: detailMessageSubmissionNotFound})
		return
	}

	ginContext.JSON(http.StatusOK, gin.H{
		jsonKeySuccess: true,
		jsonKeyMessage: fmt.Sprintf(successMessageStatusUpdated, payload.Status),
	})
}

// Respond records an administrator's response. The response is persisted and
// the status moves to responded regardless of whether an email was requested;
// when one is, the send happens synchronously and its boolean outcome is both
// persisted and reported so the console can distinguish "saved, emailed" from
// "saved, email not sent".
func (handlers *AdminHandlers) Respond(ginContext *gin.Context) {
	submissionID := ginContext.Param("id")

	var payload respondRequest
	if bindErr := ginContext.BindJSON(&payload); bindErr != nil {
		ginContext.JSON(http.StatusBadRequest, gin.H{jsonKeyDetail: detailMessageInvalidJSON})
		return
	}

	sendEmail := true
	if payload.SendEmail != nil {
		sendEmail = *payload.SendEmail
	}

	if responseErr := model.ValidateAdminResponse(payload.ResponseText); responseErr != nil {
		respondValidationError(ginContext, responseErr)
		return
	}

	submission, findErr := handlers.store.FindByID(ginContext.Request.Context(), submissionID)
	if findErr != nil {
		if errors.Is(findErr, storage.ErrSubmissionNotFound) {
			ginContext.JSON(http.StatusNotFound, gin.H{jsonKeyDetail: detailMessageSubmissionNotFound})
			return
		}
		handlers.logger.Error(logEventRespondFailed, zap.Error(findErr), zap.String(logFieldSubmissionID, submissionID))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyDetail: detailMessageRespondFailed})
		return
	}

	respondedAt := time.Now().UTC()
	updateFields := map[string]any{
		columnNameAdminResponse:  payload.ResponseText,
		columnNameResponseSentAt: &respondedAt,
		columnNameStatus:         model.SubmissionStatusResponded,
	}

	emailSent := false
	if sendEmail {
		emailSent = handlers.notifier.SendResponse(ginContext.Request.Context(),
			submission.Email, submission.Name, submission.Message, payload.ResponseText)
		updateFields[columnNameResponseEmailSent] = emailSent
	}

	if _, updateErr := handlers.store.UpdateFields(ginContext.Request.Context(), submissionID, updateFields); updateErr != nil {
		handlers.logger.Error(logEventRespondFailed, zap.Error(updateErr), zap.String(logFieldSubmissionID, submissionID))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyDetail: detailMessageRespondFailed})
		return
	}

	responseMessage := successMessageResponseSaved
	if sendEmail {
		if emailSent {
			responseMessage = successMessageResponseEmailed
		} else {
			responseMessage = successMessageResponseNoEmail
		}
	}

	ginContext.JSON(http.StatusOK, gin.H{
		jsonKeySuccess:   true,
		jsonKeyMessage:   responseMessage,
		jsonKeyEmailSent: emailSent,
	})
}

// DeleteSubmission removes a submission permanently.
func (handlers *AdminHandlers) DeleteSubmission(ginContext *gin.Context) {
	submissionID := ginContext.Param("id")

	deleted, deleteErr := handlers.store.Delete(ginContext.Request.Context(), submissionID)
	if deleteErr != nil {
		handlers.logger.Error(logEventDeleteFailed, zap.Error(deleteErr), zap.String(logFieldSubmissionID, submissionID))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyDetail: detailMessageDeleteFailed})
		return
	}
	if deleted == 0 {
		ginContext.JSON(http.StatusNotFound, gin.H{jsonKeyDetail: detailMessageSubmissionNotFound})
		return
	}

	ginContext.JSON(http.StatusOK, gin.H{
		jsonKeySuccess: true,
		jsonKeyMessage: successMessageDeleted,
	})
}

// Stats reports dashboard aggregates. The pending count is every submission
// whose status is not responded, so archived records count as pending.
func (handlers *AdminHandlers) Stats(ginContext *gin.Context) {
	requestContext := ginContext.Request.Context()

	total, totalErr := handlers.store.CountAll(requestContext)
	if totalErr != nil {
		handlers.logger.Error(logEventStatsFailed, zap.Error(totalErr))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyDetail: detailMessageStatsFailed})
		return
	}

	pending, pendingErr := handlers.store.CountByStatusNot(requestContext, model.SubmissionStatusResponded)
	if pendingErr != nil {
		handlers.logger.Error(logEventStatsFailed, zap.Error(pendingErr))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyDetail: detailMessageStatsFailed})
		return
	}

	responded, respondedErr := handlers.store.CountByStatus(requestContext, model.SubmissionStatusResponded)
	if respondedErr != nil {
		handlers.logger.Error(logEventStatsFailed, zap.Error(respondedErr))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyDetail: detailMessageStatsFailed})
		return
	}

	ginContext.JSON(http.StatusOK, gin.H{
		jsonKeyTotal:     total,
		jsonKeyPending:   pending,
		jsonKeyResponded: responded,
	})
}
