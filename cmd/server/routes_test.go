package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/httpapi"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/task"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/testutil"
)

const (
	routerTestAdminUsername = "admin"
	routerTestAdminPassword = "drilldown2025"
)

type silentNotifier struct{}

func (silentNotifier) NotifyNewSubmission(ctx context.Context, submission model.ContactSubmission) bool {
	return false
}

func (silentNotifier) SendResponse(ctx context.Context, recipient string, customerName string, originalMessage string, responseText string) bool {
	return false
}

type routerTestHarness struct {
	router     *gin.Engine
	dispatcher *task.Dispatcher
}

func newRouterTestHarness(testingT *testing.T) routerTestHarness {
	testingT.Helper()

	gin.SetMode(gin.TestMode)
	sqliteDatabase := testutil.NewSQLiteTestDatabase(testingT)
	database, openErr := storage.OpenDatabase(sqliteDatabase.Configuration())
	require.NoError(testingT, openErr)
	require.NoError(testingT, storage.AutoMigrate(database))

	submissionStore := storage.NewSubmissionStore(testutil.ConfigureDatabaseLogger(testingT, database))
	logger := zap.NewNop()
	notifier := silentNotifier{}
	dispatcher := task.NewDispatcher(logger)
	credentials := httpapi.AdminCredentials{
		Username: routerTestAdminUsername,
		Password: routerTestAdminPassword,
	}

	router := buildRouter(routerDependencies{
		logger:          logger,
		contactHandlers: httpapi.NewContactHandlers(submissionStore, logger, notifier, dispatcher),
		adminHandlers:   httpapi.NewAdminHandlers(submissionStore, logger, notifier, credentials),
		credentials:     credentials,
		allowedOrigins:  []string{"*"},
	})

	return routerTestHarness{router: router, dispatcher: dispatcher}
}

func (harness routerTestHarness) perform(testingT *testing.T, method string, target string, body any, authorize bool) *httptest.ResponseRecorder {
	testingT.Helper()

	var requestBody *bytes.Reader
	if body != nil {
		encoded, marshalErr := json.Marshal(body)
		require.NoError(testingT, marshalErr)
		requestBody = bytes.NewReader(encoded)
	} else {
		requestBody = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, target, requestBody)
	request.Header.Set("Content-Type", "application/json")
	if authorize {
		request.SetBasicAuth(routerTestAdminUsername, routerTestAdminPassword)
	}

	recorder := httptest.NewRecorder()
	harness.router.ServeHTTP(recorder, request)
	return recorder
}

func TestRouterServesRootWithoutCredentials(testingT *testing.T) {
	harness := newRouterTestHarness(testingT)

	recorder := harness.perform(testingT, http.MethodGet, "/api/", nil, false)
	require.Equal(testingT, http.StatusOK, recorder.Code)
	require.Contains(testingT, recorder.Body.String(), "Drilldown Dynamics API is running")
}

func TestRouterAcceptsContactSubmissionWithoutCredentials(testingT *testing.T) {
	harness := newRouterTestHarness(testingT)

	recorder := harness.perform(testingT, http.MethodPost, "/api/contact", map[string]any{
		"name":    "Grace Hopper",
		"email":   "grace@example.com",
		"message": "Requesting a quotation for offshore drilling work.",
	}, false)
	harness.dispatcher.Wait()

	require.Equal(testingT, http.StatusOK, recorder.Code)
	require.Contains(testingT, recorder.Body.String(), "Thank you for contacting us")
}

func TestRouterExemptsLoginFromBasicAuth(testingT *testing.T) {
	harness := newRouterTestHarness(testingT)

	recorder := harness.perform(testingT, http.MethodPost, "/api/admin/login", map[string]any{
		"username": routerTestAdminUsername,
		"password": routerTestAdminPassword,
	}, false)

	require.Equal(testingT, http.StatusOK, recorder.Code)
	require.Contains(testingT, recorder.Body.String(), "Login successful")
}

func TestRouterProtectsAdminEndpoints(testingT *testing.T) {
	harness := newRouterTestHarness(testingT)

	protectedTargets := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/admin/submissions"},
		{http.MethodGet, "/api/admin/submissions/unknown"},
		{http.MethodPatch, "/api/admin/submissions/unknown/status"},
		{http.MethodPost, "/api/admin/submissions/unknown/respond"},
		{http.MethodDelete, "/api/admin/submissions/unknown"},
		{http.MethodGet, "/api/admin/stats"},
	}

	for _, protectedTarget := range protectedTargets {
		recorder := harness.perform(testingT, protectedTarget.method, protectedTarget.target, nil, false)
		require.Equal(testingT, http.StatusUnauthorized, recorder.Code, protectedTarget.target)
	}
}

func TestRouterRoutesAuthorizedAdminRequests(testingT *testing.T) {
	harness := newRouterTestHarness(testingT)

	submitRecorder := harness.perform(testingT, http.MethodPost, "/api/contact", map[string]any{
		"name":    "Alan Turing",
		"email":   "alan@example.com",
		"message": "Interested in your geological survey services.",
	}, false)
	require.Equal(testingT, http.StatusOK, submitRecorder.Code)
	harness.dispatcher.Wait()

	var submitBody struct {
		SubmissionID string `json:"submission_id"`
	}
	require.NoError(testingT, json.Unmarshal(submitRecorder.Body.Bytes(), &submitBody))

	listRecorder := harness.perform(testingT, http.MethodGet, "/api/admin/submissions", nil, true)
	require.Equal(testingT, http.StatusOK, listRecorder.Code)
	require.Contains(testingT, listRecorder.Body.String(), submitBody.SubmissionID)

	statsRecorder := harness.perform(testingT, http.MethodGet, "/api/admin/stats", nil, true)
	require.Equal(testingT, http.StatusOK, statsRecorder.Code)
	require.Contains(testingT, statsRecorder.Body.String(), `"total":1`)

	statusRecorder := harness.perform(testingT, http.MethodPatch, "/api/admin/submissions/"+submitBody.SubmissionID+"/status", map[string]any{
		"status": model.SubmissionStatusArchived,
	}, true)
	require.Equal(testingT, http.StatusOK, statusRecorder.Code)

	deleteRecorder := harness.perform(testingT, http.MethodDelete, "/api/admin/submissions/"+submitBody.SubmissionID, nil, true)
	require.Equal(testingT, http.StatusOK, deleteRecorder.Code)
	require.Contains(testingT, deleteRecorder.Body.String(), "Submission deleted successfully")
}

func TestRouterAppliesCORSHeaders(testingT *testing.T) {
	harness := newRouterTestHarness(testingT)

	request := httptest.NewRequest(http.MethodOptions, "/api/contact", nil)
	request.Header.Set("Origin", "https://drilldowndynamics.com")
	request.Header.Set("Access-Control-Request-Method", http.MethodPost)

	recorder := httptest.NewRecorder()
	harness.router.ServeHTTP(recorder, request)

	require.Equal(testingT, http.StatusNoContent, recorder.Code)
	require.Equal(testingT, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}
