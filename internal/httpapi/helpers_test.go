package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/storage"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/testutil"
)

type sendResponseCall struct {
	recipient       string
	customerName    string
	originalMessage string
	responseText    string
}

// stubNotifier records calls and returns configured outcomes.
type stubNotifier struct {
	mutex         sync.Mutex
	notifyOutcome bool
	sendOutcome   bool
	notifyCalls   []model.ContactSubmission
	sendCalls     []sendResponseCall
}

func (notifier *stubNotifier) NotifyNewSubmission(ctx context.Context, submission model.ContactSubmission) bool {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	notifier.notifyCalls = append(notifier.notifyCalls, submission)
	return notifier.notifyOutcome
}

func (notifier *stubNotifier) SendResponse(ctx context.Context, recipient string, customerName string, originalMessage string, responseText string) bool {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	notifier.sendCalls = append(notifier.sendCalls, sendResponseCall{
		recipient:       recipient,
		customerName:    customerName,
		originalMessage: originalMessage,
		responseText:    responseText,
	})
	return notifier.sendOutcome
}

func (notifier *stubNotifier) notifyCallCount() int {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	return len(notifier.notifyCalls)
}

func (notifier *stubNotifier) sendCallCount() int {
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	return len(notifier.sendCalls)
}

func (notifier *stubNotifier) lastSendCall(testingT *testing.T) sendResponseCall {
	testingT.Helper()
	notifier.mutex.Lock()
	defer notifier.mutex.Unlock()
	require.NotEmpty(testingT, notifier.sendCalls)
	return notifier.sendCalls[len(notifier.sendCalls)-1]
}

func newTestStore(testingT *testing.T) *storage.SubmissionStore {
	testingT.Helper()

	gin.SetMode(gin.TestMode)
	sqliteDatabase := testutil.NewSQLiteTestDatabase(testingT)
	database, openErr := storage.OpenDatabase(sqliteDatabase.Configuration())
	require.NoError(testingT, openErr)
	require.NoError(testingT, storage.AutoMigrate(database))

	return storage.NewSubmissionStore(testutil.ConfigureDatabaseLogger(testingT, database))
}

func newJSONContext(method string, target string, body any) (*httptest.ResponseRecorder, *gin.Context) {
	recorder := httptest.NewRecorder()
	ginContext, _ := gin.CreateTestContext(recorder)

	var bodyReader io.Reader
	if body != nil {
		encoded, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			panic(marshalErr)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, target, bodyReader)
	request.Header.Set("Content-Type", "application/json")
	ginContext.Request = request
	return recorder, ginContext
}

func decodeJSONBody(testingT *testing.T, recorder *httptest.ResponseRecorder, target any) {
	testingT.Helper()
	require.NoError(testingT, json.Unmarshal(recorder.Body.Bytes(), target))
}
