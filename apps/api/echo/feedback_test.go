package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/alama/core/feedback"
	emailsvc "github.com/trezcool/alama/services/email"
	testutil "github.com/trezcool/alama/tests"
)

func TestFeedbackAPI_submit(t *testing.T) {
	deps := setup(t)
	student := testutil.CreateUser(t, deps.usrRepo, "Awa Student", "cs20-0042", "awa@test.cd", "pwd", []string{"student:"}, true)
	admin := testutil.CreateUser(t, deps.usrRepo, "Admin", "admin1", "admin@test.cd", "pwd", []string{"admin:"}, true)
	token := getToken(t, student)

	// auth required
	req, rec := newRequest(http.MethodPost, "/v1/feedback", marchallObj(t, feedback.NewFeedback{Message: "hello"}))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// empty message is a validation error
	req, rec = newAuthRequest(http.MethodPost, "/v1/feedback", token, []byte("{}"))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// submit
	req, rec = newAuthRequest(http.MethodPost, "/v1/feedback", token, marchallObj(t, feedback.NewFeedback{
		Message: "The rounding on module GPAs looks off.",
	}))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var fb feedback.Feedback
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fb))
	assert.NotEmpty(t, fb.ID)
	assert.Equal(t, "cs20-0042", fb.Username)

	// listing is admin only
	req, rec = newAuthRequest(http.MethodGet, "/v1/feedback", token)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/feedback", getToken(t, admin))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var fbs []feedback.Feedback
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fbs))
	require.Len(t, fbs, 1)
	assert.Equal(t, "The rounding on module GPAs looks off.", fbs[0].Message)

	// so is deleting
	req, rec = newAuthRequest(http.MethodDelete, "/v1/feedback/"+fb.ID, token)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)

	req, rec = newAuthRequest(http.MethodDelete, "/v1/feedback/"+fb.ID, getToken(t, admin))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req, rec = newAuthRequest(http.MethodGet, "/v1/feedback", getToken(t, admin))
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	fbs = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fbs))
	assert.Empty(t, fbs)
}

func TestFeedbackAPI_broadcast(t *testing.T) {
	deps := setup(t)
	admin := testutil.CreateUser(t, deps.usrRepo, "Admin", "admin1", "admin@test.cd", "pwd", []string{"admin:"}, true)
	testutil.CreateUser(t, deps.usrRepo, "Awa Student", "cs20-0042", "awa@test.cd", "pwd", []string{"student:"}, true)
	testutil.CreateUser(t, deps.usrRepo, "Ben Student", "cs20-0043", "ben@test.cd", "pwd", []string{"student:"}, true)
	testutil.CreateUser(t, deps.usrRepo, "Gone Student", "cs19-0001", "gone@test.cd", "pwd", []string{"student:"}, false)
	emailsvc.ClearSentMessages()

	// admin only
	body := marchallObj(t, feedback.BroadcastRequest{Subject: "Exams", Message: "Results out Friday."})
	req, rec := newAuthRequest(http.MethodPost, "/v1/feedback/broadcast", getToken(t, admin), body)
	deps.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res BroadcastResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Recipients)

	// one mail per active student
	require.Len(t, emailsvc.SentMessages, 2)
	for _, msg := range emailsvc.SentMessages {
		assert.Equal(t, "Results out Friday.", msg.TextContent)
	}
}
