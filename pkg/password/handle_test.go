package password

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/pkg/accounts"
	"github.com/authgate/authgate/pkg/notification"
)

func newTestServer(t *testing.T) (*httptest.Server, *accounts.InMemoryRepository, *Manager) {
	t.Helper()

	emailNotifier := &notification.MockNotifier{}
	nm := notification.NewManager("http://localhost:4000")
	nm.RegisterNotifier(notification.EmailSystem, emailNotifier)
	require.NoError(t, nm.RegisterNotification(notification.PasswordResetInit, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Password Reset Request",
		Text:    "Reset your password: {{.Link}}",
	}))

	repo := accounts.NewInMemoryRepository()
	manager := NewManager(repo, nm)
	server := httptest.NewServer(Handler(NewHandle(manager)))
	t.Cleanup(server.Close)
	return server, repo, manager
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, ResetResponse) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded ResetResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestPostResetRequestMissingEmail(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, body := postJSON(t, server.URL+"/request", ResetRequestJSONRequestBody{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
}

func TestPostResetRequestGenericResponse(t *testing.T) {
	server, repo, _ := newTestServer(t)
	repo.CreateAccount("user@example.com", "", []byte("hash"), false)

	// Known and unknown emails get the identical response
	respKnown, bodyKnown := postJSON(t, server.URL+"/request", ResetRequestJSONRequestBody{Email: "user@example.com"})
	respUnknown, bodyUnknown := postJSON(t, server.URL+"/request", ResetRequestJSONRequestBody{Email: "nobody@example.com"})

	assert.Equal(t, http.StatusOK, respKnown.StatusCode)
	assert.Equal(t, http.StatusOK, respUnknown.StatusCode)
	assert.Equal(t, bodyKnown, bodyUnknown)
}

func TestPostResetConsumeMissingFields(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, body := postJSON(t, server.URL+"/consume", ResetConsumeJSONRequestBody{Token: "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
}

func TestPostResetConsumeInvalidToken(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, body := postJSON(t, server.URL+"/consume", ResetConsumeJSONRequestBody{
		Token:       "no-such-token",
		NewPassword: "NewPassw0rd",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid or expired token", body.Message)
}

func TestPostResetConsumeSuccess(t *testing.T) {
	server, repo, manager := newTestServer(t)
	repo.CreateAccount("user@example.com", "", []byte("hash"), false)

	require.NoError(t, manager.RequestReset(context.Background(), "user@example.com"))
	acct, err := repo.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)

	resp, body := postJSON(t, server.URL+"/consume", ResetConsumeJSONRequestBody{
		Token:       acct.ResetToken,
		NewPassword: "NewPassw0rd",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
}
