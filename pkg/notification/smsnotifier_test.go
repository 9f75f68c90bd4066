package notification

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMSNotifierSend(t *testing.T) {
	var received smsRequest
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(smsResponse{Success: true})
	}))
	defer server.Close()

	notifier := NewSMSNotifier(SMSConfig{Endpoint: server.URL, From: "authgate", APIKey: "test-key"})
	err := notifier.Send(TwofaCodeSms, NotificationData{
		To:   "+15551234567",
		Data: map[string]string{"Passcode": "123456"},
	}, NoticeTemplate{Text: "Your verification code is: {{.Passcode}}"})
	require.NoError(t, err)

	assert.Equal(t, "+15551234567", received.Phone)
	assert.Equal(t, "authgate", received.From)
	assert.Equal(t, "Your verification code is: 123456", received.Message)
	assert.Equal(t, "Bearer test-key", authHeader)
}

func TestSMSNotifierProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(smsResponse{Success: false, Error: "invalid phone"})
	}))
	defer server.Close()

	notifier := NewSMSNotifier(SMSConfig{Endpoint: server.URL})
	err := notifier.Send(TwofaCodeSms, NotificationData{To: "+15551234567"}, NoticeTemplate{Text: "code"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid phone")
}

func TestSMSNotifierMissingPhone(t *testing.T) {
	notifier := NewSMSNotifier(SMSConfig{Endpoint: "http://localhost"})
	err := notifier.Send(TwofaCodeSms, NotificationData{}, NoticeTemplate{Text: "code"})
	assert.Error(t, err)
}

func TestSMSNotifierMissingEndpoint(t *testing.T) {
	notifier := NewSMSNotifier(SMSConfig{})
	err := notifier.Send(TwofaCodeSms, NotificationData{To: "+15551234567"}, NoticeTemplate{Text: "code"})
	assert.Error(t, err)
}
