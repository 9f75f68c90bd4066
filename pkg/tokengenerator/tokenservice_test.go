package tokengenerator

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret"

func newTestTokenService() *TokenService {
	session := NewJwtTokenGenerator(testSecret, "authgate", "authgate")
	pending := NewTempTokenGenerator(testSecret, "authgate", "authgate")
	return NewTokenService(session, pending, time.Hour, 10*time.Minute)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	service := newTestTokenService()
	accountID := uuid.New()

	token, err := service.MintSessionToken(accountID, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, SESSION_TOKEN_NAME, token.Name)
	assert.True(t, token.Expiry.After(time.Now().UTC()))

	subject, err := service.ParseSessionToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, accountID.String(), subject)
}

func TestPendingTokenRoundTrip(t *testing.T) {
	service := newTestTokenService()

	token, err := service.MintPendingToken("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, PENDING_TOKEN_NAME, token.Name)

	email, err := service.ParsePendingToken(token.Value)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestParsePendingTokenRejectsSessionToken(t *testing.T) {
	service := newTestTokenService()

	session, err := service.MintSessionToken(uuid.New(), "user@example.com")
	require.NoError(t, err)

	_, err = service.ParsePendingToken(session.Value)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	service := newTestTokenService()
	other := NewJwtTokenGenerator("another-secret", "authgate", "authgate")

	forged, _, err := other.GenerateToken("account-id", time.Hour, nil)
	require.NoError(t, err)

	_, err = service.ParseSessionToken(forged)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	generator := NewJwtTokenGenerator(testSecret, "authgate", "authgate")

	expired, _, err := generator.GenerateToken("account-id", -time.Hour, nil)
	require.NoError(t, err)

	_, err = generator.ParseToken(expired)
	assert.Error(t, err)
}

func TestTempTokenRequiresEmail(t *testing.T) {
	generator := NewTempTokenGenerator(testSecret, "authgate", "authgate")

	_, _, err := generator.GenerateToken("subject", time.Minute, nil)
	assert.Error(t, err)

	_, _, err = generator.GenerateToken("subject", time.Minute, map[string]interface{}{"email": ""})
	assert.Error(t, err)
}

func TestCookieSetter(t *testing.T) {
	setter := NewCookieSetter(true, false)

	rec := httptest.NewRecorder()
	require.NoError(t, setter.SetCookie(rec, SESSION_TOKEN_NAME, "token-value", time.Now().Add(time.Hour)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SESSION_TOKEN_NAME, cookies[0].Name)
	assert.Equal(t, "token-value", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "/", cookies[0].Path)

	rec = httptest.NewRecorder()
	require.NoError(t, setter.ClearCookie(rec, SESSION_TOKEN_NAME))
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestCookieSetterSetToken(t *testing.T) {
	setter := NewCookieSetter(true, false)
	service := newTestTokenService()

	token, err := service.MintSessionToken(uuid.New(), "user@example.com")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, setter.SetToken(rec, token))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, token.Name, cookies[0].Name)
	assert.Equal(t, token.Value, cookies[0].Value)
	assert.WithinDuration(t, token.Expiry, cookies[0].Expires, time.Second)
}
