package password

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/pkg/accounts"
	"github.com/authgate/authgate/pkg/notification"
)

func newTestManager(t *testing.T, opts ...ManagerOption) (*Manager, *accounts.InMemoryRepository, *notification.MockNotifier) {
	t.Helper()

	emailNotifier := &notification.MockNotifier{}
	nm := notification.NewManager("http://localhost:4000")
	nm.RegisterNotifier(notification.EmailSystem, emailNotifier)
	require.NoError(t, nm.RegisterNotification(notification.PasswordResetInit, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Password Reset Request",
		Text:    "Reset your password: {{.Link}}",
	}))

	repo := accounts.NewInMemoryRepository()
	return NewManager(repo, nm, opts...), repo, emailNotifier
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret1234")
	require.NoError(t, err)

	match, err := CheckPasswordHash("Secret1234", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = CheckPasswordHash("WrongSecret1", hash)
	require.NoError(t, err, "a plain mismatch is not an error")
	assert.False(t, match)
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestCheckComplexity(t *testing.T) {
	m, _, _ := newTestManager(t)

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid", password: "Passw0rd", wantErr: false},
		{name: "too short", password: "Pw1a", wantErr: true},
		{name: "no uppercase", password: "passw0rd", wantErr: true},
		{name: "no lowercase", password: "PASSW0RD", wantErr: true},
		{name: "no digit", password: "Password", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.CheckComplexity(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPolicyViolation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequestResetUnknownEmail(t *testing.T) {
	m, _, emailNotifier := newTestManager(t)

	err := m.RequestReset(context.Background(), "nobody@example.com")
	assert.NoError(t, err, "unknown emails must not be distinguishable")
	assert.Empty(t, emailNotifier.Sent)
}

func TestRequestResetSendsLink(t *testing.T) {
	m, repo, emailNotifier := newTestManager(t)
	ctx := context.Background()
	repo.CreateAccount("user@example.com", "", []byte("hash"), false)

	require.NoError(t, m.RequestReset(ctx, "user@example.com"))

	acct, err := repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, acct.ResetToken)
	assert.True(t, acct.ResetTokenExpires.After(time.Now().UTC()))

	require.Len(t, emailNotifier.Sent, 1)
	assert.Equal(t, "user@example.com", emailNotifier.Sent[0].To)
	assert.Contains(t, emailNotifier.Sent[0].Data["Link"], acct.ResetToken)
}

func TestRequestResetReplacesPriorToken(t *testing.T) {
	m, repo, _ := newTestManager(t)
	ctx := context.Background()
	repo.CreateAccount("user@example.com", "", []byte("hash"), false)

	require.NoError(t, m.RequestReset(ctx, "user@example.com"))
	acct, err := repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	firstToken := acct.ResetToken

	require.NoError(t, m.RequestReset(ctx, "user@example.com"))

	// The earlier token no longer resolves
	_, err = repo.FindByResetToken(ctx, firstToken)
	assert.ErrorIs(t, err, accounts.ErrAccountNotFound)

	err = m.ConsumeReset(ctx, firstToken, "NewPassw0rd")
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)
}

func TestConsumeReset(t *testing.T) {
	m, repo, _ := newTestManager(t)
	ctx := context.Background()
	oldHash, err := HashPassword("OldPassw0rd")
	require.NoError(t, err)
	repo.CreateAccount("user@example.com", "", oldHash, false)

	require.NoError(t, m.RequestReset(ctx, "user@example.com"))
	acct, err := repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	token := acct.ResetToken

	require.NoError(t, m.ConsumeReset(ctx, token, "NewPassw0rd"))

	acct, err = repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	match, err := CheckPasswordHash("NewPassw0rd", acct.PasswordHash)
	require.NoError(t, err)
	assert.True(t, match)

	// Single use: the same token cannot reset twice
	err = m.ConsumeReset(ctx, token, "AnotherPassw0rd")
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)
}

func TestConsumeResetEmptyToken(t *testing.T) {
	m, _, _ := newTestManager(t)

	err := m.ConsumeReset(context.Background(), "", "NewPassw0rd")
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)
}

func TestConsumeResetExpiredToken(t *testing.T) {
	m, repo, _ := newTestManager(t, WithResetTokenExpiry(-time.Hour))
	ctx := context.Background()
	oldHash, err := HashPassword("OldPassw0rd")
	require.NoError(t, err)
	repo.CreateAccount("user@example.com", "", oldHash, false)

	require.NoError(t, m.RequestReset(ctx, "user@example.com"))
	acct, err := repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)

	err = m.ConsumeReset(ctx, acct.ResetToken, "NewPassw0rd")
	assert.ErrorIs(t, err, ErrTokenInvalidOrExpired)

	// Password unchanged after the rejected attempt
	acct, err = repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	match, err := CheckPasswordHash("OldPassw0rd", acct.PasswordHash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestConsumeResetWeakPassword(t *testing.T) {
	m, repo, _ := newTestManager(t)
	ctx := context.Background()
	repo.CreateAccount("user@example.com", "", []byte("hash"), false)

	require.NoError(t, m.RequestReset(ctx, "user@example.com"))
	acct, err := repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)

	err = m.ConsumeReset(ctx, acct.ResetToken, "weak")
	assert.ErrorIs(t, err, ErrPolicyViolation)

	// The token survives a complexity rejection and can be used again
	assert.NoError(t, m.ConsumeReset(ctx, acct.ResetToken, "NewPassw0rd"))
}
