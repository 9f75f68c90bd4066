package accounts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByEmailNormalized(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	repo.CreateAccount("User@Example.com", "", []byte("hash"), false)

	acct, err := repo.FindByEmail(ctx, "  user@example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", acct.Email)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestResetTokenLifecycle(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	acct := repo.CreateAccount("user@example.com", "", []byte("old-hash"), false)
	expiresAt := time.Now().UTC().Add(time.Hour)

	require.NoError(t, repo.SetResetToken(ctx, acct.ID, "token-one", expiresAt))

	found, err := repo.FindByResetToken(ctx, "token-one")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, found.ID)
	assert.Equal(t, expiresAt, found.ResetTokenExpires)

	// A second token replaces the first
	require.NoError(t, repo.SetResetToken(ctx, acct.ID, "token-two", expiresAt))
	_, err = repo.FindByResetToken(ctx, "token-one")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	// Consuming updates the hash and clears the token atomically
	require.NoError(t, repo.ConsumeResetToken(ctx, PasswordResetParams{
		ID:           acct.ID,
		PasswordHash: []byte("new-hash"),
	}))

	updated, err := repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, []byte("new-hash"), updated.PasswordHash)
	assert.Empty(t, updated.ResetToken)
	assert.True(t, updated.ResetTokenExpires.IsZero())

	_, err = repo.FindByResetToken(ctx, "token-two")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestVerificationTokenLifecycle(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	acct := repo.CreateAccount("user@example.com", "", []byte("hash"), false)

	require.NoError(t, repo.SetVerificationToken(ctx, acct.ID, "verify-token"))

	found, err := repo.FindByVerificationToken(ctx, "verify-token")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, found.ID)
	assert.False(t, found.Verified)

	require.NoError(t, repo.MarkVerified(ctx, acct.ID))

	updated, err := repo.FindByEmail(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, updated.Verified)
	assert.Empty(t, updated.VerificationToken)

	_, err = repo.FindByVerificationToken(ctx, "verify-token")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestMutationsOnUnknownAccount(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	acct := Account{}

	assert.ErrorIs(t, repo.SetResetToken(ctx, acct.ID, "token", time.Now()), ErrAccountNotFound)
	assert.ErrorIs(t, repo.SetVerificationToken(ctx, acct.ID, "token"), ErrAccountNotFound)
	assert.ErrorIs(t, repo.MarkVerified(ctx, acct.ID), ErrAccountNotFound)
	assert.ErrorIs(t, repo.ConsumeResetToken(ctx, PasswordResetParams{ID: acct.ID}), ErrAccountNotFound)
}
