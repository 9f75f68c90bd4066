package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors for account repositories
var (
	ErrAccountNotFound = errors.New("account not found")
)

// Account represents a user account record in the domain model.
// ResetToken/ResetTokenExpires and VerificationToken are single-use token
// fields cleared on consumption.
type Account struct {
	ID                uuid.UUID
	Email             string
	Phone             string
	PasswordHash      []byte
	TwoFactorEnabled  bool
	Verified          bool
	ResetToken        string
	ResetTokenExpires time.Time
	VerificationToken string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PasswordResetParams carries the fields updated together when a reset
// token is consumed: the new hash is written and the token pair cleared
// in a single repository call so the token cannot be replayed.
type PasswordResetParams struct {
	ID           uuid.UUID
	PasswordHash []byte
}

// Repository defines the account-store operations the auth flows depend on.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByResetToken(ctx context.Context, token string) (Account, error)
	FindByVerificationToken(ctx context.Context, token string) (Account, error)

	// SetResetToken stores a new reset token and expiry, replacing any
	// outstanding token for the account.
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error

	// ConsumeResetToken updates the password hash and clears the reset
	// token fields together.
	ConsumeResetToken(ctx context.Context, arg PasswordResetParams) error

	SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error

	// MarkVerified sets the verified flag and clears the verification token.
	MarkVerified(ctx context.Context, id uuid.UUID) error
}
