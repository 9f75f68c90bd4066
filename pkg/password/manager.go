package password

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/authgate/authgate/pkg/accounts"
	"github.com/authgate/authgate/pkg/notification"
	"github.com/authgate/authgate/pkg/utils"
)

// Common errors for the password reset lifecycle
var (
	ErrTokenInvalidOrExpired = errors.New("invalid or expired reset token")
	ErrPolicyViolation       = errors.New("password does not meet requirements")
)

// Policy defines the requirements for password complexity
type Policy struct {
	MinLength          int
	RequireUppercase   bool
	RequireLowercase   bool
	RequireDigit       bool
	RequireSpecialChar bool
}

// DefaultPolicy returns a default password policy
func DefaultPolicy() *Policy {
	return &Policy{
		MinLength:        8,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireDigit:     true,
	}
}

// Manager handles password hashing and the reset-token lifecycle
type Manager struct {
	repo                accounts.Repository
	notificationManager *notification.Manager
	policy              *Policy
	resetTokenExpiry    time.Duration
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithResetTokenExpiry sets the reset token validity window
func WithResetTokenExpiry(expiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.resetTokenExpiry = expiry
	}
}

// WithPolicy sets the password complexity policy
func WithPolicy(policy *Policy) ManagerOption {
	return func(m *Manager) {
		m.policy = policy
	}
}

// NewManager creates a new password Manager
func NewManager(repo accounts.Repository, notificationManager *notification.Manager, opts ...ManagerOption) *Manager {
	m := &Manager{
		repo:                repo,
		notificationManager: notificationManager,
		policy:              DefaultPolicy(),
		resetTokenExpiry:    1 * time.Hour,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HashPassword hashes the plain-text password using bcrypt.
func HashPassword(password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("password cannot be empty")
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// CheckPasswordHash compares the plain-text password with the stored hash.
// A mismatch is reported as (false, nil); only unexpected failures return an error.
func CheckPasswordHash(password string, hashedPassword []byte) (bool, error) {
	if password == "" || len(hashedPassword) == 0 {
		return false, errors.New("password and hashed password cannot be empty")
	}

	err := bcrypt.CompareHashAndPassword(hashedPassword, []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CheckComplexity verifies that a password meets the policy requirements
func (m *Manager) CheckComplexity(password string) error {
	if len(password) < m.policy.MinLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrPolicyViolation, m.policy.MinLength)
	}
	if m.policy.RequireUppercase && !regexp.MustCompile(`[A-Z]`).MatchString(password) {
		return fmt.Errorf("%w: must contain at least one uppercase letter", ErrPolicyViolation)
	}
	if m.policy.RequireLowercase && !regexp.MustCompile(`[a-z]`).MatchString(password) {
		return fmt.Errorf("%w: must contain at least one lowercase letter", ErrPolicyViolation)
	}
	if m.policy.RequireDigit && !regexp.MustCompile(`[0-9]`).MatchString(password) {
		return fmt.Errorf("%w: must contain at least one digit", ErrPolicyViolation)
	}
	if m.policy.RequireSpecialChar && !regexp.MustCompile(`[^a-zA-Z0-9]`).MatchString(password) {
		return fmt.Errorf("%w: must contain at least one special character", ErrPolicyViolation)
	}
	return nil
}

// RequestReset issues a reset token for the account behind the email address
// and dispatches the reset email. An unknown email is not an error: the caller
// answers with the same generic message either way to prevent enumeration.
// A new request replaces any outstanding token for the account.
func (m *Manager) RequestReset(ctx context.Context, email string) error {
	acct, err := m.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			slog.Info("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	resetToken := utils.GenerateRandomString(32)
	expiresAt := time.Now().UTC().Add(m.resetTokenExpiry)

	if err := m.repo.SetResetToken(ctx, acct.ID, resetToken, expiresAt); err != nil {
		slog.Error("Failed to save reset token", "err", err)
		return err
	}

	return m.sendResetEmail(acct.Email, resetToken)
}

// ConsumeReset validates a reset token and updates the account's password.
// The token fields are cleared together with the password update so the token
// cannot be replayed.
func (m *Manager) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrTokenInvalidOrExpired
	}

	acct, err := m.repo.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			return ErrTokenInvalidOrExpired
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	// A token with no expiry on record is treated as expired, not honored forever
	if acct.ResetTokenExpires.IsZero() || time.Now().UTC().After(acct.ResetTokenExpires) {
		slog.Warn("Reset token expired", "expires_at", acct.ResetTokenExpires)
		return ErrTokenInvalidOrExpired
	}

	if err := m.CheckComplexity(newPassword); err != nil {
		return err
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = m.repo.ConsumeResetToken(ctx, accounts.PasswordResetParams{
		ID:           acct.ID,
		PasswordHash: hashedPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (m *Manager) sendResetEmail(email, resetToken string) error {
	if m.notificationManager == nil {
		slog.Warn("Notification manager not configured, skipping reset email")
		return nil
	}

	resetLink := fmt.Sprintf("%s/reset-password/%s", m.notificationManager.BaseUrl, resetToken)
	return m.notificationManager.Send(notification.PasswordResetInit, notification.EmailSystem, notification.NotificationData{
		To: email,
		Data: map[string]string{
			"Link":          resetLink,
			"ExpiryMinutes": fmt.Sprintf("%.0f", m.resetTokenExpiry.Minutes()),
		},
	})
}
