package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/authgate/authgate/pkg/accounts"
	"github.com/authgate/authgate/pkg/notification"
	"github.com/authgate/authgate/pkg/utils"
)

// Common errors for the email verification flow
var (
	ErrMissingToken = errors.New("verification token is required")

	// ErrVerificationFailed is the single outcome for an unknown, expired or
	// already-used token. The distinct causes are logged, never surfaced.
	ErrVerificationFailed = errors.New("verification failed")
)

// Service issues verification tokens at sign-up and redeems them when the
// user follows the emailed link.
type Service struct {
	repo                accounts.Repository
	notificationManager *notification.Manager
}

// NewService creates a new verification Service
func NewService(repo accounts.Repository, notificationManager *notification.Manager) *Service {
	return &Service{
		repo:                repo,
		notificationManager: notificationManager,
	}
}

// IssueVerification stores a fresh verification token on the account and
// sends the verification email. The email send is best effort: a delivery
// failure is logged and the stored token stands, so the link can be re-sent
// later without invalidating anything.
func (s *Service) IssueVerification(ctx context.Context, email string) error {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token := utils.GenerateRandomString(32)
	if err := s.repo.SetVerificationToken(ctx, acct.ID, token); err != nil {
		return fmt.Errorf("failed to save verification token: %w", err)
	}

	if err := s.sendVerificationEmail(acct.Email, token); err != nil {
		slog.Error("Failed to send verification email", "err", err)
	}
	return nil
}

// ConsumeVerification redeems a verification token. An empty token is
// rejected locally without touching the store. Success marks the account
// verified and clears the token so the link is single-use.
func (s *Service) ConsumeVerification(ctx context.Context, token string) error {
	if token == "" {
		return ErrMissingToken
	}

	acct, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, accounts.ErrAccountNotFound) {
			slog.Warn("Verification attempted with unknown token")
			return ErrVerificationFailed
		}
		slog.Error("Failed to look up verification token", "err", err)
		return ErrVerificationFailed
	}

	if acct.Verified {
		slog.Warn("Verification attempted on already-verified account")
		return ErrVerificationFailed
	}

	if err := s.repo.MarkVerified(ctx, acct.ID); err != nil {
		slog.Error("Failed to mark account verified", "err", err)
		return ErrVerificationFailed
	}
	return nil
}

func (s *Service) sendVerificationEmail(email, token string) error {
	if s.notificationManager == nil {
		slog.Warn("Notification manager not configured, skipping verification email")
		return nil
	}

	link := fmt.Sprintf("%s/verify-email?token=%s", s.notificationManager.BaseUrl, token)
	return s.notificationManager.Send(notification.EmailVerification, notification.EmailSystem, notification.NotificationData{
		To: email,
		Data: map[string]string{
			"VerificationLink": link,
		},
	})
}
