package twofa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/authgate/authgate/pkg/accounts"
	"github.com/authgate/authgate/pkg/notification"
)

const (
	TOTP_ISSUER = "authgate"
	SKEW        = 1
	PERIOD      = 300
)

// Common errors for the two-factor flow
var (
	ErrPhoneRequired    = errors.New("phone number is required for SMS delivery")
	ErrInvalidPasscode  = errors.New("passcode must be exactly 6 digits")
	ErrChallengeExpired = errors.New("challenge has expired")
	ErrPasscodeMismatch = errors.New("passcode does not match")
	ErrDeliveryFailed   = errors.New("failed to deliver passcode")
)

// Service drives the two-factor challenge state machine: begin on a
// successful first factor, issue a passcode over a chosen channel,
// verify, resend, or abandon.
type Service struct {
	challenges          ChallengeRepository
	notificationManager *notification.Manager
	accounts            accounts.Repository
	challengeTTL        time.Duration
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithChallengeTTL sets the passcode validity window
func WithChallengeTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.challengeTTL = ttl
	}
}

// NewService creates a new two-factor Service
func NewService(challenges ChallengeRepository, notificationManager *notification.Manager, accountRepo accounts.Repository, opts ...ServiceOption) *Service {
	s := &Service{
		challenges:          challenges,
		notificationManager: notificationManager,
		accounts:            accountRepo,
		challengeTTL:        PERIOD * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin records that the sign-in attempt for email is waiting on a
// delivery method choice. Any leftover challenge for the email is replaced.
func (s *Service) Begin(ctx context.Context, email string) error {
	return s.challenges.Put(ctx, &Challenge{
		Email: email,
		State: StateMethodSelection,
	})
}

// IssueChallenge generates a fresh TOTP secret for the attempt, derives the
// current passcode and sends it over the chosen channel. For SMS the phone
// must be non-empty after trimming; nothing is sent otherwise. A delivery
// failure puts the attempt back into method selection so the user can retry.
func (s *Service) IssueChallenge(ctx context.Context, email string, method Method, phone string) error {
	if err := ValidateMethod(method); err != nil {
		return err
	}

	phone = strings.TrimSpace(phone)
	if method == MethodSMS && phone == "" {
		phone = s.accountPhone(ctx, email)
		if phone == "" {
			return ErrPhoneRequired
		}
	}

	secret, err := GenerateTotpSecret(email)
	if err != nil {
		return fmt.Errorf("failed to generate challenge secret: %w", err)
	}

	now := time.Now().UTC()
	challenge := &Challenge{
		Email:     email,
		Method:    method,
		Phone:     phone,
		Secret:    secret,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.challengeTTL),
		State:     StateChallengeIssued,
	}
	if err := s.challenges.Put(ctx, challenge); err != nil {
		return fmt.Errorf("failed to store challenge: %w", err)
	}

	if err := s.deliverPasscode(ctx, challenge); err != nil {
		// Back to method selection so the user can pick again
		challenge.State = StateMethodSelection
		challenge.Secret = ""
		challenge.Phone = ""
		if putErr := s.challenges.Put(ctx, challenge); putErr != nil {
			slog.Error("Failed to revert challenge after delivery failure", "err", putErr)
		}
		slog.Error("Failed to deliver 2FA passcode", "method", method, "err", err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return nil
}

// Resend re-derives the passcode from the stored secret and sends it again
// over the same channel. Throttling is left to the delivery provider.
func (s *Service) Resend(ctx context.Context, email string) error {
	challenge, err := s.challenges.Get(ctx, email)
	if err != nil {
		return err
	}
	if challenge.State != StateChallengeIssued {
		return ErrChallengeNotFound
	}
	if challenge.Expired(time.Now().UTC()) {
		s.expireChallenge(ctx, email)
		return ErrChallengeExpired
	}

	if err := s.deliverPasscode(ctx, challenge); err != nil {
		slog.Error("Failed to resend 2FA passcode", "method", challenge.Method, "err", err)
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// SanitizePasscode strips everything but digits from the raw user input.
// Anything other than exactly 6 digits is rejected locally, before the
// stored secret is ever consulted.
func SanitizePasscode(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	code := digits.String()
	if len(code) != 6 {
		return "", ErrInvalidPasscode
	}
	return code, nil
}

// Verify checks the passcode against the pending challenge. A match
// consumes the challenge so the passcode cannot be replayed. A mismatch
// counts the attempt and leaves the challenge in place.
func (s *Service) Verify(ctx context.Context, email, rawPasscode string) error {
	passcode, err := SanitizePasscode(rawPasscode)
	if err != nil {
		return err
	}

	challenge, err := s.challenges.Get(ctx, email)
	if err != nil {
		return err
	}
	if challenge.State != StateChallengeIssued {
		return ErrChallengeNotFound
	}
	if challenge.Expired(time.Now().UTC()) {
		s.expireChallenge(ctx, email)
		return ErrChallengeExpired
	}

	valid, err := ValidateTotpPasscode(challenge.Secret, passcode)
	if err != nil {
		return fmt.Errorf("failed to validate passcode: %w", err)
	}
	if !valid {
		challenge.Attempts++
		if putErr := s.challenges.Put(ctx, challenge); putErr != nil {
			slog.Error("Failed to record passcode attempt", "err", putErr)
		}
		slog.Warn("2FA passcode mismatch", "attempts", challenge.Attempts)
		return ErrPasscodeMismatch
	}

	if err := s.challenges.Delete(ctx, email); err != nil {
		return fmt.Errorf("failed to consume challenge: %w", err)
	}
	return nil
}

// Abandon drops the pending challenge and everything captured for it
func (s *Service) Abandon(ctx context.Context, email string) error {
	return s.challenges.Delete(ctx, email)
}

func (s *Service) expireChallenge(ctx context.Context, email string) {
	if err := s.challenges.Delete(ctx, email); err != nil {
		slog.Error("Failed to delete expired challenge", "err", err)
	}
}

func (s *Service) accountPhone(ctx context.Context, email string) string {
	if s.accounts == nil {
		return ""
	}
	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(acct.Phone)
}

func (s *Service) deliverPasscode(ctx context.Context, challenge *Challenge) error {
	passcode, err := GeneratePasscode(challenge.Secret)
	if err != nil {
		return fmt.Errorf("failed to generate passcode: %w", err)
	}

	data := notification.NotificationData{
		To: challenge.Email,
		Data: map[string]string{
			"Passcode": passcode,
		},
	}

	switch challenge.Method {
	case MethodSMS:
		data.To = challenge.Phone
		return s.notificationManager.Send(notification.TwofaCodeSms, notification.SMSSystem, data)
	default:
		return s.notificationManager.Send(notification.TwofaCodeEmail, notification.EmailSystem, data)
	}
}

func GenerateTotpSecret(accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      TOTP_ISSUER,
		AccountName: accountName,
	})
	if err != nil {
		slog.Error("Failed to generate totp secret", "issuer", TOTP_ISSUER, "error", err)
		return "", err
	}
	return key.Secret(), nil
}

func GeneratePasscode(totpSecret string) (string, error) {
	code, err := totp.GenerateCodeCustom(totpSecret, time.Now().UTC(), totp.ValidateOpts{
		Period:    PERIOD,
		Skew:      SKEW,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to generate 2fa passcode", "error", err)
		return "", err
	}
	return code, nil
}

func ValidateTotpPasscode(totpSecret, passcode string) (bool, error) {
	valid, err := totp.ValidateCustom(passcode, totpSecret, time.Now().UTC(), totp.ValidateOpts{
		Period:    PERIOD,
		Skew:      SKEW,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to validate totp passcode", "error", err)
		return false, err
	}
	return valid, nil
}
