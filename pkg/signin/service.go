package signin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/authgate/authgate/pkg/accounts"
	"github.com/authgate/authgate/pkg/password"
	"github.com/authgate/authgate/pkg/tokengenerator"
	"github.com/authgate/authgate/pkg/twofa"
)

// ErrInvalidCredentials covers every credential failure. Account miss, wrong
// password and hash trouble all collapse into it so a caller cannot probe
// which emails exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Status is the outcome of a credential check
type Status string

const (
	StatusAuthenticated     Status = "authenticated"
	StatusTwoFactorRequired Status = "two_factor_required"
	StatusRejected          Status = "rejected"
)

// SigninResult carries the outcome of a sign-in attempt. Session is set only
// on StatusAuthenticated; Pending only on StatusTwoFactorRequired.
type SigninResult struct {
	Status  Status
	Email   string
	Session *tokengenerator.Token
	Pending *tokengenerator.Token
}

// SigninService authenticates credentials and decides whether the attempt
// produces a session directly or has to pass two-factor verification first.
type SigninService struct {
	accountRepo  accounts.Repository
	tokenService *tokengenerator.TokenService
	twoFaService *twofa.Service
}

// NewSigninService creates a new SigninService
func NewSigninService(accountRepo accounts.Repository, tokenService *tokengenerator.TokenService, twoFaService *twofa.Service) *SigninService {
	return &SigninService{
		accountRepo:  accountRepo,
		tokenService: tokenService,
		twoFaService: twoFaService,
	}
}

// Signin verifies the email and password and returns the attempt outcome.
// On StatusRejected the returned error is always ErrInvalidCredentials; the
// underlying cause is logged, never returned.
func (s *SigninService) Signin(ctx context.Context, email, pwd string) (SigninResult, error) {
	acct, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, accounts.ErrAccountNotFound) {
			slog.Error("Failed to look up account at signin", "err", err)
		}
		return SigninResult{Status: StatusRejected}, ErrInvalidCredentials
	}

	match, err := password.CheckPasswordHash(pwd, acct.PasswordHash)
	if err != nil {
		slog.Error("Failed to check password hash", "err", err)
		return SigninResult{Status: StatusRejected}, ErrInvalidCredentials
	}
	if !match {
		return SigninResult{Status: StatusRejected}, ErrInvalidCredentials
	}

	if acct.TwoFactorEnabled {
		pending, err := s.tokenService.MintPendingToken(acct.Email)
		if err != nil {
			return SigninResult{}, fmt.Errorf("failed to mint pending-auth token: %w", err)
		}
		if err := s.twoFaService.Begin(ctx, acct.Email); err != nil {
			return SigninResult{}, fmt.Errorf("failed to begin 2FA: %w", err)
		}
		return SigninResult{
			Status:  StatusTwoFactorRequired,
			Email:   acct.Email,
			Pending: &pending,
		}, nil
	}

	session, err := s.tokenService.MintSessionToken(acct.ID, acct.Email)
	if err != nil {
		return SigninResult{}, fmt.Errorf("failed to mint session token: %w", err)
	}
	return SigninResult{
		Status:  StatusAuthenticated,
		Email:   acct.Email,
		Session: &session,
	}, nil
}
