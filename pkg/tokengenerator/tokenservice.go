package tokengenerator

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	SESSION_TOKEN_NAME = "session_token"
	PENDING_TOKEN_NAME = "pending_2fa_token"
)

// Token is a minted token together with the cookie name it travels under
type Token struct {
	Name   string
	Value  string
	Expiry time.Time
}

// TokenService mints and parses the two token kinds the auth flows use:
// full session tokens and short-lived pending-auth tickets.
type TokenService struct {
	session       TokenGenerator
	pending       TokenGenerator
	sessionExpiry time.Duration
	pendingExpiry time.Duration
}

// NewTokenService creates a TokenService from the two generators
func NewTokenService(session, pending TokenGenerator, sessionExpiry, pendingExpiry time.Duration) *TokenService {
	if sessionExpiry <= 0 {
		sessionExpiry = 24 * time.Hour
	}
	if pendingExpiry <= 0 {
		pendingExpiry = 10 * time.Minute
	}
	return &TokenService{
		session:       session,
		pending:       pending,
		sessionExpiry: sessionExpiry,
		pendingExpiry: pendingExpiry,
	}
}

// MintSessionToken creates a session token bound to an account
func (s *TokenService) MintSessionToken(accountID uuid.UUID, email string) (Token, error) {
	value, expiry, err := s.session.GenerateToken(accountID.String(), s.sessionExpiry, map[string]interface{}{
		"email": email,
	})
	if err != nil {
		return Token{}, fmt.Errorf("failed to mint session token: %w", err)
	}
	return Token{Name: SESSION_TOKEN_NAME, Value: value, Expiry: expiry}, nil
}

// MintPendingToken creates a pending-auth ticket bound to an email address
func (s *TokenService) MintPendingToken(email string) (Token, error) {
	value, expiry, err := s.pending.GenerateToken(email, s.pendingExpiry, map[string]interface{}{
		"email": email,
	})
	if err != nil {
		return Token{}, fmt.Errorf("failed to mint pending-auth token: %w", err)
	}
	return Token{Name: PENDING_TOKEN_NAME, Value: value, Expiry: expiry}, nil
}

// ParsePendingToken validates a pending-auth ticket and returns the email it
// is bound to.
func (s *TokenService) ParsePendingToken(tokenStr string) (string, error) {
	token, err := s.pending.ParseToken(tokenStr)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}

	extra, ok := claims["extra_claims"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("missing extra claims")
	}
	email, ok := extra["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("missing email in claims")
	}
	if pending, ok := extra["2fa_pending"].(bool); !ok || !pending {
		return "", fmt.Errorf("not a pending-auth token")
	}
	return email, nil
}

// ParseSessionToken validates a session token and returns its subject
func (s *TokenService) ParseSessionToken(tokenStr string) (string, error) {
	token, err := s.session.ParseToken(tokenStr)
	if err != nil {
		return "", err
	}
	subject, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	return subject, nil
}
