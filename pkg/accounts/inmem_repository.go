package accounts

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryRepository implements Repository using in-memory storage.
// Intended for tests and local development.
type InMemoryRepository struct {
	mu              sync.RWMutex
	accounts        map[uuid.UUID]Account
	byEmail         map[string]uuid.UUID
	byResetToken    map[string]uuid.UUID
	byVerifyToken   map[string]uuid.UUID
}

// NewInMemoryRepository creates a new in-memory account repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		accounts:      make(map[uuid.UUID]Account),
		byEmail:       make(map[string]uuid.UUID),
		byResetToken:  make(map[string]uuid.UUID),
		byVerifyToken: make(map[string]uuid.UUID),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail finds an account by email address
func (r *InMemoryRepository) FindByEmail(ctx context.Context, email string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return r.accounts[id], nil
}

// FindByResetToken finds an account by its outstanding reset token
func (r *InMemoryRepository) FindByResetToken(ctx context.Context, token string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byResetToken[token]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return r.accounts[id], nil
}

// FindByVerificationToken finds an account by its verification token
func (r *InMemoryRepository) FindByVerificationToken(ctx context.Context, token string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byVerifyToken[token]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return r.accounts[id], nil
}

// SetResetToken stores a new reset token, replacing any outstanding one
func (r *InMemoryRepository) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	if acct.ResetToken != "" {
		delete(r.byResetToken, acct.ResetToken)
	}
	acct.ResetToken = token
	acct.ResetTokenExpires = expiresAt
	acct.UpdatedAt = time.Now()
	r.accounts[id] = acct
	r.byResetToken[token] = id
	return nil
}

// ConsumeResetToken updates the password hash and clears the reset token fields
func (r *InMemoryRepository) ConsumeResetToken(ctx context.Context, arg PasswordResetParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[arg.ID]
	if !ok {
		return ErrAccountNotFound
	}

	if acct.ResetToken != "" {
		delete(r.byResetToken, acct.ResetToken)
	}
	acct.PasswordHash = arg.PasswordHash
	acct.ResetToken = ""
	acct.ResetTokenExpires = time.Time{}
	acct.UpdatedAt = time.Now()
	r.accounts[arg.ID] = acct
	return nil
}

// SetVerificationToken stores a verification token for an account
func (r *InMemoryRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	if acct.VerificationToken != "" {
		delete(r.byVerifyToken, acct.VerificationToken)
	}
	acct.VerificationToken = token
	acct.UpdatedAt = time.Now()
	r.accounts[id] = acct
	r.byVerifyToken[token] = id
	return nil
}

// MarkVerified sets the verified flag and clears the verification token
func (r *InMemoryRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	if acct.VerificationToken != "" {
		delete(r.byVerifyToken, acct.VerificationToken)
	}
	acct.Verified = true
	acct.VerificationToken = ""
	acct.UpdatedAt = time.Now()
	r.accounts[id] = acct
	return nil
}

// CreateAccount creates a new account (helper for testing/initialization)
func (r *InMemoryRepository) CreateAccount(email, phone string, passwordHash []byte, twoFactorEnabled bool) Account {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	acct := Account{
		ID:               uuid.New(),
		Email:            normalizeEmail(email),
		Phone:            phone,
		PasswordHash:     passwordHash,
		TwoFactorEnabled: twoFactorEnabled,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	r.accounts[acct.ID] = acct
	r.byEmail[acct.Email] = acct.ID
	return acct
}

// SeedAccount adds an account directly (for testing/initialization)
func (r *InMemoryRepository) SeedAccount(acct Account) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[acct.ID] = acct
	r.byEmail[normalizeEmail(acct.Email)] = acct.ID
	if acct.ResetToken != "" {
		r.byResetToken[acct.ResetToken] = acct.ID
	}
	if acct.VerificationToken != "" {
		r.byVerifyToken[acct.VerificationToken] = acct.ID
	}
}
