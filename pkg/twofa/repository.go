package twofa

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrChallengeNotFound is returned when no challenge exists for the email
var ErrChallengeNotFound = errors.New("challenge not found")

// ChallengeRepository stores pending two-factor challenges keyed by email
type ChallengeRepository interface {
	Get(ctx context.Context, email string) (*Challenge, error)
	Put(ctx context.Context, challenge *Challenge) error
	Delete(ctx context.Context, email string) error
}

// InMemoryChallengeRepository keeps challenges in process memory.
// Challenges are short-lived so a map guarded by a mutex is enough.
type InMemoryChallengeRepository struct {
	mu         sync.RWMutex
	challenges map[string]*Challenge
}

// NewInMemoryChallengeRepository creates an empty in-memory challenge store
func NewInMemoryChallengeRepository() *InMemoryChallengeRepository {
	return &InMemoryChallengeRepository{
		challenges: make(map[string]*Challenge),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *InMemoryChallengeRepository) Get(ctx context.Context, email string) (*Challenge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	challenge, ok := r.challenges[normalizeEmail(email)]
	if !ok {
		return nil, ErrChallengeNotFound
	}
	copied := *challenge
	return &copied, nil
}

func (r *InMemoryChallengeRepository) Put(ctx context.Context, challenge *Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *challenge
	r.challenges[normalizeEmail(challenge.Email)] = &copied
	return nil
}

func (r *InMemoryChallengeRepository) Delete(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.challenges, normalizeEmail(email))
	return nil
}
