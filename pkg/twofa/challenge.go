package twofa

import (
	"fmt"
	"time"
)

// Method is the delivery channel for a two-factor passcode
type Method string

const (
	MethodEmail Method = "email"
	MethodSMS   Method = "sms"
)

// State tracks where a sign-in attempt sits in the two-factor flow.
// Method and the passcode fields are only meaningful in StateChallengeIssued.
type State string

const (
	StateNoChallenge     State = "no_challenge"
	StateMethodSelection State = "method_selection"
	StateChallengeIssued State = "challenge_issued"
	StateVerified        State = "verified"
	StateFailed          State = "failed"
)

// Challenge is one pending two-factor verification, keyed by the
// account email of the sign-in attempt it belongs to.
type Challenge struct {
	Email     string
	Method    Method
	Phone     string
	Secret    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Attempts  int
	State     State
}

// Expired reports whether the challenge passcode window has closed
func (c *Challenge) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// ValidateMethod checks if the given method is a supported delivery channel
func ValidateMethod(method Method) error {
	switch method {
	case MethodEmail, MethodSMS:
		return nil
	default:
		return fmt.Errorf("invalid 2FA method: %s, must be one of: %s, %s",
			method, MethodEmail, MethodSMS)
	}
}
