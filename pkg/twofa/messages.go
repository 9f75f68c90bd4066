package twofa

import "errors"

// FallbackMessage is shown when an error has no friendlier translation
const FallbackMessage = "Something went wrong. Please try again."

// FriendlyMessage maps internal two-factor errors to the message shown to
// the user. Unknown errors get the generic fallback rather than leaking
// internal details.
func FriendlyMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPasscode),
		errors.Is(err, ErrPasscodeMismatch):
		return "Invalid Code"
	case errors.Is(err, ErrChallengeExpired):
		return "Your code has expired. Please request a new one."
	case errors.Is(err, ErrChallengeNotFound):
		return "No verification in progress. Please sign in again."
	case errors.Is(err, ErrPhoneRequired):
		return "A phone number is required for SMS delivery."
	case errors.Is(err, ErrDeliveryFailed):
		return "We could not send your code. Please try again."
	default:
		return FallbackMessage
	}
}
