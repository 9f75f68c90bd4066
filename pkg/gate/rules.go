package gate

import "strings"

// Class is the access classification of a route
type Class string

const (
	ClassPublic    Class = "public"
	ClassProtected Class = "protected"
)

// MatchKind controls how a rule pattern is compared to the request path
type MatchKind string

const (
	MatchExact  MatchKind = "exact"
	MatchPrefix MatchKind = "prefix"
)

// Rule classifies request paths. Rules are evaluated in order and the first
// match wins, so more specific patterns belong earlier in the list.
type Rule struct {
	Pattern string
	Match   MatchKind
	Class   Class
}

// Matches reports whether the rule applies to the path
func (r Rule) Matches(path string) bool {
	if r.Match == MatchExact {
		return path == r.Pattern
	}
	return strings.HasPrefix(path, r.Pattern)
}

// DefaultRules is the standard route table: the landing and auth pages are
// public, everything under the account and app areas needs a session.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/", Match: MatchExact, Class: ClassPublic},
		{Pattern: "/signin", Match: MatchPrefix, Class: ClassPublic},
		{Pattern: "/signup", Match: MatchPrefix, Class: ClassPublic},
		{Pattern: "/reset-password", Match: MatchPrefix, Class: ClassPublic},
		{Pattern: "/verify-email", Match: MatchPrefix, Class: ClassPublic},
		{Pattern: "/account", Match: MatchPrefix, Class: ClassProtected},
		{Pattern: "/app", Match: MatchPrefix, Class: ClassProtected},
	}
}

// systemPrefixes are paths the gate never intercepts: framework internals,
// the auth API itself, and static assets.
var systemPrefixes = []string{
	"/_internal/",
	"/api/auth/",
	"/static/",
	"/favicon.ico",
}

// isSystemPath reports whether the path is infrastructure rather than a page.
// Any path containing a dot (/logo.png, /account/v1.2/profile) is passed
// through like a static asset, in any segment, not just the last.
func isSystemPath(path string) bool {
	for _, prefix := range systemPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return strings.Contains(path, ".")
}
