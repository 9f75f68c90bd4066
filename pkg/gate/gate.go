package gate

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/jwtauth/v5"

	"github.com/authgate/authgate/pkg/tokengenerator"
)

// Gate is a fail-closed session check in front of page routes. Requests to
// protected paths must carry a valid session token; anything that goes wrong
// while deciding, including a misconfigured secret, ends in a redirect to
// the sign-in page rather than a pass-through.
type Gate struct {
	secret     string
	rules      []Rule
	signinPath string
	auth       *jwtauth.JWTAuth
}

// GateOption configures a Gate
type GateOption func(*Gate)

// WithRules replaces the default route table
func WithRules(rules []Rule) GateOption {
	return func(g *Gate) {
		g.rules = rules
	}
}

// WithSigninPath sets the path unauthenticated requests are sent to
func WithSigninPath(path string) GateOption {
	return func(g *Gate) {
		g.signinPath = path
	}
}

// NewGate creates a Gate with the given signing secret. An empty secret
// still produces a working gate, but one that rejects every protected
// request instead of letting tokens through unverified.
func NewGate(secret string, opts ...GateOption) *Gate {
	g := &Gate{
		secret:     secret,
		rules:      DefaultRules(),
		signinPath: "/signin",
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.secret != "" {
		g.auth = jwtauth.New("HS256", []byte(g.secret), nil)
	}
	return g
}

// Middleware classifies each request path and enforces the session check on
// protected routes. Unmatched paths pass through.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if isSystemPath(path) {
			next.ServeHTTP(w, r)
			return
		}

		for _, rule := range g.rules {
			if !rule.Matches(path) {
				continue
			}
			if rule.Class == ClassProtected && !g.authenticated(r) {
				g.redirectToSignin(w, r, path)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authenticated validates the session token on the request. Every failure
// path reports false; a panic inside token parsing counts as a failure too.
func (g *Gate) authenticated(r *http.Request) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("Panic during session validation", "recovered", rec)
			ok = false
		}
	}()

	if g.auth == nil {
		slog.Error("Session gate has no signing secret configured, rejecting")
		return false
	}

	tokenStr := sessionTokenFromRequest(r)
	if tokenStr == "" {
		return false
	}

	if _, err := jwtauth.VerifyToken(g.auth, tokenStr); err != nil {
		slog.Debug("Session token rejected", "err", err)
		return false
	}
	return true
}

func sessionTokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(tokengenerator.SESSION_TOKEN_NAME); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		return auth[7:]
	}
	return ""
}

func (g *Gate) redirectToSignin(w http.ResponseWriter, r *http.Request, from string) {
	target := g.signinPath + "?from=" + url.QueryEscape(from)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
