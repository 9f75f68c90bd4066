package twofa

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/authgate/authgate/pkg/accounts"
	"github.com/authgate/authgate/pkg/tokengenerator"
)

type SendRequest struct {
	Method string `json:"method"`
	Phone  string `json:"phone,omitempty"`
}

type ValidateRequest struct {
	Code string `json:"code"`
}

// Response is the shape of all two-factor endpoint responses
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type Handle struct {
	service      *Service
	accountRepo  accounts.Repository
	tokenService *tokengenerator.TokenService
	cookieSetter tokengenerator.CookieSetter
}

// NewHandle creates a new two-factor Handle
func NewHandle(service *Service, accountRepo accounts.Repository, tokenService *tokengenerator.TokenService, cookieSetter tokengenerator.CookieSetter) *Handle {
	return &Handle{
		service:      service,
		accountRepo:  accountRepo,
		tokenService: tokenService,
		cookieSetter: cookieSetter,
	}
}

// Handler returns an http.Handler for the two-factor endpoints
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	r.Post("/send", h.PostSend)
	r.Post("/resend", h.PostResend)
	r.Post("/validate", h.PostValidate)
	return r
}

// pendingEmail extracts and validates the pending-auth ticket set at signin.
// The cookie is the normal carrier; the Authorization header is accepted as
// a fallback for non-browser clients.
func (h *Handle) pendingEmail(r *http.Request) (string, bool) {
	tokenStr := ""
	if cookie, err := r.Cookie(tokengenerator.PENDING_TOKEN_NAME); err == nil {
		tokenStr = cookie.Value
	}
	if tokenStr == "" {
		if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
			tokenStr = auth[7:]
		}
	}
	if tokenStr == "" {
		return "", false
	}

	email, err := h.tokenService.ParsePendingToken(tokenStr)
	if err != nil {
		slog.Warn("Invalid pending-auth token", "err", err)
		return "", false
	}
	return email, true
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, Response{Success: false, Message: "Your sign-in session has expired. Please sign in again."})
}

// Send a two-factor passcode over the chosen channel
// (POST /2fa/send)
func (h *Handle) PostSend(w http.ResponseWriter, r *http.Request) {
	email, ok := h.pendingEmail(r)
	if !ok {
		unauthorized(w, r)
		return
	}

	var body SendRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Response{Success: false, Message: "Unable to parse request body"})
		return
	}

	if err := h.service.IssueChallenge(r.Context(), email, Method(body.Method), body.Phone); err != nil {
		slog.Error("Failed to issue 2FA challenge", "method", body.Method, "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Response{Success: false, Message: FriendlyMessage(err)})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true, Message: "Verification code sent"})
}

// Resend the passcode for the pending challenge
// (POST /2fa/resend)
func (h *Handle) PostResend(w http.ResponseWriter, r *http.Request) {
	email, ok := h.pendingEmail(r)
	if !ok {
		unauthorized(w, r)
		return
	}

	if err := h.service.Resend(r.Context(), email); err != nil {
		slog.Error("Failed to resend 2FA passcode", "err", err)
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Response{Success: false, Message: FriendlyMessage(err)})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true, Message: "Verification code sent"})
}

// Validate a passcode and exchange the pending-auth ticket for a session
// (POST /2fa/validate)
func (h *Handle) PostValidate(w http.ResponseWriter, r *http.Request) {
	email, ok := h.pendingEmail(r)
	if !ok {
		unauthorized(w, r)
		return
	}

	var body ValidateRequest
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Response{Success: false, Message: "Unable to parse request body"})
		return
	}

	if err := h.service.Verify(r.Context(), email, body.Code); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, Response{Success: false, Message: FriendlyMessage(err)})
		return
	}

	acct, err := h.accountRepo.FindByEmail(r.Context(), email)
	if err != nil {
		slog.Error("Failed to load account after 2FA validation", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Response{Success: false, Message: FallbackMessage})
		return
	}

	sessionToken, err := h.tokenService.MintSessionToken(acct.ID, acct.Email)
	if err != nil {
		slog.Error("Failed to mint session token", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Response{Success: false, Message: FallbackMessage})
		return
	}

	if err := h.cookieSetter.SetToken(w, sessionToken); err != nil {
		slog.Error("Failed to set session cookie", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, Response{Success: false, Message: FallbackMessage})
		return
	}
	if err := h.cookieSetter.ClearCookie(w, tokengenerator.PENDING_TOKEN_NAME); err != nil {
		slog.Error("Failed to clear pending-auth cookie", "err", err)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, Response{Success: true})
}
