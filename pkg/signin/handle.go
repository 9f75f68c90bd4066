package signin

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/authgate/authgate/pkg/tokengenerator"
)

type SigninJSONRequestBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse tells the client what happened and where to go next.
// Status is "success" or "2fa_required".
type SigninResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type Handle struct {
	service      *SigninService
	cookieSetter tokengenerator.CookieSetter
}

// NewHandle creates a new signin Handle
func NewHandle(service *SigninService, cookieSetter tokengenerator.CookieSetter) *Handle {
	return &Handle{
		service:      service,
		cookieSetter: cookieSetter,
	}
}

// Handler returns an http.Handler for the signin endpoints
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	r.Post("/signin", h.PostSignin)
	r.Post("/signout", h.PostSignout)
	return r
}

// safeRedirect keeps the post-signin redirect on this site. Anything that is
// not a plain relative path is replaced with the root.
func safeRedirect(from string) string {
	if from == "" {
		return "/"
	}
	if !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.Contains(from, "\\") {
		return "/"
	}
	return from
}

// Authenticate email and password
// (POST /signin)
func (h *Handle) PostSignin(w http.ResponseWriter, r *http.Request) {
	var body SigninJSONRequestBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, SigninResponse{Status: "error", Message: "Unable to parse request body"})
		return
	}

	if body.Email == "" || body.Password == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, SigninResponse{Status: "error", Message: "Email and password are required"})
		return
	}

	result, err := h.service.Signin(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, SigninResponse{Status: "error", Message: "Invalid email or password"})
			return
		}
		slog.Error("Signin failed", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, SigninResponse{Status: "error", Message: "Something went wrong. Please try again."})
		return
	}

	switch result.Status {
	case StatusTwoFactorRequired:
		if err := h.cookieSetter.SetToken(w, *result.Pending); err != nil {
			slog.Error("Failed to set pending-auth cookie", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, SigninResponse{Status: "error", Message: "Something went wrong. Please try again."})
			return
		}
		render.Status(r, http.StatusOK)
		render.JSON(w, r, SigninResponse{Status: "2fa_required"})
	case StatusAuthenticated:
		if err := h.cookieSetter.SetToken(w, *result.Session); err != nil {
			slog.Error("Failed to set session cookie", "err", err)
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, SigninResponse{Status: "error", Message: "Something went wrong. Please try again."})
			return
		}
		render.Status(r, http.StatusOK)
		render.JSON(w, r, SigninResponse{
			Status:   "success",
			Redirect: safeRedirect(r.URL.Query().Get("from")),
		})
	default:
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, SigninResponse{Status: "error", Message: "Invalid email or password"})
	}
}

// End the current session
// (POST /signout)
func (h *Handle) PostSignout(w http.ResponseWriter, r *http.Request) {
	if err := h.cookieSetter.ClearCookie(w, tokengenerator.SESSION_TOKEN_NAME); err != nil {
		slog.Error("Failed to clear session cookie", "err", err)
	}
	if err := h.cookieSetter.ClearCookie(w, tokengenerator.PENDING_TOKEN_NAME); err != nil {
		slog.Error("Failed to clear pending-auth cookie", "err", err)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, SigninResponse{Status: "success", Redirect: "/signin"})
}
