package password

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ResetRequestJSONRequestBody struct {
	Email string `json:"email"`
}

type ResetConsumeJSONRequestBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetResponse is the shape of all reset endpoint responses
type ResetResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Handle struct {
	manager *Manager
}

// NewHandle creates a new Handle
func NewHandle(manager *Manager) *Handle {
	return &Handle{manager: manager}
}

// Handler returns an http.Handler for the password reset endpoints
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	r.Post("/request", h.PostResetRequest)
	r.Post("/consume", h.PostResetConsume)
	return r
}

// Request a password reset email
// (POST /reset-password/request)
func (h *Handle) PostResetRequest(w http.ResponseWriter, r *http.Request) {
	var body ResetRequestJSONRequestBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ResetResponse{Success: false, Message: "Unable to parse request body"})
		return
	}

	if body.Email == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ResetResponse{Success: false, Message: "Email is required"})
		return
	}

	// Always answer with the same message regardless of outcome to prevent
	// account enumeration; failures are logged only.
	if err := h.manager.RequestReset(r.Context(), body.Email); err != nil {
		slog.Error("Failed to process password reset request", "err", err)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ResetResponse{
		Success: true,
		Message: "If an account exists with that email, we will send a password reset link to it.",
	})
}

// Consume a password reset token
// (POST /reset-password/consume)
func (h *Handle) PostResetConsume(w http.ResponseWriter, r *http.Request) {
	var body ResetConsumeJSONRequestBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ResetResponse{Success: false, Message: "Unable to parse request body"})
		return
	}

	if body.Token == "" || body.NewPassword == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ResetResponse{Success: false, Message: "Token and new password are required"})
		return
	}

	if err := h.manager.ConsumeReset(r.Context(), body.Token, body.NewPassword); err != nil {
		slog.Error("Failed to reset password", "err", err)
		message := "Invalid or expired token"
		if errors.Is(err, ErrPolicyViolation) {
			// Complexity failures are local validation and safe to surface
			message = err.Error()
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ResetResponse{Success: false, Message: message})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, ResetResponse{Success: true, Message: "Password has been reset successfully"})
}
