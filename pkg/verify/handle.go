package verify

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type VerifyEmailJSONRequestBody struct {
	Token string `json:"token"`
}

// VerifyResponse points a just-verified user at the sign-in page
type VerifyResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Redirect     string `json:"redirect,omitempty"`
	DelaySeconds int    `json:"delaySeconds,omitempty"`
}

type Handle struct {
	service *Service
}

// NewHandle creates a new verification Handle
func NewHandle(service *Service) *Handle {
	return &Handle{service: service}
}

// Handler returns an http.Handler for the email verification endpoint
func Handler(h *Handle) http.Handler {
	r := chi.NewRouter()
	r.Post("/", h.PostVerifyEmail)
	return r
}

// Redeem an email verification token
// (POST /verify-email)
func (h *Handle) PostVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var body VerifyEmailJSONRequestBody
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, VerifyResponse{Success: false, Message: "Unable to parse request body"})
		return
	}

	err := h.service.ConsumeVerification(r.Context(), body.Token)
	if err != nil {
		message := "Verification failed. The link may be expired or invalid."
		if errors.Is(err, ErrMissingToken) {
			message = "Verification token is required"
		}
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, VerifyResponse{Success: false, Message: message})
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, VerifyResponse{
		Success:      true,
		Redirect:     "/signin",
		DelaySeconds: 3,
	})
}
