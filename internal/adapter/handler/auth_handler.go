package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kimamovic21/real-estate-marketplace/internal/auth"
	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
	"github.com/kimamovic21/real-estate-marketplace/internal/usecase"
)

const maxJSONBody = 1 << 20

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.auth.SignUp(r.Context(), usecase.SignUpInput{Name: req.Username, Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.SignUpsTotal.WithLabelValues("password").Inc()
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	h.countSignIn("password", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.startSession(w, session)
}

// HandleGoogle accepts the profile returned by the client-side Google popup.
func (h *Handler) HandleGoogle(w http.ResponseWriter, r *http.Request) {
	var req auth.IdentityAssertion
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	session, err := h.auth.SignInFederated(r.Context(), req)
	h.countSignIn("google", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.startSession(w, session)
}

func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	// The caller may hold an expired or forged token; sign-out clears it either way.
	userID, _ := h.tokens.Verify(auth.TokenFromRequest(r))
	http.SetCookie(w, h.auth.SignOut(r.Context(), userID))
	writeJSON(w, http.StatusOK, messageBody{Success: true, Message: "User has been logged out!"})
}

func (h *Handler) startSession(w http.ResponseWriter, s *usecase.Session) {
	http.SetCookie(w, h.tokens.Cookie(s.Token, s.ExpiresAt))
	writeJSON(w, http.StatusOK, s.User)
}

func (h *Handler) countSignIn(provider string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	h.metrics.SignInsTotal.WithLabelValues(provider, outcome).Inc()
}
