package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kimamovic21/real-estate-marketplace/internal/domain"
)

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Avatar   *string `json:"avatar"`
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	patch := domain.UserPatch{Username: req.Username, Email: req.Email, Password: req.Password, Avatar: req.Avatar}
	user, err := h.users.UpdateUser(r.Context(), UserIDFromContext(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteUser also ends the session of the deleted account.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), UserIDFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	http.SetCookie(w, h.tokens.Revoke())
	writeJSON(w, http.StatusOK, messageBody{Success: true, Message: "User has been deleted!"})
}

func (h *Handler) HandleUserListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.users.ListUserListings(r.Context(), UserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}
