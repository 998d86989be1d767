package handlers

import (
	"net/http"
)

// Profile — GET /profile.
func (h *Handlers) Profile(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	user, err := h.svc.Profile(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": userView(user)})
}

// UpdateProfile — PUT /profile: меняет username и/или email.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := decode(r, &in); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Username == "" && in.Email == "" {
		writeErrorMsg(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), id.UserID, in.Username, in.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    userView(user),
	})
}

// ChangePassword — PUT /change-password.
func (h *Handlers) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	var in struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decode(r, &in); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.CurrentPassword == "" || in.NewPassword == "" {
		writeErrorMsg(w, http.StatusBadRequest, "Current and new passwords are required")
		return
	}
	if len(in.NewPassword) < 6 {
		writeErrorMsg(w, http.StatusBadRequest, "New password must be at least 6 characters")
		return
	}

	if err := h.svc.ChangePassword(r.Context(), id.UserID, in.CurrentPassword, in.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password changed successfully"})
}
