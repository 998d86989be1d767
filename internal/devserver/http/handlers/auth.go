package handlers

import (
	"net/http"
	"strings"
)

// Signup — POST /signup: регистрация и немедленный вход.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &in); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || in.Password == "" {
		writeErrorMsg(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}
	if !strings.Contains(in.Email, "@") {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	user, access, refresh, err := h.svc.RegisterUser(r.Context(), in.Username, in.Email, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":       "User created successfully",
		"access_token":  access,
		"refresh_token": refresh,
		"user":          userView(user),
	})
}

// Login — POST /login.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &in); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if in.Username == "" || in.Password == "" {
		writeErrorMsg(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, access, refresh, err := h.svc.LoginUser(r.Context(), in.Username, in.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":       "Login successful",
		"access_token":  access,
		"refresh_token": refresh,
		"user":          userView(user),
	})
}

// VerifyToken — GET /verify-token: подтверждение access-токена.
// Маршрут стоит за Auth-мидлваром, так что сюда доходят только
// валидные токены.
func (h *Handlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	id := identity(r)

	user, err := h.svc.Profile(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"user":  userView(user),
	})
}

// RefreshToken — POST /refresh-token: новый access по refresh-токену.
func (h *Handlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decode(r, &in); err != nil || in.RefreshToken == "" {
		writeErrorMsg(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	access, err := h.svc.RefreshAccess(r.Context(), in.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":      "Token refreshed successfully",
		"access_token": access,
	})
}

// Logout — POST /logout. Состояние сессии живёт на клиенте;
// серверу достаточно подтвердить запрос.
func (h *Handlers) Logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
