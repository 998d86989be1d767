package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/service"
)

type ctxKey int

const identityKey ctxKey = iota

// Identity — аутентифицированный пользователь запроса.
type Identity struct {
	UserID   int64
	Username string
}

// IdentityFrom достаёт личность из контекста запроса.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// TokenValidator проверяет access-токен и возвращает его владельца.
type TokenValidator interface {
	ValidateAccess(token string) (int64, string, error)
}

// Auth требует валидный Bearer-токен: извлекает его из Authorization,
// проверяет и кладёт Identity в контекст. Просроченный токен отличается
// от невалидного флагом expired в теле 401 — клиент по нему решает,
// пробовать ли refresh.
func Auth(tokens TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				writeAuthError(w, "Authorization token is required", false)
				return
			}

			userID, username, err := tokens.ValidateAccess(raw)
			if err != nil {
				if errors.Is(err, service.ErrTokenExpired) {
					writeAuthError(w, "Token has expired", true)
					return
				}

				writeAuthError(w, "Invalid token", false)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, Identity{
				UserID:   userID,
				Username: username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, prefix) {
		return ""
	}

	return strings.TrimSpace(auth[len(prefix):])
}

func writeAuthError(w http.ResponseWriter, msg string, expired bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]any{"error": msg}
	if expired {
		body["expired"] = true
	}

	_ = json.NewEncoder(w).Encode(body)
}
