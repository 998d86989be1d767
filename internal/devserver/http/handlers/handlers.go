// handlers реализует REST-эндпойнты dev-сервера SmartDoc.
//
// Формат ошибок совместим с клиентом: {"error": "<сообщение>"},
// у просроченного токена дополнительно {"expired": true}.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	logctx "github.com/ANIRUDH-7600/Smartdoc/pkg/log"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/http/middleware"
	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/service"
	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// Handlers агрегирует зависимости HTTP-слоя.
type Handlers struct {
	svc *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeErrorMsg пишет доменную ошибку с заданным статусом.
func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError маппит сентинелы сервиса в HTTP-статусы и безопасные сообщения.
// Неизвестные ошибки логируются и уходят как 500 без деталей.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeErrorMsg(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, service.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error":   "Token has expired",
			"expired": true,
		})
	case errors.Is(err, service.ErrInvalidToken):
		writeErrorMsg(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, service.ErrUsernameTaken):
		writeErrorMsg(w, http.StatusConflict, "Username already exists")
	case errors.Is(err, service.ErrEmailTaken):
		writeErrorMsg(w, http.StatusConflict, "Email already exists")
	case errors.Is(err, service.ErrNotFound):
		writeErrorMsg(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrForbidden):
		writeErrorMsg(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrUnsupportedFile):
		writeErrorMsg(w, http.StatusBadRequest, "Unsupported file type")
	case errors.Is(err, service.ErrEmptyDocument):
		writeErrorMsg(w, http.StatusBadRequest, "Document contains no extractable text")
	case errors.Is(err, service.ErrFileTooLarge):
		writeErrorMsg(w, http.StatusBadRequest, "File too large")
	default:
		logctx.From(r.Context()).Error("internal_error",
			slog.String("path", r.URL.Path),
			slog.String("err", err.Error()),
		)
		writeErrorMsg(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decode разбирает JSON-тело запроса.
func decode(r *http.Request, value any) error {
	return json.NewDecoder(r.Body).Decode(value)
}

// identity достаёт аутентифицированного пользователя; маршруты под Auth
// гарантируют его наличие.
func identity(r *http.Request) middleware.Identity {
	id, _ := middleware.IdentityFrom(r.Context())
	return id
}

// userView приводит учётную запись к публичному JSON-представлению.
func userView(u *storage.User) models.User {
	return models.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		IsActive:  u.IsActive,
	}
}

// docView приводит документ к публичному JSON-представлению.
func docView(d *storage.Document) models.Document {
	return models.Document{
		ID:              d.ID,
		DocumentID:      d.DocumentID,
		Filename:        d.Filename,
		FileType:        d.FileType,
		ChunksProcessed: d.ChunksProcessed,
		TotalChunks:     d.TotalChunks,
		UserID:          d.UserID,
		CreatedAt:       d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// shareView приводит шаринг к публичному JSON-представлению.
func shareView(s *storage.Share) models.Share {
	return models.Share{
		ID:              s.ID,
		DocumentID:      s.DocumentID,
		OwnerID:         s.OwnerID,
		SharedWithID:    s.SharedWithID,
		PermissionLevel: s.PermissionLevel,
		CreatedAt:       s.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// feedbackView приводит оценку к публичному JSON-представлению.
func feedbackView(f *storage.Feedback) models.Feedback {
	return models.Feedback{
		FeedbackID:   f.FeedbackID,
		AnswerID:     f.AnswerID,
		Rating:       f.Rating,
		FeedbackType: f.FeedbackType,
		Comment:      f.Comment,
		CreatedAt:    f.CreatedAt.UTC().Format(time.RFC3339),
	}
}
