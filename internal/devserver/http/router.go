package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/http/handlers"
	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/http/middleware"
	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/service"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)

	h := handlers.New(svc)
	auth := middleware.Auth(svc)

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, auth)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, auth)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, auth middleware.Middleware) {
	// Публичные маршруты.
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/refresh-token", h.RefreshToken)

	// Всё остальное требует валидный access-токен.
	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Get("/verify-token", h.VerifyToken)
		r.Post("/logout", h.Logout)

		r.Post("/upload", h.Upload)
		r.Get("/documents", h.ListDocuments)
		r.Get("/documents/shared-with-me", h.SharedWithMe)
		r.Post("/documents/share", h.ShareDocument)
		r.Delete("/documents/shares/{share_id}", h.DeleteShare)
		r.Get("/documents/{document_id}", h.Document)
		r.Delete("/documents/{document_id}", h.DeleteDocument)
		r.Get("/documents/{document_id}/preview", h.Preview)
		r.Get("/documents/{document_id}/download", h.Download)
		r.Get("/documents/{document_id}/shares", h.DocumentShares)

		r.Post("/ask", h.Ask)

		r.Post("/feedback", h.SubmitFeedback)
		r.Get("/feedback/stats", h.FeedbackStats)
		r.Delete("/feedback/{feedback_id}", h.DeleteFeedback)

		r.Get("/profile", h.Profile)
		r.Put("/profile", h.UpdateProfile)
		r.Put("/change-password", h.ChangePassword)
	})
}
