// models описывает wire-типы SmartDoc API: одновременно контракт
// REST-бэкенда и формат кэширования в локальном хранилище сессии.
package models

// User — профиль пользователя в том виде, в котором его отдаёт бэкенд.
// Копия последнего подтверждённого сервером профиля кэшируется в Token Store
// под ключом "user" и восстанавливается при старте без повторного запроса.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	// CreatedAt — ISO-8601 строка; формат сервера не нормализуется на клиенте.
	CreatedAt string `json:"created_at,omitempty"`
	IsActive  bool   `json:"is_active"`
}
