// service содержит бизнес-логику dev-сервера SmartDoc:
// регистрацию/аутентификацию пользователей, выпуск/проверку токенов,
// индексацию документов, Q&A по фрагментам, шаринг и оценки ответов.
//
// Экземпляр Service безопасен для конкурентного использования при условии,
// что переданное хранилище (storage.Storage) потокобезопасно.
// Ошибки возвращаются сентинелами и маппятся HTTP-слоем
// (см. комментарии к переменным ниже).
package service

import (
	"errors"

	"github.com/ANIRUDH-7600/Smartdoc/internal/config"
	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// HTTP 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен некорректен по формату или подписи. HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. HTTP 401 c expired=true.
	ErrTokenExpired = errors.New("token expired")

	// ErrUsernameTaken — username уже занят. HTTP 409.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken — e-mail уже занят. HTTP 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrNotFound — запрошенная сущность не существует. HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrForbidden — сущность существует, но принадлежит другому пользователю.
	// HTTP 403.
	ErrForbidden = errors.New("forbidden")

	// ErrUnsupportedFile — тип файла не поддерживается индексацией. HTTP 400.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrEmptyDocument — в файле не нашлось текста для индексации. HTTP 400.
	ErrEmptyDocument = errors.New("document contains no text")

	// ErrFileTooLarge — файл превышает лимит загрузки. HTTP 400.
	// Усечённая индексация недопустима: документ либо принят целиком,
	// либо отвергнут.
	ErrFileTooLarge = errors.New("file too large")
)

// Service описывает бизнес-логику dev-сервера.
type Service struct {
	st  storage.Storage
	cfg config.AuthConfig
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, cfg config.AuthConfig) *Service {
	return &Service{st: st, cfg: cfg}
}
