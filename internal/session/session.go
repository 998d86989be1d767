// session — менеджер жизненного цикла аутентификации клиента SmartDoc.
//
// Пакет владеет единственным процесс-широким состоянием сессии и является
// единственной точкой его мутации: view-слой (CLI, встраивающий код) читает
// снапшоты и вызывает операции, но не трогает ни Token Store, ни память
// напрямую. Машина состояний:
//
//	UNINITIALIZED -> VERIFYING -> {AUTHENTICATED, ANONYMOUS}
//	AUTHENTICATED -> ANONYMOUS  (logout, провал refresh)
//	ANONYMOUS     -> AUTHENTICATED (успешные login/signup)
//
// VERIFYING — одноразовое стартовое состояние; повторный Initialize — no-op.
//
// Инварианты:
//   - IsAuthenticated == true влечёт наличие AccessToken и User;
//   - Token Store и память согласованы: оба мутируются внутри одного
//     закоммиченного шага, между ними нет await-границы;
//   - наблюдаемое состояние никогда не бывает частичным.
package session

import (
	"context"
	"errors"

	"github.com/ANIRUDH-7600/Smartdoc/internal/gateway"
	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

var (
	// ErrSuperseded — результат операции отброшен: пока она была в полёте,
	// началась более новая сессионная операция. Состояние не изменено.
	ErrSuperseded = errors.New("superseded by a newer session operation")

	// ErrNoRefreshToken — refresh запрошен, а refresh-токена в хранилище нет.
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// ErrNotAuthenticated — операция требует активной сессии.
	ErrNotAuthenticated = errors.New("not authenticated")
)

//go:generate mockgen -source=session.go -destination=mocks/mock_gateway.go -package=mocks

// AuthGateway — операции auth-бэкенда, нужные менеджеру сессии.
// Реализуется gateway.Client; в тестах подменяется моком.
type AuthGateway interface {
	Login(ctx context.Context, username, password string) (*gateway.AuthResult, error)
	Signup(ctx context.Context, username, email, password string) (*gateway.AuthResult, error)
	Verify(ctx context.Context, accessToken string) (gateway.VerifyResult, error)
	Refresh(ctx context.Context, refreshToken string) (*gateway.RefreshResult, error)
}

// State — этап жизненного цикла сессии.
type State int

const (
	StateUninitialized State = iota
	StateVerifying
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateVerifying:
		return "verifying"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session — наблюдаемый снимок состояния аутентификации.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
	// IsAuthenticated истинно только для подтверждённой сервером сессии.
	IsAuthenticated bool
	// IsInitializing истинно до завершения стартовой проверки; view-слой
	// не должен отрисовывать зависящий от сессии интерфейс, пока флаг не снят.
	IsInitializing bool
}
