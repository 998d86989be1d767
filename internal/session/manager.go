package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ANIRUDH-7600/Smartdoc/internal/gateway"
	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
	"github.com/ANIRUDH-7600/Smartdoc/internal/store"
	"github.com/ANIRUDH-7600/Smartdoc/pkg/redact"
)

// Manager — владелец состояния сессии. Создаётся один раз на процесс и
// передаётся view-слою явно; глобального экземпляра нет.
//
// Сессионные операции (Initialize/Login/Signup/Refresh/Logout) сериализуются
// поколениями: каждая операция берёт номер поколения на старте, а коммитит
// результат только если за время её полёта не началась более новая. Отставший
// успех отбрасывается с ErrSuperseded и не может «воскресить» сессию после
// logout.
type Manager struct {
	gw  AuthGateway
	st  store.Store
	log *slog.Logger

	mu    sync.Mutex
	state State
	cur   Session
	gen   uint64

	initOnce sync.Once
}

// New создаёт менеджер в состоянии UNINITIALIZED. До завершения Initialize
// снапшоты возвращают IsInitializing=true.
func New(gw AuthGateway, st store.Store, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}

	return &Manager{
		gw:    gw,
		st:    st,
		log:   log,
		state: StateUninitialized,
		cur:   Session{IsInitializing: true},
	}
}

// Snapshot возвращает копию наблюдаемого состояния сессии.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.cur
	if s.User != nil {
		u := *s.User
		s.User = &u
	}

	return s
}

// State возвращает текущий этап жизненного цикла.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Token возвращает access-токен активной сессии для авторизованных вызовов API.
func (m *Manager) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cur.IsAuthenticated {
		return "", ErrNotAuthenticated
	}

	return m.cur.AccessToken, nil
}

// Initialize выполняет одноразовую стартовую проверку сессии: читает
// сохранённые токены, сверяет access-токен с сервером и при просрочке делает
// ровно одну попытку silent refresh. Любой невосстановимый исход приводит к
// анонимному состоянию; ошибки наружу не отдаются (стартовые сбои не
// показываются пользователю). Повторный вызов — no-op.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() { m.initialize(ctx) })
}

func (m *Manager) initialize(ctx context.Context) {
	m.mu.Lock()
	m.gen++
	g := m.gen
	m.state = StateVerifying
	token, okToken := m.st.Get(store.KeyToken)
	userRaw, okUser := m.st.Get(store.KeyUser)
	m.mu.Unlock()

	defer m.finishInit()

	// Нет сохранённой сессии — остаёмся пустыми, ничего не чистим.
	if !okToken || !okUser {
		return
	}

	res, err := m.gw.Verify(ctx, token)
	if err != nil {
		m.log.Warn("startup_verify_failed", slog.String("err", err.Error()))
		m.commit(g, m.logoutLocked)
		return
	}

	switch {
	case res.Valid:
		var u models.User
		if jerr := json.Unmarshal([]byte(userRaw), &u); jerr != nil {
			m.log.Warn("cached_user_corrupt", slog.String("err", jerr.Error()))
			m.commit(g, m.logoutLocked)
			return
		}

		rt, _ := m.st.Get(store.KeyRefreshToken)
		m.commit(g, func() {
			m.cur = Session{
				AccessToken:     token,
				RefreshToken:    rt,
				User:            &u,
				IsAuthenticated: true,
				IsInitializing:  m.cur.IsInitializing,
			}
			m.state = StateAuthenticated
		})

	case res.Expired:
		rt, ok := m.st.Get(store.KeyRefreshToken)
		if !ok {
			m.log.Info("token_expired_no_refresh")
			m.commit(g, m.logoutLocked)
			return
		}

		if err := m.refreshWith(ctx, g, rt); err != nil {
			m.log.Warn("startup_refresh_failed", slog.String("err", err.Error()))
		}

	default:
		// valid=false без expired: токен отвергнут — полный logout.
		m.log.Info("startup_token_rejected")
		m.commit(g, m.logoutLocked)
	}
}

// finishInit снимает флаг инициализации и фиксирует конечное состояние,
// если стартовая проверка не довела машину до терминального.
func (m *Manager) finishInit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cur.IsInitializing = false
	if m.state == StateVerifying {
		if m.cur.IsAuthenticated {
			m.state = StateAuthenticated
		} else {
			m.state = StateAnonymous
		}
	}
}

// Login аутентифицирует пользователя. При успехе токены и профиль
// персистятся и сессия становится активной; при отказе состояние не
// меняется вовсе, а ошибка несёт дословное серверное сообщение
// (*gateway.APIError) либо сетевой класс gateway.ErrUnavailable.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	const op = "session.Login"

	g := m.begin()

	res, err := m.gw.Login(ctx, username, password)
	if err != nil {
		m.log.Warn("login_failed",
			slog.String("username", username),
			slog.String("password", redact.Password()),
			slog.String("err", err.Error()),
		)
		return authFailure(op, err, "Login failed")
	}

	if !m.commitAuth(g, res) {
		return ErrSuperseded
	}

	m.log.Info("login_ok", slog.String("username", res.User.Username))
	return nil
}

// Signup регистрирует пользователя; контракт идентичен Login.
func (m *Manager) Signup(ctx context.Context, username, email, password string) error {
	const op = "session.Signup"

	g := m.begin()

	res, err := m.gw.Signup(ctx, username, email, password)
	if err != nil {
		m.log.Warn("signup_failed",
			slog.String("username", username),
			slog.String("email", redact.Email(email)),
			slog.String("err", err.Error()),
		)
		return authFailure(op, err, "Signup failed")
	}

	if !m.commitAuth(g, res) {
		return ErrSuperseded
	}

	m.log.Info("signup_ok", slog.String("username", res.User.Username))
	return nil
}

// Refresh обменивает сохранённый refresh-токен на новый access-токен.
// Любой неуспех (включая отсутствие refresh-токена) завершается полным
// logout; паник и «невидимых» исходов у операции нет.
func (m *Manager) Refresh(ctx context.Context) error {
	g := m.begin()

	rt, ok := m.st.Get(store.KeyRefreshToken)
	if !ok {
		m.commit(g, m.logoutLocked)
		return ErrNoRefreshToken
	}

	return m.refreshWith(ctx, g, rt)
}

// Logout синхронно и идемпотентно сбрасывает сессию: все три ключа
// хранилища удаляются, память очищается. Отказов у операции нет.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Logout — тоже сессионная операция: поколение сдвигается, чтобы
	// отставшие login/refresh не закоммитились поверх.
	m.gen++
	m.logoutLocked()
}

// refreshWith выполняет одну попытку обмена refresh-токена в рамках
// поколения g. Успех восстанавливает профиль из кэша хранилища.
func (m *Manager) refreshWith(ctx context.Context, g uint64, refreshToken string) error {
	const op = "session.refresh"

	res, err := m.gw.Refresh(ctx, refreshToken)
	if err != nil {
		if !m.commit(g, m.logoutLocked) {
			return ErrSuperseded
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	// Профиль приходит не из ответа refresh, а из кэша последней
	// подтверждённой сессии; без него инвариант «authenticated => user»
	// не выполнить, и сессия сбрасывается.
	var u *models.User
	if raw, ok := m.st.Get(store.KeyUser); ok {
		var parsed models.User
		if jerr := json.Unmarshal([]byte(raw), &parsed); jerr == nil {
			u = &parsed
		}
	}
	if u == nil {
		if !m.commit(g, m.logoutLocked) {
			return ErrSuperseded
		}
		return fmt.Errorf("%s: cached user missing", op)
	}

	committed := m.commit(g, func() {
		m.st.Set(store.KeyToken, res.AccessToken)
		rt := refreshToken
		if res.RefreshToken != "" {
			m.st.Set(store.KeyRefreshToken, res.RefreshToken)
			rt = res.RefreshToken
		}

		m.cur = Session{
			AccessToken:     res.AccessToken,
			RefreshToken:    rt,
			User:            u,
			IsAuthenticated: true,
			IsInitializing:  m.cur.IsInitializing,
		}
		m.state = StateAuthenticated
	})
	if !committed {
		return ErrSuperseded
	}

	m.log.Info("token_refreshed", slog.String("token", redact.Token()))
	return nil
}

// begin регистрирует старт сессионной операции и возвращает её поколение.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	return m.gen
}

// commit применяет fn только если g всё ещё текущее поколение.
// Хранилище и память мутируются внутри fn под одним захватом мьютекса,
// поэтому согласованность между ними не нарушается ни в какой точке.
func (m *Manager) commit(g uint64, fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g != m.gen {
		return false
	}

	fn()
	return true
}

// commitAuth персистит результат login/signup и публикует активную сессию.
func (m *Manager) commitAuth(g uint64, res *gateway.AuthResult) bool {
	raw, err := json.Marshal(res.User)
	if err != nil {
		m.log.Error("user_marshal_failed", slog.String("err", err.Error()))
		return false
	}

	return m.commit(g, func() {
		m.st.Set(store.KeyToken, res.AccessToken)
		if res.RefreshToken != "" {
			m.st.Set(store.KeyRefreshToken, res.RefreshToken)
		} else {
			// Refresh-токен прошлой сессии не должен пережить новую.
			m.st.Remove(store.KeyRefreshToken)
		}
		m.st.Set(store.KeyUser, string(raw))

		u := res.User
		m.cur = Session{
			AccessToken:     res.AccessToken,
			RefreshToken:    res.RefreshToken,
			User:            &u,
			IsAuthenticated: true,
			IsInitializing:  m.cur.IsInitializing,
		}
		m.state = StateAuthenticated
	})
}

// logoutLocked сбрасывает сессию. Вызывается только под m.mu.
func (m *Manager) logoutLocked() {
	m.st.Remove(store.KeyToken)
	m.st.Remove(store.KeyRefreshToken)
	m.st.Remove(store.KeyUser)

	m.cur = Session{IsInitializing: m.cur.IsInitializing}
	if m.state != StateVerifying {
		m.state = StateAnonymous
	}
}

// authFailure нормализует отказ login/signup: серверное сообщение
// пробрасывается дословно, пустое — заменяется общим fallback,
// транспортные сбои остаются классом gateway.ErrUnavailable.
func authFailure(op string, err error, fallback string) error {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message == "" {
			return &gateway.APIError{Status: apiErr.Status, Message: fallback}
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", op, err)
}
