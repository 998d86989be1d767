package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// AuthResult — успешный ответ login/signup. RefreshToken опционален:
// сервер вправе не выдавать его.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

// VerifyResult — итог проверки access-токена.
// Valid=false с Expired=true означает просроченный, но в остальном
// корректный токен — кандидат на silent refresh.
type VerifyResult struct {
	Valid   bool
	Expired bool
}

// RefreshResult — новый access-токен и, при ротации, новый refresh-токен.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

type authResponse struct {
	Message      string      `json:"message"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// Login аутентифицирует пользователя по имени (или e-mail) и паролю.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	const op = "gateway.Login"

	in := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var out authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/login", "", in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.AccessToken == "" || out.User.Username == "" {
		return nil, fmt.Errorf("%s: incomplete login response: %w", op, ErrUnavailable)
	}

	return &AuthResult{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		User:         out.User,
	}, nil
}

// Signup регистрирует нового пользователя; контракт ответа тот же, что у Login.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	const op = "gateway.Signup"

	in := struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Username: username, Email: email, Password: password}

	var out authResponse
	if err := c.doJSON(ctx, http.MethodPost, "/signup", "", in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.AccessToken == "" || out.User.Username == "" {
		return nil, fmt.Errorf("%s: incomplete signup response: %w", op, ErrUnavailable)
	}

	return &AuthResult{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		User:         out.User,
	}, nil
}

// Verify проверяет access-токен на сервере. Non-2xx с разборным телом —
// это не ошибка вызова, а отрицательный результат проверки (в том числе
// с флагом expired); ошибкой остаётся только транспорт/мусор в теле.
func (c *Client) Verify(ctx context.Context, accessToken string) (VerifyResult, error) {
	const op = "gateway.Verify"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/verify-token", nil)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return VerifyResult{}, fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	var body errorBody
	if err := decodeBody(resp, &body); err != nil {
		return VerifyResult{}, fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299

	return VerifyResult{
		Valid:   ok && body.Valid,
		Expired: body.Expired,
	}, nil
}

// Refresh обменивает refresh-токен на новый access-токен.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	const op = "gateway.Refresh"

	in := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	var out struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/refresh-token", "", in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.AccessToken == "" {
		return nil, fmt.Errorf("%s: incomplete refresh response: %w", op, ErrUnavailable)
	}

	return &RefreshResult{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
	}, nil
}
