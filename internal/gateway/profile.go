package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// Profile возвращает серверную копию профиля текущего пользователя.
func (c *Client) Profile(ctx context.Context, token string) (*models.User, error) {
	const op = "gateway.Profile"

	var out struct {
		User models.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/profile", token, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out.User, nil
}

// ProfileUpdate — изменяемые поля профиля; пустое поле не трогается.
type ProfileUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UpdateProfile меняет имя и/или e-mail и возвращает обновлённый профиль.
func (c *Client) UpdateProfile(ctx context.Context, token string, in ProfileUpdate) (*models.User, error) {
	const op = "gateway.UpdateProfile"

	var out struct {
		Message string      `json:"message"`
		User    models.User `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPut, "/profile", token, in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out.User, nil
}

// ChangePassword меняет пароль текущего пользователя.
func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	const op = "gateway.ChangePassword"

	in := struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}{CurrentPassword: current, NewPassword: next}

	if err := c.doJSON(ctx, http.MethodPut, "/change-password", token, in, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
