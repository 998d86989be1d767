package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	logctx "github.com/ANIRUDH-7600/Smartdoc/pkg/log"
	"github.com/ANIRUDH-7600/Smartdoc/pkg/redact"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
)

// RegisterUser создаёт пользователя и выпускает пару токенов.
func (s *Service) RegisterUser(ctx context.Context, username, email, password string) (*storage.User, string, string, error) {
	const op = "service.auth.RegisterUser"

	lg := logctx.From(ctx)

	if _, err := s.st.UserByUsername(ctx, username); err == nil {
		return nil, "", "", fmt.Errorf("%s: %w", op, ErrUsernameTaken)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, "", "", fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.st.UserByEmail(ctx, email); err == nil {
		return nil, "", "", fmt.Errorf("%s: %w", op, ErrEmailTaken)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, "", "", fmt.Errorf("%s: %w", op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", "", fmt.Errorf("%s: hash password: %w", op, err)
	}

	user := &storage.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.st.SaveUser(ctx, user); err != nil {
		// Гонка между проверкой и вставкой: уникальность решает БД.
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, "", "", fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		}

		lg.Error("save_user_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return nil, "", "", fmt.Errorf("%s: %w", op, err)
	}

	access, refresh, err := s.IssueTokens(user)
	if err != nil {
		return nil, "", "", fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("user_registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", redact.Email(user.Email)),
	)

	return user, access, refresh, nil
}

// LoginUser аутентифицирует пользователя по username и паролю.
func (s *Service) LoginUser(ctx context.Context, username, password string) (*storage.User, string, string, error) {
	const op = "service.auth.LoginUser"

	lg := logctx.From(ctx)

	user, err := s.st.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Не раскрываем, существует ли пользователь.
			return nil, "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		lg.Warn("login_failed",
			slog.String("op", op),
			slog.String("username", username),
		)
		return nil, "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	access, refresh, err := s.IssueTokens(user)
	if err != nil {
		return nil, "", "", fmt.Errorf("%s: %w", op, err)
	}

	return user, access, refresh, nil
}

// RefreshAccess выпускает новый access-токен по refresh-токену.
func (s *Service) RefreshAccess(ctx context.Context, refreshStr string) (string, error) {
	const op = "service.auth.RefreshAccess"

	userID, err := s.ValidateRefresh(refreshStr)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.st.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	access, _, err := s.IssueTokens(user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return access, nil
}

// Profile возвращает пользователя по ID.
func (s *Service) Profile(ctx context.Context, userID int64) (*storage.User, error) {
	const op = "service.auth.Profile"

	user, err := s.st.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateProfile меняет username и/или email; пустые значения оставляют
// поле как есть.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, username, email string) (*storage.User, error) {
	const op = "service.auth.UpdateProfile"

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if username != "" && username != user.Username {
		if _, err := s.st.UserByUsername(ctx, username); err == nil {
			return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		user.Username = username
	}

	if email != "" && email != user.Email {
		if _, err := s.st.UserByEmail(ctx, email); err == nil {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		user.Email = email
	}

	if err := s.st.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// ChangePassword меняет пароль после проверки текущего.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	const op = "service.auth.ChangePassword"

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%s: hash password: %w", op, err)
	}

	user.PasswordHash = string(hash)
	if err := s.st.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Info("password_changed", slog.Int64("user_id", userID))

	return nil
}
