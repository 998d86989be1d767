package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
)

const refreshTokenType = "refresh"

type accessClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	// TokenType пуст у access-токена; непустое значение означает,
	// что на этом месте предъявили refresh.
	TokenType string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

type refreshClaims struct {
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// IssueTokens выпускает пару access/refresh для пользователя.
func (s *Service) IssueTokens(user *storage.User) (access, refresh string, err error) {
	const op = "service.token.IssueTokens"

	now := time.Now().UTC()

	ac := accessClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	access, err = jwt.NewWithClaims(jwt.SigningMethodHS256, ac).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("%s: sign access: %w", op, err)
	}

	rc := refreshClaims{
		UserID:    user.ID,
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshTTL)),
		},
	}
	refresh, err = jwt.NewWithClaims(jwt.SigningMethodHS256, rc).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("%s: sign refresh: %w", op, err)
	}

	return access, refresh, nil
}

// ValidateAccess проверяет access-токен и возвращает идентификатор
// и username его владельца.
func (s *Service) ValidateAccess(tokenStr string) (int64, string, error) {
	const op = "service.token.ValidateAccess"

	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, "", fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return 0, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || claims.UserID == 0 || claims.TokenType != "" {
		return 0, "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims.UserID, claims.Username, nil
}

// ValidateRefresh проверяет refresh-токен и возвращает идентификатор владельца.
// Access-токен на этом месте отвергается по отсутствию token_type.
func (s *Service) ValidateRefresh(tokenStr string) (int64, error) {
	const op = "service.token.ValidateRefresh"

	token, err := jwt.ParseWithClaims(tokenStr, &refreshClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*refreshClaims)
	if !ok || !token.Valid || claims.TokenType != refreshTokenType || claims.UserID == 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims.UserID, nil
}
