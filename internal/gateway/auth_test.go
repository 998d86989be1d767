package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Тесты auth-операций клиента против httptest-сервера.
//
// Покрытие:
//   - Login/Signup: happy-path, дословный проброс серверной ошибки,
//     мусорное тело -> ErrUnavailable, неполный успешный ответ -> ErrUnavailable,
//     недоступный сервер -> ErrUnavailable;
//   - Verify: valid, expired (non-2xx с телом), отвергнутый токен, мусор;
//   - Refresh: ротация, ответ без access_token.

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "alice", in.Username)
		require.Equal(t, "pw", in.Password)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"message": "Login successful",
			"access_token": "T",
			"refresh_token": "R",
			"user": {"id": 1, "username": "alice", "email": "alice@example.com", "is_active": true}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL + "/api")
	require.Equal(t, srv.URL+"/api", c.BaseURL())

	res, err := c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, "T", res.AccessToken)
	require.Equal(t, "R", res.RefreshToken)
	require.Equal(t, "alice", res.User.Username)
	require.EqualValues(t, 1, res.User.ID)
}

func TestLogin_ServerError_Verbatim(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "Invalid username or password"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.Login(context.Background(), "alice", "bad")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	require.Equal(t, "Invalid username or password", apiErr.Message)
}

func TestLogin_MalformedBody_IsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, ErrUnavailable)
}

// Успешный статус с неполным телом — это не «частичный успех»,
// а нераспознаваемый ответ.
func TestLogin_IncompleteSuccess_IsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message": "ok", "user": {"username": "alice"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLogin_ServerDown_IsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	c := New(srv.URL)

	_, err := c.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestSignup_OK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/signup", r.URL.Path)

		var in struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "bob@example.com", in.Email)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"message": "User created successfully",
			"access_token": "T",
			"refresh_token": "R",
			"user": {"id": 2, "username": "bob", "email": "bob@example.com", "is_active": true}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	res, err := c.Signup(context.Background(), "bob", "bob@example.com", "pw")
	require.NoError(t, err)
	require.Equal(t, "bob", res.User.Username)
}

func TestVerify_Table(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		want    VerifyResult
		wantErr bool
	}{
		{
			name:   "valid",
			status: http.StatusOK,
			body:   `{"valid": true, "user": {"username": "alice"}}`,
			want:   VerifyResult{Valid: true},
		},
		{
			name:   "expired",
			status: http.StatusUnauthorized,
			body:   `{"error": "Token has expired", "expired": true}`,
			want:   VerifyResult{Valid: false, Expired: true},
		},
		{
			name:   "rejected",
			status: http.StatusUnauthorized,
			body:   `{"error": "Invalid token"}`,
			want:   VerifyResult{},
		},
		{
			// valid в теле при non-2xx не делает токен валидным.
			name:   "non_2xx_claims_valid",
			status: http.StatusUnauthorized,
			body:   `{"valid": true}`,
			want:   VerifyResult{},
		},
		{
			name:    "garbage_body",
			status:  http.StatusOK,
			body:    `not json at all`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, http.MethodGet, r.Method)
				require.Equal(t, "/verify-token", r.URL.Path)
				require.Equal(t, "Bearer T", r.Header.Get("Authorization"))

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL)

			got, err := c.Verify(context.Background(), "T")
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnavailable)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRefresh_OK_WithRotation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/refresh-token", r.URL.Path)

		var in struct {
			RefreshToken string `json:"refresh_token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "R", in.RefreshToken)

		_, _ = w.Write([]byte(`{"access_token": "T2", "refresh_token": "R2", "message": "Token refreshed successfully"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	res, err := c.Refresh(context.Background(), "R")
	require.NoError(t, err)
	require.Equal(t, "T2", res.AccessToken)
	require.Equal(t, "R2", res.RefreshToken)
}

func TestRefresh_MissingAccessToken_IsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message": "ok"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.Refresh(context.Background(), "R")
	require.ErrorIs(t, err, ErrUnavailable)
}
