package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ANIRUDH-7600/Smartdoc/internal/config"
	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage/sqlite"
)

// Тесты бизнес-логики dev-сервера на реальном SQLite-хранилище.
//
// Покрытие:
//   - регистрация/логин: bcrypt, занятый username/email, неверный пароль;
//   - токены: валидация access/refresh, истечение, подмена типа;
//   - индексация: нарезка на фрагменты, неподдерживаемый тип, пустой файл;
//   - Q&A: лестница уверенности high/medium/general;
//   - шаринг и оценки: проверки владения.

func newService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return New(st, config.AuthConfig{
		JWTSecret:  "test-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
}

func register(t *testing.T, s *Service, username, email string) (*storage.User, string, string) {
	t.Helper()

	user, access, refresh, err := s.RegisterUser(context.Background(), username, email, "password1")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	return user, access, refresh
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	s := newService(t)
	user, _, _ := register(t, s, "alice", "alice@example.com")
	require.True(t, user.IsActive)
	// Хэш пароля никогда не равен открытому тексту.
	require.NotEqual(t, "password1", user.PasswordHash)

	got, access, _, err := s.LoginUser(context.Background(), "alice", "password1")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	uid, username, err := s.ValidateAccess(access)
	require.NoError(t, err)
	require.Equal(t, user.ID, uid)
	require.Equal(t, "alice", username)
}

func TestRegister_TakenUsernameAndEmail(t *testing.T) {
	t.Parallel()

	s := newService(t)
	register(t, s, "alice", "alice@example.com")

	_, _, _, err := s.RegisterUser(context.Background(), "alice", "other@example.com", "pw")
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, _, _, err = s.RegisterUser(context.Background(), "bob", "alice@example.com", "pw")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	s := newService(t)
	register(t, s, "alice", "alice@example.com")

	_, _, _, err := s.LoginUser(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = s.LoginUser(context.Background(), "ghost", "password1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokens_RefreshIsNotAccess(t *testing.T) {
	t.Parallel()

	s := newService(t)
	_, access, refresh := register(t, s, "alice", "alice@example.com")

	// refresh не проходит как access и наоборот.
	_, _, err := s.ValidateAccess(refresh)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.ValidateRefresh(access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_Expired(t *testing.T) {
	t.Parallel()

	st, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	s := New(st, config.AuthConfig{
		JWTSecret:  "test-secret",
		AccessTTL:  -time.Hour,
		RefreshTTL: -time.Hour,
	})

	_, access, refresh := register(t, s, "alice", "alice@example.com")

	_, _, err = s.ValidateAccess(access)
	require.ErrorIs(t, err, ErrTokenExpired)

	_, err = s.ValidateRefresh(refresh)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokens_WrongSecret(t *testing.T) {
	t.Parallel()

	s := newService(t)
	_, access, _ := register(t, s, "alice", "alice@example.com")

	other := New(nil, config.AuthConfig{JWTSecret: "other-secret", AccessTTL: time.Hour})

	_, _, err := other.ValidateAccess(access)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshAccess(t *testing.T) {
	t.Parallel()

	s := newService(t)
	user, _, refresh := register(t, s, "alice", "alice@example.com")

	access, err := s.RefreshAccess(context.Background(), refresh)
	require.NoError(t, err)

	uid, _, err := s.ValidateAccess(access)
	require.NoError(t, err)
	require.Equal(t, user.ID, uid)

	_, err = s.RefreshAccess(context.Background(), "garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIngestDocument(t *testing.T) {
	t.Parallel()

	s := newService(t)
	user, _, _ := register(t, s, "alice", "alice@example.com")

	// 450 слов -> 3 фрагмента по 200.
	text := strings.Repeat("word ", 450)
	doc, err := s.IngestDocument(context.Background(), user.ID, "notes.txt", strings.NewReader(text))
	require.NoError(t, err)
	require.Equal(t, 3, doc.TotalChunks)
	require.Equal(t, "txt", doc.FileType)
	require.NotEmpty(t, doc.DocumentID)

	docs, err := s.ListDocuments(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
}

func TestIngestDocument_Rejections(t *testing.T) {
	t.Parallel()

	s := newService(t)
	user, _, _ := register(t, s, "alice", "alice@example.com")

	_, err := s.IngestDocument(context.Background(), user.ID, "img.png", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrUnsupportedFile)

	_, err = s.IngestDocument(context.Background(), user.ID, "empty.txt", strings.NewReader("   \n\t "))
	require.ErrorIs(t, err, ErrEmptyDocument)

	// На байт больше лимита — отказ целиком, а не индексация префикса.
	huge := strings.Repeat("a", 10<<20+1)
	_, err = s.IngestDocument(context.Background(), user.ID, "big.txt", strings.NewReader(huge))
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestDocumentAccess(t *testing.T) {
	t.Parallel()

	s := newService(t)
	owner, _, _ := register(t, s, "alice", "alice@example.com")
	other, _, _ := register(t, s, "bob", "bob@example.com")

	doc, err := s.IngestDocument(context.Background(), owner.ID, "a.txt", strings.NewReader("secret text here"))
	require.NoError(t, err)

	// Чужой документ недоступен, пока им не поделились.
	_, err = s.DocumentForUser(context.Background(), other.ID, doc.DocumentID)
	require.ErrorIs(t, err, ErrForbidden)

	_, created, err := s.ShareDocument(context.Background(), owner.ID, doc.ID, "bob@example.com", "view")
	require.NoError(t, err)
	require.True(t, created)

	got, err := s.DocumentForUser(context.Background(), other.ID, doc.DocumentID)
	require.NoError(t, err)
	require.Equal(t, doc.DocumentID, got.DocumentID)

	// Удаление — только владельцу.
	require.ErrorIs(t, s.DeleteDocument(context.Background(), other.ID, doc.DocumentID), ErrForbidden)
	require.NoError(t, s.DeleteDocument(context.Background(), owner.ID, doc.DocumentID))
}

func TestShareDocument_Errors(t *testing.T) {
	t.Parallel()

	s := newService(t)
	owner, _, _ := register(t, s, "alice", "alice@example.com")
	other, _, _ := register(t, s, "bob", "bob@example.com")

	doc, err := s.IngestDocument(context.Background(), owner.ID, "a.txt", strings.NewReader("text"))
	require.NoError(t, err)

	// Шарить может только владелец.
	_, _, err = s.ShareDocument(context.Background(), other.ID, doc.ID, "alice@example.com", "view")
	require.ErrorIs(t, err, ErrForbidden)

	// Получатель должен существовать.
	_, _, err = s.ShareDocument(context.Background(), owner.ID, doc.ID, "ghost@example.com", "view")
	require.ErrorIs(t, err, ErrNotFound)

	_, _, err = s.ShareDocument(context.Background(), owner.ID, 999, "bob@example.com", "view")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAnswerQuestion_ConfidenceLadder(t *testing.T) {
	t.Parallel()

	s := newService(t)
	user, _, _ := register(t, s, "alice", "alice@example.com")

	_, err := s.IngestDocument(context.Background(), user.ID, "kb.txt", strings.NewReader(
		"The indexing pipeline splits documents into chunks. "+
			"Each chunk is stored with its index. Unrelated trailing text follows here."))
	require.NoError(t, err)

	high, err := s.AnswerQuestion(context.Background(), user.ID, "how does the indexing pipeline split documents?")
	require.NoError(t, err)
	require.Equal(t, ConfidenceHigh, high.Confidence)
	require.NotEmpty(t, high.Sources)
	require.Equal(t, "kb.txt", high.Sources[0].Filename)
	require.NotEmpty(t, high.AnswerID)

	medium, err := s.AnswerQuestion(context.Background(), user.ID, "pipeline temperature pressure velocity humidity")
	require.NoError(t, err)
	require.Equal(t, ConfidenceMedium, medium.Confidence)

	general, err := s.AnswerQuestion(context.Background(), user.ID, "quantum chromodynamics lagrangian")
	require.NoError(t, err)
	require.Equal(t, ConfidenceGeneral, general.Confidence)
	require.Empty(t, general.Sources)
	require.Zero(t, general.ContextChunksUsed)
}

func TestFeedbackOwnership(t *testing.T) {
	t.Parallel()

	s := newService(t)
	owner, _, _ := register(t, s, "alice", "alice@example.com")
	other, _, _ := register(t, s, "bob", "bob@example.com")

	rating := 4
	id, err := s.SubmitFeedback(context.Background(), owner.ID, "a-1", &rating, "helpful", "good answer")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	agg, recent, err := s.FeedbackStats(context.Background(), owner.ID)
	require.NoError(t, err)
	require.Equal(t, 1, agg.TotalFeedback)
	require.Len(t, recent, 1)

	require.ErrorIs(t, s.DeleteFeedback(context.Background(), other.ID, id), ErrForbidden)
	require.NoError(t, s.DeleteFeedback(context.Background(), owner.ID, id))
	require.ErrorIs(t, s.DeleteFeedback(context.Background(), owner.ID, id), ErrNotFound)
}

func TestProfileAndPassword(t *testing.T) {
	t.Parallel()

	s := newService(t)
	user, _, _ := register(t, s, "alice", "alice@example.com")

	got, err := s.UpdateProfile(context.Background(), user.ID, "", "new@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "new@example.com", got.Email)

	require.ErrorIs(t,
		s.ChangePassword(context.Background(), user.ID, "wrong", "next1234"),
		ErrInvalidCredentials)

	require.NoError(t, s.ChangePassword(context.Background(), user.ID, "password1", "next1234"))

	_, _, _, err = s.LoginUser(context.Background(), "alice", "next1234")
	require.NoError(t, err)
}
