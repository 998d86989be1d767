package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
)

// Тесты SQLite-хранилища на временном файле базы.
//
// Покрытие: уникальность username/email, CRUD документов с фрагментами,
// upsert шаринга, выборка shared-with, агрегаты оценок.

func newStorage(t *testing.T) *Storage {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func saveUser(t *testing.T, st *Storage, username, email string) *storage.User {
	t.Helper()

	u := &storage.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
	}
	require.NoError(t, st.SaveUser(context.Background(), u))
	require.NotZero(t, u.ID)

	return u
}

func TestSaveUser_DuplicateUsername(t *testing.T) {
	t.Parallel()

	st := newStorage(t)
	saveUser(t, st, "alice", "alice@example.com")

	err := st.SaveUser(context.Background(), &storage.User{
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "h",
	})
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func TestUserLookups(t *testing.T) {
	t.Parallel()

	st := newStorage(t)
	u := saveUser(t, st, "alice", "alice@example.com")

	byName, err := st.UserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, byName.ID)

	byEmail, err := st.UserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)

	_, err = st.UserByID(context.Background(), 999)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()

	st := newStorage(t)
	u := saveUser(t, st, "alice", "alice@example.com")

	u.Email = "new@example.com"
	u.PasswordHash = "new-hash"
	require.NoError(t, st.UpdateUser(context.Background(), u))

	got, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", got.Email)
	require.Equal(t, "new-hash", got.PasswordHash)
}

func TestDocuments_SaveListDelete(t *testing.T) {
	t.Parallel()

	st := newStorage(t)
	u := saveUser(t, st, "alice", "alice@example.com")

	doc := &storage.Document{
		DocumentID:      "d-1",
		UserID:          u.ID,
		Filename:        "notes.txt",
		FileType:        "txt",
		ChunksProcessed: 2,
		TotalChunks:     2,
	}
	chunks := []storage.Chunk{
		{DocumentID: "d-1", ChunkIndex: 0, Content: "first chunk"},
		{DocumentID: "d-1", ChunkIndex: 1, Content: "second chunk"},
	}
	require.NoError(t, st.SaveDocument(context.Background(), doc, chunks))
	require.NotZero(t, doc.ID)

	docs, err := st.DocumentsByUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "notes.txt", docs[0].Filename)

	got, err := st.ChunksByDocID(context.Background(), "d-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "first chunk", got[0].Content)

	refs, err := st.ChunksForUser(context.Background(), u.ID)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	require.Equal(t, "notes.txt", refs[0].Filename)

	require.NoError(t, st.DeleteDocument(context.Background(), "d-1"))

	_, err = st.DocumentByDocID(context.Background(), "d-1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	got, err = st.ChunksByDocID(context.Background(), "d-1")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDeleteDocument_NotFound(t *testing.T) {
	t.Parallel()

	st := newStorage(t)

	err := st.DeleteDocument(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestShares_UpsertAndList(t *testing.T) {
	t.Parallel()

	st := newStorage(t)
	owner := saveUser(t, st, "alice", "alice@example.com")
	other := saveUser(t, st, "bob", "bob@example.com")

	doc := &storage.Document{DocumentID: "d-1", UserID: owner.ID, Filename: "a.txt"}
	require.NoError(t, st.SaveDocument(context.Background(), doc, nil))

	share := &storage.Share{
		DocumentID:      doc.ID,
		OwnerID:         owner.ID,
		SharedWithID:    other.ID,
		PermissionLevel: "view",
	}
	created, err := st.UpsertShare(context.Background(), share)
	require.NoError(t, err)
	require.True(t, created)
	require.NotZero(t, share.ID)

	// Повторный шаринг тому же пользователю обновляет уровень доступа.
	again := &storage.Share{
		DocumentID:      doc.ID,
		OwnerID:         owner.ID,
		SharedWithID:    other.ID,
		PermissionLevel: "edit",
	}
	created, err = st.UpsertShare(context.Background(), again)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, share.ID, again.ID)

	shares, err := st.SharesByDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	require.Equal(t, "edit", shares[0].PermissionLevel)

	shared, err := st.SharedWithUser(context.Background(), other.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	require.Equal(t, "a.txt", shared[0].Document.Filename)
	require.Equal(t, "edit", shared[0].PermissionLevel)
	require.Equal(t, "alice", shared[0].Owner)

	require.NoError(t, st.DeleteShare(context.Background(), share.ID))
	require.ErrorIs(t, st.DeleteShare(context.Background(), share.ID), storage.ErrNotFound)
}

func TestFeedback_StatsAndDelete(t *testing.T) {
	t.Parallel()

	st := newStorage(t)
	u := saveUser(t, st, "alice", "alice@example.com")

	rating := 5
	require.NoError(t, st.SaveFeedback(context.Background(), &storage.Feedback{
		FeedbackID:   "f-1",
		UserID:       u.ID,
		AnswerID:     "a-1",
		Rating:       &rating,
		FeedbackType: "helpful",
	}))
	require.NoError(t, st.SaveFeedback(context.Background(), &storage.Feedback{
		FeedbackID:   "f-2",
		UserID:       u.ID,
		AnswerID:     "a-2",
		FeedbackType: "not_helpful",
		Comment:      "missed the point",
	}))

	agg, recent, err := st.FeedbackStats(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, agg.TotalFeedback)
	require.Equal(t, 1, agg.HelpfulCount)
	require.Equal(t, 1, agg.NotHelpfulCount)
	require.NotNil(t, agg.AverageRating)
	require.InDelta(t, 5.0, *agg.AverageRating, 1e-9)
	require.Len(t, recent, 2)

	require.NoError(t, st.DeleteFeedback(context.Background(), "f-1"))
	require.ErrorIs(t, st.DeleteFeedback(context.Background(), "f-1"), storage.ErrNotFound)

	_, err = st.FeedbackByID(context.Background(), "f-1")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
