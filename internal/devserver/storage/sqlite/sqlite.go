// sqlite — реализация storage.Storage поверх GORM и SQLite.
//
// Файл базы создаётся при первом открытии; схема накатывается AutoMigrate.
// Нарушения уникальности переводятся в storage.ErrAlreadyExists через
// TranslateError (gorm.ErrDuplicatedKey).
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
)

type userRow struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type documentRow struct {
	ID              int64  `gorm:"primaryKey"`
	DocumentID      string `gorm:"uniqueIndex;not null"`
	UserID          int64  `gorm:"index;not null"`
	Filename        string `gorm:"not null"`
	FileType        string
	ChunksProcessed int
	TotalChunks     int
	CreatedAt       time.Time
}

func (documentRow) TableName() string { return "documents" }

type chunkRow struct {
	ID         int64  `gorm:"primaryKey"`
	DocumentID string `gorm:"index;not null"`
	ChunkIndex int    `gorm:"not null"`
	Content    string `gorm:"not null"`
}

func (chunkRow) TableName() string { return "chunks" }

type shareRow struct {
	ID              int64 `gorm:"primaryKey"`
	DocumentID      int64 `gorm:"not null;uniqueIndex:idx_share_doc_user"`
	OwnerID         int64 `gorm:"not null"`
	SharedWithID    int64 `gorm:"not null;uniqueIndex:idx_share_doc_user"`
	PermissionLevel string
	CreatedAt       time.Time
}

func (shareRow) TableName() string { return "document_shares" }

type feedbackRow struct {
	ID           int64  `gorm:"primaryKey"`
	FeedbackID   string `gorm:"uniqueIndex;not null"`
	UserID       int64  `gorm:"index;not null"`
	AnswerID     string `gorm:"not null"`
	Rating       *int
	FeedbackType string
	Comment      string
	CreatedAt    time.Time
}

func (feedbackRow) TableName() string { return "feedback" }

// Storage — SQLite-хранилище dev-сервера.
type Storage struct {
	db *gorm.DB
}

// New открывает (или создаёт) файл базы и накатывает схему.
func New(path string) (*Storage, error) {
	const op = "storage.sqlite.New"

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: open %q: %w", op, path, err)
	}

	if err := db.AutoMigrate(&userRow{}, &documentRow{}, &chunkRow{}, &shareRow{}, &feedbackRow{}); err != nil {
		return nil, fmt.Errorf("%s: migrate: %w", op, err)
	}

	return &Storage{db: db}, nil
}

// Close закрывает соединение с базой.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// --- users ---

func (s *Storage) SaveUser(ctx context.Context, user *storage.User) error {
	const op = "storage.sqlite.SaveUser"

	row := userRow{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		IsActive:     user.IsActive,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(op, err)
	}

	user.ID = row.ID
	user.CreatedAt = row.CreatedAt

	return nil
}

func (s *Storage) UserByUsername(ctx context.Context, username string) (*storage.User, error) {
	return s.userBy(ctx, "storage.sqlite.UserByUsername", "username = ?", username)
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (*storage.User, error) {
	return s.userBy(ctx, "storage.sqlite.UserByEmail", "email = ?", email)
}

func (s *Storage) UserByID(ctx context.Context, id int64) (*storage.User, error) {
	return s.userBy(ctx, "storage.sqlite.UserByID", "id = ?", id)
}

func (s *Storage) userBy(ctx context.Context, op, query string, arg any) (*storage.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		return nil, translate(op, err)
	}

	return userFromRow(row), nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *storage.User) error {
	const op = "storage.sqlite.UpdateUser"

	res := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", user.ID).Updates(map[string]any{
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"is_active":     user.IsActive,
	})
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func userFromRow(row userRow) *storage.User {
	return &storage.User{
		ID:           row.ID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		IsActive:     row.IsActive,
		CreatedAt:    row.CreatedAt,
	}
}

// --- documents ---

func (s *Storage) SaveDocument(ctx context.Context, doc *storage.Document, chunks []storage.Chunk) error {
	const op = "storage.sqlite.SaveDocument"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := documentRow{
			DocumentID:      doc.DocumentID,
			UserID:          doc.UserID,
			Filename:        doc.Filename,
			FileType:        doc.FileType,
			ChunksProcessed: doc.ChunksProcessed,
			TotalChunks:     doc.TotalChunks,
			CreatedAt:       time.Now().UTC(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		doc.ID = row.ID
		doc.CreatedAt = row.CreatedAt

		for i := range chunks {
			c := chunkRow{
				DocumentID: doc.DocumentID,
				ChunkIndex: chunks[i].ChunkIndex,
				Content:    chunks[i].Content,
			}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return translate(op, err)
	}

	return nil
}

func (s *Storage) DocumentsByUser(ctx context.Context, userID int64) ([]storage.Document, error) {
	const op = "storage.sqlite.DocumentsByUser"

	var rows []documentRow
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, translate(op, err)
	}

	docs := make([]storage.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, *docFromRow(row))
	}

	return docs, nil
}

func (s *Storage) DocumentByDocID(ctx context.Context, documentID string) (*storage.Document, error) {
	const op = "storage.sqlite.DocumentByDocID"

	var row documentRow
	if err := s.db.WithContext(ctx).Where("document_id = ?", documentID).First(&row).Error; err != nil {
		return nil, translate(op, err)
	}

	return docFromRow(row), nil
}

func (s *Storage) DocumentByID(ctx context.Context, id int64) (*storage.Document, error) {
	const op = "storage.sqlite.DocumentByID"

	var row documentRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(op, err)
	}

	return docFromRow(row), nil
}

func (s *Storage) DeleteDocument(ctx context.Context, documentID string) error {
	const op = "storage.sqlite.DeleteDocument"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row documentRow
		if err := tx.Where("document_id = ?", documentID).First(&row).Error; err != nil {
			return err
		}

		if err := tx.Where("document_id = ?", documentID).Delete(&chunkRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", row.ID).Delete(&shareRow{}).Error; err != nil {
			return err
		}

		return tx.Delete(&row).Error
	})
	if err != nil {
		return translate(op, err)
	}

	return nil
}

func (s *Storage) ChunksByDocID(ctx context.Context, documentID string) ([]storage.Chunk, error) {
	const op = "storage.sqlite.ChunksByDocID"

	var rows []chunkRow
	if err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("chunk_index ASC").
		Find(&rows).Error; err != nil {
		return nil, translate(op, err)
	}

	chunks := make([]storage.Chunk, 0, len(rows))
	for _, row := range rows {
		chunks = append(chunks, storage.Chunk{
			ID:         row.ID,
			DocumentID: row.DocumentID,
			ChunkIndex: row.ChunkIndex,
			Content:    row.Content,
		})
	}

	return chunks, nil
}

func (s *Storage) ChunksForUser(ctx context.Context, userID int64) ([]storage.ChunkRef, error) {
	const op = "storage.sqlite.ChunksForUser"

	var rows []struct {
		Filename   string
		ChunkIndex int
		Content    string
	}
	if err := s.db.WithContext(ctx).
		Table("chunks").
		Select("documents.filename, chunks.chunk_index, chunks.content").
		Joins("JOIN documents ON documents.document_id = chunks.document_id").
		Where("documents.user_id = ?", userID).
		Order("documents.id ASC, chunks.chunk_index ASC").
		Scan(&rows).Error; err != nil {
		return nil, translate(op, err)
	}

	refs := make([]storage.ChunkRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, storage.ChunkRef(row))
	}

	return refs, nil
}

func docFromRow(row documentRow) *storage.Document {
	return &storage.Document{
		ID:              row.ID,
		DocumentID:      row.DocumentID,
		UserID:          row.UserID,
		Filename:        row.Filename,
		FileType:        row.FileType,
		ChunksProcessed: row.ChunksProcessed,
		TotalChunks:     row.TotalChunks,
		CreatedAt:       row.CreatedAt,
	}
}

// --- shares ---

func (s *Storage) UpsertShare(ctx context.Context, share *storage.Share) (bool, error) {
	const op = "storage.sqlite.UpsertShare"

	created := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing shareRow
		err := tx.Where("document_id = ? AND shared_with_id = ?", share.DocumentID, share.SharedWithID).
			First(&existing).Error

		switch {
		case err == nil:
			existing.PermissionLevel = share.PermissionLevel
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}

			share.ID = existing.ID
			share.CreatedAt = existing.CreatedAt

			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			row := shareRow{
				DocumentID:      share.DocumentID,
				OwnerID:         share.OwnerID,
				SharedWithID:    share.SharedWithID,
				PermissionLevel: share.PermissionLevel,
				CreatedAt:       time.Now().UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			share.ID = row.ID
			share.CreatedAt = row.CreatedAt
			created = true

			return nil

		default:
			return err
		}
	})
	if err != nil {
		return false, translate(op, err)
	}

	return created, nil
}

func (s *Storage) ShareByID(ctx context.Context, id int64) (*storage.Share, error) {
	const op = "storage.sqlite.ShareByID"

	var row shareRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(op, err)
	}

	return shareFromRow(row), nil
}

func (s *Storage) SharesByDocument(ctx context.Context, documentID int64) ([]storage.Share, error) {
	const op = "storage.sqlite.SharesByDocument"

	var rows []shareRow
	if err := s.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, translate(op, err)
	}

	shares := make([]storage.Share, 0, len(rows))
	for _, row := range rows {
		shares = append(shares, *shareFromRow(row))
	}

	return shares, nil
}

func (s *Storage) SharedWithUser(ctx context.Context, userID int64) ([]storage.SharedDocument, error) {
	const op = "storage.sqlite.SharedWithUser"

	var rows []struct {
		documentRow
		PermissionLevel string
		Owner           string
	}
	if err := s.db.WithContext(ctx).
		Table("document_shares").
		Select("documents.*, document_shares.permission_level, users.username AS owner").
		Joins("JOIN documents ON documents.id = document_shares.document_id").
		Joins("JOIN users ON users.id = document_shares.owner_id").
		Where("document_shares.shared_with_id = ?", userID).
		Order("document_shares.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, translate(op, err)
	}

	docs := make([]storage.SharedDocument, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, storage.SharedDocument{
			Document:        *docFromRow(row.documentRow),
			PermissionLevel: row.PermissionLevel,
			Owner:           row.Owner,
		})
	}

	return docs, nil
}

func (s *Storage) DeleteShare(ctx context.Context, id int64) error {
	const op = "storage.sqlite.DeleteShare"

	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&shareRow{})
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func shareFromRow(row shareRow) *storage.Share {
	return &storage.Share{
		ID:              row.ID,
		DocumentID:      row.DocumentID,
		OwnerID:         row.OwnerID,
		SharedWithID:    row.SharedWithID,
		PermissionLevel: row.PermissionLevel,
		CreatedAt:       row.CreatedAt,
	}
}

// --- feedback ---

func (s *Storage) SaveFeedback(ctx context.Context, fb *storage.Feedback) error {
	const op = "storage.sqlite.SaveFeedback"

	row := feedbackRow{
		FeedbackID:   fb.FeedbackID,
		UserID:       fb.UserID,
		AnswerID:     fb.AnswerID,
		Rating:       fb.Rating,
		FeedbackType: fb.FeedbackType,
		Comment:      fb.Comment,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translate(op, err)
	}

	fb.ID = row.ID
	fb.CreatedAt = row.CreatedAt

	return nil
}

func (s *Storage) FeedbackByID(ctx context.Context, feedbackID string) (*storage.Feedback, error) {
	const op = "storage.sqlite.FeedbackByID"

	var row feedbackRow
	if err := s.db.WithContext(ctx).Where("feedback_id = ?", feedbackID).First(&row).Error; err != nil {
		return nil, translate(op, err)
	}

	return feedbackFromRow(row), nil
}

func (s *Storage) DeleteFeedback(ctx context.Context, feedbackID string) error {
	const op = "storage.sqlite.DeleteFeedback"

	res := s.db.WithContext(ctx).Where("feedback_id = ?", feedbackID).Delete(&feedbackRow{})
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (s *Storage) FeedbackStats(ctx context.Context, userID int64) (storage.FeedbackAggregate, []storage.Feedback, error) {
	const (
		op          = "storage.sqlite.FeedbackStats"
		recentLimit = 10
	)

	var agg struct {
		TotalFeedback   int
		HelpfulCount    int
		NotHelpfulCount int
		AverageRating   *float64
	}
	if err := s.db.WithContext(ctx).
		Table("feedback").
		Select(`COUNT(*) AS total_feedback,
			SUM(CASE WHEN feedback_type = 'helpful' THEN 1 ELSE 0 END) AS helpful_count,
			SUM(CASE WHEN feedback_type = 'not_helpful' THEN 1 ELSE 0 END) AS not_helpful_count,
			AVG(rating) AS average_rating`).
		Where("user_id = ?", userID).
		Scan(&agg).Error; err != nil {
		return storage.FeedbackAggregate{}, nil, translate(op, err)
	}

	var rows []feedbackRow
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(recentLimit).
		Find(&rows).Error; err != nil {
		return storage.FeedbackAggregate{}, nil, translate(op, err)
	}

	recent := make([]storage.Feedback, 0, len(rows))
	for _, row := range rows {
		recent = append(recent, *feedbackFromRow(row))
	}

	return storage.FeedbackAggregate(agg), recent, nil
}

func feedbackFromRow(row feedbackRow) *storage.Feedback {
	return &storage.Feedback{
		ID:           row.ID,
		FeedbackID:   row.FeedbackID,
		UserID:       row.UserID,
		AnswerID:     row.AnswerID,
		Rating:       row.Rating,
		FeedbackType: row.FeedbackType,
		Comment:      row.Comment,
		CreatedAt:    row.CreatedAt,
	}
}
