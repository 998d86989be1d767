// storage задаёт контракт работы dev-сервера с БД.
//
// Сентинельные ошибки маппятся HTTP-слоем:
//   - ErrNotFound      -> 404;
//   - ErrAlreadyExists -> 409 (или доменное сообщение хендлера).
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (username/email/шаринг).
	ErrAlreadyExists = errors.New("already exists")
)

// User — учётная запись.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// Document — метаданные проиндексированного документа.
type Document struct {
	ID              int64
	DocumentID      string
	UserID          int64
	Filename        string
	FileType        string
	ChunksProcessed int
	TotalChunks     int
	CreatedAt       time.Time
}

// Chunk — фрагмент текста документа.
type Chunk struct {
	ID         int64
	DocumentID string
	ChunkIndex int
	Content    string
}

// ChunkRef — фрагмент вместе с именем документа-источника (для Q&A).
type ChunkRef struct {
	Filename   string
	ChunkIndex int
	Content    string
}

// Share — выданный доступ к документу.
type Share struct {
	ID              int64
	DocumentID      int64
	OwnerID         int64
	SharedWithID    int64
	PermissionLevel string
	CreatedAt       time.Time
}

// SharedDocument — документ, которым поделились с пользователем.
type SharedDocument struct {
	Document        Document
	PermissionLevel string
	Owner           string
}

// Feedback — оценка ответа Q&A.
type Feedback struct {
	ID           int64
	FeedbackID   string
	UserID       int64
	AnswerID     string
	Rating       *int
	FeedbackType string
	Comment      string
	CreatedAt    time.Time
}

// FeedbackAggregate — агрегаты по оценкам пользователя.
type FeedbackAggregate struct {
	TotalFeedback   int
	HelpfulCount    int
	NotHelpfulCount int
	AverageRating   *float64
}

// UserStorage выполняет операции над пользователями.
type UserStorage interface {
	// SaveUser создаёт пользователя; заполняет ID и CreatedAt.
	SaveUser(ctx context.Context, user *User) error
	// UserByUsername находит пользователя по username.
	UserByUsername(ctx context.Context, username string) (*User, error)
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id int64) (*User, error)
	// UpdateUser сохраняет изменённые поля пользователя.
	UpdateUser(ctx context.Context, user *User) error
}

// DocumentStorage выполняет операции над документами и их фрагментами.
type DocumentStorage interface {
	// SaveDocument атомарно сохраняет документ вместе с фрагментами.
	SaveDocument(ctx context.Context, doc *Document, chunks []Chunk) error
	// DocumentsByUser возвращает документы пользователя (новые первыми).
	DocumentsByUser(ctx context.Context, userID int64) ([]Document, error)
	// DocumentByDocID находит документ по его строковому идентификатору.
	DocumentByDocID(ctx context.Context, documentID string) (*Document, error)
	// DocumentByID находит документ по числовому первичному ключу.
	DocumentByID(ctx context.Context, id int64) (*Document, error)
	// DeleteDocument удаляет документ вместе с фрагментами и шарингами.
	DeleteDocument(ctx context.Context, documentID string) error
	// ChunksByDocID возвращает фрагменты документа по порядку.
	ChunksByDocID(ctx context.Context, documentID string) ([]Chunk, error)
	// ChunksForUser возвращает фрагменты всех документов пользователя.
	ChunksForUser(ctx context.Context, userID int64) ([]ChunkRef, error)
}

// ShareStorage выполняет операции над шарингами документов.
type ShareStorage interface {
	// UpsertShare создаёт шаринг или обновляет уровень доступа существующего.
	// Возвращает true, если запись была создана.
	UpsertShare(ctx context.Context, share *Share) (bool, error)
	// ShareByID находит шаринг по ID.
	ShareByID(ctx context.Context, id int64) (*Share, error)
	// SharesByDocument возвращает шаринги документа.
	SharesByDocument(ctx context.Context, documentID int64) ([]Share, error)
	// SharedWithUser возвращает документы, расшаренные пользователю.
	SharedWithUser(ctx context.Context, userID int64) ([]SharedDocument, error)
	// DeleteShare удаляет шаринг.
	DeleteShare(ctx context.Context, id int64) error
}

// FeedbackStorage выполняет операции над оценками ответов.
type FeedbackStorage interface {
	// SaveFeedback сохраняет оценку; заполняет ID и CreatedAt.
	SaveFeedback(ctx context.Context, fb *Feedback) error
	// FeedbackByID находит оценку по её строковому идентификатору.
	FeedbackByID(ctx context.Context, feedbackID string) (*Feedback, error)
	// DeleteFeedback удаляет оценку.
	DeleteFeedback(ctx context.Context, feedbackID string) error
	// FeedbackStats возвращает агрегаты и последние оценки пользователя.
	FeedbackStats(ctx context.Context, userID int64) (FeedbackAggregate, []Feedback, error)
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	DocumentStorage
	ShareStorage
	FeedbackStorage
	Close() error
}
