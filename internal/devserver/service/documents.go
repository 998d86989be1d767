package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	logctx "github.com/ANIRUDH-7600/Smartdoc/pkg/log"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
)

// chunkWords — размер фрагмента индексации в словах.
const chunkWords = 200

// maxUploadBytes — потолок размера загружаемого файла.
const maxUploadBytes = 10 << 20

// IngestDocument извлекает текст файла, режет его на фрагменты
// и сохраняет документ. Поддерживаются только текстовые файлы.
func (s *Service) IngestDocument(ctx context.Context, userID int64, filename string, r io.Reader) (*storage.Document, error) {
	const op = "service.documents.IngestDocument"

	lg := logctx.From(ctx)

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch ext {
	case "txt", "md", "log":
	default:
		return nil, fmt.Errorf("%s: %q: %w", op, ext, ErrUnsupportedFile)
	}

	// Читаем на байт больше лимита: ровно maxUploadBytes ещё допустимо,
	// всё сверх — отказ, а не молчаливое усечение.
	raw, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: read file: %w", op, err)
	}
	if len(raw) > maxUploadBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrFileTooLarge)
	}

	chunks := splitChunks(string(raw))
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyDocument)
	}

	doc := &storage.Document{
		DocumentID:      uuid.NewString(),
		UserID:          userID,
		Filename:        filepath.Base(filename),
		FileType:        ext,
		ChunksProcessed: len(chunks),
		TotalChunks:     len(chunks),
	}

	rows := make([]storage.Chunk, 0, len(chunks))
	for i, content := range chunks {
		rows = append(rows, storage.Chunk{
			DocumentID: doc.DocumentID,
			ChunkIndex: i,
			Content:    content,
		})
	}

	if err := s.st.SaveDocument(ctx, doc, rows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lg.Info("document_ingested",
		slog.Int64("user_id", userID),
		slog.String("document_id", doc.DocumentID),
		slog.Int("chunks", len(chunks)),
	)

	return doc, nil
}

// splitChunks режет текст на фрагменты по chunkWords слов.
func splitChunks(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(words); start += chunkWords {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks
}

// ListDocuments возвращает документы пользователя (новые первыми).
func (s *Service) ListDocuments(ctx context.Context, userID int64) ([]storage.Document, error) {
	const op = "service.documents.ListDocuments"

	docs, err := s.st.DocumentsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return docs, nil
}

// DocumentForUser возвращает документ, если пользователь — его владелец
// или получил доступ через шаринг.
func (s *Service) DocumentForUser(ctx context.Context, userID int64, documentID string) (*storage.Document, error) {
	const op = "service.documents.DocumentForUser"

	doc, err := s.st.DocumentByDocID(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if doc.UserID == userID {
		return doc, nil
	}

	shared, err := s.st.SharedWithUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, sd := range shared {
		if sd.Document.DocumentID == documentID {
			return doc, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
}

// DeleteDocument удаляет документ; разрешено только владельцу.
func (s *Service) DeleteDocument(ctx context.Context, userID int64, documentID string) error {
	const op = "service.documents.DeleteDocument"

	doc, err := s.st.DocumentByDocID(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if doc.UserID != userID {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.st.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Info("document_deleted",
		slog.Int64("user_id", userID),
		slog.String("document_id", documentID),
	)

	return nil
}

// DocumentContent собирает полный текст документа из фрагментов
// (после проверки доступа).
func (s *Service) DocumentContent(ctx context.Context, userID int64, documentID string) (*storage.Document, string, error) {
	const op = "service.documents.DocumentContent"

	doc, err := s.DocumentForUser(ctx, userID, documentID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	chunks, err := s.st.ChunksByDocID(ctx, documentID)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Content)
	}

	return doc, strings.Join(parts, " "), nil
}
