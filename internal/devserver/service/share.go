package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	logctx "github.com/ANIRUDH-7600/Smartdoc/pkg/log"
	"github.com/ANIRUDH-7600/Smartdoc/pkg/redact"

	"github.com/ANIRUDH-7600/Smartdoc/internal/devserver/storage"
)

// ShareDocument даёт пользователю с указанным e-mail доступ к документу.
// Повторный шаринг тому же пользователю обновляет уровень доступа;
// created сообщает, была ли запись создана.
func (s *Service) ShareDocument(ctx context.Context, ownerID, documentID int64, email, permission string) (*storage.Share, bool, error) {
	const op = "service.share.ShareDocument"

	doc, err := s.st.DocumentByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	if doc.UserID != ownerID {
		return nil, false, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	target, err := s.st.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, fmt.Errorf("%s: user %s: %w", op, redact.Email(email), ErrNotFound)
		}

		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	share := &storage.Share{
		DocumentID:      documentID,
		OwnerID:         ownerID,
		SharedWithID:    target.ID,
		PermissionLevel: permission,
	}
	created, err := s.st.UpsertShare(ctx, share)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	logctx.From(ctx).Info("document_shared",
		slog.Int64("document_id", documentID),
		slog.Int64("owner_id", ownerID),
		slog.String("shared_with", redact.Email(email)),
		slog.String("permission", permission),
	)

	return share, created, nil
}

// SharedWithMe возвращает документы, расшаренные пользователю.
func (s *Service) SharedWithMe(ctx context.Context, userID int64) ([]storage.SharedDocument, error) {
	const op = "service.share.SharedWithMe"

	docs, err := s.st.SharedWithUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return docs, nil
}

// DocumentShares возвращает шаринги документа; разрешено только владельцу.
func (s *Service) DocumentShares(ctx context.Context, userID int64, documentID string) ([]storage.Share, error) {
	const op = "service.share.DocumentShares"

	doc, err := s.st.DocumentByDocID(ctx, documentID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	shares, err := s.st.SharesByDocument(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return shares, nil
}

// DeleteShare отзывает доступ; разрешено владельцу документа.
func (s *Service) DeleteShare(ctx context.Context, userID, shareID int64) error {
	const op = "service.share.DeleteShare"

	share, err := s.st.ShareByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}
	if share.OwnerID != userID {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	if err := s.st.DeleteShare(ctx, shareID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
