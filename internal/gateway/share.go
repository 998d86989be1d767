package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// ShareDocument даёт пользователю с указанным e-mail доступ к документу.
// Повторный шаринг тому же пользователю обновляет уровень доступа.
func (c *Client) ShareDocument(ctx context.Context, token string, documentID int64, email, permission string) (*models.Share, error) {
	const op = "gateway.ShareDocument"

	in := struct {
		DocumentID      int64  `json:"document_id"`
		SharedWithEmail string `json:"shared_with_email"`
		PermissionLevel string `json:"permission_level"`
	}{DocumentID: documentID, SharedWithEmail: email, PermissionLevel: permission}

	var out struct {
		Message string        `json:"message"`
		Share   *models.Share `json:"share"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/documents/share", token, in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// При обновлении существующего шаринга сервер возвращает только message.
	return out.Share, nil
}

// SharedWithMe возвращает документы, которыми поделились с текущим
// пользователем; у каждого заполнены PermissionLevel и Owner.
func (c *Client) SharedWithMe(ctx context.Context, token string) ([]models.Document, error) {
	const op = "gateway.SharedWithMe"

	var out struct {
		SharedDocuments []models.Document `json:"shared_documents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/documents/shared-with-me", token, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.SharedDocuments, nil
}

// DocumentShares возвращает список шарингов документа (только владельцу).
func (c *Client) DocumentShares(ctx context.Context, token, documentID string) ([]models.Share, error) {
	const op = "gateway.DocumentShares"

	var out struct {
		Shares []models.Share `json:"shares"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+url.PathEscape(documentID)+"/shares", token, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Shares, nil
}

// DeleteShare отзывает ранее выданный доступ.
func (c *Client) DeleteShare(ctx context.Context, token string, shareID int64) error {
	const op = "gateway.DeleteShare"

	if err := c.doJSON(ctx, http.MethodDelete, "/documents/shares/"+strconv.FormatInt(shareID, 10), token, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
