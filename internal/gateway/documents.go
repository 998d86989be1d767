package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// Upload загружает файл на индексацию: multipart POST /upload, поле "file".
func (c *Client) Upload(ctx context.Context, token, filename string, r io.Reader) (*models.UploadResult, error) {
	const op = "gateway.Upload"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("%s: read file: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if derr := decodeBody(resp, &eb); derr != nil {
			return nil, fmt.Errorf("%s: status %d: %v: %w", op, resp.StatusCode, derr, ErrUnavailable)
		}

		return nil, &APIError{Status: resp.StatusCode, Message: eb.Error}
	}

	var out models.UploadResult
	if err := decodeBody(resp, &out); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
	}

	return &out, nil
}

// ListDocuments возвращает документы текущего пользователя (новые первыми).
func (c *Client) ListDocuments(ctx context.Context, token string) ([]models.Document, error) {
	const op = "gateway.ListDocuments"

	var out struct {
		Documents      []models.Document `json:"documents"`
		TotalDocuments int               `json:"total_documents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/documents", token, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out.Documents, nil
}

// Document возвращает метаданные одного документа.
func (c *Client) Document(ctx context.Context, token, documentID string) (*models.Document, error) {
	const op = "gateway.Document"

	var out struct {
		Document models.Document `json:"document"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+url.PathEscape(documentID), token, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out.Document, nil
}

// DeleteDocument удаляет документ вместе с его фрагментами.
func (c *Client) DeleteDocument(ctx context.Context, token, documentID string) error {
	const op = "gateway.DeleteDocument"

	if err := c.doJSON(ctx, http.MethodDelete, "/documents/"+url.PathEscape(documentID), token, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Preview возвращает усечённые метаданные документа для предпросмотра.
func (c *Client) Preview(ctx context.Context, token, documentID string) (*models.Preview, error) {
	const op = "gateway.Preview"

	var out models.Preview
	if err := c.doJSON(ctx, http.MethodGet, "/documents/"+url.PathEscape(documentID)+"/preview", token, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

// Download пишет содержимое документа в w и возвращает имя файла,
// предложенное сервером в Content-Disposition (или пустую строку).
func (c *Client) Download(ctx context.Context, token, documentID string, w io.Writer) (string, error) {
	const op = "gateway.Download"

	body, hdr, err := c.doRaw(ctx, http.MethodGet, "/documents/"+url.PathEscape(documentID)+"/download", token)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer body.Close()

	if _, err := io.Copy(w, body); err != nil {
		return "", fmt.Errorf("%s: %v: %w", op, err, ErrUnavailable)
	}

	name := ""
	if cd := hdr.Get("Content-Disposition"); cd != "" {
		if _, params, perr := mime.ParseMediaType(cd); perr == nil {
			name = params["filename"]
		}
	}

	return name, nil
}
