package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// FeedbackInput — оценка ответа; AnswerID обязателен, остальное опционально.
type FeedbackInput struct {
	AnswerID     string `json:"answer_id"`
	Rating       *int   `json:"rating,omitempty"`
	FeedbackType string `json:"feedback_type,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// SubmitFeedback отправляет оценку ответа и возвращает её идентификатор.
func (c *Client) SubmitFeedback(ctx context.Context, token string, in FeedbackInput) (string, error) {
	const op = "gateway.SubmitFeedback"

	var out struct {
		Message    string `json:"message"`
		FeedbackID string `json:"feedback_id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/feedback", token, in, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if out.FeedbackID == "" {
		return "", fmt.Errorf("%s: missing feedback_id in response: %w", op, ErrUnavailable)
	}

	return out.FeedbackID, nil
}

// FeedbackStats возвращает агрегаты и последние оценки текущего пользователя.
func (c *Client) FeedbackStats(ctx context.Context, token string) (*models.FeedbackStats, []models.Feedback, error) {
	const op = "gateway.FeedbackStats"

	var out struct {
		Stats          models.FeedbackStats `json:"stats"`
		RecentFeedback []models.Feedback    `json:"recent_feedback"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/feedback/stats", token, nil, &out); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out.Stats, out.RecentFeedback, nil
}

// DeleteFeedback удаляет оценку текущего пользователя.
func (c *Client) DeleteFeedback(ctx context.Context, token, feedbackID string) error {
	const op = "gateway.DeleteFeedback"

	if err := c.doJSON(ctx, http.MethodDelete, "/feedback/"+url.PathEscape(feedbackID), token, nil, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
