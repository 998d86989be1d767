package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
)

// Ask задаёт вопрос по проиндексированным документам пользователя.
func (c *Client) Ask(ctx context.Context, token, question string) (*models.Answer, error) {
	const op = "gateway.Ask"

	in := struct {
		Question string `json:"question"`
	}{Question: question}

	var out models.Answer
	if err := c.doJSON(ctx, http.MethodPost, "/ask", token, in, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.Answer == "" {
		return nil, fmt.Errorf("%s: empty answer in response: %w", op, ErrUnavailable)
	}

	return &out, nil
}
