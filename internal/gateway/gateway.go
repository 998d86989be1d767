// gateway — типизированный HTTP-клиент SmartDoc-бэкенда.
//
// Пакет отвечает за границу с сетью: сериализацию запросов, декодирование
// и валидацию ответов. Наружу уходят только два вида отказов:
//   - *APIError — сервер принял запрос и отверг его (non-2xx с JSON-телом);
//     Message несёт дословную серверную строку error;
//   - ErrUnavailable — транспортная ошибка или нераспознаваемое тело;
//     детали заворачиваются в цепочку для логов, вызывающий код различает
//     вид отказа через errors.Is/errors.As.
//
// Поля, «утиная типизация» которых в исходном API допускала undefined,
// валидируются здесь: неполный успешный ответ — это ErrUnavailable,
// а не частично заполненный результат.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrUnavailable — бэкенд недоступен или ответ не удалось разобрать.
// Автоматических ретраев клиент не выполняет.
var ErrUnavailable = errors.New("smartdoc backend unavailable")

// APIError — отказ, сформулированный сервером.
type APIError struct {
	// Status — HTTP-статус ответа.
	Status int
	// Message — дословная строка error из тела ответа; может быть пустой,
	// если сервер тело прислал, а поле — нет (fallback выбирает вызывающий слой).
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}

	return e.Message
}

// Client — клиент REST API с фиксированным на время жизни процесса базовым URL.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *slog.Logger
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет транспорт (таймауты, прокси, тесты).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpc = h
		}
	}
}

// WithTimeout задаёт таймаут транспорта целиком на запрос.
// Нулевое значение оставляет запросы без таймаута.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpc.Timeout = d }
}

// WithLogger задаёт базовый логгер клиента.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New создаёт клиент для базового URL вида "http://localhost:5000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   &http.Client{},
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL возвращает базовый URL клиента (view-слой использует его для
// формирования прямых ссылок, например на скачивание).
func (c *Client) BaseURL() string { return c.baseURL }

// errorBody — каркас тела ошибки: {"error": "..."} плюс флаги verify.
type errorBody struct {
	Error   string `json:"error"`
	Valid   bool   `json:"valid"`
	Expired bool   `json:"expired"`
}

// doJSON выполняет запрос с JSON-телом (in может быть nil) и декодирует
// успешный ответ в out (если out != nil). Non-2xx с разборным телом
// превращается в *APIError, всё остальное — в ErrUnavailable.
func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out any) error {
	const op = "gateway.doJSON"

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %s %s: %v: %w", op, method, path, err, ErrUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %v: %w", op, err, ErrUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if jerr := json.Unmarshal(raw, &eb); jerr != nil {
			return fmt.Errorf("%s: status %d, undecodable body: %w", op, resp.StatusCode, ErrUnavailable)
		}

		return &APIError{Status: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %v: %w", op, err, ErrUnavailable)
	}

	return nil
}

// decodeBody полностью читает тело ответа и декодирует его как JSON.
func decodeBody(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}

	return nil
}

// doRaw выполняет запрос без JSON-декодирования и отдаёт тело ответа
// вызывающему (скачивание файлов). Закрыть ReadCloser обязан вызывающий.
func (c *Client) doRaw(ctx context.Context, method, path, token string) (io.ReadCloser, http.Header, error) {
	const op = "gateway.doRaw"

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %s %s: %v: %w", op, method, path, err, ErrUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()

		raw, _ := io.ReadAll(resp.Body)
		var eb errorBody
		if jerr := json.Unmarshal(raw, &eb); jerr != nil {
			return nil, nil, fmt.Errorf("%s: status %d, undecodable body: %w", op, resp.StatusCode, ErrUnavailable)
		}

		return nil, nil, &APIError{Status: resp.StatusCode, Message: eb.Error}
	}

	return resp.Body, resp.Header, nil
}
