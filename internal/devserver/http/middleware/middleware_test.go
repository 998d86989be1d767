package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Тесты базовых мидлваров dev-сервера.
//
// Покрытие:
//   - Chain: порядок применения мидлваров;
//   - RequestID: генерация id и эхо существующего;
//   - Recover: panic -> 500 с унифицированным JSON-телом, детали паники
//     не попадают в ответ;
//   - Logging: статус и путь попадают в запись лога, request_id
//     прокидывается в request-scoped логгер.

// capHandler — тестовый slog.Handler, накапливающий attrs последней записи.
type capHandler struct {
	base    []slog.Attr
	lastMsg string
	attrs   map[string]any
	count   int
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)

	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}

	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})

	h.count++
	h.lastMsg = r.Message
	h.attrs = out

	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) > 0 {
		h.base = append(h.base, attrs...)
	}

	return h
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

func TestChain_Order(t *testing.T) {
	order := []string{}

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m1-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m1-end")
		})
	}

	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "m2-begin")
			next.ServeHTTP(w, r)
			order = append(order, "m2-end")
		})
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusTeapot)
	})

	chain := Chain(final, m1, m2)
	rr := httptest.NewRecorder()
	chain.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/chain", nil))

	require.Equal(t, []string{"m1-begin", "m2-begin", "handler", "m2-end", "m1-end"}, order)
	require.Equal(t, http.StatusTeapot, rr.Code)
}

func TestRequestID_Generate(t *testing.T) {
	var seen string

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
	}), RequestID())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Len(t, seen, 32)
	require.Equal(t, seen, rr.Header().Get("X-Request-Id"))
}

func TestRequestID_EchoExisting(t *testing.T) {
	var seen string

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-Id")
		w.WriteHeader(http.StatusOK)
	}), RequestID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "rid-42")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, "rid-42", seen)
	require.Equal(t, "rid-42", rr.Header().Get("X-Request-Id"))
}

func TestRecover_PanicTo500(t *testing.T) {
	caph := &capHandler{}
	log := slog.New(caph)

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("secret internal detail")
	}), Logging(log), Recover())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "Internal server error", body["error"])

	// Причина паники остаётся в логе, но не в ответе.
	require.NotContains(t, rr.Body.String(), "secret internal detail")
}

func TestLogging_RecordsStatusAndRequestID(t *testing.T) {
	caph := &capHandler{}
	log := slog.New(caph)

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Document not found"}`))
	}), RequestID(), Logging(log))

	req := httptest.NewRequest(http.MethodGet, "/api/documents/9000", nil)
	req.Header.Set("X-Request-Id", "rid-log")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, 1, caph.count)
	require.Equal(t, "http", caph.lastMsg)
	require.Equal(t, "GET", caph.attrs["method"])
	require.Equal(t, "/api/documents/9000", caph.attrs["path"])
	require.EqualValues(t, http.StatusNotFound, caph.attrs["status"])
	require.Equal(t, "rid-log", caph.attrs["request_id"])
}
