package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RichardoC/drivewise/internal/config"
	"github.com/RichardoC/drivewise/internal/db"
	"github.com/RichardoC/drivewise/internal/fallback"
	"github.com/RichardoC/drivewise/internal/llm"
	"github.com/RichardoC/drivewise/internal/metrics"
	"github.com/RichardoC/drivewise/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errStoreDown = errors.New("store down")

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) CreateChatMessage(context.Context, models.NewChatMessage) (*models.ChatMessage, error) {
	return nil, errStoreDown
}

func (brokenStore) GetRecentMessages(context.Context, int) ([]models.ChatMessage, error) {
	return nil, errStoreDown
}

func (brokenStore) GetUser(context.Context, int64) (*models.User, error) { return nil, errStoreDown }

func (brokenStore) GetUserByUsername(context.Context, string) (*models.User, error) {
	return nil, errStoreDown
}

func (brokenStore) CreateUser(context.Context, models.NewUser) (*models.User, error) {
	return nil, errStoreDown
}

func (brokenStore) Close() error { return nil }

type fixedAnswer models.Answer

func (f fixedAnswer) Generate(context.Context, string) models.Answer { return models.Answer(f) }

func newTestServer(t *testing.T, store db.Store, answers Answerer) http.Handler {
	t.Helper()
	m := metrics.New()
	if answers == nil {
		answers = llm.NewService(nil, config.LLM{}, zap.NewNop(), m)
	}
	h := NewHandler(store, answers, zap.NewNop(), m)
	return NewRouter(h, nil, m, zap.NewNop(), []string{"*"})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestGetMessagesEmpty(t *testing.T) {
	h := newTestServer(t, db.NewMemory(), nil)

	w := do(t, h, http.MethodGet, "/api/messages", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetMessagesLimit(t *testing.T) {
	store := db.NewMemory()
	for i := 0; i < 12; i++ {
		_, err := store.CreateChatMessage(context.Background(), models.NewChatMessage{
			Question: fmt.Sprintf("q%d", i),
			Answer:   "a",
		})
		require.NoError(t, err)
	}
	h := newTestServer(t, store, nil)

	w := do(t, h, http.MethodGet, "/api/messages", "")

	require.Equal(t, http.StatusOK, w.Code)
	messages := decode[[]models.ChatMessage](t, w)
	require.Len(t, messages, recentLimit)
	assert.Equal(t, "q11", messages[0].Question)
	assert.Equal(t, "q2", messages[recentLimit-1].Question)
}

func TestGetMessagesStoreFailure(t *testing.T) {
	h := newTestServer(t, brokenStore{}, nil)

	w := do(t, h, http.MethodGet, "/api/messages", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to fetch recent messages", decode[ErrorResponse](t, w).Message)
}

func TestChatValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "empty question", body: `{"question":""}`, message: "Question is required"},
		{name: "missing question", body: `{}`, message: "Question is required"},
		{name: "malformed json", body: `{"question":`, message: "Invalid request body"},
		{name: "wrong type", body: `{"question":42}`, message: "Invalid request body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := db.NewMemory()
			h := newTestServer(t, store, nil)

			w := do(t, h, http.MethodPost, "/api/chat", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.message, decode[ErrorResponse](t, w).Message)

			recent, err := store.GetRecentMessages(context.Background(), 10)
			require.NoError(t, err)
			assert.Empty(t, recent)
		})
	}
}

func TestChatBodyTooLarge(t *testing.T) {
	h := newTestServer(t, db.NewMemory(), nil)
	body := `{"question":"` + strings.Repeat("a", maxBodyBytes) + `"}`

	w := do(t, h, http.MethodPost, "/api/chat", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestChatFallbackAnswer(t *testing.T) {
	store := db.NewMemory()
	h := newTestServer(t, store, nil)

	w := do(t, h, http.MethodPost, "/api/chat", `{"question":"What are the rules for using a roundabout?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	msg := decode[models.ChatMessage](t, w)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "What are the rules for using a roundabout?", msg.Question)
	assert.Contains(t, msg.Tags, "roundabout")
	assert.NotEmpty(t, msg.Citation)
	assert.False(t, msg.Timestamp.IsZero())

	recent, err := store.GetRecentMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, msg.ID, recent[0].ID)

	scrape := do(t, h, http.MethodGet, "/metrics", "")
	assert.Contains(t, scrape.Body.String(), "drivewise_chat_messages_stored_total 1")
}

func TestChatUnknownWithoutModel(t *testing.T) {
	h := newTestServer(t, db.NewMemory(), nil)

	w := do(t, h, http.MethodPost, "/api/chat", `{"question":"What is the speed limit on Mars?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	msg := decode[models.ChatMessage](t, w)
	unknown := fallback.Unknown()
	assert.Equal(t, unknown.Answer, msg.Answer)
	assert.Contains(t, msg.Answer, fallback.KnownTopics)
	assert.Equal(t, unknown.Tags, msg.Tags)
}

func TestChatStoresGeneratedAnswer(t *testing.T) {
	answers := fixedAnswer{Answer: "Stop fully first.", Tags: []string{"signals"}}
	h := newTestServer(t, db.NewMemory(), answers)

	w := do(t, h, http.MethodPost, "/api/chat", `{"question":"Can I turn right on red?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	msg := decode[models.ChatMessage](t, w)
	assert.Equal(t, "Stop fully first.", msg.Answer)
	assert.Equal(t, []string{"signals"}, msg.Tags)
	assert.NotContains(t, w.Body.String(), `"citation"`)
}

func TestChatStoreFailure(t *testing.T) {
	h := newTestServer(t, brokenStore{}, nil)

	w := do(t, h, http.MethodPost, "/api/chat", `{"question":"What are the rules for using a roundabout?"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to generate response", decode[ErrorResponse](t, w).Message)
}

func TestSuggestedQuestions(t *testing.T) {
	h := newTestServer(t, db.NewMemory(), nil)

	w := do(t, h, http.MethodGet, "/api/suggested-questions", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fallback.SuggestedQuestions(), decode[[]string](t, w))
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, db.NewMemory(), nil)

	w := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `drivewise_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t, db.NewMemory(), nil)

	w := do(t, h, http.MethodGet, "/api/chat", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
