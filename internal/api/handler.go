package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RichardoC/drivewise/internal/db"
	"github.com/RichardoC/drivewise/internal/fallback"
	"github.com/RichardoC/drivewise/internal/metrics"
	"github.com/RichardoC/drivewise/internal/models"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const (
	// recentLimit is how many messages GET /api/messages returns.
	recentLimit  = 10
	maxBodyBytes = 64 << 10
)

// Answerer produces an answer for a question. It never fails.
type Answerer interface {
	Generate(ctx context.Context, question string) models.Answer
}

type Handler struct {
	store    db.Store
	answers  Answerer
	logger   *zap.Logger
	metrics  *metrics.Collector
	validate *validator.Validate
}

func NewHandler(store db.Store, answers Answerer, logger *zap.Logger, m *metrics.Collector) *Handler {
	return &Handler{
		store:    store,
		answers:  answers,
		logger:   logger,
		metrics:  m,
		validate: validator.New(),
	}
}

type ChatRequest struct {
	Question string `json:"question" validate:"required"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.store.GetRecentMessages(r.Context(), recentLimit)
	if err != nil {
		h.logger.Error("Failed to get recent messages",
			zap.Error(err),
			zap.String("request_id", GetRequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, "Failed to fetch recent messages")
		return
	}

	h.logger.Debug("Retrieved recent messages", zap.Int("count", len(messages)))
	writeJSON(w, http.StatusOK, messages)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	answer := h.answers.Generate(r.Context(), req.Question)

	msg, err := h.store.CreateChatMessage(r.Context(), models.NewChatMessage{
		Question: req.Question,
		Answer:   answer.Answer,
		Citation: answer.Citation,
		Tags:     answer.Tags,
	})
	if err != nil {
		h.logger.Error("Failed to save chat message",
			zap.Error(err),
			zap.String("request_id", GetRequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, "Failed to generate response")
		return
	}
	h.metrics.ObserveStored()

	writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) GetSuggestedQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fallback.SuggestedQuestions())
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}
