package llm

import (
	"context"
	"errors"
	"time"

	"github.com/RichardoC/drivewise/internal/config"
	"github.com/RichardoC/drivewise/internal/fallback"
	"github.com/RichardoC/drivewise/internal/metrics"
	"github.com/RichardoC/drivewise/internal/models"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Where an answer came from, as reported to metrics and logs.
const (
	SourceFallback = "fallback"
	SourceModel    = "model"
	SourceError    = "error"
	SourceDefault  = "default"
)

// Service answers driving questions: canned answers first, then the model.
type Service struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker
	timeout  time.Duration
	logger   *zap.Logger
	metrics  *metrics.Collector
}

// NewService wires a provider into the answer pipeline. provider may be nil, in
// which case only canned answers are served.
func NewService(provider Provider, cfg config.LLM, logger *zap.Logger, m *metrics.Collector) *Service {
	s := &Service{
		provider: provider,
		timeout:  cfg.Timeout,
		logger:   logger,
		metrics:  m,
	}
	if provider != nil {
		s.breaker = newBreaker(provider.Name(), cfg.Breaker, logger)
	}
	return s
}

func newBreaker(name string, cfg config.Breaker, logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm-" + name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

// ModelEnabled reports whether questions without a canned answer reach a model.
func (s *Service) ModelEnabled() bool {
	return s.provider != nil
}

// Generate always returns an answer; model failures are turned into an
// apology that names the reason in its citation.
func (s *Service) Generate(ctx context.Context, question string) models.Answer {
	if hit, ok := fallback.Match(question); ok {
		s.logger.Debug("answered from fallback", zap.String("topic", hit.Topic))
		s.metrics.ObserveFallback(hit.Topic)
		s.metrics.ObserveAnswer(SourceFallback)
		return hit.Answer
	}

	if s.provider == nil {
		s.metrics.ObserveAnswer(SourceDefault)
		return fallback.Unknown()
	}

	answer, err := s.ask(ctx, question)
	if err != nil {
		s.logger.Error("failed to get answer from model",
			zap.String("provider", s.provider.Name()),
			zap.Error(err))
		s.metrics.ObserveAnswer(SourceError)
		return errorAnswer(err)
	}

	s.metrics.ObserveAnswer(SourceModel)
	return answer
}

func (s *Service) ask(ctx context.Context, question string) (models.Answer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.provider.Complete(ctx, question)
	})
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.metrics.ObserveLLM(s.provider.Name(), outcome, time.Since(start))
	if err != nil {
		return models.Answer{}, err
	}

	completion := out.(string)
	s.logger.Debug("model replied",
		zap.String("provider", s.provider.Name()),
		zap.Int("length", len(completion)))
	return parseCompletion(question, completion), nil
}

func errorAnswer(err error) models.Answer {
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		return models.Answer{
			Answer:   "I'm experiencing some technical difficulties. The API key has exceeded its quota. Please check your OpenAI account billing details or try again later.",
			Citation: "Error: API quota exceeded",
			Tags:     []string{"error", "api-quota"},
		}
	case errors.Is(err, ErrRateLimited):
		return models.Answer{
			Answer:   "I'm receiving too many requests right now. Please wait a moment and try again later.",
			Citation: "Error: Rate limit exceeded",
			Tags:     []string{"error", "rate-limit"},
		}
	default:
		return models.Answer{
			Answer:   "I'm sorry, I couldn't process your question at this time. Please try again later.",
			Citation: "Error: " + err.Error(),
			Tags:     []string{"error"},
		}
	}
}
