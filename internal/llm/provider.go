package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/RichardoC/drivewise/internal/config"
	goopenai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

var (
	ErrQuotaExceeded   = errors.New("API quota exceeded")
	ErrRateLimited     = errors.New("rate limit exceeded")
	ErrEmptyCompletion = errors.New("no content in response")
)

// Provider sends one question to a language model and returns its raw reply.
type Provider interface {
	Name() string
	Complete(ctx context.Context, question string) (string, error)
}

// NewProvider builds the provider named in cfg. It returns nil when no API key
// is configured, which leaves the service answering from canned responses only.
func NewProvider(cfg config.LLM) (Provider, error) {
	if !cfg.ModelEnabled() {
		return nil, nil
	}
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case config.ProviderLangChain:
		return NewLangChain(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// OpenAI talks to the chat completions API in JSON response mode.
type OpenAI struct {
	client      *goopenai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAI(cfg config.LLM) *OpenAI {
	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &OpenAI{
		client:      goopenai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (o *OpenAI) Name() string { return config.ProviderOpenAI }

func (o *OpenAI) Complete(ctx context.Context, question string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: o.temperature,
		MaxTokens:   o.maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: jsonSystemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: question},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		// quota errors also arrive as 429, so check the code first
		if code, _ := apiErr.Code.(string); code == "insufficient_quota" || apiErr.Type == "insufficient_quota" {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, apiErr.Message)
		}
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Message)
		}
		return err
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, reqErr.Err)
	}
	return err
}

// LangChain reaches any OpenAI-compatible endpoint, such as a local Ollama,
// and asks for plain text with "Source:" and "Tags:" lines.
type LangChain struct {
	llm         llms.Model
	temperature float64
	maxTokens   int
}

func NewLangChain(cfg config.LLM) (*LangChain, error) {
	opts := []lcopenai.Option{
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize langchain client: %w", err)
	}
	return &LangChain{
		llm:         llm,
		temperature: float64(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (l *LangChain) Name() string { return config.ProviderLangChain }

func (l *LangChain) Complete(ctx context.Context, question string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, textSystemPrompt),
		llms.TextParts(schema.ChatMessageTypeAI, acknowledgement),
		llms.TextParts(schema.ChatMessageTypeHuman, question),
	}
	resp, err := l.llm.GenerateContent(ctx, content,
		llms.WithTemperature(l.temperature),
		llms.WithMaxTokens(l.maxTokens),
	)
	if err != nil {
		return "", classifyLangChainError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Content, nil
}

// langchaingo reports HTTP failures as plain strings.
func classifyLangChainError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient_quota") || strings.Contains(msg, "exceeded your current quota"):
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	case strings.Contains(msg, "status code: 429"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	default:
		return err
	}
}
