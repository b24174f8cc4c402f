package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ProxyConfig configures the advice proxy client
type ProxyConfig struct {
	Logger       *slog.Logger
	BaseURL      string
	APIKey       string
	DefaultModel string
	Timeout      time.Duration
	MaxRetries   int

	// AllowedModels a request may pick; DefaultModel is always allowed
	AllowedModels []string
}

// ProxyClient calls an OpenAI-compatible chat completions endpoint. The proxy
// also receives the request's action and skills as extra body fields.
type ProxyClient struct {
	client  openai.Client
	breaker *circuitBreaker
	logger  *slog.Logger
	model   string
	allowed map[string]bool
}

// NewProxyClient creates a proxy client
func NewProxyClient(cfg ProxyConfig) (*ProxyClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("coach proxy URL is required")
	}
	if cfg.DefaultModel == "" {
		return nil, errors.New("coach model is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allowed := map[string]bool{cfg.DefaultModel: true}
	for _, m := range cfg.AllowedModels {
		if m = strings.TrimSpace(m); m != "" {
			allowed[m] = true
		}
	}

	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &ProxyClient{
		client: openai.NewClient(
			option.WithBaseURL(baseURL),
			option.WithAPIKey(cfg.APIKey),
			option.WithRequestTimeout(timeout),
			option.WithMaxRetries(cfg.MaxRetries),
		),
		breaker: newCircuitBreaker(logger),
		logger:  logger,
		model:   cfg.DefaultModel,
		allowed: allowed,
	}, nil
}

// Complete sends the conversation and returns the first choice
func (c *ProxyClient) Complete(ctx context.Context, req AdviceRequest) (*Completion, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	if !c.allowed[model] {
		return nil, NewValidationError("model", fmt.Sprintf("model %q is not available", model))
	}

	if ok, err := c.breaker.canAttempt(model); !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toChatMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(req.MaxTokens))
	}

	opts := []option.RequestOption{option.WithJSONSet("action", req.Action)}
	if len(req.Skills) > 0 {
		opts = append(opts, option.WithJSONSet("skills", req.Skills))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, opts...)
	if err != nil {
		// Caller cancellation says nothing about the proxy's health
		if ctx.Err() == nil {
			c.breaker.recordFailure(model, err)
		} else {
			c.breaker.abandonTrial(model)
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("coach proxy returned status %d: %w", apiErr.StatusCode, err)
		}
		return nil, fmt.Errorf("coach proxy request failed: %w", err)
	}
	c.breaker.recordSuccess(model)

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return nil, fmt.Errorf("%w: empty content (finish reason %q)", ErrMalformedResponse, resp.Choices[0].FinishReason)
	}

	usedModel := resp.Model
	if usedModel == "" {
		usedModel = model
	}
	return &Completion{
		Text:       text,
		Model:      usedModel,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

func toChatMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
