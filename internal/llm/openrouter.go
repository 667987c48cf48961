package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mailpilot/internal/prompt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "meta-llama/llama-3.1-70b-instruct:free"
)

// OpenRouter implements domain.Completer against an OpenAI-compatible chat
// completions endpoint (OpenRouter by default).
type OpenRouter struct {
	client  openai.Client
	model   string
	profile *prompt.Profile
	logger  *slog.Logger
}

type Config struct {
	APIKey  string
	BaseURL string // default OpenRouter
	Model   string // default llama-3.1-70b free tier
	Profile *prompt.Profile
	Logger  *slog.Logger
}

func New(cfg Config) (*OpenRouter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("completion API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Profile == nil {
		cfg.Profile = prompt.Default()
	}

	return &OpenRouter{
		client: openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.BaseURL),
		),
		model:   cfg.Model,
		profile: cfg.Profile,
		logger:  cfg.Logger,
	}, nil
}

// SuggestReply asks the completion service for a reply suggestion for one
// email. Transport failures and malformed (empty) responses both fail the
// call; the caller decides what aborts.
func (o *OpenRouter) SuggestReply(ctx context.Context, subject, body string) (string, error) {
	user, err := o.profile.Render(subject, body)
	if err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if o.profile.System != "" {
		messages = append(messages, openai.SystemMessage(o.profile.System))
	}
	messages = append(messages, openai.UserMessage(user))

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}

	suggestion := strings.TrimSpace(resp.Choices[0].Message.Content)
	if suggestion == "" {
		return "", errors.New("completion response is empty")
	}

	o.logger.Debug("suggestion generated",
		"model", o.model,
		"duration_ms", time.Since(start).Milliseconds(),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return suggestion, nil
}
