package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/footylytics/matchseer/internal/platform/logging"
)

const (
	// DefaultModel is the chat model used when the config names none.
	DefaultModel = goopenai.GPT4TurboPreview

	defaultTemperature = 0.7
	defaultMaxTokens   = 300
)

type ClientConfig struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Logger      *logging.Logger
}

// Client wraps the OpenAI chat-completions API behind a single Complete call.
type Client struct {
	api         *goopenai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	apiCfg := goopenai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
	if cfg.Timeout > 0 {
		apiCfg.HTTPClient.(*http.Client).Timeout = cfg.Timeout
	}

	return &Client{
		api:         goopenai.NewClientWithConfig(apiCfg),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Complete sends one system+user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "chat completion failed", "model", c.model, "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
