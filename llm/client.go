// Package llm adapts the Anthropic messages API to the advisor's completion boundary.
package llm

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"

	"gulf-property-analyzer/utils"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-5-20250929"

// Config configures a Client.
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int64
	Temperature *float64
	// BaseURL overrides the API endpoint. Empty uses the SDK default.
	BaseURL string
}

// Client sends single-turn completions to the Anthropic messages API.
// Retries are left to the caller, so the SDK's own retries are disabled.
type Client struct {
	client      sdk.Client
	model       string
	maxTokens   int64
	temperature *float64
	logger      *utils.Logger
}

// NewClient creates a Client backed by the official SDK.
func NewClient(cfg Config, logger *utils.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 800
	}
	return &Client{
		client:      sdk.NewClient(opts...),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      logger,
	}
}

// Complete sends the system prompt and one user message and returns the reply text.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(user))},
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}
	if c.temperature != nil {
		params.Temperature = sdk.Float(*c.temperature)
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "llm: create message")
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", eris.Errorf("llm: empty response (stop reason %q)", msg.StopReason)
	}

	c.logger.Debug("[llm] %s: %d input / %d output tokens", c.model, msg.Usage.InputTokens, msg.Usage.OutputTokens)
	return text, nil
}
