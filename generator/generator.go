// ABOUTME: Content generation collaborator that turns a prompt into email text
// ABOUTME: The OpenAI implementation talks to any OpenAI-compatible chat completions API
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Model names the backend recorded on generated drafts.
	Model() string
}

// ErrNotConfigured is returned by Disabled.
var ErrNotConfigured = errors.New("content generation is not configured")

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int64
	Timeout     time.Duration
}

type OpenAI struct {
	client openai.Client
	opts   Options
}

func NewOpenAI(opts Options) *OpenAI {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey), option.WithMaxRetries(1)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Model == "" {
		opts.Model = openai.ChatModelGPT4oMini
	}
	return &OpenAI{
		client: openai.NewClient(reqOpts...),
		opts:   opts,
	}
}

func (g *OpenAI) Model() string {
	return g.opts.Model
}

func (g *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model:       g.opts.Model,
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Temperature: openai.Float(g.opts.Temperature),
	}
	if g.opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(g.opts.MaxTokens)
	}

	response, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", errors.New("no response from generation service")
	}

	text := strings.TrimSpace(response.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("generation service returned empty content")
	}
	return text, nil
}

// Disabled is used when no API key is configured; every call fails.
type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) Model() string {
	return "none"
}
