package genai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"wishbook/internal/metrics"
)

// ErrGenerationUnavailable reports that the text provider cannot serve the
// request: missing credential, unreachable endpoint, or provider-side error.
// Callers must not confuse it with input validation failures.
var ErrGenerationUnavailable = errors.New("text generation unavailable")

type Input struct {
	Occasion      string
	RecipientName string
	Tone          string
	ExtraDetails  string
	Length        string // "short" by default
}

type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	api     completionAPI
	model   string
	history *metrics.LatencyHistory
}

func NewClient(apiKey, baseURL, model string, history *metrics.LatencyHistory) *Client {
	if apiKey == "" {
		// Leave api nil; every call reports ErrGenerationUnavailable.
		return &Client{model: model, history: history}
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   model,
		history: history,
	}
}

func (c *Client) GenerateWish(ctx context.Context, in Input) (string, error) {
	length := in.Length
	if length == "" {
		length = "short"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s %s wish for %s. ", in.Tone, in.Occasion, in.RecipientName)
	if in.ExtraDetails != "" {
		fmt.Fprintf(&b, "Details: %s. ", in.ExtraDetails)
	}
	fmt.Fprintf(&b, "Keep it %s.", length)

	start := time.Now()
	text, err := c.complete(ctx, "You are a helpful assistant that writes personalized wishes.", b.String(), 150)
	if err != nil {
		return "", err
	}
	if c.history != nil {
		c.history.Record(time.Now(), float64(time.Since(start).Milliseconds()))
	}
	return text, nil
}

// DescribeVisually turns a wish into a short art-direction prompt suitable
// for a text-to-image service.
func (c *Client) DescribeVisually(ctx context.Context, wishText string) (string, error) {
	prompt := fmt.Sprintf(`Act as an expert art director.
I have a greeting card wish: %q.

Describe a single, beautiful, high-quality background image that captures the mood and essence of this wish.
Your description will be fed into a Text-to-Image AI.

Rules:
- Describe the visual elements, lighting, style, and colors.
- Be vivid and artistic (e.g., "cinematic lighting", "digital art", "soft focus", "watercolor").
- Do NOT include text in the image description (no signboards, no words).
- Keep it under 25 words.
- Output ONLY the description.`, wishText)

	desc, err := c.complete(ctx, "You are a helpful assistant.", prompt, 300)
	if err != nil {
		return "", err
	}
	return strings.Trim(desc, `"'`), nil
}

func (c *Client) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if c.api == nil {
		return "", fmt.Errorf("%w: missing API key", ErrGenerationUnavailable)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty completion", ErrGenerationUnavailable)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
