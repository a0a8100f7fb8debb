package genai

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"wishbook/internal/metrics"
)

type fakeAPI struct {
	lastReq openai.ChatCompletionRequest
	content string
	err     error
}

func (f *fakeAPI) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func TestGenerateWishMissingKey(t *testing.T) {
	c := NewClient("", "", "test-model", nil)

	_, err := c.GenerateWish(context.Background(), Input{Occasion: "Birthday", RecipientName: "Ana"})
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
}

func TestGenerateWishBuildsPrompt(t *testing.T) {
	api := &fakeAPI{content: "  Happy birthday, Ana!  "}
	c := &Client{api: api, model: "test-model"}

	text, err := c.GenerateWish(context.Background(), Input{
		Occasion:      "Birthday",
		RecipientName: "Ana",
		Tone:          "warm",
		ExtraDetails:  "loves astronomy",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Happy birthday, Ana!" {
		t.Fatalf("expected trimmed completion, got %q", text)
	}

	if len(api.lastReq.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(api.lastReq.Messages))
	}
	prompt := api.lastReq.Messages[1].Content
	want := "Write a warm Birthday wish for Ana. Details: loves astronomy. Keep it short."
	if prompt != want {
		t.Fatalf("unexpected prompt:\n got %q\nwant %q", prompt, want)
	}
}

func TestGenerateWishProviderError(t *testing.T) {
	api := &fakeAPI{err: errors.New("connection refused")}
	h := metrics.NewLatencyHistory(10)
	c := &Client{api: api, model: "test-model", history: h}

	_, err := c.GenerateWish(context.Background(), Input{Occasion: "Birthday", RecipientName: "Ana"})
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Fatalf("expected ErrGenerationUnavailable, got %v", err)
	}
	if h.Summarize().Count != 0 {
		t.Fatal("failed calls must not record latency samples")
	}
}

func TestGenerateWishRecordsLatency(t *testing.T) {
	h := metrics.NewLatencyHistory(10)
	c := &Client{api: &fakeAPI{content: "hi"}, model: "test-model", history: h}

	if _, err := c.GenerateWish(context.Background(), Input{Occasion: "Birthday", RecipientName: "Ana"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := h.Summarize()
	if s.Count != 1 {
		t.Fatalf("expected one latency sample, got %d", s.Count)
	}
	if len(h.Recent(1)) != 1 || time.Since(h.Recent(1)[0].At) > time.Minute {
		t.Fatalf("expected a fresh sample, got %+v", h.Recent(1))
	}
}

func TestDescribeVisuallyStripsQuotes(t *testing.T) {
	api := &fakeAPI{content: `"soft watercolor garden at dawn"`}
	c := &Client{api: api, model: "test-model"}

	desc, err := c.DescribeVisually(context.Background(), "Happy birthday!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if desc != "soft watercolor garden at dawn" {
		t.Fatalf("expected quotes stripped, got %q", desc)
	}
}
