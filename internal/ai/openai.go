package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	altai "github.com/sashabaranov/go-openai"

	"github.com/dotswift/Pulse/internal/export"
	"github.com/dotswift/Pulse/internal/model"
	"github.com/dotswift/Pulse/internal/util"
)

// Minimal client wrapper around the chat completion API.
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
}

func NewOpenAIClient(apiKey, baseURL, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{apiKey: apiKey, baseURL: baseURL, model: model, timeout: timeout}
}

// ExplainEntry asks the model for a short plain-language explanation of a
// single console entry.
func (c *OpenAIClient) ExplainEntry(ctx context.Context, e model.Entity) (string, error) {
	if c == nil || c.apiKey == "" {
		return "", errors.New("openai disabled")
	}
	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	prompt := buildExplainPrompt(e)
	cfg := altai.DefaultConfig(c.apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	cli := altai.NewClientWithConfig(cfg)
	resp, err := cli.CreateChatCompletion(ctx2, altai.ChatCompletionRequest{
		Model: c.model,
		Messages: []altai.ChatCompletionMessage{
			{Role: altai.ChatMessageRoleSystem, Content: "You explain log messages and HTTP request records to developers. Answer in at most five short sentences. No markdown."},
			{Role: altai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildExplainPrompt(e model.Entity) string {
	var b strings.Builder
	b.WriteString("Explain the following console entry:\n")
	// Entries can carry user data; scrub before it leaves the process.
	b.WriteString(util.RedactPII(export.ToPlainText([]model.Entity{e})))
	if e.Kind == model.KindTask {
		fmt.Fprintf(&b, "status=%d duration=%s\n", e.StatusCode, e.Duration)
	}
	return b.String()
}
