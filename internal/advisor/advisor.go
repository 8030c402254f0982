// Package advisor asks a hosted language model for a narrative investment view.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/shopspring/decimal"

	"StockOracle/internal/model"
)

// AdviceRequest carries what the prompt is built from.
type AdviceRequest struct {
	Symbol         string
	PredictedClose float64
	Overview       model.Metrics
}

// Advisor produces free-text investment advice.
type Advisor interface {
	Advise(ctx context.Context, req AdviceRequest) (string, error)
}

// NewClient builds a client for any OpenAI-compatible chat endpoint.
func NewClient(apiKey, baseURL string, timeout time.Duration) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return openai.NewClientWithConfig(cfg)
}

// OpenAIAdvisor implements Advisor with a chat completion call.
type OpenAIAdvisor struct {
	client *openai.Client
	model  string
}

func NewOpenAIAdvisor(client *openai.Client, modelName string) *OpenAIAdvisor {
	return &OpenAIAdvisor{client: client, model: modelName}
}

const promptTemplate = `You are a professional stock advisor.

Stock Symbol: %s
Predicted Next Day Price: %s

Company Snapshot:
%s

Based only on this information, give:
1. Investment Decision: Buy / Hold / Sell
2. Reasoning
3. Risks
4. Final Summary
`

// BuildPrompt renders the fixed advice prompt.
func BuildPrompt(req AdviceRequest) (string, error) {
	overview := req.Overview
	if overview == nil {
		overview = model.Metrics{}
	}
	snapshot, err := json.MarshalIndent(overview, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode overview: %w", err)
	}
	price := decimal.NewFromFloat(req.PredictedClose).StringFixed(2)
	return fmt.Sprintf(promptTemplate, req.Symbol, price, snapshot), nil
}

// Advise sends the prompt and returns the trimmed reply.
func (a *OpenAIAdvisor) Advise(ctx context.Context, req AdviceRequest) (string, error) {
	if len(req.Overview) == 0 {
		return "", model.DataErrorf("no overview for %s, advice skipped", req.Symbol)
	}
	prompt, err := BuildPrompt(req)
	if err != nil {
		return "", err
	}
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("advisor %s: %w", a.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("advisor %s: empty response", a.model)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
