package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"knowledge-assistant-be/pkg/apperr"
	"knowledge-assistant-be/pkg/gateway"
)

// GatewayProvider sends completions through the enterprise gateway.
// The gateway HTML-escapes generated text, so responses are unescaped
// before being returned.
type GatewayProvider struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	tokens      *gateway.TokenSource
	client      *http.Client
}

func NewGatewayProvider(baseURL, model string, maxTokens int, temperature float64, tokens *gateway.TokenSource) Provider {
	return &GatewayProvider{
		baseURL:     baseURL,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		tokens:      tokens,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *GatewayProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	opts := &Options{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		N:           1,
	}
	for _, o := range options {
		o(opts)
	}

	accessToken, err := p.tokens.Token(ctx)
	if err != nil {
		return "", err
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:       opts.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		N:           1,
	})
	if err != nil {
		return "", apperr.Parse("llm.gateway", "failed to encode request", err)
	}

	endpoint := fmt.Sprintf("%s/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", apperr.Transport("llm.gateway", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", apperr.Transport("llm.gateway", err)
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return "", apperr.Transport("llm.gateway", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", apperr.Provider("llm.gateway",
			fmt.Sprintf("unexpected status %d: %s", res.StatusCode, string(resBytes)), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		return "", apperr.Parse("llm.gateway", "failed to decode response", err)
	}
	if parsed.Error != nil {
		return "", apperr.Provider("llm.gateway", parsed.Error.Message, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", apperr.Parse("llm.gateway", "empty choices array", nil)
	}

	return html.UnescapeString(parsed.Choices[0].Message.Content), nil
}
