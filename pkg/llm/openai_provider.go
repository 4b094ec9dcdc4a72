package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"knowledge-assistant-be/pkg/apperr"
)

type OpenAIProvider struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	N           int           `json:"n"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIProvider(apiKey, baseURL, model string, maxTokens int, temperature float64) Provider {
	return &OpenAIProvider{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	opts := &Options{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		N:           1,
	}
	for _, o := range options {
		o(opts)
	}

	reqBody, err := json.Marshal(chatRequest{
		Model:       opts.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		N:           1,
	})
	if err != nil {
		return "", apperr.Parse("llm.openai", "failed to encode request", err)
	}

	endpoint := fmt.Sprintf("%s/v1/chat/completions", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", apperr.Transport("llm.openai", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return "", apperr.Transport("llm.openai", err)
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return "", apperr.Transport("llm.openai", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", apperr.Provider("llm.openai",
			fmt.Sprintf("unexpected status %d: %s", res.StatusCode, string(resBytes)), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		return "", apperr.Parse("llm.openai", "failed to decode response", err)
	}
	if parsed.Error != nil {
		return "", apperr.Provider("llm.openai", parsed.Error.Message, nil)
	}
	if len(parsed.Choices) == 0 {
		return "", apperr.Parse("llm.openai", "empty choices array", nil)
	}

	return parsed.Choices[0].Message.Content, nil
}
