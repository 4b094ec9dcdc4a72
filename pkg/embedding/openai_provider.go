package embedding

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

// OpenAIProvider calls the vendor embeddings endpoint directly with
// bearer-token auth.
type OpenAIProvider struct {
	apiKey    string
	baseURL   string
	model     string
	dimension int
	client    *http.Client
}

type openAIEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func NewOpenAIProvider(apiKey, baseURL, model string, dimension int) Provider {
	return &OpenAIProvider{
		apiKey:    apiKey,
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(openAIEmbeddingRequest{
		Model: p.model,
		Input: text,
	})
	if err != nil {
		return nil, apperr.Parse("embedding.openai", "failed to encode request", err)
	}

	endpoint := fmt.Sprintf("%s/v1/embeddings", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, apperr.Transport("embedding.openai", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, apperr.Transport("embedding.openai", err)
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperr.Transport("embedding.openai", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, apperr.Provider("embedding.openai",
			fmt.Sprintf("unexpected status %d: %s", res.StatusCode, string(resBytes)), nil)
	}

	var parsed openAIEmbeddingResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		return nil, apperr.Parse("embedding.openai", "failed to decode response", err)
	}
	if len(parsed.Data) == 0 {
		return nil, apperr.Parse("embedding.openai", "empty data array", nil)
	}

	vector := parsed.Data[0].Embedding
	if len(vector) != p.dimension {
		return nil, apperr.Parse("embedding.openai",
			fmt.Sprintf("expected %d dimensions, got %d", p.dimension, len(vector)), nil)
	}

	return vector, nil
}
