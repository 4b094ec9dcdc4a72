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
	"knowledge-assistant-be/pkg/gateway"
)

// GatewayProvider reaches the same model family through the enterprise
// gateway, exchanging OAuth credentials for a short-lived token first.
type GatewayProvider struct {
	baseURL   string
	model     string
	dimension int
	tokens    *gateway.TokenSource
	client    *http.Client
}

type gatewayEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type gatewayEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func NewGatewayProvider(baseURL, model string, dimension int, tokens *gateway.TokenSource) Provider {
	return &GatewayProvider{
		baseURL:   baseURL,
		model:     model,
		dimension: dimension,
		tokens:    tokens,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *GatewayProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	accessToken, err := p.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(gatewayEmbeddingRequest{
		Model: p.model,
		Input: text,
	})
	if err != nil {
		return nil, apperr.Parse("embedding.gateway", "failed to encode request", err)
	}

	endpoint := fmt.Sprintf("%s/embeddings", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, apperr.Transport("embedding.gateway", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.client.Do(req)
	if err != nil {
		return nil, apperr.Transport("embedding.gateway", err)
	}
	defer res.Body.Close()

	resBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperr.Transport("embedding.gateway", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, apperr.Provider("embedding.gateway",
			fmt.Sprintf("unexpected status %d: %s", res.StatusCode, string(resBytes)), nil)
	}

	var parsed gatewayEmbeddingResponse
	if err := json.Unmarshal(resBytes, &parsed); err != nil {
		return nil, apperr.Parse("embedding.gateway", "failed to decode response", err)
	}
	if len(parsed.Data) == 0 {
		return nil, apperr.Parse("embedding.gateway", "empty data array", nil)
	}

	vector := parsed.Data[0].Embedding
	if len(vector) != p.dimension {
		return nil, apperr.Parse("embedding.gateway",
			fmt.Sprintf("expected %d dimensions, got %d", p.dimension, len(vector)), nil)
	}

	return vector, nil
}
