package quip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"knowledge-assistant-be/pkg/apperr"
	"knowledge-assistant-be/pkg/channels/confluence"
)

// Thread is a fetched document with its HTML flattened to text.
type Thread struct {
	ID    string
	Title string
	Text  string
	Link  string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiToken:   apiToken,
	}
}

type threadResponse struct {
	Thread struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"thread"`
	HTML string `json:"html"`
}

// FetchThread loads a document by id over the v1 API.
func (c *Client) FetchThread(ctx context.Context, threadID string) (*Thread, error) {
	const op = "quip.FetchThread"

	if threadID == "" {
		return nil, apperr.Validation(op, "thread id is required")
	}

	url := fmt.Sprintf("%s/1/threads/%s", c.baseURL, threadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "failed to read response", Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.NotFound(op, "thread not found")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Provider(op, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var parsed threadResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperr.Parse(op, "failed to decode thread response", err)
	}

	return &Thread{
		ID:    parsed.Thread.ID,
		Title: parsed.Thread.Title,
		Text:  confluence.StripMarkup(parsed.HTML),
		Link:  parsed.Thread.Link,
	}, nil
}
