package pagerduty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"knowledge-assistant-be/pkg/apperr"
)

const defaultBaseURL = "https://api.pagerduty.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	fromEmail  string
	tagline    string
}

func NewClient(apiKey, fromEmail, tagline string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		tagline:    tagline,
	}
}

func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// Tagline is appended to every note the assistant writes. Incoming
// notes containing it are the assistant's own and must not be answered
// again.
func (c *Client) Tagline() string {
	return c.tagline
}

// IsOwnNote reports whether note content was written by the assistant.
func (c *Client) IsOwnNote(content string) bool {
	return c.tagline != "" && strings.Contains(content, c.tagline)
}

// WebhookEvent is the v3 webhook payload. Incident id location varies
// by event type, so the data block is kept raw and probed.
type WebhookEvent struct {
	ID           string
	EventType    string
	ResourceType string
	IncidentID   string
	NoteContent  string
}

type webhookEnvelope struct {
	Event struct {
		ID           string          `json:"id"`
		EventType    string          `json:"event_type"`
		ResourceType string          `json:"resource_type"`
		Data         json.RawMessage `json:"data"`
	} `json:"event"`
}

type incidentData struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	Incident struct {
		ID string `json:"id"`
	} `json:"incident"`
}

// ParseWebhook decodes a v3 webhook delivery. Only incident resources
// are actionable; anything else returns a nil event with no error.
func ParseWebhook(body []byte) (*WebhookEvent, error) {
	const op = "pagerduty.ParseWebhook"

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperr.Parse(op, "failed to decode webhook payload", err)
	}
	if env.Event.ResourceType != "incident" {
		return nil, nil
	}

	var data incidentData
	if len(env.Event.Data) > 0 {
		if err := json.Unmarshal(env.Event.Data, &data); err != nil {
			return nil, apperr.Parse(op, "failed to decode incident data", err)
		}
	}

	// Annotated events carry the incident id one level down; incident
	// lifecycle events carry it at the top of the data block.
	incidentID := data.Incident.ID
	if incidentID == "" && data.Type == "incident" {
		incidentID = data.ID
	}
	if incidentID == "" {
		return nil, apperr.Parse(op, "incident id not present in payload", nil)
	}

	return &WebhookEvent{
		ID:           env.Event.ID,
		EventType:    env.Event.EventType,
		ResourceType: env.Event.ResourceType,
		IncidentID:   incidentID,
		NoteContent:  data.Content,
	}, nil
}

type noteRequest struct {
	Note struct {
		Content string `json:"content"`
	} `json:"note"`
}

// PostNote appends a note to an incident, signed with the tagline.
func (c *Client) PostNote(ctx context.Context, incidentID, content string) error {
	const op = "pagerduty.PostNote"

	var nr noteRequest
	nr.Note.Content = content
	if c.tagline != "" {
		nr.Note.Content = content + "\n\n" + c.tagline
	}

	payload, err := json.Marshal(nr)
	if err != nil {
		return apperr.Parse(op, "failed to encode note", err)
	}

	url := fmt.Sprintf("%s/incidents/%s/notes", c.baseURL, incidentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token token="+c.apiKey)
	req.Header.Set("From", c.fromEmail)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return apperr.Provider(op, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
	return nil
}
