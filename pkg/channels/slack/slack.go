package slack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"knowledge-assistant-be/pkg/apperr"
)

const (
	defaultBaseURL = "https://slack.com/api"

	// Requests older than this are rejected to blunt replay of a
	// captured signature.
	maxSignatureAge = 5 * time.Minute

	signatureVersion = "v0"
)

type Client struct {
	httpClient    *http.Client
	baseURL       string
	signingSecret string
	botToken      string
	botUserID     string
}

func NewClient(signingSecret, botToken, botUserID string) *Client {
	return &Client{
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		baseURL:       defaultBaseURL,
		signingSecret: signingSecret,
		botToken:      botToken,
		botUserID:     botUserID,
	}
}

func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

// BotUserID identifies the workspace bot user so event handlers can
// tell the assistant's own messages apart from human ones.
func (c *Client) BotUserID() string {
	return c.botUserID
}

// VerifySignature checks the v0 request signature over the raw body.
// The expected signature is HMAC-SHA256 of "v0:{timestamp}:{body}"
// keyed with the signing secret.
func (c *Client) VerifySignature(timestamp, signature string, body []byte) error {
	const op = "slack.VerifySignature"

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return apperr.Validation(op, "invalid request timestamp")
	}
	age := time.Since(time.Unix(ts, 0))
	if age > maxSignatureAge || age < -maxSignatureAge {
		return apperr.Validation(op, "request timestamp outside allowed window")
	}

	mac := hmac.New(sha256.New, []byte(c.signingSecret))
	fmt.Fprintf(mac, "%s:%s:", signatureVersion, timestamp)
	mac.Write(body)
	expected := signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return apperr.Validation(op, "signature mismatch")
	}
	return nil
}

type postMessageRequest struct {
	Channel  string `json:"channel"`
	Text     string `json:"text"`
	ThreadTs string `json:"thread_ts,omitempty"`
}

type postMessageResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
	Ts    string `json:"ts"`
}

// PostMessage sends text to a channel, threading under threadTs when
// it is non-empty. It returns the posted message timestamp.
func (c *Client) PostMessage(ctx context.Context, channel, threadTs, text string) (string, error) {
	const op = "slack.PostMessage"

	payload, err := json.Marshal(postMessageRequest{
		Channel:  channel,
		Text:     text,
		ThreadTs: threadTs,
	})
	if err != nil {
		return "", apperr.Parse(op, "failed to encode message", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return "", &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "failed to build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.botToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "failed to read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperr.Provider(op, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var parsed postMessageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperr.Parse(op, "failed to decode response", err)
	}
	if !parsed.Ok {
		return "", apperr.Provider(op, "slack error: "+parsed.Error, nil)
	}
	return parsed.Ts, nil
}
