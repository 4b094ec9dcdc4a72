package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"knowledge-assistant-be/pkg/apperr"
)

const searchLimit = 5

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Page is a search hit with its storage body flattened to plain text.
type Page struct {
	ID    string
	Title string
	Body  string
	URL   string
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	user       string
	apiToken   string
}

func NewClient(baseURL, user, apiToken string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		user:       user,
		apiToken:   apiToken,
	}
}

type searchResponse struct {
	Results []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Body  struct {
			Storage struct {
				Value string `json:"value"`
			} `json:"storage"`
		} `json:"body"`
		Links struct {
			Webui string `json:"webui"`
		} `json:"_links"`
	} `json:"results"`
}

// Search runs a CQL query against the content API and returns matching
// pages with their bodies stripped to text.
func (c *Client) Search(ctx context.Context, cql string) ([]Page, error) {
	const op = "confluence.Search"

	if cql == "" {
		return nil, apperr.Validation(op, "cql query is required")
	}

	q := url.Values{}
	q.Set("cql", cql)
	q.Set("limit", fmt.Sprintf("%d", searchLimit))
	q.Set("expand", "body.storage")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/api/content/search?"+q.Encode(), nil)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "failed to build request", Err: err}
	}
	req.SetBasicAuth(c.user, c.apiToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindTransport, Op: op, Message: "failed to read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Provider(op, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, apperr.Parse(op, "failed to decode search response", err)
	}

	pages := make([]Page, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		pages = append(pages, Page{
			ID:    r.ID,
			Title: r.Title,
			Body:  StripMarkup(r.Body.Storage.Value),
			URL:   c.baseURL + r.Links.Webui,
		})
	}
	return pages, nil
}

// StripMarkup flattens storage-format XHTML into whitespace-normalized
// text good enough for prompt context.
func StripMarkup(markup string) string {
	text := tagPattern.ReplaceAllString(markup, " ")
	return strings.Join(strings.Fields(text), " ")
}
