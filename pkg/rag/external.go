package rag

import (
	"context"
	"sync"

	"knowledge-assistant-be/internal/pkg/logger"
	"knowledge-assistant-be/pkg/channels/confluence"
	"knowledge-assistant-be/pkg/channels/quip"
)

// ExternalPassage is supplemental context pulled from a live source at
// answer time rather than from the ingested corpus.
type ExternalPassage struct {
	Source string
	Title  string
	Text   string
	URL    string
}

type ConfluenceSearcher interface {
	Search(ctx context.Context, cql string) ([]confluence.Page, error)
}

type QuipFetcher interface {
	FetchThread(ctx context.Context, threadID string) (*quip.Thread, error)
}

// ExternalSources gathers live context for an assistant. Fetches are
// best effort: a failing source is logged and skipped, never fatal to
// the answer pipeline.
type ExternalSources struct {
	confluence ConfluenceSearcher
	quip       QuipFetcher
	log        logger.ILogger
}

func NewExternalSources(cf ConfluenceSearcher, qp QuipFetcher, log logger.ILogger) *ExternalSources {
	return &ExternalSources{confluence: cf, quip: qp, log: log}
}

// Fetch runs the configured lookups concurrently and merges whatever
// succeeded, Confluence results first.
func (s *ExternalSources) Fetch(ctx context.Context, confluenceQuery, quipThreadID string) []ExternalPassage {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		fromConf []ExternalPassage
		fromQuip []ExternalPassage
	)

	if s.confluence != nil && confluenceQuery != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pages, err := s.confluence.Search(ctx, confluenceQuery)
			if err != nil {
				s.log.Warn("rag", "confluence context fetch failed", map[string]interface{}{"error": err.Error()})
				return
			}
			passages := make([]ExternalPassage, 0, len(pages))
			for _, p := range pages {
				passages = append(passages, ExternalPassage{Source: "confluence", Title: p.Title, Text: p.Body, URL: p.URL})
			}
			mu.Lock()
			fromConf = passages
			mu.Unlock()
		}()
	}

	if s.quip != nil && quipThreadID != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			thread, err := s.quip.FetchThread(ctx, quipThreadID)
			if err != nil {
				s.log.Warn("rag", "quip context fetch failed", map[string]interface{}{"error": err.Error(), "thread_id": quipThreadID})
				return
			}
			mu.Lock()
			fromQuip = []ExternalPassage{{Source: "quip", Title: thread.Title, Text: thread.Text, URL: thread.Link}}
			mu.Unlock()
		}()
	}

	wg.Wait()
	return append(fromConf, fromQuip...)
}
