package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Counter measures text size in model tokens. Counts are computed with
// the reference model's encoding at ingestion time and reused by the
// prompt budget, so both sides always agree on a document's size.
type Counter interface {
	Count(text string) (int, error)
}

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounter builds a counter for the given model name. The encoding
// table is resolved once; Count itself is pure computation.
func NewCounter(model string) (Counter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Unknown models fall back to the common base encoding.
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to load token encoding: %w", err)
		}
	}
	return &tiktokenCounter{encoding: enc}, nil
}

func (c *tiktokenCounter) Count(text string) (int, error) {
	return len(c.encoding.Encode(text, nil, nil)), nil
}
