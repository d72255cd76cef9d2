package fetch

import (
	"context"
	"time"
)

// Page is a fetched document in both representations the pipeline
// consumes: raw HTML for deterministic extraction and markdown for
// structured extraction prompts.
type Page struct {
	URL       string    `json:"url"`
	HTML      string    `json:"html"`
	Markdown  string    `json:"markdown"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fetcher retrieves pages from a source site
type Fetcher interface {
	// Fetch retrieves the page at the given URL
	Fetch(ctx context.Context, url string) (*Page, error)

	// IsHealthy checks if the fetcher is ready to process requests
	IsHealthy() bool

	// GetEngineName returns the name of the fetch engine
	GetEngineName() string

	// Cleanup releases any resources used by the fetcher
	Cleanup()
}
