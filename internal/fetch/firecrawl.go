package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/mendableai/firecrawl-go"

	"starlift/internal/config"
	"starlift/internal/logging"
)

// FirecrawlFetcher implements the Fetcher interface using the Firecrawl
// API, for sources that need JavaScript rendering or anti-bot handling.
type FirecrawlFetcher struct {
	config *config.Config
	app    *firecrawl.FirecrawlApp
	cache  *PageCache
	logger logging.Logger
}

// NewFirecrawlFetcher creates a new Firecrawl fetcher instance
func NewFirecrawlFetcher(cfg *config.Config, cache *PageCache) (*FirecrawlFetcher, error) {
	app, err := firecrawl.NewFirecrawlApp(
		cfg.Firecrawl.APIKey,
		cfg.Firecrawl.APIURL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firecrawl: %w", err)
	}

	logger := logging.GetGlobalLogger()
	logger.Info("Firecrawl fetcher initialized", map[string]interface{}{
		"api_url": cfg.Firecrawl.APIURL,
	})

	return &FirecrawlFetcher{
		config: cfg,
		app:    app,
		cache:  cache,
		logger: logger,
	}, nil
}

// Fetch retrieves the page at the given URL through Firecrawl
func (f *FirecrawlFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if page, ok := f.cache.Get(ctx, url); ok {
		f.logger.Debug("Page cache hit", map[string]interface{}{"url": url})
		return page, nil
	}

	scrapeParams := &firecrawl.ScrapeParams{
		Formats: []string{"html", "markdown"},
	}

	var doc *firecrawl.FirecrawlDocument
	var err error

	maxRetries := f.config.Fetch.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		doc, err = f.app.ScrapeURL(url, scrapeParams)
		if err == nil {
			break
		}

		f.logger.Debug("Firecrawl scrape attempt failed", map[string]interface{}{
			"url":     url,
			"attempt": attempt,
			"error":   err.Error(),
		})

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	if err != nil {
		return nil, fmt.Errorf("firecrawl scraping failed after %d attempts: %w", maxRetries, err)
	}

	if doc == nil {
		return nil, fmt.Errorf("no result returned from Firecrawl for %s", url)
	}

	if doc.HTML == "" && doc.Markdown == "" {
		return nil, fmt.Errorf("no content found in Firecrawl response for %s", url)
	}

	page := &Page{
		URL:       url,
		HTML:      doc.HTML,
		Markdown:  doc.Markdown,
		FetchedAt: time.Now(),
	}

	f.cache.Set(ctx, page)

	return page, nil
}

// IsHealthy checks if the fetcher is ready to process requests
func (f *FirecrawlFetcher) IsHealthy() bool {
	return f.app != nil && f.config.Firecrawl.APIKey != ""
}

// GetEngineName returns the name of the fetch engine
func (f *FirecrawlFetcher) GetEngineName() string {
	return "firecrawl"
}

// Cleanup releases any resources used by the fetcher
func (f *FirecrawlFetcher) Cleanup() {
	// The Firecrawl SDK holds no long-lived resources
}
