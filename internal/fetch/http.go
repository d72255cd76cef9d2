package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/time/rate"

	"starlift/internal/config"
	"starlift/internal/logging"
)

// HTTPFetcher implements the Fetcher interface with plain HTTP requests.
// All three sources serve static or JSON-backed pages, so a browser
// engine is not required.
type HTTPFetcher struct {
	config    *config.Config
	client    *http.Client
	limiter   *rate.Limiter
	converter *converter.Converter
	cache     *PageCache
	logger    logging.Logger
}

// NewHTTPFetcher creates a new HTTP fetcher instance
func NewHTTPFetcher(cfg *config.Config, cache *PageCache) *HTTPFetcher {
	perMinute := cfg.Fetch.RateLimit
	if perMinute <= 0 {
		perMinute = 60
	}

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)

	return &HTTPFetcher{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Fetch.RequestTimeout,
		},
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		converter: conv,
		cache:     cache,
		logger:    logging.GetGlobalLogger(),
	}
}

// Fetch retrieves the page at the given URL, honoring the rate limit
// and retrying transient failures.
func (h *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	if page, ok := h.cache.Get(ctx, url); ok {
		h.logger.Debug("Page cache hit", map[string]interface{}{"url": url})
		return page, nil
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	var html string
	var err error

	maxRetries := h.config.Fetch.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	for attempt := 1; attempt <= maxRetries; attempt++ {
		html, err = h.doRequest(ctx, url)
		if err == nil {
			break
		}

		h.logger.Debug("Fetch attempt failed", map[string]interface{}{
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
		return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w", url, maxRetries, err)
	}

	markdown, convErr := h.converter.ConvertString(html)
	if convErr != nil {
		// Markdown is a secondary representation; deterministic
		// extraction only needs the HTML.
		h.logger.Debug("Markdown conversion failed", map[string]interface{}{
			"url":   url,
			"error": convErr.Error(),
		})
		markdown = ""
	}

	page := &Page{
		URL:       url,
		HTML:      html,
		Markdown:  markdown,
		FetchedAt: time.Now(),
	}

	h.cache.Set(ctx, page)

	return page, nil
}

func (h *HTTPFetcher) doRequest(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", h.config.Fetch.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}

// IsHealthy checks if the fetcher is ready to process requests
func (h *HTTPFetcher) IsHealthy() bool {
	return h.client != nil
}

// GetEngineName returns the name of the fetch engine
func (h *HTTPFetcher) GetEngineName() string {
	return "http"
}

// Cleanup releases any resources used by the fetcher
func (h *HTTPFetcher) Cleanup() {
	h.client.CloseIdleConnections()
}
