package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"starlift/internal/config"
	"starlift/internal/fetch"
	"starlift/pkg/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Sources.ProductsBaseURL = "https://shop.test/products"
	cfg.Sources.BooksBaseURL = "https://books.test"
	cfg.Sources.FilmsBaseURL = "https://films.test/pages/ajax-javascript/"
	cfg.Sources.MaxPages = 3
	cfg.Sources.FilmYearFrom = 2010
	cfg.Sources.FilmYearTo = 2010
	cfg.Sources.SkipRateThreshold = 0.05
	cfg.Sources.AllowPlaceholders = true

	cfg.Workers.PoolSize = 2
	cfg.Workers.QueueSize = 8
	cfg.Workers.Timeout = 5 * time.Second

	return cfg
}

func filmCandidate(title string, year, awards int, bestPicture bool) models.FilmCandidate {
	return models.FilmCandidate{
		Title:       title,
		Year:        year,
		Awards:      awards,
		BestPicture: bestPicture,
	}
}

// fakeFetcher serves canned pages keyed by URL. Unknown URLs fail, which
// the sources treat as the end of pagination or a failed unit.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]*fetch.Page
	seen  []string
}

func newFakeFetcher(pages map[string]*fetch.Page) *fakeFetcher {
	return &fakeFetcher{pages: pages}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*fetch.Page, error) {
	f.mu.Lock()
	f.seen = append(f.seen, url)
	page, ok := f.pages[url]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return page, nil
}

func (f *fakeFetcher) IsHealthy() bool       { return true }
func (f *fakeFetcher) GetEngineName() string { return "fake" }
func (f *fakeFetcher) Cleanup()              {}

func (f *fakeFetcher) requested(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.seen {
		if u == url {
			return true
		}
	}
	return false
}

func htmlPage(url, html string) *fetch.Page {
	return &fetch.Page{URL: url, HTML: html, FetchedAt: time.Now()}
}
