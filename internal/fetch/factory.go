package fetch

import (
	"fmt"

	"starlift/internal/config"
)

// Factory creates fetcher instances for the configured engine
type Factory struct {
	config *config.Config
	cache  *PageCache
}

// NewFactory creates a new fetcher factory. The page cache is shared
// across engines so switching engines keeps cache hits.
func NewFactory(cfg *config.Config) *Factory {
	var cache *PageCache
	if cfg.Fetch.CacheEnabled {
		cache = NewPageCache(cfg)
	}

	return &Factory{
		config: cfg,
		cache:  cache,
	}
}

// CreateFetcher creates a new fetcher instance for the given engine
func (f *Factory) CreateFetcher(engine string) (Fetcher, error) {
	switch engine {
	case "http", "auto":
		return NewHTTPFetcher(f.config, f.cache), nil
	case "firecrawl":
		fetcher, err := NewFirecrawlFetcher(f.config, f.cache)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	default:
		return nil, fmt.Errorf("unsupported fetch engine: %s", engine)
	}
}

// GetSupportedEngines returns a list of supported engine types
func (f *Factory) GetSupportedEngines() []string {
	return []string{"http", "firecrawl", "auto"}
}
