package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://books.toscrape.com", cfg.Sources.BooksBaseURL)
	assert.Equal(t, 50, cfg.Sources.MaxPages)
	assert.Equal(t, 0.05, cfg.Sources.SkipRateThreshold)
	assert.True(t, cfg.Sources.AllowPlaceholders)
	assert.Equal(t, "http", cfg.Fetch.Engine)
	assert.Equal(t, 3, cfg.Fetch.MaxRetries)
	assert.Equal(t, 4, cfg.Workers.PoolSize)
	assert.Equal(t, "data", cfg.Export.OutputDir)
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
sources:
  max_pages: 5
  skip_rate_threshold: 0.1
  film_year_from: 2012
  film_year_to: 2014
fetch:
  engine: firecrawl
  request_timeout: 10s
workers:
  pool_size: 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Sources.MaxPages)
	assert.Equal(t, 0.1, cfg.Sources.SkipRateThreshold)
	assert.Equal(t, "firecrawl", cfg.Fetch.Engine)
	assert.Equal(t, 10*time.Second, cfg.Fetch.RequestTimeout)
	assert.Equal(t, 2, cfg.Workers.PoolSize)

	// untouched keys keep their defaults
	assert.Equal(t, "https://books.toscrape.com", cfg.Sources.BooksBaseURL)
	assert.Equal(t, []int{2012, 2013, 2014}, cfg.FilmYears())
}

func TestLoadConfigExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_STARLIFT_KEY", "secret-123")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  api_key: ${TEST_STARLIFT_KEY}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-123", cfg.LLM.APIKey)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("FETCH_ENGINE", "firecrawl")
	t.Setenv("SKIP_RATE_THRESHOLD", "0.2")
	t.Setenv("ALLOW_PLACEHOLDERS", "false")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "firecrawl", cfg.Fetch.Engine)
	assert.Equal(t, 0.2, cfg.Sources.SkipRateThreshold)
	assert.False(t, cfg.Sources.AllowPlaceholders)
}

func TestFilmYears(t *testing.T) {
	cfg := &Config{}
	cfg.Sources.FilmYearFrom = 2010
	cfg.Sources.FilmYearTo = 2015
	assert.Equal(t, []int{2010, 2011, 2012, 2013, 2014, 2015}, cfg.FilmYears())

	cfg.Sources.FilmYearTo = 2009
	assert.Nil(t, cfg.FilmYears())
}
