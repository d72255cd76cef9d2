package config

import (
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"starlift/internal/logging/types"
)

// Config represents the application configuration
type Config struct {
	Sources struct {
		ProductsBaseURL   string  `yaml:"products_base_url"`
		BooksBaseURL      string  `yaml:"books_base_url"`
		FilmsBaseURL      string  `yaml:"films_base_url"`
		MaxPages          int     `yaml:"max_pages"`
		FilmYearFrom      int     `yaml:"film_year_from"`
		FilmYearTo        int     `yaml:"film_year_to"`
		SkipRateThreshold float64 `yaml:"skip_rate_threshold"`
		AllowPlaceholders bool    `yaml:"allow_placeholders"`
	} `yaml:"sources"`

	Fetch struct {
		Engine         string        `yaml:"engine"` // http or firecrawl
		UserAgent      string        `yaml:"user_agent"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
		RateLimit      int           `yaml:"rate_limit"` // requests per minute, per source
		MaxRetries     int           `yaml:"max_retries"`
		CacheEnabled   bool          `yaml:"cache_enabled"`
		CacheTTL       time.Duration `yaml:"cache_ttl"`
	} `yaml:"fetch"`

	Workers struct {
		PoolSize  int           `yaml:"pool_size"`
		QueueSize int           `yaml:"queue_size"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"workers"`

	LLM struct {
		Provider    string        `yaml:"provider"`
		APIKey      string        `yaml:"api_key"`
		Model       string        `yaml:"model"`
		MaxTokens   int           `yaml:"max_tokens"`
		Temperature float32       `yaml:"temperature"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"llm"`

	Firecrawl struct {
		APIKey  string        `yaml:"api_key"`
		APIURL  string        `yaml:"api_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"firecrawl"`

	Redis struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"redis"`

	Export struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"export"`

	Logging struct {
		Level    string                `yaml:"level"`
		Format   string                `yaml:"format"`
		Adapters []types.AdapterConfig `yaml:"adapters"`
	} `yaml:"logging"`
}

// expandEnvVars expands environment variables in a string using ${VAR} or $VAR syntax
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	s = re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	re2 := regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	s = re2.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match
	})

	return s
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	_ = godotenv.Load()

	config := &Config{}

	config.Sources.ProductsBaseURL = "https://web-scraping.dev/products"
	config.Sources.BooksBaseURL = "https://books.toscrape.com"
	config.Sources.FilmsBaseURL = "https://www.scrapethissite.com/pages/ajax-javascript/"
	config.Sources.MaxPages = 50
	config.Sources.FilmYearFrom = 2010
	config.Sources.FilmYearTo = 2015
	config.Sources.SkipRateThreshold = 0.05
	config.Sources.AllowPlaceholders = true

	config.Fetch.Engine = "http"
	config.Fetch.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	config.Fetch.RequestTimeout = 30 * time.Second
	config.Fetch.RateLimit = 60
	config.Fetch.MaxRetries = 3
	config.Fetch.CacheTTL = 1 * time.Hour

	config.Workers.PoolSize = 4
	config.Workers.QueueSize = 64
	config.Workers.Timeout = 60 * time.Second

	config.LLM.Provider = "claude"
	config.LLM.Model = "claude-3-haiku-20240307"
	config.LLM.MaxTokens = 8192
	config.LLM.Temperature = 0.1
	config.LLM.Timeout = 120 * time.Second

	config.Firecrawl.APIURL = "https://api.firecrawl.dev"
	config.Firecrawl.Timeout = 60 * time.Second

	config.Redis.URL = "redis://localhost:6379"
	config.Redis.Timeout = 5 * time.Second

	config.Export.OutputDir = "data"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	// Load from YAML file if it exists
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			yamlContent := expandEnvVars(string(data))

			if err := yaml.Unmarshal([]byte(yamlContent), config); err != nil {
				return nil, err
			}
		}
	}

	config.loadFromEnv()

	return config, nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if apiKey := os.Getenv("LLM_API_KEY"); apiKey != "" {
		c.LLM.APIKey = apiKey
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		c.LLM.Provider = provider
	}

	if model := os.Getenv("LLM_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFormat := os.Getenv("LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	if engine := os.Getenv("FETCH_ENGINE"); engine != "" {
		c.Fetch.Engine = engine
	}

	if firecrawlAPIKey := os.Getenv("FIRECRAWL_API_KEY"); firecrawlAPIKey != "" {
		c.Firecrawl.APIKey = firecrawlAPIKey
	}

	if firecrawlAPIURL := os.Getenv("FIRECRAWL_API_URL"); firecrawlAPIURL != "" {
		c.Firecrawl.APIURL = firecrawlAPIURL
	}

	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.URL = redisURL
	}

	if cacheEnabled := os.Getenv("FETCH_CACHE_ENABLED"); cacheEnabled != "" {
		c.Fetch.CacheEnabled = cacheEnabled == "true" || cacheEnabled == "1"
	}

	if outputDir := os.Getenv("EXPORT_OUTPUT_DIR"); outputDir != "" {
		c.Export.OutputDir = outputDir
	}

	if placeholders := os.Getenv("ALLOW_PLACEHOLDERS"); placeholders != "" {
		c.Sources.AllowPlaceholders = placeholders == "true" || placeholders == "1"
	}

	if threshold := os.Getenv("SKIP_RATE_THRESHOLD"); threshold != "" {
		if t, err := strconv.ParseFloat(threshold, 64); err == nil {
			c.Sources.SkipRateThreshold = t
		}
	}

	if poolSize := os.Getenv("WORKER_POOL_SIZE"); poolSize != "" {
		if n, err := strconv.Atoi(poolSize); err == nil && n > 0 {
			c.Workers.PoolSize = n
		}
	}
}

// FilmYears returns the inclusive year buckets the films source iterates
func (c *Config) FilmYears() []int {
	if c.Sources.FilmYearTo < c.Sources.FilmYearFrom {
		return nil
	}
	years := make([]int, 0, c.Sources.FilmYearTo-c.Sources.FilmYearFrom+1)
	for y := c.Sources.FilmYearFrom; y <= c.Sources.FilmYearTo; y++ {
		years = append(years, y)
	}
	return years
}
