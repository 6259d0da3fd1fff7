package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/sylcheck/internal/catalog"
	"github.com/dgallion1/sylcheck/internal/parser"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth; empty disables bearer auth on /api.
	APIKey string `yaml:"-"`

	// Worker pool
	WorkerCount    int `yaml:"worker_count"`
	MaxQueueSize   int `yaml:"max_queue_size"`
	MaxBatchFiles  int `yaml:"max_batch_files"`
	MaxConcurrency int `yaml:"max_concurrency"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`

	Catalog CatalogConfig `yaml:"catalog"`
}

// CatalogConfig controls lookups against the course catalog.
type CatalogConfig struct {
	Enabled           bool          `yaml:"enabled"`
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	PostFetchDelay    time.Duration `yaml:"post_fetch_delay"`
	RespectRobots     bool          `yaml:"respect_robots"`
	UserAgent         string        `yaml:"user_agent"`
}

const (
	defaultWorkerCount    = 4
	defaultMaxQueueSize   = 100
	defaultMaxBatchFiles  = 50
	defaultMaxConcurrency = 4
	defaultMaxUploadBytes = 16 << 20 // 16MB
	defaultJobTTL         = time.Hour
	defaultRPS            = 2.0
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:                 "8090",
		WorkerCount:          defaultWorkerCount,
		MaxQueueSize:         defaultMaxQueueSize,
		MaxBatchFiles:        defaultMaxBatchFiles,
		MaxConcurrency:       defaultMaxConcurrency,
		MaxUploadBytes:       defaultMaxUploadBytes,
		JobTTL:               defaultJobTTL,
		PDFFallbackPdftotext: true,
		Catalog: CatalogConfig{
			Enabled:           true,
			BaseURL:           catalog.DefaultBaseURL,
			Timeout:           catalog.DefaultTimeout,
			CacheTTL:          catalog.DefaultTTL,
			RequestsPerSecond: defaultRPS,
			PostFetchDelay:    catalog.DefaultPostFetchDelay,
			RespectRobots:     true,
			UserAgent:         catalog.DefaultUserAgent,
		},
	}
}

// Load reads the configuration from the environment.
func Load() Config {
	d := Default()
	cfg := Config{
		Port: envOr("PORT", d.Port),

		APIKey: os.Getenv("SYLCHECK_API_KEY"),

		WorkerCount:    envInt("WORKER_COUNT", d.WorkerCount),
		MaxQueueSize:   envInt("MAX_QUEUE_SIZE", d.MaxQueueSize),
		MaxBatchFiles:  envInt("MAX_BATCH_FILES", d.MaxBatchFiles),
		MaxConcurrency: envInt("MAX_CONCURRENCY", d.MaxConcurrency),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", d.MaxUploadBytes),

		JobTTL: envDuration("JOB_TTL", d.JobTTL),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", d.PDFFallbackPdftotext),

		Catalog: CatalogConfig{
			Enabled:           envBool("CATALOG_ENABLED", d.Catalog.Enabled),
			BaseURL:           envOr("CATALOG_BASE_URL", d.Catalog.BaseURL),
			Timeout:           envDuration("CATALOG_TIMEOUT", d.Catalog.Timeout),
			CacheTTL:          envDuration("CATALOG_CACHE_TTL", d.Catalog.CacheTTL),
			RequestsPerSecond: envFloat("CATALOG_RPS", d.Catalog.RequestsPerSecond),
			PostFetchDelay:    envDuration("CATALOG_POST_FETCH_DELAY", d.Catalog.PostFetchDelay),
			RespectRobots:     envBool("CATALOG_RESPECT_ROBOTS", d.Catalog.RespectRobots),
			UserAgent:         envOr("CATALOG_USER_AGENT", d.Catalog.UserAgent),
		},
	}
	cfg.Clamp()
	return cfg
}

// Clamp replaces out-of-range values with their defaults.
func (c *Config) Clamp() {
	d := Default()
	if c.WorkerCount <= 0 {
		c.WorkerCount = d.WorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = d.MaxQueueSize
	}
	if c.MaxBatchFiles <= 0 {
		c.MaxBatchFiles = d.MaxBatchFiles
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = d.MaxConcurrency
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = d.JobTTL
	}
	if c.Catalog.Timeout <= 0 {
		c.Catalog.Timeout = d.Catalog.Timeout
	}
	if c.Catalog.CacheTTL <= 0 {
		c.Catalog.CacheTTL = d.Catalog.CacheTTL
	}
	if c.Catalog.RequestsPerSecond <= 0 {
		c.Catalog.RequestsPerSecond = d.Catalog.RequestsPerSecond
	}
	if c.Catalog.PostFetchDelay < 0 {
		c.Catalog.PostFetchDelay = 0
	}
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT %q is not a number", c.Port)
	}
	if c.Catalog.Enabled {
		u, err := url.Parse(c.Catalog.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("CATALOG_BASE_URL %q must be an absolute http(s) URL", c.Catalog.BaseURL)
		}
	}
	return nil
}

// ParserOptions returns the text extraction options.
func (c Config) ParserOptions() parser.Options {
	return parser.Options{PDFFallback: c.PDFFallbackPdftotext}
}

// CatalogOptions returns the catalog client options.
func (c Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		BaseURL:           c.Catalog.BaseURL,
		Timeout:           c.Catalog.Timeout,
		UserAgent:         c.Catalog.UserAgent,
		RequestsPerSecond: c.Catalog.RequestsPerSecond,
		Burst:             1,
		PostFetchDelay:    c.Catalog.PostFetchDelay,
		RespectRobots:     c.Catalog.RespectRobots,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
