package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// CoinHint maps a ticker symbol to the regular expression that detects it in
// article text. Patterns are matched case-insensitively with word boundaries.
type CoinHint struct {
	Symbol  string `yaml:"symbol"`
	Pattern string `yaml:"pattern"`
}

// Config holds all configuration for the server and the ingestion worker
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// Paths
	DataDir   string `json:"data_dir"`
	ClientDir string `json:"client_dir"`

	// News provider
	NewsAPIKey   string   `json:"-"`
	NewsPageSize int      `json:"news_page_size"`
	NewsQuery    []string `json:"news_query"`
	CoinHints    []CoinHint

	// Worker
	Watch          bool          `json:"watch"`
	WorkerInterval time.Duration `json:"worker_interval"`

	// Price cache
	PriceTTL     time.Duration `json:"price_ttl"`
	PriceTimeout time.Duration `json:"price_timeout"`
	PriceAssets  []string      `json:"price_assets"`

	// Image proxy
	ImageFreshTTL       time.Duration `json:"image_fresh_ttl"`
	ImageStaleTTL       time.Duration `json:"image_stale_ttl"`
	ImageFetchTimeout   time.Duration `json:"image_fetch_timeout"`
	ImageMinBytes       int           `json:"image_min_bytes"`
	ImageAllowedDomains []string      `json:"image_allowed_domains"`

	// Logging
	LogLevel string `json:"log_level"`
}

// fileConfig is the optional YAML overlay. Any field left empty in the file
// keeps its built-in default. Values may reference env vars via ${VAR}.
type fileConfig struct {
	NewsQuery           []string   `yaml:"news_query"`
	CoinHints           []CoinHint `yaml:"coin_hints"`
	PriceAssets         []string   `yaml:"price_assets"`
	ImageAllowedDomains []string   `yaml:"image_allowed_domains"`
}

// NewsPath returns the snapshot file location under the data directory.
func (c *Config) NewsPath() string {
	return filepath.Join(c.DataDir, "news.json")
}

// Load loads configuration from environment variables, applies the optional
// YAML overlay, and validates the result
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "5050"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// Paths
		DataDir:   getEnv("DATA_DIR", "./data"),
		ClientDir: getEnv("CLIENT_DIR", "./dist"),

		// News provider
		NewsAPIKey:   getEnv("NEWSAPI_KEY", ""),
		NewsPageSize: getEnvAsInt("NEWS_PAGE_SIZE", 30),
		NewsQuery:    defaultNewsQuery(),
		CoinHints:    defaultCoinHints(),

		// Worker
		Watch:          getEnvAsBool("WATCH", false),
		WorkerInterval: time.Duration(getEnvAsInt("WORKER_INTERVAL_MIN", 10)) * time.Minute,

		// Price cache
		PriceTTL:     getEnvAsDuration("PRICE_TTL", time.Minute),
		PriceTimeout: getEnvAsDuration("PRICE_TIMEOUT", 10*time.Second),
		PriceAssets:  defaultPriceAssets(),

		// Image proxy
		ImageFreshTTL:       getEnvAsDuration("IMG_FRESH_TTL", 6*time.Hour),
		ImageStaleTTL:       getEnvAsDuration("IMG_STALE_TTL", 24*time.Hour),
		ImageFetchTimeout:   getEnvAsDuration("IMG_FETCH_TIMEOUT", 8*time.Second),
		ImageMinBytes:       getEnvAsInt("IMG_MIN_BYTES", 128),
		ImageAllowedDomains: defaultAllowedDomains(),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			log.Fatalf("Invalid config file %s: %v", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// applyFile overlays the YAML config file onto the defaults
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var fc fileConfig
	if err := yaml.Unmarshal([]byte(expanded), &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if len(fc.NewsQuery) > 0 {
		c.NewsQuery = fc.NewsQuery
	}
	if len(fc.CoinHints) > 0 {
		c.CoinHints = fc.CoinHints
	}
	if len(fc.PriceAssets) > 0 {
		c.PriceAssets = fc.PriceAssets
	}
	if len(fc.ImageAllowedDomains) > 0 {
		c.ImageAllowedDomains = fc.ImageAllowedDomains
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.NewsPageSize <= 0 {
		return fmt.Errorf("news page size must be positive, got %d", c.NewsPageSize)
	}
	if c.ImageStaleTTL < c.ImageFreshTTL {
		return fmt.Errorf("image stale TTL (%v) must not be shorter than fresh TTL (%v)",
			c.ImageStaleTTL, c.ImageFreshTTL)
	}
	if len(c.PriceAssets) == 0 {
		return fmt.Errorf("at least one price asset is required")
	}
	return nil
}

func defaultNewsQuery() []string {
	return []string{
		"crypto", "cryptocurrency", "bitcoin", "ethereum", "solana",
		"blockchain", "defi", "nft",
	}
}

func defaultCoinHints() []CoinHint {
	return []CoinHint{
		{Symbol: "BTC", Pattern: `\b(btc|bitcoin)\b`},
		{Symbol: "ETH", Pattern: `\b(eth|ethereum)\b`},
		{Symbol: "SOL", Pattern: `\b(sol|solana)\b`},
		{Symbol: "ADA", Pattern: `\b(ada|cardano)\b`},
		{Symbol: "XRP", Pattern: `\b(xrp|ripple)\b`},
		{Symbol: "DOGE", Pattern: `\b(doge|dogecoin)\b`},
	}
}

func defaultPriceAssets() []string {
	return []string{"bitcoin", "ethereum", "solana", "cardano", "ripple", "dogecoin"}
}

func defaultAllowedDomains() []string {
	return []string{
		"cointelegraph.com",
		"coindesk.com",
		"ambcrypto.com",
		"newsbtc.com",
		"biztoc.com",
		"wp.com",      // covers i0.wp.com, i1.wp.com, i2.wp.com
		"youtube.com", // covers img.youtube.com
	}
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	// Accept "1"/"true"/"false" style values
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
