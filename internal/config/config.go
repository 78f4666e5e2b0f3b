// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Site     SiteConfig     `mapstructure:"site"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Detector DetectorConfig `mapstructure:"detector"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Store    StoreConfig    `mapstructure:"store"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Updates  UpdatesConfig  `mapstructure:"updates"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SiteConfig describes the target site layout: base URL, the path roots
// candidate URLs are built under, and the fallback alias table location.
type SiteConfig struct {
	BaseURL         string   `mapstructure:"base_url"`
	PathRoots       []string `mapstructure:"path_roots"`
	DocumentSubpage string   `mapstructure:"document_subpage"`
	AliasFile       string   `mapstructure:"alias_file"`
}

// HTTPConfig configures plain fetch and retry behavior.
type HTTPConfig struct {
	UserAgent        string `mapstructure:"user_agent"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int    `mapstructure:"backoff_max_ms"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	MaxParallel   int     `mapstructure:"max_parallel"`
	NavTimeoutSec int     `mapstructure:"nav_timeout_seconds"`
	DomainQPS     float64 `mapstructure:"domain_qps"`
}

// DetectorConfig tunes render escalation. Empty content selectors fall back
// to the document section selectors the extractor scans for.
type DetectorConfig struct {
	MinBodyBytes     int      `mapstructure:"min_body_bytes"`
	ContentSelectors []string `mapstructure:"content_selectors"`
}

// CacheConfig controls the resolved-URL cache.
type CacheConfig struct {
	TTLHours int `mapstructure:"ttl_hours"`
}

// ScanConfig governs batch scan behavior. CompanyBudgetSec caps the total
// time spent on one company, so one unresponsive page cannot stall a batch.
type ScanConfig struct {
	Concurrency      int      `mapstructure:"concurrency"`
	Companies        []string `mapstructure:"companies"`
	CompanyBudgetSec int      `mapstructure:"company_budget_seconds"`
}

// StoreConfig selects the persistence backend for seen sets and caches.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	DataDir string `mapstructure:"data_dir"`
	DSN     string `mapstructure:"dsn"`
}

// ArchiveConfig sets blob persistence for raw page snapshots.
type ArchiveConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	GCSBucket   string `mapstructure:"gcs_bucket"`
	Prefix      string `mapstructure:"prefix"`
	ContentType string `mapstructure:"content_type"`
}

// NotifyConfig holds metadata for publish-subscribe notifications.
type NotifyConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// UpdatesConfig enables the recovery-updates feed for companies with a
// lender ID in the alias table.
type UpdatesConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIBase string `mapstructure:"api_base"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("site.base_url", "https://www.mintos.com")
	v.SetDefault("site.path_roots", []string{"/en/lending-companies/", "/en/loan-originators/"})
	v.SetDefault("site.document_subpage", "documents")
	v.SetDefault("http.user_agent", "docwatch-bot/0.1")
	v.SetDefault("http.timeout_seconds", 15)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_initial_ms", 250)
	v.SetDefault("http.backoff_max_ms", 5000)
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.max_parallel", 2)
	v.SetDefault("headless.nav_timeout_seconds", 25)
	v.SetDefault("headless.domain_qps", 1.0)
	v.SetDefault("detector.min_body_bytes", 2048)
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("scan.concurrency", 4)
	v.SetDefault("scan.company_budget_seconds", 120)
	v.SetDefault("updates.enabled", false)
	v.SetDefault("updates.api_base", "https://www.mintos.com/webapp/api/marketplace-api/v1")
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.data_dir", "data")
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.prefix", "pages")
	v.SetDefault("archive.content_type", "text/html; charset=utf-8")
	v.SetDefault("notify.enabled", false)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if len(c.Site.PathRoots) == 0 {
		return fmt.Errorf("site.path_roots must not be empty")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.Scan.Concurrency <= 0 {
		return fmt.Errorf("scan.concurrency must be > 0")
	}
	if c.Scan.CompanyBudgetSec < 0 {
		return fmt.Errorf("scan.company_budget_seconds must be >= 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	switch c.Store.Backend {
	case "memory", "file", "postgres":
	default:
		return fmt.Errorf("store.backend must be one of memory, file, postgres")
	}
	if c.Store.Backend == "file" && c.Store.DataDir == "" {
		return fmt.Errorf("store.data_dir must be set for the file backend")
	}
	if c.Store.Backend == "postgres" && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn must be set for the postgres backend")
	}
	if c.Archive.Enabled && c.Archive.GCSBucket == "" {
		return fmt.Errorf("archive.gcs_bucket must be set when archiving is enabled")
	}
	if c.Notify.Enabled && (c.Notify.ProjectID == "" || c.Notify.TopicName == "") {
		return fmt.Errorf("notify.project_id and notify.topic_name must be set when notify is enabled")
	}
	if c.Updates.Enabled && c.Updates.APIBase == "" {
		return fmt.Errorf("updates.api_base must be set when updates are enabled")
	}
	return nil
}

// FetchTimeout converts the HTTP timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// CacheTTL converts the cache TTL config into a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// CompanyBudget converts the per-company scan budget into a duration.
// Zero disables the budget.
func (c Config) CompanyBudget() time.Duration {
	return time.Duration(c.Scan.CompanyBudgetSec) * time.Second
}
