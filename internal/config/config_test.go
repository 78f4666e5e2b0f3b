package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
site:
  base_url: https://staging.mintos.com
  path_roots:
    - /en/lending-companies/
  document_subpage: documents
  alias_file: testdata/aliases.json
http:
  user_agent: docwatch-test
  timeout_seconds: 45
  max_retries: 4
  backoff_initial_ms: 100
  backoff_max_ms: 500
headless:
  enabled: true
  max_parallel: 2
  nav_timeout_seconds: 30
  domain_qps: 0.5
cache:
  ttl_hours: 12
detector:
  min_body_bytes: 4096
  content_selectors: [".documents", ".files"]
scan:
  concurrency: 6
  companies: ["wowwo", "iuvo"]
  company_budget_seconds: 90
updates:
  enabled: true
  api_base: https://staging.mintos.com/webapp/api/marketplace-api/v1
store:
  backend: file
  data_dir: /tmp/docwatch
archive:
  enabled: true
  gcs_bucket: bucket
  prefix: snapshots
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Site.BaseURL != "https://staging.mintos.com" {
		t.Fatalf("expected site base URL override, got %q", cfg.Site.BaseURL)
	}
	if len(cfg.Site.PathRoots) != 1 || cfg.Site.PathRoots[0] != "/en/lending-companies/" {
		t.Fatalf("expected path roots override, got %v", cfg.Site.PathRoots)
	}
	if cfg.Scan.Concurrency != 6 || len(cfg.Scan.Companies) != 2 {
		t.Fatalf("expected scan overrides to apply: %+v", cfg.Scan)
	}
	if cfg.Store.Backend != "file" || cfg.Store.DataDir != "/tmp/docwatch" {
		t.Fatalf("expected file store config: %+v", cfg.Store)
	}
	if !cfg.Archive.Enabled || cfg.Archive.GCSBucket != "bucket" {
		t.Fatalf("expected archive config: %+v", cfg.Archive)
	}
	if got := cfg.FetchTimeout(); got != 45*time.Second {
		t.Fatalf("expected fetch timeout 45s, got %v", got)
	}
	if got := cfg.CacheTTL(); got != 12*time.Hour {
		t.Fatalf("expected cache TTL 12h, got %v", got)
	}
	if got := cfg.CompanyBudget(); got != 90*time.Second {
		t.Fatalf("expected company budget 90s, got %v", got)
	}
	if cfg.Detector.MinBodyBytes != 4096 || len(cfg.Detector.ContentSelectors) != 2 {
		t.Fatalf("expected detector overrides to apply: %+v", cfg.Detector)
	}
	if !cfg.Updates.Enabled || !strings.Contains(cfg.Updates.APIBase, "staging") {
		t.Fatalf("expected updates overrides to apply: %+v", cfg.Updates)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if len(cfg.Site.PathRoots) != 2 {
		t.Fatalf("expected two default path roots, got %v", cfg.Site.PathRoots)
	}
	if cfg.Store.Backend != "memory" {
		t.Fatalf("expected default memory backend, got %q", cfg.Store.Backend)
	}
	if !cfg.Headless.Enabled {
		t.Fatalf("expected headless enabled by default")
	}
	if cfg.Scan.CompanyBudgetSec != 120 {
		t.Fatalf("expected default company budget 120s, got %d", cfg.Scan.CompanyBudgetSec)
	}
	if cfg.Detector.MinBodyBytes != 2048 {
		t.Fatalf("expected default detector min body bytes 2048, got %d", cfg.Detector.MinBodyBytes)
	}
	if cfg.Updates.Enabled {
		t.Fatalf("expected updates disabled by default")
	}
	if cfg.Updates.APIBase == "" {
		t.Fatalf("expected a default updates API base")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server: ServerConfig{Port: 8080},
		Site: SiteConfig{
			BaseURL:   "https://www.mintos.com",
			PathRoots: []string{"/en/lending-companies/"},
		},
		HTTP:  HTTPConfig{TimeoutSeconds: 10},
		Scan:  ScanConfig{Concurrency: 2},
		Store: StoreConfig{Backend: "memory"},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "missing base url",
			cfg: func() Config {
				c := base
				c.Site.BaseURL = ""
				return c
			}(),
			want: "site.base_url",
		},
		{
			name: "empty path roots",
			cfg: func() Config {
				c := base
				c.Site.PathRoots = nil
				return c
			}(),
			want: "site.path_roots",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.HTTP.TimeoutSeconds = 0
				return c
			}(),
			want: "http.timeout_seconds",
		},
		{
			name: "invalid scan concurrency",
			cfg: func() Config {
				c := base
				c.Scan.Concurrency = 0
				return c
			}(),
			want: "scan.concurrency",
		},
		{
			name: "headless missing max parallel",
			cfg: func() Config {
				c := base
				c.Headless.Enabled = true
				c.Headless.MaxParallel = 0
				return c
			}(),
			want: "headless.max_parallel",
		},
		{
			name: "unknown store backend",
			cfg: func() Config {
				c := base
				c.Store.Backend = "redis"
				return c
			}(),
			want: "store.backend",
		},
		{
			name: "postgres missing dsn",
			cfg: func() Config {
				c := base
				c.Store.Backend = "postgres"
				return c
			}(),
			want: "store.dsn",
		},
		{
			name: "archive missing bucket",
			cfg: func() Config {
				c := base
				c.Archive.Enabled = true
				return c
			}(),
			want: "archive.gcs_bucket",
		},
		{
			name: "negative company budget",
			cfg: func() Config {
				c := base
				c.Scan.CompanyBudgetSec = -1
				return c
			}(),
			want: "scan.company_budget_seconds",
		},
		{
			name: "updates missing api base",
			cfg: func() Config {
				c := base
				c.Updates.Enabled = true
				return c
			}(),
			want: "updates.api_base",
		},
		{
			name: "notify missing topic",
			cfg: func() Config {
				c := base
				c.Notify.Enabled = true
				c.Notify.ProjectID = "proj"
				return c
			}(),
			want: "notify.project_id and notify.topic_name",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
