package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/geteduroam/discogen/pkg/catapi"
)

// Config holds all discogen configuration.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Cache     CacheConfig     `yaml:"cache"`
	Output    OutputConfig    `yaml:"output"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	History   HistoryConfig   `yaml:"history"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

// CatalogConfig points at the upstream catalog API.
type CatalogConfig struct {
	BaseURL string `yaml:"base_url"`
	// EdgeURL replaces BaseURL in published eap-config links.
	EdgeURL  string        `yaml:"edge_url"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CacheConfig selects the store for raw catalog answers.
type CacheConfig struct {
	Backend   string        `yaml:"backend"`
	Dir       string        `yaml:"dir"`
	DBPath    string        `yaml:"db_path"`
	RedisURL  string        `yaml:"redis_url"`
	Retention time.Duration `yaml:"retention"`
}

// OutputConfig controls where documents and the sequence counter live.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	CounterFile string `yaml:"counter_file"`
	Brotli      bool   `yaml:"brotli"`
}

// DiscoveryConfig controls document content.
type DiscoveryConfig struct {
	Versions []int `yaml:"versions"`
	// Countries limits the catalog to these federations. Empty means all.
	Countries []string `yaml:"countries"`
	// Lang is the catalog language of the version 1 document.
	Lang string `yaml:"lang"`
	// Languages are generated by version 2, one index per language.
	Languages           []string                `yaml:"languages"`
	HiddenInstitutions  []int                   `yaml:"hidden_institutions"`
	HiddenProfiles      []int                   `yaml:"hidden_profiles"`
	ExtraProviders      []ExtraProvider         `yaml:"extra_providers"`
	ProfileSeeds        map[int][]ProfileConfig `yaml:"profile_seeds"`
	ProfileReplacements map[int][]ProfileConfig `yaml:"profile_replacements"`
	Keywords            map[int][]string        `yaml:"keywords"`
}

// HistoryConfig locates the run ledger. Empty DBPath disables it.
type HistoryConfig struct {
	DBPath string `yaml:"db_path"`
	// Retention bounds how long runs are kept. Zero keeps them forever.
	Retention time.Duration `yaml:"retention"`
}

// MetricsConfig controls the Prometheus textfile export. Empty disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Error reports an invalid configuration.
type Error struct {
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invalid(key, format string, args ...any) *Error {
	return &Error{Key: key, Err: fmt.Errorf(format, args...)}
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:  "https://cat.eduroam.org/user/API.php",
			CacheTTL: 7 * 24 * time.Hour,
			Timeout:  30 * time.Second,
		},
		Cache: CacheConfig{
			Backend:   catapi.BackendFile,
			Dir:       "cache",
			DBPath:    "cache.db",
			Retention: catapi.DefaultRedisRetention,
		},
		Output: OutputConfig{
			Dir:         "discovery",
			CounterFile: "discovery/seq",
		},
		Discovery: DiscoveryConfig{
			Versions:  []int{1},
			Lang:      "en",
			Languages: []string{"en"},
		},
		History: HistoryConfig{
			DBPath: "discogen.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads a YAML config file and expands environment variables.
// A .env file next to the config is loaded first without overriding
// variables already set in the environment.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &Error{Err: fmt.Errorf("parse %s: %w", path, err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration before any network activity.
func (c *Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return invalid("catalog.base_url", "required")
	}
	if c.Catalog.CacheTTL < 0 {
		return invalid("catalog.cache_ttl", "must not be negative")
	}

	switch c.Cache.Backend {
	case catapi.BackendFile:
		if c.Cache.Dir == "" {
			return invalid("cache.dir", "required for the file backend")
		}
	case catapi.BackendSQLite:
		if c.Cache.DBPath == "" {
			return invalid("cache.db_path", "required for the sqlite backend")
		}
	case catapi.BackendRedis:
		if c.Cache.RedisURL == "" {
			return invalid("cache.redis_url", "required for the redis backend")
		}
	default:
		return invalid("cache.backend", "unknown backend %q", c.Cache.Backend)
	}

	if c.History.Retention < 0 {
		return invalid("history.retention", "must not be negative")
	}

	if c.Output.Dir == "" {
		return invalid("output.dir", "required")
	}
	if c.Output.CounterFile == "" {
		return invalid("output.counter_file", "required")
	}

	if len(c.Discovery.Versions) == 0 {
		return invalid("discovery.versions", "at least one version is required")
	}
	for _, v := range c.Discovery.Versions {
		switch v {
		case 1:
			if c.Discovery.Lang == "" {
				return invalid("discovery.lang", "required for version 1")
			}
		case 2:
			if len(c.Discovery.Languages) == 0 {
				return invalid("discovery.languages", "required for version 2")
			}
		default:
			return invalid("discovery.versions", "unsupported version %d", v)
		}
	}

	if _, err := c.Discovery.Overrides(); err != nil {
		return err
	}
	return nil
}

// StoreConfig returns the catalog cache settings.
func (c *Config) StoreConfig() catapi.StoreConfig {
	return catapi.StoreConfig{
		Backend:   c.Cache.Backend,
		Dir:       c.Cache.Dir,
		DBPath:    c.Cache.DBPath,
		RedisURL:  c.Cache.RedisURL,
		Retention: c.Cache.Retention,
	}
}
