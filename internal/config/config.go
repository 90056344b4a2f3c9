package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kjson "github.com/knadh/koanf/parsers/json"
	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	gormlogger "gorm.io/gorm/logger"

	"github.com/itsTranT1706/movie-prenium-sub001/pkg/database"
)

// envPrefix is the prefix for environment overrides, e.g.
// AGGREGATOR_DATABASE_HOST maps to database.host.
const envPrefix = "AGGREGATOR_"

// Config holds the full service configuration. Values are layered: struct
// defaults, then an optional config file, then environment variables.
type Config struct {
	Service   ServiceConfig   `koanf:"service"`
	Database  DatabaseConfig  `koanf:"database"`
	Metadata  MetadataConfig  `koanf:"metadata"`
	Providers ProvidersConfig `koanf:"providers"`
	Cache     CacheConfig     `koanf:"cache"`
}

// ServiceConfig holds generic service settings.
type ServiceConfig struct {
	Name        string `koanf:"name"`
	Environment string `koanf:"environment"`
	Port        int    `koanf:"port"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
	SSLMode  string `koanf:"ssl_mode"`
}

// MetadataConfig holds the canonical metadata source settings.
type MetadataConfig struct {
	BaseURL  string `koanf:"base_url"`
	APIKey   string `koanf:"api_key"`
	Language string `koanf:"language"`
}

// ProviderConfig holds settings for one streaming source.
type ProviderConfig struct {
	BaseURL    string `koanf:"base_url"`
	CDNBaseURL string `koanf:"cdn_base_url"`
}

// ProvidersConfig holds settings for all streaming sources. Primary names
// the adapter consulted first on every resolution.
type ProvidersConfig struct {
	Primary string         `koanf:"primary"`
	KKPhim  ProviderConfig `koanf:"kkphim"`
	NguonC  ProviderConfig `koanf:"nguonc"`
}

// CacheConfig holds cache tuning.
type CacheConfig struct {
	TitleTTL        time.Duration `koanf:"title_ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// Default returns the built-in development defaults.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "aggregator",
			Environment: "development",
			Port:        8080,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "moviepremium",
			Password: "moviepremium_dev",
			Database: "moviepremium_dev",
			SSLMode:  "disable",
		},
		Metadata: MetadataConfig{
			BaseURL:  "https://api.themoviedb.org/3",
			Language: "vi-VN",
		},
		Providers: ProvidersConfig{
			Primary: "kkphim",
			KKPhim: ProviderConfig{
				BaseURL:    "https://phimapi.com",
				CDNBaseURL: "https://phimimg.com",
			},
			NguonC: ProviderConfig{
				BaseURL: "https://phim.nguonc.com/api",
			},
		},
		Cache: CacheConfig{
			TitleTTL:        6 * time.Hour,
			CleanupInterval: 30 * time.Minute,
		},
	}
}

// Load reads configuration from defaults, optional config files and the
// environment, in that order of precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	cfg := Default()
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	for _, path := range configPaths() {
		if err := loadFile(k, path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	// The underscore-to-dot env mapping cannot express api_key, so the
	// conventional variable takes precedence.
	if apiKey := os.Getenv("TMDB_API_KEY"); apiKey != "" {
		cfg.Metadata.APIKey = apiKey
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = kyaml.Parser()
	case ".json":
		parser = kjson.Parser()
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}
	return k.Load(file.Provider(path), parser)
}

func configPaths() []string {
	paths := []string{
		"config.yaml",
		"config.json",
		"configs/aggregator.yaml",
		"configs/aggregator.json",
	}
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		paths = append([]string{configPath}, paths...)
	}
	return paths
}

// Validate checks the configuration for values no component can run with.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid service port: %d", c.Service.Port)
	}
	if c.Database.Host == "" {
		return errors.New("database host is required")
	}
	if c.Metadata.BaseURL == "" {
		return errors.New("metadata base URL is required")
	}
	if c.Providers.Primary == "" {
		return errors.New("primary provider is required")
	}
	if c.Cache.TitleTTL <= 0 {
		return errors.New("title cache TTL must be positive")
	}
	return nil
}

// ToDatabaseConfig converts config to database package config.
func (c DatabaseConfig) ToDatabaseConfig() *database.PostgresConfig {
	cfg := database.DefaultPostgresConfig()
	cfg.Host = c.Host
	cfg.Port = c.Port
	cfg.User = c.User
	cfg.Password = c.Password
	cfg.Database = c.Database
	if c.SSLMode != "" {
		cfg.SSLMode = c.SSLMode
	}
	cfg.LogLevel = gormlogger.Warn
	return cfg
}

// ListenAddress returns the formatted listen address for the HTTP server.
func (c ServiceConfig) ListenAddress() string {
	return fmt.Sprintf(":%d", c.Port)
}
