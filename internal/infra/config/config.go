// Package config loads the toolforge.yaml runtime configuration through
// viper, with TOOLFORGE_ environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"toolforge/internal/domain"
)

// Backends accepted for cache.backend.
const (
	BackendMemory = "memory"
	BackendLRU    = "lru"
	BackendBolt   = "bolt"
)

const defaultLRUSize = 512

type Config struct {
	GitHub      GitHubConfig    `mapstructure:"github"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	Extractors  ExtractorConfig `mapstructure:"extractors"`
	SearchDepth int             `mapstructure:"searchDepth"`
	Concurrency int             `mapstructure:"concurrency"`
}

type GitHubConfig struct {
	Token string `mapstructure:"token"`
}

type CacheConfig struct {
	Backend            string `mapstructure:"backend"`
	Path               string `mapstructure:"path"`
	LRUSize            int    `mapstructure:"lruSize"`
	MetadataTTLSeconds int    `mapstructure:"metadataTTLSeconds"`
	ReadmeTTLSeconds   int    `mapstructure:"readmeTTLSeconds"`
	FileTTLSeconds     int    `mapstructure:"fileTTLSeconds"`
}

// MetricsConfig controls the prometheus exposition endpoint. An empty
// listen address keeps it off.
type MetricsConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
}

type ExtractorConfig struct {
	OpenAPI    bool `mapstructure:"openapi"`
	GraphQL    bool `mapstructure:"graphql"`
	Introspect bool `mapstructure:"introspect"`
	Code       bool `mapstructure:"code"`
	Readme     bool `mapstructure:"readme"`
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	v.SetEnvPrefix("TOOLFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.token", "")
	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.path", ".toolforge/cache.db")
	v.SetDefault("cache.lruSize", defaultLRUSize)
	v.SetDefault("cache.metadataTTLSeconds", domain.DefaultMetadataTTLSeconds)
	v.SetDefault("cache.readmeTTLSeconds", domain.DefaultReadmeTTLSeconds)
	v.SetDefault("cache.fileTTLSeconds", domain.DefaultFileTTLSeconds)
	v.SetDefault("metrics.listenAddress", "")
	v.SetDefault("extractors.openapi", true)
	v.SetDefault("extractors.graphql", true)
	v.SetDefault("extractors.introspect", true)
	v.SetDefault("extractors.code", true)
	v.SetDefault("extractors.readme", true)
	v.SetDefault("searchDepth", domain.DefaultSearchDepth)
	v.SetDefault("concurrency", domain.DefaultBatchConcurrency)
}

// Load reads configuration from the given path, or from ./toolforge.yaml
// when path is empty. A missing default file is not an error; an explicit
// path must exist.
func Load(path string) (Config, error) {
	v := newConfigViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("toolforge")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if errs := validate(cfg); len(errs) > 0 {
		return Config{}, errors.New(strings.Join(errs, "; "))
	}
	return cfg, nil
}

func validate(cfg Config) []string {
	var errs []string

	switch cfg.Cache.Backend {
	case BackendMemory, BackendLRU, BackendBolt:
	default:
		errs = append(errs, "cache.backend must be memory, lru, or bolt")
	}
	if cfg.Cache.Backend == BackendBolt && strings.TrimSpace(cfg.Cache.Path) == "" {
		errs = append(errs, "cache.path is required for the bolt backend")
	}
	if cfg.Cache.Backend == BackendLRU && cfg.Cache.LRUSize <= 0 {
		errs = append(errs, "cache.lruSize must be > 0")
	}
	if cfg.Cache.MetadataTTLSeconds <= 0 {
		errs = append(errs, "cache.metadataTTLSeconds must be > 0")
	}
	if cfg.Cache.ReadmeTTLSeconds <= 0 {
		errs = append(errs, "cache.readmeTTLSeconds must be > 0")
	}
	if cfg.Cache.FileTTLSeconds <= 0 {
		errs = append(errs, "cache.fileTTLSeconds must be > 0")
	}
	if cfg.SearchDepth <= 0 {
		errs = append(errs, "searchDepth must be > 0")
	}
	if cfg.Concurrency <= 0 {
		errs = append(errs, "concurrency must be > 0")
	}
	return errs
}
