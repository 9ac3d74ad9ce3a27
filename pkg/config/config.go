// Package config defines the service configuration and its layered loading:
// defaults, an optional YAML file, then environment variables.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/hexrift/nft-catalog/pkg/utils"
	"github.com/hexrift/nft-catalog/pkg/validator"
)

// Config contains process configuration.
type Config struct {
	// Host and Port configure the HTTP listen address.
	Host string `koanf:"host" validate:"required"`
	Port string `koanf:"port" validate:"required"`

	// UpstreamBaseURL points at the marketplace data source.
	UpstreamBaseURL string `koanf:"upstream_base_url" validate:"required,url"`

	// CacheTTLSeconds bounds how long upstream responses are reused.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds" validate:"gte=1"`

	// RedisAddr enables the response cache when non-empty.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db" validate:"gte=0"`

	// SessionTTLSeconds expires idle browse sessions.
	SessionTTLSeconds int `koanf:"session_ttl_seconds" validate:"gte=1"`

	// TickSeconds is the countdown re-evaluation period.
	TickSeconds int `koanf:"tick_seconds" validate:"gte=1"`

	// CarouselSpan is how many carousel slides a window shows.
	CarouselSpan int `koanf:"carousel_span" validate:"gte=1"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              "8080",
		UpstreamBaseURL:   "https://us-central1-nft-cloud-functions.cloudfunctions.net",
		CacheTTLSeconds:   30,
		RedisAddr:         utils.GetEnv("REDIS_ADDR", ""),
		RedisPassword:     utils.GetEnv("REDIS_PASSWORD", ""),
		RedisDB:           utils.GetIntEnv("REDIS_DB", 0),
		SessionTTLSeconds: 900,
		TickSeconds:       1,
		CarouselSpan:      4,
	}
}

// Load layers defaults, an optional YAML file named by CATALOG_CONFIG, and
// CATALOG_-prefixed environment variables, then validates the result.
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := utils.GetEnv("CATALOG_CONFIG", ""); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// CATALOG_UPSTREAM_BASE_URL -> upstream_base_url, underscores preserved
	// to match the koanf tags.
	envProvider := env.Provider("CATALOG_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "catalog_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := validator.GetValidator().Struct(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Addr is the listen address in host:port form.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}
