// SPDX-License-Identifier: MIT

// Package config loads the occam runtime configuration from environment
// variables. There is no config file: the deployment surface is a dozen
// variables with safe defaults, validated once at startup.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// ProviderKind selects the upstream availability provider.
type ProviderKind string

const (
	// ProviderDirectIMDB talks to the RapidAPI streaming-availability API,
	// which addresses titles by IMDB ID.
	ProviderDirectIMDB ProviderKind = "direct_imdb"
	// ProviderProxiedID talks to the Watchmode API, which addresses titles
	// by its own numeric IDs and needs an IMDB-to-native mapping step.
	ProviderProxiedID ProviderKind = "proxied_id"
)

const (
	defaultDirectIMDBBaseURL = "https://streaming-availability.p.rapidapi.com"
	defaultProxiedIDBaseURL  = "https://api.watchmode.com"
)

// Config is the full runtime configuration.
type Config struct {
	DatabaseURL     string
	RedisURL        string
	StreamingAPIKey string
	StreamingAPIURL string
	Provider        ProviderKind

	Host string
	Port int

	LogLevel        string
	MetricsListen   string
	SearchCacheTTL  time.Duration
	LocalCacheTTL   time.Duration
	CacheQueueSize  int
	RateLimitRPS    int
	ShutdownTimeout time.Duration

	TraceExporter string
	TraceEndpoint string
	TraceSample   float64
}

// FromEnv builds the configuration from the process environment. Missing
// required variables or out-of-range values return an error; the daemon
// treats that as fatal.
func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL:     ParseString("DATABASE_URL", ""),
		RedisURL:        ParseString("REDIS_URL", ""),
		StreamingAPIKey: ParseString("STREAMING_API_KEY", ""),
		Provider:        ProviderKind(ParseString("STREAMING_PROVIDER", string(ProviderDirectIMDB))),
		Host:            ParseString("HOST", "127.0.0.1"),
		Port:            ParseInt("PORT", 3000),
		LogLevel:        ParseString("OCCAM_LOG_LEVEL", "info"),
		MetricsListen:   ParseString("OCCAM_METRICS_LISTEN", ""),
		SearchCacheTTL:  ParseDuration("OCCAM_SEARCH_CACHE_TTL", time.Hour),
		LocalCacheTTL:   ParseDuration("OCCAM_LOCAL_CACHE_TTL", time.Minute),
		CacheQueueSize:  ParseInt("OCCAM_CACHE_QUEUE_SIZE", 1024),
		RateLimitRPS:    ParseInt("OCCAM_RATE_LIMIT_RPS", 0),
		ShutdownTimeout: ParseDuration("OCCAM_SHUTDOWN_TIMEOUT", 10*time.Second),
		TraceExporter:   ParseString("OCCAM_TRACE_EXPORTER", "noop"),
		TraceEndpoint:   ParseString("OCCAM_TRACE_ENDPOINT", ""),
		TraceSample:     ParseFloat("OCCAM_TRACE_SAMPLE", 1.0),
	}

	switch cfg.Provider {
	case ProviderDirectIMDB:
		cfg.StreamingAPIURL = ParseString("STREAMING_API_URL", defaultDirectIMDBBaseURL)
	case ProviderProxiedID:
		cfg.StreamingAPIURL = ParseString("STREAMING_API_URL", defaultProxiedIDBaseURL)
	default:
		return Config{}, fmt.Errorf("config: STREAMING_PROVIDER must be %q or %q, got %q",
			ProviderDirectIMDB, ProviderProxiedID, cfg.Provider)
	}

	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.RedisURL == "" {
		missing = append(missing, "REDIS_URL")
	}
	if cfg.StreamingAPIKey == "" {
		missing = append(missing, "STREAMING_API_KEY")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("config: required environment variables not set: %v", missing)
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: PORT out of range: %d", cfg.Port)
	}
	if cfg.SearchCacheTTL <= 0 {
		return Config{}, fmt.Errorf("config: OCCAM_SEARCH_CACHE_TTL must be positive")
	}
	if cfg.LocalCacheTTL < 0 {
		return Config{}, fmt.Errorf("config: OCCAM_LOCAL_CACHE_TTL must not be negative")
	}
	if cfg.CacheQueueSize < 1 {
		return Config{}, fmt.Errorf("config: OCCAM_CACHE_QUEUE_SIZE must be at least 1")
	}
	if cfg.TraceSample < 0 || cfg.TraceSample > 1 {
		return Config{}, fmt.Errorf("config: OCCAM_TRACE_SAMPLE must be in [0,1]")
	}

	return cfg, nil
}

// ListenAddr returns the host:port the API server binds.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
