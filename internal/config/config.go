// Package config loads server settings from the environment.
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/lobbyd/internal/heartbeat"
)

// Config holds environment variable configuration for the server.
type Config struct {
	// Game protocol listener
	Host string `env:"LOBBYD_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"LOBBYD_PORT" envDefault:"8788"`

	// HTTP health check, lobby listing and WebSocket gateway. Empty disables.
	HTTPAddr  string   `env:"LOBBYD_HTTP_ADDR" envDefault:":8789"`
	WSOrigins []string `env:"WS_ORIGINS" envDefault:"*" envSeparator:","`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Liveness
	KeepAliveInitial time.Duration `env:"KEEPALIVE_INITIAL" envDefault:"5s"`
	KeepAliveRetry   time.Duration `env:"KEEPALIVE_RETRY" envDefault:"2500ms"`
	KeepAliveRetries int           `env:"KEEPALIVE_RETRIES" envDefault:"3"`

	// Per connection limits
	OutboxSize    int `env:"SESSION_OUTBOX_SIZE" envDefault:"256"`
	MaxFrameBytes int `env:"MAX_FRAME_BYTES" envDefault:"1048576"`

	// Match feed. Empty RedisAddr disables it.
	RedisAddr  string `env:"REDIS_ADDR"`
	RedisDB    int    `env:"REDIS_DB" envDefault:"0"`
	MatchQueue string `env:"MATCH_FEED_QUEUE" envDefault:"lobbyd_matches"`
}

// Load parses and validates the environment.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to parse environment variables")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return eris.Errorf("LOBBYD_PORT out of range: %d", c.Port)
	case c.KeepAliveInitial <= 0 || c.KeepAliveRetry <= 0:
		return eris.New("keepalive intervals must be positive")
	case c.KeepAliveRetries <= 0:
		return eris.Errorf("KEEPALIVE_RETRIES must be positive, got %d", c.KeepAliveRetries)
	case c.OutboxSize <= 0:
		return eris.Errorf("SESSION_OUTBOX_SIZE must be positive, got %d", c.OutboxSize)
	case c.MaxFrameBytes <= 0:
		return eris.Errorf("MAX_FRAME_BYTES must be positive, got %d", c.MaxFrameBytes)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return eris.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return eris.Wrap(err, "invalid LOG_LEVEL")
	}
	return nil
}

// Addr is the game protocol listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Heartbeat is the liveness configuration for new sessions.
func (c Config) Heartbeat() heartbeat.Config {
	return heartbeat.Config{
		Initial:    c.KeepAliveInitial,
		Retry:      c.KeepAliveRetry,
		MaxRetries: c.KeepAliveRetries,
	}
}

// NewLogger builds the process logger from the logging settings.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if c.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
