package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	redisV9 "github.com/redis/go-redis/v9"

	"github.com/huynhanx03/go-commons/pkg/settings"
	"github.com/huynhanx03/go-commons/pkg/utils"
)

const (
	defaultPoolSize        = 10
	defaultMinIdleConns    = 5
	defaultPoolTimeout     = 5
	defaultDialTimeout     = 5
	defaultReadTimeout     = 3
	defaultWriteTimeout    = 3
	defaultMaxRetries      = 3
	defaultMinRetryBackoff = 300 // millis
	defaultMaxRetryBackoff = 500 // millis

	pingTimeout = 5 * time.Second
)

// NewClient creates a Redis client from cfg and verifies it with a ping.
func NewClient(cfg *settings.Redis) (*redisV9.Client, error) {
	if cfg.Host == "" {
		return nil, errors.Wrap(ErrConnectionFailed, "host is required")
	}

	client := redisV9.NewClient(newOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(ErrPingFailed, "%v", err)
	}

	return client, nil
}

// newOptions fills defaults in cfg and maps it onto client options.
func newOptions(cfg *settings.Redis) *redisV9.Options {
	setDefaultConfig(cfg)

	addr := cfg.Host
	if cfg.Port > 0 {
		addr = fmt.Sprintf("%s:%d", addr, cfg.Port)
	}

	return &redisV9.Options{
		Addr:            addr,
		Password:        cfg.Password,
		DB:              cfg.Database,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxRetries:      cfg.MaxRetries,
		DialTimeout:     utils.ToDuration(cfg.DialTimeout),
		ReadTimeout:     utils.ToDuration(cfg.ReadTimeout),
		WriteTimeout:    utils.ToDuration(cfg.WriteTimeout),
		PoolTimeout:     utils.ToDuration(cfg.PoolTimeout),
		MinRetryBackoff: utils.ToDurationMs(cfg.MinRetryBackoff),
		MaxRetryBackoff: utils.ToDurationMs(cfg.MaxRetryBackoff),
	}
}

// setDefaultConfig sets default values for Redis configuration
func setDefaultConfig(cfg *settings.Redis) {
	if cfg.PoolSize == 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.MinIdleConns == 0 {
		cfg.MinIdleConns = defaultMinIdleConns
	}
	if cfg.PoolTimeout == 0 {
		cfg.PoolTimeout = defaultPoolTimeout
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.MinRetryBackoff == 0 {
		cfg.MinRetryBackoff = defaultMinRetryBackoff
	}
	if cfg.MaxRetryBackoff == 0 {
		cfg.MaxRetryBackoff = defaultMaxRetryBackoff
	}
}
