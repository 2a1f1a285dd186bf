// Package redisconn centralizes Redis client construction so every
// collaborator that needs a *redis.Client (the Pub/Sub transport binding,
// an optional snapshot cache) shares the same pool/timeout configuration
// surface.
package redisconn

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Config is the connection-pool surface recognized for any Redis-backed
// collaborator in this module.
type Config struct {
	ConnectionURL string        `yaml:"connection_url"`
	PoolSize      int           `yaml:"pool_size"`
	DialTimeout   time.Duration `yaml:"dial_timeout"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	ConnMaxIdle   time.Duration `yaml:"conn_max_idle"`
}

// New dials Redis per cfg and verifies the connection with a Ping.
func New(cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		zap.S().Debugf("parse redis url fail: %+v", err)
		return nil, err
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.ConnMaxIdle > 0 {
		opts.ConnMaxIdleTime = cfg.ConnMaxIdle
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	zap.S().Debug("connect to redis successful")
	return client, nil
}
