// Package config loads the node's AppConfig from a YAML file with
// environment-variable expansion, the same loading convention the
// teacher's config package uses.
package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/joripage/orderbook-dev/internal/persistence"
	"github.com/joripage/orderbook-dev/internal/transport"
	"github.com/joripage/orderbook-dev/internal/transport/redisconn"
)

// TransportKind selects which Port binding a node runs.
type TransportKind string

const (
	TransportKafka TransportKind = "kafka"
	TransportRedis TransportKind = "redis"
	TransportNone  TransportKind = "none"
)

// AppConfig is the complete configuration surface for cmd/node.
type AppConfig struct {
	ServiceName       string          `yaml:"service_name"`
	Pair              string          `yaml:"pair"`
	PeerID            string          `yaml:"peer_id"`
	PricePrecision    int32           `yaml:"price_precision"`
	QuantityPrecision int32           `yaml:"quantity_precision"`
	HTTPAddr          string          `yaml:"http_addr"`
	LogLevel          string          `yaml:"log_level"`
	Transport         TransportKind   `yaml:"transport"`
	Kafka             transport.KafkaConfig `yaml:"kafka"`
	Redis             transport.RedisConfig `yaml:"redis"`
	Postgres          *persistence.PostgresConfig `yaml:"postgres"`
	RedisCache        *redisconn.Config `yaml:"redis_cache"`
}

// Load reads filePath (or $CONFIG_FILE when empty), expands environment
// variables, and unmarshals into an AppConfig.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}

	sugar := zap.S().With("func", "config.Load", "file_path", filePath)
	sugar.Debug("loading config...")

	raw, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Errorf("failed to read config file: %v", err)
		return nil, fmt.Errorf("config: read %s: %w", filePath, err)
	}
	raw = []byte(os.ExpandEnv(string(raw)))

	cfg := &AppConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		sugar.Errorf("failed to parse config file: %v", err)
		return nil, fmt.Errorf("config: parse %s: %w", filePath, err)
	}

	if cfg.PeerID == "" {
		hostname, _ := os.Hostname()
		cfg.PeerID = hostname
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	sugar.Debugf("config loaded: %+v", cfg)
	return cfg, nil
}
