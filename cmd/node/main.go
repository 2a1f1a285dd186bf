// Command node runs one matching-engine replica: it owns a single
// orderbook.Book for one pair, relays every locally-accepted order to its
// peers over the configured transport.Port, serves the REST/SSE surface in
// internal/httpapi, and — when configured — asynchronously mirrors every
// trade to Postgres through internal/persistence.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/joripage/orderbook-dev/internal/config"
	"github.com/joripage/orderbook-dev/internal/httpapi"
	"github.com/joripage/orderbook-dev/internal/logging"
	"github.com/joripage/orderbook-dev/internal/orderbook"
	"github.com/joripage/orderbook-dev/internal/persistence"
	"github.com/joripage/orderbook-dev/internal/replica"
	"github.com/joripage/orderbook-dev/internal/transport"
	"github.com/joripage/orderbook-dev/internal/transport/redisconn"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	if b, err := json.MarshalIndent(cfg, "", "   "); err == nil {
		zap.S().Debugf("load config %s", string(b))
	}

	log := logging.New(parseLevel(cfg.LogLevel))
	defer log.Sync()

	events := httpapi.NewBroadcaster()
	hooks := orderbook.Hooks{
		OnTrade:        events.OnTrade,
		OnOrderAdded:   events.OnOrderAdded,
		OnOrderRemoved: events.OnOrderRemoved,
	}

	if cfg.Postgres != nil {
		db, err := persistence.InitPostgresWithBackoff(cfg.Postgres)
		if err != nil {
			log.Error("persistence disabled: could not connect to postgres", zap.Error(err))
		} else {
			repo := persistence.NewTradeRepo(db)
			sink := persistence.NewTradeSink(repo, persistence.SinkConfig{})
			priorTrade := hooks.OnTrade
			hooks.OnTrade = func(t *orderbook.Trade) {
				priorTrade(t)
				sink.OnTrade(t)
			}

			ctx, cancel := context.WithCancel(context.Background())
			go sink.Run(ctx)
			defer func() {
				cancel()
				sink.Wait()
			}()
		}
	}

	book := orderbook.New(orderbook.Config{
		Pair:              cfg.Pair,
		PricePrecision:    cfg.PricePrecision,
		QuantityPrecision: cfg.QuantityPrecision,
		Hooks:             hooks,
	})

	port, err := newPort(cfg)
	if err != nil {
		log.Fatal("failed to initialize transport", zap.Error(err))
	}

	adapter := replica.New(book, cfg.PeerID, port, log)

	if cfg.RedisCache != nil {
		cacheClient, err := redisconn.New(*cfg.RedisCache)
		if err != nil {
			log.Warn("snapshot cache disabled: could not connect to redis", zap.Error(err))
		} else {
			adapter.WithSnapshotCache(replica.NewSnapshotCache(cacheClient, cfg.Pair, 2*time.Second))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if port != nil {
		go func() {
			if err := adapter.Listen(ctx); err != nil && ctx.Err() == nil {
				log.Error("transport listen loop exited", zap.Error(err))
			}
		}()
	}

	handler := httpapi.NewHandler(adapter, events, log)
	server := &http.Server{Addr: cfg.HTTPAddr, Handler: handler.Router()}

	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	cancel()
	_ = server.Shutdown(context.Background())
}

func newPort(cfg *config.AppConfig) (transport.Port, error) {
	switch cfg.Transport {
	case config.TransportKafka:
		return transport.NewKafkaPort(cfg.Kafka)
	case config.TransportRedis:
		return transport.NewRedisPort(cfg.Redis)
	default:
		return nil, nil
	}
}

func parseLevel(s string) logging.Level {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return logging.INFO
	}
	return logging.Level(l)
}
