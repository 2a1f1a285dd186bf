package main

import (
	"encoding/json"
	"flag"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/joripage/orderbook-dev/internal/config"
	"github.com/joripage/orderbook-dev/internal/persistence"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	configBytes, err := json.MarshalIndent(cfg, "", "   ")
	if err != nil {
		zap.S().Warnf("could not convert config to JSON: %v", err)
	} else {
		zap.S().Debugf("load config %s", string(configBytes))
	}

	if cfg.Postgres == nil {
		zap.S().Fatal("migrate: no postgres configuration present")
	}

	mgTool := persistence.GetMigrateTool()
	if err := mgTool.Migrate("file://migration/sql", cfg.Postgres.MigrationConnURL); err != nil {
		zap.S().Fatalf("migrate: %v", err)
	}
}
