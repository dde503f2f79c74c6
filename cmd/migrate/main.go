package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/simaogato/rewardnetwork-backend/internal/adapter/repository/migrations"
	"github.com/simaogato/rewardnetwork-backend/internal/config"
	"github.com/simaogato/rewardnetwork-backend/internal/platform/logging"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a TOML config file")
	dialectName := flag.String("dialect", "", "postgres or sqlite (defaults to the configured store)")
	dsn := flag.String("dsn", "", "connection string or sqlite path (defaults to the configured database)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, logging.Options{Service: "rewardnetwork-migrate", Env: cfg.Env, Level: cfg.LogLevel})
	slog.SetDefault(logger)

	if *dialectName == "" {
		*dialectName = string(cfg.Store)
		if cfg.Store == config.StoreMemory {
			*dialectName = string(migrations.DialectPostgres)
		}
	}
	dialect, err := migrations.ParseDialect(*dialectName)
	if err != nil {
		logger.Error("invalid dialect", "error", err)
		os.Exit(1)
	}

	driver, conn := "pgx", cfg.PostgresDSN()
	if dialect == migrations.DialectSQLite {
		driver, conn = "sqlite", "file:"+cfg.SQLitePath
	}
	if *dsn != "" {
		conn = *dsn
	}

	db, err := sql.Open(driver, conn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	logger.Info("applying migrations", "dialect", dialect)
	if err := migrations.Up(ctx, db, dialect); err != nil {
		logger.Error("migrations failed", "error", err)
		db.Close()
		os.Exit(1)
	}

	version, err := migrations.Version(ctx, db, dialect)
	if err != nil {
		logger.Error("failed to read schema version", "error", err)
		db.Close()
		os.Exit(1)
	}
	logger.Info("migrations applied", "version", version)
}
