package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "github.com/simaogato/rewardnetwork-backend/internal/adapter/grpc"
	httpadapter "github.com/simaogato/rewardnetwork-backend/internal/adapter/http"
	"github.com/simaogato/rewardnetwork-backend/internal/adapter/repository/memory"
	"github.com/simaogato/rewardnetwork-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/rewardnetwork-backend/internal/adapter/repository/sqlite"
	"github.com/simaogato/rewardnetwork-backend/internal/config"
	"github.com/simaogato/rewardnetwork-backend/internal/domain"
	"github.com/simaogato/rewardnetwork-backend/internal/platform/logging"
	"github.com/simaogato/rewardnetwork-backend/internal/platform/metrics"
	"github.com/simaogato/rewardnetwork-backend/internal/usecase/reward"
	"github.com/simaogato/rewardnetwork-backend/internal/usecase/seeder"
	"github.com/simaogato/rewardnetwork-backend/internal/usecase/summary"
)

const (
	serviceName     = "rewardnetwork"
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a TOML config file")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser := logging.Setup(logging.Options{
		Service: serviceName,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})

	err = run(cfg, logger)
	if err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
	}
	_ = logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// 2. Open the store
	store, closer, err := openStore(startupCtx, cfg, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	// 3. Seed accounts and restaurants
	fixture, err := loadFixture(cfg.SeedFile)
	if err != nil {
		return err
	}
	if err := seeder.NewSeeder(store, logger).Seed(startupCtx, fixture); err != nil {
		return fmt.Errorf("failed to seed store: %w", err)
	}

	// 4. Initialize services (use cases)
	rewardService := reward.NewRewardService(store, store, store,
		reward.WithLogger(logger),
		reward.WithMetrics(metrics.Rewards()),
	)
	summaryService := summary.NewSummaryService(store, store)

	// 5. Build gRPC and HTTP servers
	grpcServer, healthServer := grpcadapter.NewGRPCServer(
		grpcadapter.NewServer(rewardService, summaryService),
		cfg.APIToken,
		logger,
	)
	router := httpadapter.NewRouter(
		httpadapter.NewHandler(rewardService, summaryService, logger),
		httpadapter.RouterOptions{
			APIToken:     cfg.APIToken,
			CORSOrigins:  cfg.CORSOrigins,
			RateLimitRPS: cfg.RateLimitRPS,
			RateBurst:    cfg.RateBurst,
		},
	)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, "rewardnetwork-http"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// 6. Serve on every configured address
	errCh := make(chan error, 2)
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
		}
		go func() {
			logger.Info("gRPC server listening", slog.String("addr", cfg.GRPCAddr))
			if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpclib.ErrServerStopped) {
				errCh <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
	}
	if cfg.HTTPAddr != "" {
		go func() {
			logger.Info("HTTP server listening", slog.String("addr", cfg.HTTPAddr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("HTTP server: %w", err)
			}
		}()
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	var serveErr error
	select {
	case sig := <-sigChan:
		logger.Info("shutting down gracefully", slog.String("signal", sig.String()))
	case serveErr = <-errCh:
		logger.Error("server failed, shutting down", slog.String("error", serveErr.Error()))
	}

	healthServer.SetServingStatus(grpcadapter.ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", slog.String("error", err.Error()))
	}
	grpcServer.GracefulStop()
	logger.Info("servers stopped")

	return serveErr
}

// openStore builds the configured repository backend
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Store, io.Closer, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := postgres.NewDB(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("using postgres store", slog.String("host", cfg.Database.Host), slog.String("database", cfg.Database.Name))
		return postgres.NewStore(db), db, nil
	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using sqlite store", slog.String("path", cfg.SQLitePath))
		return store, store, nil
	default:
		logger.Info("using in-memory store")
		return memory.NewStore(), io.NopCloser(nil), nil
	}
}

func loadFixture(path string) (*seeder.Fixture, error) {
	if path == "" {
		return seeder.DefaultFixture()
	}
	return seeder.LoadFixtureFile(path)
}
