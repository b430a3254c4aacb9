package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/config"
	"github.com/boddenberg/bank-dashboard-go/internal/handler"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/memstore"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bank-dashboard-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger, err := observability.NewLogger(cfg.LogLevel, "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "devbank: init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.DevbankPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("jwt_ttl", cfg.JWTTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "devbank")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Store + services ---
	store := memstore.New()
	ledger := service.NewLedgerService(store, logger)
	authSvc := service.NewAuthService(store, ledger, cfg.JWTSecret, cfg.JWTTTL, logger)

	if err := service.Seed(context.Background(), authSvc, []service.SeedUser{service.DemoUser}, logger); err != nil {
		logger.Fatal("failed to seed demo data", zap.Error(err))
	}

	// --- Router ---
	router := handler.NewRouter(ledger, authSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.DevbankPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.DevbankPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// --- Graceful shutdown ---
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
