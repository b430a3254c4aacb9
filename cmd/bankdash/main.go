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
	"github.com/boddenberg/bank-dashboard-go/internal/infra/client"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/credentials"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/observability"
	"github.com/boddenberg/bank-dashboard-go/internal/infra/resilience"
	"github.com/boddenberg/bank-dashboard-go/internal/port"
	"github.com/boddenberg/bank-dashboard-go/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "bankdash:", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	// The terminal belongs to the TUI, so logs go to a file.
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = "bankdash.log"
	}
	logger, err := observability.NewLogger(cfg.LogLevel, logFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("bank_api_url", cfg.BankAPIURL),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Bool("persistent_credentials", cfg.CredentialsFile != ""),
		zap.String("ops_addr", cfg.OpsAddr),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "bankdash")
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Resilience ---
	cb := resilience.NewCircuitBreaker("bank-api", resilience.Config{
		MaxRequests:  uint32(cfg.BreakerMaxRequests),
		Interval:     cfg.BreakerInterval,
		OpenTimeout:  cfg.BreakerOpenTimeout,
		MinRequests:  uint32(cfg.BreakerMinRequests),
		FailureRatio: cfg.BreakerFailureRatio,
	}, func(name, state string) {
		metrics.SetBreakerState(name, state)
		logger.Info("circuit breaker state changed", zap.String("breaker", name), zap.String("state", state))
	})

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	bank := client.NewBankClient(httpClient, cfg.BankAPIURL, cb, metrics, logger)

	// --- Credentials ---
	var creds port.CredentialStore = credentials.NewMemoryStore()
	if cfg.CredentialsFile != "" {
		creds = credentials.NewFileStore(cfg.CredentialsFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// --- Ops server ---
	var srv *http.Server
	if cfg.OpsAddr != "" {
		srv = &http.Server{
			Addr:         cfg.OpsAddr,
			Handler:      handler.NewOpsRouter(bank, metrics, logger),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("ops server starting", zap.String("addr", cfg.OpsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ops server: %w", err)
			}
			return nil
		})
	}

	// --- Terminal UI ---
	model := tui.New(ctx, tui.Deps{
		API:     bank,
		Auth:    bank,
		Creds:   creds,
		Metrics: metrics,
		Logger:  logger,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	g.Go(func() error {
		defer func() {
			if srv == nil {
				return
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("ops server forced shutdown", zap.Error(err))
			}
		}()
		_, err := program.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	err = g.Wait()
	logger.Info("bankdash stopped", zap.Error(err))
	return err
}
