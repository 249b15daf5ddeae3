package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/papertrade/internal/config"
	"github.com/efreitasn/papertrade/internal/engine"
	"github.com/efreitasn/papertrade/internal/handler"
	"github.com/efreitasn/papertrade/internal/service"
	"github.com/efreitasn/papertrade/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	codec, err := store.CodecByName(cfg.StoreCodec)
	if err != nil {
		logger.Error("failed to select codec", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Accounts live in memory unless a data directory is configured.
	var accounts service.AccountStore
	if cfg.DataDir == "" {
		accounts = store.NewMemoryAccountStore(codec)
	} else {
		fs, err := store.NewFileAccountStore(cfg.DataDir, codec)
		if err != nil {
			logger.Error("failed to open account store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		accounts = fs
	}
	sessions := store.NewSessionStore()
	trades := store.NewTradeStore()

	var src engine.Source
	if cfg.RandomSeed != 0 {
		src = engine.NewSeededSource(cfg.RandomSeed)
	}
	oracle := engine.NewOracle(src, cfg.QuoteLatency)
	ledger := engine.NewLedger(accounts, oracle)
	reaper := engine.NewSessionReaper(cfg.SessionSweepInterval, cfg.SessionTTL, sessions)

	accountSvc := service.NewAccountService(accounts, sessions, cfg.DefaultBalance)
	tradingSvc := service.NewTradingService(ledger, oracle, accounts, trades, logger)
	marketSvc := service.NewMarketService(oracle)

	router := handler.NewRouter(accountSvc, tradingSvc, marketSvc, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reaper.Start(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("codec", codec.Name()),
			slog.String("data_dir", cfg.DataDir),
			slog.Duration("quote_latency", cfg.QuoteLatency),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
