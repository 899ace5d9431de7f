package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/marketdata/internal/calendar"
	"github.com/rickgao/marketdata/internal/collect"
	"github.com/rickgao/marketdata/internal/config"
	"github.com/rickgao/marketdata/internal/database"
	"github.com/rickgao/marketdata/internal/model"
	"github.com/rickgao/marketdata/internal/provider"
	"github.com/rickgao/marketdata/internal/store"
	"github.com/rickgao/marketdata/internal/version"
)

var intradayIntervals = []model.Granularity{model.Granularity15Min, model.GranularityHour}

func main() {
	configPath := flag.String("config", "configs/collector.local.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single batch reconciliation and exit")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting collector",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	symbols, err := readSymbols(cfg.Collector.SymbolsFile)
	if err != nil {
		logger.Error("failed to load symbols", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"symbols", len(symbols),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	collector := collect.New(
		store.New(pool, logger),
		buildSources(cfg, logger),
		symbols,
		cfg.Collector,
		logger,
	)

	// Health server
	healthServer := &http.Server{
		Addr:    ":8080",
		Handler: createHealthHandler(pool),
	}
	go func() {
		logger.Info("starting health server", "addr", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		healthServer.Shutdown(shutdownCtx)
	}()

	if *once {
		collector.RunBatch(ctx)
		logger.Info("single batch complete")
		return
	}

	runLoop(ctx, collector, cfg.Schedule, logger)
	logger.Info("collector stopped")
}

// runLoop alternates between intraday refreshes during the regular
// session and one full batch per day once the market has closed.
func runLoop(ctx context.Context, collector *collect.Collector, sched config.ScheduleConfig, logger *slog.Logger) {
	var lastBatchDay string

	ticker := time.NewTicker(sched.LoopInterval)
	defer ticker.Stop()

	for {
		now := time.Now().UTC()
		session := calendar.MarketSession(now)

		switch session {
		case calendar.SessionRegular:
			runID := uuid.NewString()
			logger.Info("regular session, refreshing intraday", "run_id", runID)
			if _, err := collector.CollectIntraday(ctx, runID, intradayIntervals); err != nil {
				logger.Error("intraday collection failed", "error", err)
			}
		case calendar.SessionAfter, calendar.SessionClosed:
			day := now.Format("2006-01-02")
			if day != lastBatchDay {
				logger.Info("market closed, running daily batch", "day", day)
				collector.RunBatch(ctx)
				lastBatchDay = day
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// buildSources wires the provider adapters from config.
func buildSources(cfg *config.CollectorConfig, logger *slog.Logger) collect.Sources {
	opts := []provider.Option{
		provider.WithLogger(logger),
		provider.WithTimeout(cfg.Collector.APITimeout),
		provider.WithRetries(cfg.Collector.MaxRetries, cfg.Collector.RetryBackoff),
	}

	fmp := provider.NewFMP(cfg.Providers.FMP.BaseURL, provider.NewKeyPool(cfg.Providers.FMP.APIKeys), opts...)
	twelve := provider.NewTwelveData(cfg.Providers.TwelveData.BaseURL, provider.NewKeyPool(cfg.Providers.TwelveData.APIKeys), opts...)
	fred := provider.NewFRED(cfg.Providers.FRED.BaseURL, cfg.Providers.FRED.APIKey, opts...)
	yahoo := provider.NewYahoo(cfg.Providers.Yahoo.BaseURL, opts...)

	return collect.Sources{
		Profiles:     fmp,
		Bars:         twelve,
		Index:        yahoo,
		Fundamentals: provider.TTMFundamentals{FMP: fmp},
		Observations: fred,
		Sectors:      fmp,
	}
}

// readSymbols loads the symbol universe, one symbol per line. Blank
// lines and # comments are ignored.
func readSymbols(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open symbols file: %w", err)
	}
	defer f.Close()

	var symbols []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read symbols file: %w", err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("symbols file %s is empty", path)
	}
	return symbols, nil
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(pool *pgxpool.Pool) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string            `json:"status"`
			Components map[string]string `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]string),
		}

		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = "disconnected: " + err.Error()
		} else {
			health.Components["postgres"] = "connected"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
