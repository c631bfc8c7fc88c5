package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/use-agent/tubemeta/api"
	"github.com/use-agent/tubemeta/api/handler"
	"github.com/use-agent/tubemeta/batch"
	"github.com/use-agent/tubemeta/config"
	"github.com/use-agent/tubemeta/scraper"
	"github.com/use-agent/tubemeta/store"
	"github.com/use-agent/tubemeta/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: .env not loaded: %v\n", err)
	}
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	config.InitLogger(cfg.Log, os.Stdout)
	slog.Info("tubemeta starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"headless", cfg.Browser.Headless,
	)

	// ── 3. Result store ─────────────────────────────────────────────
	var st store.Store = store.NewMemory()
	if cfg.Store.SQLitePath != "" {
		sq, err := store.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			slog.Error("failed to open result store", "path", cfg.Store.SQLitePath, "error", err)
			os.Exit(1)
		}
		st = sq
		slog.Info("persisting results", "path", cfg.Store.SQLitePath)
	}
	defer st.Close()

	// ── 4. Analyzer (browser starts lazily on the first batch) ──────
	analyzer := batch.New(scraper.LaunchFunc(cfg.Browser, cfg.Scraper))
	run := handler.NewRunner(analyzer)

	notifier := webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret)
	if notifier.Enabled() {
		slog.Info("batch webhook enabled", "url", cfg.Webhook.URL)
	}

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(run, st, notifier, cfg, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// A running batch ends after its current video; allow for one full visit.
	analyzer.StopToken().Stop()
	grace := cfg.Scraper.NavigationTimeout + cfg.Scraper.SettleDelay + 15*time.Second
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	if err := run.Stop(ctx); err != nil {
		slog.Error("browser teardown incomplete", "error", err)
	}
	slog.Info("tubemeta stopped")
}
