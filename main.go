// sheetsync watches a spool directory for new order records, splits each
// order into one spreadsheet row per attendee and appends the rows to a
// Google Sheets worksheet. A pair of HTTP endpoints performs the one-time
// OAuth2 authorization that makes the append calls possible.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"sheetsync/internal/auth"
	"sheetsync/internal/config"
	"sheetsync/internal/httpserver"
	"sheetsync/internal/logging"
	"sheetsync/internal/pipeline"
	"sheetsync/internal/sheets"
	"sheetsync/internal/store"
	"sheetsync/internal/watch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logging.Setup()
	slog.Info("configuration loaded", "spreadsheet", cfg.SpreadsheetID, "orders", cfg.OrdersDir)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("opening store failed", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	oauthConfig := auth.NewConfig(cfg.ClientID, cfg.ClientSecret, cfg.RedirectBaseURL)
	cache := auth.NewCache(oauthConfig, st)

	appender := sheets.NewAppender(cache, cfg.SpreadsheetID, cfg.WriteRange)
	pipe := pipeline.New(appender, st)
	watcher := watch.New(cfg.OrdersDir, pipe.Process)

	server := httpserver.New(cfg.HTTPAddr, auth.NewHandler(oauthConfig, st, cache))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := watcher.Run(ctx); err != nil {
			slog.Error("watcher failed", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		slog.Info("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	} else {
		slog.Info("server shut down gracefully")
	}
}
