// Command monitord runs the marketplace listing monitor: it opens the
// store, schedules every known tenant and keeps monitoring until
// SIGINT/SIGTERM.
//
// Usage:
//
//	monitord -config monitord.yaml
//	EBAY_APP_ID=... EBAY_CERT_ID=... monitord
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/Taha-Siraj/ebay-backend/config"
	"github.com/Taha-Siraj/ebay-backend/monitor"
)

func main() {
	configPath := flag.String("config", "", "path to monitord.yaml config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("monitord: config", "error", err)
		os.Exit(1)
	}
	logger := buildLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("monitord: fatal", "error", err)
		os.Exit(1)
	}
}

func buildLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := monitor.OpenSQLiteStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer st.DB.Close()

	mcfg := &monitor.Config{
		Ebay: monitor.EbayConfig{
			AppID:      cfg.Ebay.AppID,
			CertID:     cfg.Ebay.CertID,
			TokenURL:   cfg.Ebay.TokenURL,
			APIBaseURL: cfg.Ebay.APIBaseURL,
		},
		Competitor: monitor.CompetitorConfig{
			BaseURL: cfg.Competitor.BaseURL,
			APIKey:  cfg.Competitor.APIKey,
		},
		MinSourceDelay:    cfg.Monitor.MinSourceDelay,
		InterProductDelay: cfg.Monitor.InterProductDelay,
	}
	mcfg.Browser.RemoteURL = cfg.Browser.RemoteURL
	mcfg.Browser.PoolSize = cfg.Browser.PoolSize
	mcfg.Browser.Stealth = cfg.Browser.Stealth
	mcfg.Extract.NavTimeout = cfg.Extract.NavTimeout
	mcfg.Extract.SettleDelay = cfg.Extract.SettleDelay
	mcfg.Extract.MaxListingPages = cfg.Extract.MaxListingPages

	svc, err := monitor.New(st, nil, mcfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Start(ctx); err != nil {
		return err
	}
	logger.Info("monitord: running", "db", cfg.DatabasePath)

	<-ctx.Done()
	logger.Info("monitord: shutting down")
	return nil
}
