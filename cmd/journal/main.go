package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/spotjournal/config"
	"github.com/alejandrodnm/spotjournal/internal/adapters/bybit"
	"github.com/alejandrodnm/spotjournal/internal/adapters/httpapi"
	"github.com/alejandrodnm/spotjournal/internal/adapters/notify"
	"github.com/alejandrodnm/spotjournal/internal/adapters/storage"
	"github.com/alejandrodnm/spotjournal/internal/domain"
	"github.com/alejandrodnm/spotjournal/internal/journal"
	"github.com/alejandrodnm/spotjournal/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	serve := flag.Bool("serve", false, "run the HTTP API instead of a one-shot sync")
	watch := flag.Bool("watch", false, "sync periodically until interrupted")
	replay := flag.Bool("replay", false, "rebuild trades from stored executions only (no API calls, BYBIT_API_KEY selects the account)")
	noStore := flag.Bool("no-store", false, "do not persist executions to SQLite")
	dates := flag.Bool("dates", false, "print entry/exit dates in the trades table")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("spotjournal starting",
		"config", *configPath,
		"lookback", cfg.Lookback(),
		"serve", *serve,
		"watch", *watch,
		"replay", *replay,
	)

	client := bybit.NewClient(cfg.Bybit.BaseURL, bybit.Options{
		Category:   cfg.Bybit.Category,
		PageLimit:  cfg.Bybit.PageLimit,
		MaxPages:   cfg.Bybit.MaxPages,
		RatePerSec: cfg.Bybit.RatePerSec,
		RecvWindow: cfg.Bybit.RecvWindow,
	})

	var store ports.ExecutionStorage
	if cfg.Storage.Enabled && !*noStore {
		db, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer db.Close()
		store = db
	}

	jcfg := journal.DefaultConfig()
	jcfg.Lookback = cfg.Lookback()
	jcfg.Interval = cfg.SyncInterval()
	jcfg.Once = !*watch

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *serve {
		// El servidor no imprime tablas: cada request devuelve JSON.
		// El store separa los fills por cuenta, así que se puede compartir entre requests.
		j := journal.New(jcfg, client, store, nil)
		srv := httpapi.NewServer(cfg.Server.Addr, httpapi.NewRouter(j, cfg.Server.StaticDir))
		if err := httpapi.Serve(ctx, srv); err != nil {
			slog.Error("http server exited with error", "err", err)
			os.Exit(1)
		}
		return
	}

	console := notify.NewConsole(*dates)
	j := journal.New(jcfg, client, store, console)
	creds := domain.Credentials{APIKey: cfg.Bybit.APIKey, APISecret: cfg.Bybit.APISecret}

	if *replay {
		report, err := j.Replay(ctx, creds)
		if err != nil {
			slog.Error("replay failed", "err", err)
			os.Exit(1)
		}
		if report.Run.ID != "" {
			console.PrintSyncRun(report.Run)
		}
		return
	}

	if creds.Empty() {
		slog.Error("BYBIT_API_KEY and BYBIT_API_SECRET must be set (use a read-only key)")
		os.Exit(1)
	}

	if err := j.Run(ctx, creds); err != nil {
		slog.Error("journal exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("spotjournal stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
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
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
