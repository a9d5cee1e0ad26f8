// Package journal orquesta la ingesta de fills, el matching FIFO y la presentación.
package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/spotjournal/internal/domain"
	"github.com/alejandrodnm/spotjournal/internal/matching"
	"github.com/alejandrodnm/spotjournal/internal/ports"
	"github.com/google/uuid"
)

// ErrNoStorage se devuelve al pedir un replay sin base de datos configurada.
var ErrNoStorage = errors.New("journal: no storage configured")

const defaultLookback = 2 * 365 * 24 * time.Hour

// Config contiene la configuración del journal.
type Config struct {
	Lookback time.Duration // ventana de histórico a descargar
	Interval time.Duration // periodo entre syncs en modo Run
	Once     bool          // Run hace un único sync y termina
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		Lookback: defaultLookback,
		Interval: 15 * time.Minute,
	}
}

// Report es el resultado de un sync o replay.
type Report struct {
	Trades  []domain.Trade
	Summary domain.Summary
	Run     domain.SyncRun
}

// Journal conecta el exchange, el almacenamiento y el notificador con el motor FIFO.
// storage y notifier pueden ser nil.
type Journal struct {
	cfg      Config
	provider ports.ExecutionProvider
	storage  ports.ExecutionStorage
	notifier ports.Notifier
	now      func() time.Time
}

// New crea un Journal con todas las dependencias inyectadas.
func New(
	cfg Config,
	provider ports.ExecutionProvider,
	storage ports.ExecutionStorage,
	notifier ports.Notifier,
) *Journal {
	if cfg.Lookback <= 0 {
		cfg.Lookback = defaultLookback
	}
	return &Journal{
		cfg:      cfg,
		provider: provider,
		storage:  storage,
		notifier: notifier,
		now:      time.Now,
	}
}

// Sync descarga los fills de la ventana configurada, los persiste si hay storage
// y reconstruye los trades. Con storage, el matching usa el histórico local de la
// cuenta en la ventana, no solo lo que devolvió esta descarga.
func (j *Journal) Sync(ctx context.Context, creds domain.Credentials) (Report, error) {
	run := domain.SyncRun{
		ID:        uuid.NewString(),
		Account:   creds.AccountKey(),
		StartedAt: j.now().UTC(),
	}
	since := run.StartedAt.Add(-j.cfg.Lookback)

	report, err := j.sync(ctx, creds, since, &run)
	run.FinishedAt = j.now().UTC()
	if err != nil {
		run.Err = err.Error()
	}
	j.recordRun(ctx, run)

	if err != nil {
		slog.Error("sync failed", "run", run.ID, "err", err)
		return Report{Run: run}, err
	}

	report.Run = run
	slog.Info("sync complete",
		"run", run.ID,
		"fetched", run.Fetched,
		"stored", run.Stored,
		"trades", run.Trades,
		"elapsed", run.Elapsed(),
	)
	j.notify(ctx, report)
	return report, nil
}

func (j *Journal) sync(ctx context.Context, creds domain.Credentials, since time.Time, run *domain.SyncRun) (Report, error) {
	if creds.Empty() {
		return Report{}, ports.ErrNoCredentials
	}

	execs, err := j.provider.FetchExecutions(ctx, creds, since)
	if err != nil {
		return Report{}, fmt.Errorf("journal.Sync: fetch: %w", err)
	}
	run.Fetched = len(execs)

	if j.storage != nil {
		run.Stored, err = j.storage.SaveExecutions(ctx, run.Account, execs)
		if err != nil {
			return Report{}, fmt.Errorf("journal.Sync: store: %w", err)
		}
		execs, err = j.storage.ListExecutions(ctx, run.Account, since)
		if err != nil {
			return Report{}, fmt.Errorf("journal.Sync: reload: %w", err)
		}
	}

	report, err := build(execs)
	if err != nil {
		return Report{}, fmt.Errorf("journal.Sync: %w", err)
	}
	run.Trades = len(report.Trades)
	return report, nil
}

// Replay reconstruye los trades solo con los fills guardados de la cuenta, sin tocar
// el exchange. Basta con la API key: el secret no se usa.
func (j *Journal) Replay(ctx context.Context, creds domain.Credentials) (Report, error) {
	if j.storage == nil {
		return Report{}, ErrNoStorage
	}
	account := creds.AccountKey()
	if account == "" {
		return Report{}, ports.ErrNoCredentials
	}
	since := j.now().UTC().Add(-j.cfg.Lookback)
	execs, err := j.storage.ListExecutions(ctx, account, since)
	if err != nil {
		return Report{}, fmt.Errorf("journal.Replay: %w", err)
	}

	report, err := build(execs)
	if err != nil {
		return Report{}, fmt.Errorf("journal.Replay: %w", err)
	}
	if last, ok, err := j.storage.LastSyncRun(ctx, account); err == nil && ok {
		report.Run = last
	}

	slog.Info("replay complete", "executions", len(execs), "trades", len(report.Trades))
	j.notify(ctx, report)
	return report, nil
}

// Run sincroniza periódicamente hasta que el contexto se cancele.
// Si cfg.Once está activo, solo ejecuta un sync.
func (j *Journal) Run(ctx context.Context, creds domain.Credentials) error {
	slog.Info("journal starting", "interval", j.cfg.Interval, "lookback", j.cfg.Lookback, "once", j.cfg.Once)

	if _, err := j.Sync(ctx, creds); err != nil && j.cfg.Once {
		return err
	}
	if j.cfg.Once || j.cfg.Interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("journal stopped")
			return nil
		case <-ticker.C:
			// El error ya queda logueado y registrado en sync_runs.
			_, _ = j.Sync(ctx, creds)
		}
	}
}

// build ejecuta el matching y calcula las estadísticas.
func build(execs []domain.Execution) (Report, error) {
	trades, err := matching.Match(execs)
	if err != nil {
		return Report{}, err
	}
	return Report{Trades: trades, Summary: domain.Summarize(trades)}, nil
}

func (j *Journal) notify(ctx context.Context, report Report) {
	if j.notifier == nil {
		return
	}
	if err := j.notifier.NotifyTrades(ctx, report.Trades, report.Summary); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

func (j *Journal) recordRun(ctx context.Context, run domain.SyncRun) {
	if j.storage == nil {
		return
	}
	if err := j.storage.SaveSyncRun(ctx, run); err != nil {
		slog.Warn("storage error", "op", "save_sync_run", "err", err)
	}
}
