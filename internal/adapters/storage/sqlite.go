package storage

// sqlite.go: caché local de fills descargados.
//
// Estrategia:
//   - `executions`: UNA fila por (cuenta, fill) (INSERT OR IGNORE por clave). Los
//     números se guardan como TEXT para no perder precisión decimal.
//   - `sync_runs`: una fila por ejecución de la ingesta, éxito o error.
//   - Toda lectura filtra por cuenta: el mismo fichero sirve a varias API keys.
//   - Prune automático al arrancar: sync_runs > 90d. Los fills no se borran nunca,
//     son la fuente del journal.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alejandrodnm/spotjournal/internal/domain"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS executions (
    account   TEXT    NOT NULL,
    key       TEXT    NOT NULL,
    exec_id   TEXT    NOT NULL DEFAULT '',
    symbol    TEXT    NOT NULL,
    side      TEXT    NOT NULL,
    qty       TEXT    NOT NULL,
    price     TEXT    NOT NULL,
    fee       TEXT    NOT NULL DEFAULT '0',
    exec_time INTEGER NOT NULL,
    stored_at INTEGER NOT NULL,
    PRIMARY KEY (account, key)
);

CREATE TABLE IF NOT EXISTS sync_runs (
    id          TEXT PRIMARY KEY,
    account     TEXT    NOT NULL DEFAULT '',
    started_at  INTEGER NOT NULL,
    finished_at INTEGER NOT NULL DEFAULT 0,
    fetched     INTEGER NOT NULL DEFAULT 0,
    stored      INTEGER NOT NULL DEFAULT 0,
    trades      INTEGER NOT NULL DEFAULT 0,
    error       TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_exec_time ON executions(account, exec_time);
CREATE INDEX IF NOT EXISTS idx_sync_at   ON sync_runs(account, started_at DESC);
`

const retentionRuns = 90 * 24 * time.Hour

// ErrNoAccount se devuelve al guardar fills sin cuenta asociada.
var ErrNoAccount = errors.New("storage: executions need an account key")

// SQLiteStorage implementa ports.ExecutionStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveExecutions inserta los fills de la cuenta que no existan todavía.
// Devuelve cuántos eran nuevos.
func (s *SQLiteStorage) SaveExecutions(ctx context.Context, account string, executions []domain.Execution) (int, error) {
	if len(executions) == 0 {
		return 0, nil
	}
	if account == "" {
		return 0, ErrNoAccount
	}

	now := time.Now().UTC().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("storage.SaveExecutions: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO executions
			(account, key, exec_id, symbol, side, qty, price, fee, exec_time, stored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("storage.SaveExecutions: prepare: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	seen := make(map[string]int, len(executions))
	for _, e := range executions {
		key := executionKey(e, seen)
		res, err := stmt.ExecContext(ctx,
			account,
			key,
			e.ID,
			e.Symbol,
			string(e.Side),
			e.Quantity.String(),
			e.Price.String(),
			e.Fee.String(),
			e.Timestamp,
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("storage.SaveExecutions: insert %s: %w", key, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage.SaveExecutions: commit: %w", err)
	}
	return inserted, nil
}

// ListExecutions devuelve los fills de la cuenta con exec_time >= since, en orden
// de inserción para timestamps iguales.
func (s *SQLiteStorage) ListExecutions(ctx context.Context, account string, since time.Time) ([]domain.Execution, error) {
	var sinceMs int64
	if !since.IsZero() {
		sinceMs = since.UnixMilli()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT exec_id, symbol, side, qty, price, fee, exec_time
		FROM executions
		WHERE account = ? AND exec_time >= ?
		ORDER BY exec_time ASC, rowid ASC
	`, account, sinceMs)
	if err != nil {
		return nil, fmt.Errorf("storage.ListExecutions: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Execution
	for rows.Next() {
		var e domain.Execution
		var side, qty, price, fee string
		if err := rows.Scan(&e.ID, &e.Symbol, &side, &qty, &price, &fee, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("storage.ListExecutions: scan row: %w", err)
		}
		e.Side = domain.Side(side)
		if e.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("storage.ListExecutions: qty %q: %w", qty, err)
		}
		if e.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("storage.ListExecutions: price %q: %w", price, err)
		}
		if e.Fee, err = decimal.NewFromString(fee); err != nil {
			return nil, fmt.Errorf("storage.ListExecutions: fee %q: %w", fee, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SaveSyncRun inserta o actualiza el registro de una ejecución de la ingesta.
func (s *SQLiteStorage) SaveSyncRun(ctx context.Context, run domain.SyncRun) error {
	var finished int64
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC().UnixMilli()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, account, started_at, finished_at, fetched, stored, trades, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			fetched     = excluded.fetched,
			stored      = excluded.stored,
			trades      = excluded.trades,
			error       = excluded.error
	`, run.ID, run.Account, run.StartedAt.UTC().UnixMilli(), finished, run.Fetched, run.Stored, run.Trades, run.Err)
	if err != nil {
		return fmt.Errorf("storage.SaveSyncRun: %w", err)
	}
	return nil
}

// LastSyncRun devuelve la ejecución más reciente de la cuenta.
func (s *SQLiteStorage) LastSyncRun(ctx context.Context, account string) (domain.SyncRun, bool, error) {
	var run domain.SyncRun
	var started, finished int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id, account, started_at, finished_at, fetched, stored, trades, error
		FROM sync_runs
		WHERE account = ?
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`, account).Scan(&run.ID, &run.Account, &started, &finished, &run.Fetched, &run.Stored, &run.Trades, &run.Err)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SyncRun{}, false, nil
	}
	if err != nil {
		return domain.SyncRun{}, false, fmt.Errorf("storage.LastSyncRun: %w", err)
	}
	run.StartedAt = time.UnixMilli(started).UTC()
	if finished > 0 {
		run.FinishedAt = time.UnixMilli(finished).UTC()
	}
	return run, true, nil
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

// executionKey identifica un fill de forma estable entre descargas.
// Sin execId se usa el contenido del fill; fills idénticos dentro del mismo lote
// llevan un sufijo #n según su posición, así no se pierde cantidad.
func executionKey(e domain.Execution, seen map[string]int) string {
	if e.ID != "" {
		return e.ID
	}
	key := fmt.Sprintf("%s-%s-%d-%s-%s", e.Symbol, e.Side, e.Timestamp, e.Quantity.String(), e.Price.String())
	n := seen[key]
	seen[key] = n + 1
	if n > 0 {
		key = fmt.Sprintf("%s#%d", key, n)
	}
	return key
}

// pruneOld elimina registros de sync antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-retentionRuns).UnixMilli()
	s.db.ExecContext(ctx, `DELETE FROM sync_runs WHERE started_at < ?`, cutoff)
}
