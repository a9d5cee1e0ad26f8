package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/spotjournal/internal/domain"
)

// ExecutionStorage persiste los fills descargados y el registro de cada sync.
// Todo está particionado por cuenta (domain.Credentials.AccountKey): una cuenta
// nunca ve los fills ni los syncs de otra.
type ExecutionStorage interface {
	// SaveExecutions guarda los fills ignorando duplicados. Devuelve cuántos eran nuevos.
	SaveExecutions(ctx context.Context, account string, executions []domain.Execution) (int, error)

	// ListExecutions devuelve los fills de la cuenta con timestamp >= since, en orden cronológico.
	ListExecutions(ctx context.Context, account string, since time.Time) ([]domain.Execution, error)

	// SaveSyncRun registra una ejecución de la ingesta.
	SaveSyncRun(ctx context.Context, run domain.SyncRun) error

	// LastSyncRun devuelve la última ejecución registrada de la cuenta, o false si no hay ninguna.
	LastSyncRun(ctx context.Context, account string) (domain.SyncRun, bool, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
