package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/spotjournal/internal/domain"
)

// ExecutionProvider obtiene el histórico de fills spot del exchange.
type ExecutionProvider interface {
	// FetchExecutions devuelve todos los fills desde since, paginando internamente.
	// El orden de salida no está garantizado.
	FetchExecutions(ctx context.Context, creds domain.Credentials, since time.Time) ([]domain.Execution, error)
}
