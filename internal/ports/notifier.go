package ports

import (
	"context"

	"github.com/alejandrodnm/spotjournal/internal/domain"
)

// Notifier presenta los trades reconstruidos al usuario.
type Notifier interface {
	// NotifyTrades muestra los trades (más nuevos primero) y sus estadísticas.
	NotifyTrades(ctx context.Context, trades []domain.Trade, summary domain.Summary) error
}
