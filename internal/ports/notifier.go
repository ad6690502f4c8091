package ports

import (
	"context"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

// Notifier presenta el resultado de un run al usuario.
type Notifier interface {
	// Notify muestra el ledger, las señales abiertas y el summary.
	// En la implementación de consola, imprime tablas formateadas.
	Notify(ctx context.Context, result domain.BacktestResult) error
}
