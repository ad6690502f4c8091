package ports

import (
	"context"

	"github.com/Erchegos/ineqre-obx-sub002/internal/domain"
)

// RunStorage persiste runs terminados y su ledger de trades.
type RunStorage interface {
	// SaveRun guarda el run completo (cabecera + ledger) en una transacción.
	SaveRun(ctx context.Context, run domain.BacktestRun) error

	// GetRuns devuelve los últimos runs guardados, más recientes primero.
	GetRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
