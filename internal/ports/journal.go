package ports

import (
	"context"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

// Journal persiste qué pasó con cada carta y cada scan.
type Journal interface {
	// Record guarda una decisión y devuelve el id de la fila.
	Record(ctx context.Context, d domain.Decision) (int64, error)

	// Decisions devuelve las decisiones más nuevas primero, como máximo limit.
	Decisions(ctx context.Context, limit int) ([]domain.Decision, error)

	RecordScan(ctx context.Context, s domain.ScanSummary) error

	// Scans devuelve los resúmenes más nuevos primero, como máximo limit.
	Scans(ctx context.Context, limit int) ([]domain.ScanSummary, error)

	Close() error
}
