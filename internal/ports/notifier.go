package ports

import (
	"context"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

// Notifier presenta el mazo de oportunidades al usuario.
type Notifier interface {
	// Notify muestra las oportunidades ordenadas por profit.
	// En la implementación de consola, imprime una tabla formateada.
	Notify(ctx context.Context, opportunities []domain.ArbitrageOpportunity) error
}
