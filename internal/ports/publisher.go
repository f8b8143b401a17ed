package ports

import (
	"context"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

// OpportunityPublisher difunde oportunidades a consumidores fuera del proceso.
type OpportunityPublisher interface {
	Publish(ctx context.Context, opp domain.ArbitrageOpportunity) error
}
