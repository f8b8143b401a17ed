package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/alejandrodnm/atomicswipe/internal/ports"
)

const publishTimeout = 2 * time.Second

// Publisher publica oportunidades en OpportunityChannel.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(c *Client) *Publisher {
	return &Publisher{rdb: c.rdb}
}

// Publish envía una oportunidad como JSON.
func (p *Publisher) Publish(ctx context.Context, opp domain.ArbitrageOpportunity) error {
	data, err := json.Marshal(opp)
	if err != nil {
		return fmt.Errorf("cache.Publish: marshal: %w", err)
	}
	if err := p.rdb.Publish(ctx, OpportunityChannel, data).Err(); err != nil {
		return fmt.Errorf("cache.Publish: %w", err)
	}
	return nil
}

// OnOpportunity publica en background; los fallos solo se registran.
func (p *Publisher) OnOpportunity(opp domain.ArbitrageOpportunity) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, opp); err != nil {
			slog.Warn("publish opportunity failed", "id", opp.ID, "err", err)
		}
	}()
}

// OnDeck no hace nada: los subscribers ya recibieron cada carta.
func (p *Publisher) OnDeck([]domain.ArbitrageOpportunity) {}

var _ ports.OpportunityPublisher = (*Publisher)(nil)
