package cache

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alejandrodnm/atomicswipe/internal/ports"
)

const defaultLookupTimeout = 250 * time.Millisecond

// PriceLookup lee precios USD del hash PricesKey (campo = símbolo) y cae al
// lookup de respaldo cuando Redis no tiene un valor usable.
type PriceLookup struct {
	rdb      *redis.Client
	fallback ports.PriceLookup
	timeout  time.Duration
}

// NewPriceLookup crea el lookup sobre Redis. fallback puede ser nil.
func NewPriceLookup(c *Client, fallback ports.PriceLookup) *PriceLookup {
	return &PriceLookup{rdb: c.rdb, fallback: fallback, timeout: defaultLookupTimeout}
}

// SetPrice guarda un precio.
func (p *PriceLookup) SetPrice(ctx context.Context, symbol string, usd float64) error {
	return p.rdb.HSet(ctx, PricesKey, symbol, usd).Err()
}

func (p *PriceLookup) Price(ctx context.Context, symbol string) (float64, bool) {
	lctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	price, err := p.rdb.HGet(lctx, PricesKey, symbol).Float64()
	switch {
	case err == nil && !math.IsNaN(price) && !math.IsInf(price, 0):
		return price, true
	case err != nil && !errors.Is(err, redis.Nil):
		slog.Debug("redis price lookup failed, using fallback", "symbol", symbol, "err", err)
	}
	if p.fallback == nil {
		return 0, false
	}
	return p.fallback.Price(ctx, symbol)
}

var _ ports.PriceLookup = (*PriceLookup)(nil)
