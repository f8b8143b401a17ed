// Package cache reúne los adapters sobre Redis: precios en vivo y el
// publisher de oportunidades.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Keys compartidas con quien alimente los precios en Redis.
const (
	PricesKey          = "atomicswipe:prices"
	OpportunityChannel = "atomicswipe:opportunities"
)

// ClientConfig son los parámetros de conexión a Redis.
type ClientConfig struct {
	Addr     string
	Password string
	DB       int
}

// Client envuelve un cliente go-redis.
type Client struct {
	rdb *redis.Client
}

// New conecta y hace ping. Devuelve error si el servidor no responde.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache.New: ping %s: %w", cfg.Addr, err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
