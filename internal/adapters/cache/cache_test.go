package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/atomicswipe/internal/adapters/cache"
	"github.com/alejandrodnm/atomicswipe/internal/adapters/prices"
	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

func newClient(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.New(context.Background(), cache.ClientConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestNew_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := cache.New(ctx, cache.ClientConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestPriceLookup_PrefersRedis(t *testing.T) {
	c, _ := newClient(t)
	lookup := cache.NewPriceLookup(c, prices.NewStatic(nil))
	ctx := context.Background()

	require.NoError(t, lookup.SetPrice(ctx, "SOL", 172.5))

	p, ok := lookup.Price(ctx, "SOL")
	assert.True(t, ok)
	assert.Equal(t, 172.5, p)

	// no hash field: static table
	p, ok = lookup.Price(ctx, "USDC")
	assert.True(t, ok)
	assert.Equal(t, 1.0, p)

	_, ok = lookup.Price(ctx, "BONK")
	assert.False(t, ok)
}

func TestPriceLookup_GarbageFallsBack(t *testing.T) {
	c, mr := newClient(t)
	mr.HSet(cache.PricesKey, "SOL", "not-a-number")

	lookup := cache.NewPriceLookup(c, prices.NewStatic(nil))
	p, ok := lookup.Price(context.Background(), "SOL")
	assert.True(t, ok)
	assert.Equal(t, prices.DefaultUSD["SOL"], p)
}

func TestPriceLookup_RedisDownFallsBack(t *testing.T) {
	c, mr := newClient(t)
	lookup := cache.NewPriceLookup(c, prices.NewStatic(nil))
	mr.Close()

	p, ok := lookup.Price(context.Background(), "SOL")
	assert.True(t, ok)
	assert.Equal(t, prices.DefaultUSD["SOL"], p)
}

func TestPriceLookup_NoFallback(t *testing.T) {
	c, _ := newClient(t)
	_, ok := cache.NewPriceLookup(c, nil).Price(context.Background(), "SOL")
	assert.False(t, ok)
}

func TestPublisher_Publish(t *testing.T) {
	c, mr := newClient(t)
	pub := cache.NewPublisher(c)

	sub := mr.NewSubscriber()
	defer sub.Close()
	sub.Subscribe(cache.OpportunityChannel)

	opp := domain.ArbitrageOpportunity{
		ID:        "triangular-1-SOL-USDC-x",
		TokenIn:   domain.TokenRef{Symbol: "SOL"},
		TokenOut:  domain.TokenRef{Symbol: "USDC"},
		ProfitUSD: 1.25,
		Timestamp: time.UnixMilli(1700000000000),
	}
	// el subscriber de miniredis no tiene buffer: Publish espera a que alguien lea
	errCh := make(chan error, 1)
	go func() { errCh <- pub.Publish(context.Background(), opp) }()

	select {
	case msg := <-sub.Messages():
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(msg.Message), &got))
		assert.Equal(t, opp.ID, got["id"])
		assert.Equal(t, 1.25, got["profitUsd"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
	require.NoError(t, <-errCh)
}

func TestPublisher_OnOpportunityIsAsync(t *testing.T) {
	c, mr := newClient(t)
	pub := cache.NewPublisher(c)

	sub := mr.NewSubscriber()
	defer sub.Close()
	sub.Subscribe(cache.OpportunityChannel)

	pub.OnOpportunity(domain.ArbitrageOpportunity{ID: "a"})
	pub.OnDeck(nil)

	select {
	case <-sub.Messages():
	case <-time.After(2 * time.Second):
		t.Fatal("no message published")
	}
}
