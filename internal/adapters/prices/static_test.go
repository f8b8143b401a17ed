package prices_test

import (
	"context"
	"testing"

	"github.com/alejandrodnm/atomicswipe/internal/adapters/prices"
	"github.com/stretchr/testify/assert"
)

func TestStatic_DefaultTable(t *testing.T) {
	s := prices.NewStatic(nil)
	ctx := context.Background()

	p, ok := s.Price(ctx, "SOL")
	assert.True(t, ok)
	assert.Equal(t, 150.0, p)

	p, ok = s.Price(ctx, "JUP")
	assert.True(t, ok)
	assert.Equal(t, 1.2, p)

	_, ok = s.Price(ctx, "BONK")
	assert.False(t, ok)
}

func TestStatic_OverridesDoNotLeak(t *testing.T) {
	s := prices.NewStatic(map[string]float64{"SOL": 200, "BONK": 0.00002})

	p, _ := s.Price(context.Background(), "SOL")
	assert.Equal(t, 200.0, p)
	p, ok := s.Price(context.Background(), "BONK")
	assert.True(t, ok)
	assert.Equal(t, 0.00002, p)

	assert.Equal(t, 150.0, prices.DefaultUSD["SOL"])
}
