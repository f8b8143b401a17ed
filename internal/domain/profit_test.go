package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCycle_Profitable(t *testing.T) {
	// 1 SOL → 150 USDC → 1.002 SOL
	c, ok := ComputeCycle(1_000_000_000, 150_000_000, 1_002_000_000)
	require.True(t, ok)
	assert.Equal(t, int64(2_000_000), c.ProfitRaw)
	assert.InDelta(t, 0.2, c.ProfitPercent, 1e-9)
	assert.InDelta(t, 1_000_000_000.0/150_000_000.0, c.BuyPrice(), 1e-9)
	assert.InDelta(t, 150_000_000.0/1_002_000_000.0, c.SellPrice(), 1e-12)
}

func TestComputeCycle_Loss(t *testing.T) {
	c, ok := ComputeCycle(1_000_000, 5, 999_000)
	require.True(t, ok)
	assert.Equal(t, int64(-1000), c.ProfitRaw)
	assert.InDelta(t, -0.1, c.ProfitPercent, 1e-9)
}

func TestComputeCycle_ZeroInputs(t *testing.T) {
	_, ok := ComputeCycle(0, 10, 10)
	assert.False(t, ok)
	_, ok = ComputeCycle(10, 0, 10)
	assert.False(t, ok)
}

func TestComputeCycle_Overflow(t *testing.T) {
	_, ok := ComputeCycle(10, 10, math.MaxUint64)
	assert.False(t, ok)
}

func TestCycleProfit_SellPriceZeroFinal(t *testing.T) {
	c, ok := ComputeCycle(100, 50, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, c.SellPrice())
	assert.InDelta(t, -100.0, c.ProfitPercent, 1e-9)
}

func TestEstimatedGas(t *testing.T) {
	assert.Equal(t, GasTriangularSOL, EstimatedGas(2))
	assert.Equal(t, GasSingleHopSOL, EstimatedGas(1))
}

func TestToken_WholeUnit(t *testing.T) {
	assert.Equal(t, uint64(1_000_000_000), Token{Decimals: 9}.WholeUnit())
	assert.Equal(t, uint64(1), Token{Decimals: 0}.WholeUnit())
	assert.Equal(t, uint64(1000), Token{Decimals: 3}.WholeUnit())
	assert.Equal(t, uint64(0), Token{Decimals: 20}.WholeUnit())
}

func TestLamportsToSOL(t *testing.T) {
	assert.InDelta(t, 1.5, LamportsToSOL(1_500_000_000), 1e-12)
}
