package scanner

import (
	"context"
	"math"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/alejandrodnm/atomicswipe/internal/ports"
	"github.com/shopspring/decimal"
)

// Estimator convierte deltas raw a USD usando un PriceLookup.
type Estimator struct {
	prices ports.PriceLookup
}

// NewEstimator crea un Estimator sobre la fuente de precios dada.
func NewEstimator(prices ports.PriceLookup) *Estimator {
	return &Estimator{prices: prices}
}

// EstimateUSD devuelve (rawDelta / 10^decimals) × precio(symbol).
// Un símbolo sin precio vale 0.
func (e *Estimator) EstimateUSD(ctx context.Context, rawDelta int64, token domain.Token) float64 {
	price, ok := e.prices.Price(ctx, token.Symbol)
	if !ok || price == 0 {
		return 0
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		// decimal no representa NaN/Inf; la validación final descarta el resultado
		return float64(rawDelta) / math.Pow10(int(token.Decimals)) * price
	}
	usd, _ := RawToHuman(rawDelta, token.Decimals).Mul(decimal.NewFromFloat(price)).Float64()
	return usd
}

// RawToHuman escala una cantidad raw por 10^-decimals sin pérdida.
func RawToHuman(raw int64, decimals uint8) decimal.Decimal {
	return decimal.New(raw, -int32(decimals))
}
