package prices

import (
	"context"
	"maps"
)

// DefaultUSD es la tabla estática de precios unitarios en USD.
// Símbolos fuera de la tabla valen 0 para el estimador.
var DefaultUSD = map[string]float64{
	"SOL":  150,
	"USDC": 1,
	"USDT": 1,
	"JUP":  1.2,
	"RAY":  2.5,
}

// Static implementa ports.PriceLookup sobre una tabla fija.
type Static struct {
	prices map[string]float64
}

// NewStatic crea la tabla por defecto con los overrides aplicados encima.
func NewStatic(overrides map[string]float64) *Static {
	p := maps.Clone(DefaultUSD)
	maps.Copy(p, overrides)
	return &Static{prices: p}
}

// Price devuelve el precio del símbolo.
func (s *Static) Price(_ context.Context, symbol string) (float64, bool) {
	v, ok := s.prices[symbol]
	return v, ok
}
