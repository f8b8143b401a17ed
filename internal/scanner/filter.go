package scanner

import (
	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

// FilterConfig contiene los umbrales de inclusión.
type FilterConfig struct {
	// MinProfitUSD descarta ciclos cuyo profit estimado en USD es menor.
	MinProfitUSD float64
	// MinProfitPercent descarta ciclos cuyo profit relativo (en %) es menor.
	MinProfitPercent float64
}

// DefaultFilterConfig devuelve los umbrales por defecto.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MinProfitUSD:     0.1,
		MinProfitPercent: 0.01,
	}
}

// Filter aplica el gate de inclusión y la validación final.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Passes devuelve true si el ciclo supera ambos umbrales (AND, inclusivo).
// Un NaN nunca pasa.
func (f *Filter) Passes(opp domain.ArbitrageOpportunity) bool {
	return opp.ProfitUSD >= f.cfg.MinProfitUSD && opp.ProfitPercent >= f.cfg.MinProfitPercent
}

// Finalize descarta entradas con profit o gas no finitos y ordena por profit.
func (f *Filter) Finalize(opps []domain.ArbitrageOpportunity) []domain.ArbitrageOpportunity {
	result := make([]domain.ArbitrageOpportunity, 0, len(opps))
	for _, opp := range opps {
		if opp.Valid() {
			result = append(result, opp)
		}
	}
	domain.SortByProfit(result)
	return result
}
