package domain

import "math"

// Gas estimado en SOL por forma de ciclo.
const (
	GasSingleHopSOL  = 0.002
	GasTriangularSOL = 0.004
)

// EstimatedGas devuelve la constante de gas (SOL) para un ciclo de n patas.
func EstimatedGas(legs int) float64 {
	if legs <= 1 {
		return GasSingleHopSOL
	}
	return GasTriangularSOL
}

// CycleProfit es el resultado aritmético de un ciclo start → intermedio → start.
type CycleProfit struct {
	StartRaw        uint64
	IntermediateRaw uint64
	FinalRaw        uint64
	ProfitRaw       int64   // FinalRaw - StartRaw, puede ser negativo
	ProfitPercent   float64 // 100 * ProfitRaw / StartRaw
}

// ComputeCycle calcula el profit de un ciclo. ok=false si start o intermedio
// son 0 o si las cantidades no caben en un int64.
func ComputeCycle(startRaw, intermediateRaw, finalRaw uint64) (CycleProfit, bool) {
	if startRaw == 0 || intermediateRaw == 0 {
		return CycleProfit{}, false
	}
	if startRaw > math.MaxInt64 || finalRaw > math.MaxInt64 {
		return CycleProfit{}, false
	}
	profit := int64(finalRaw) - int64(startRaw)
	return CycleProfit{
		StartRaw:        startRaw,
		IntermediateRaw: intermediateRaw,
		FinalRaw:        finalRaw,
		ProfitRaw:       profit,
		ProfitPercent:   float64(profit) / float64(startRaw) * 100,
	}, true
}

// BuyPrice es unidades raw de inicio por unidad raw intermedia.
func (c CycleProfit) BuyPrice() float64 {
	if c.IntermediateRaw == 0 {
		return 0
	}
	return float64(c.StartRaw) / float64(c.IntermediateRaw)
}

// SellPrice es unidades raw intermedias por unidad raw final.
func (c CycleProfit) SellPrice() float64 {
	if c.FinalRaw == 0 {
		return 0
	}
	return float64(c.IntermediateRaw) / float64(c.FinalRaw)
}

// LamportsToSOL convierte lamports a SOL.
func LamportsToSOL(lamports uint64) float64 {
	return float64(lamports) / 1e9
}
