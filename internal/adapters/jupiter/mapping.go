package jupiter

import (
	"encoding/json"
	"fmt"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

// mapQuote convierte el DTO a domain.Quote y conserva el JSON original.
// Falla si las cantidades raw no son enteros válidos.
func mapQuote(r quoteResponse, raw json.RawMessage) (domain.Quote, error) {
	q := domain.Quote{
		InputMint:            r.InputMint,
		InAmount:             r.InAmount,
		OutputMint:           r.OutputMint,
		OutAmount:            r.OutAmount,
		OtherAmountThreshold: r.OtherAmountThreshold,
		SwapMode:             r.SwapMode,
		SlippageBps:          r.SlippageBps,
		ContextSlot:          r.ContextSlot,
		RoutePlan:            mapRoutePlan(r.RoutePlan),
		Raw:                  raw,
	}
	if r.PriceImpactPct != "" {
		impact, err := r.PriceImpactPct.Float64()
		if err != nil {
			return domain.Quote{}, fmt.Errorf("priceImpactPct %q: %w", r.PriceImpactPct, err)
		}
		q.PriceImpactPct = impact
	}
	if _, err := q.InAmountRaw(); err != nil {
		return domain.Quote{}, err
	}
	if _, err := q.OutAmountRaw(); err != nil {
		return domain.Quote{}, err
	}
	return q, nil
}

func mapRoutePlan(raw []routePlanStep) []domain.RoutePlanStep {
	plan := make([]domain.RoutePlanStep, 0, len(raw))
	for _, s := range raw {
		step := domain.RoutePlanStep{Percent: s.Percent}
		if s.SwapInfo != nil {
			step.SwapInfo = &domain.SwapInfo{
				AmmKey:     s.SwapInfo.AmmKey,
				Label:      s.SwapInfo.Label,
				InputMint:  s.SwapInfo.InputMint,
				OutputMint: s.SwapInfo.OutputMint,
				InAmount:   s.SwapInfo.InAmount,
				OutAmount:  s.SwapInfo.OutAmount,
				FeeAmount:  s.SwapInfo.FeeAmount,
				FeeMint:    s.SwapInfo.FeeMint,
			}
		}
		plan = append(plan, step)
	}
	return plan
}
