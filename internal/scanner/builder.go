package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/google/uuid"
)

// cycleLegs es la forma de ciclo que construye el scan: ida y vuelta.
const cycleLegs = 2

// Builder arma una ArbitrageOpportunity a partir de dos quotes encadenados.
type Builder struct {
	estimator *Estimator
	now       func() time.Time
}

// NewBuilder crea un Builder con el estimador dado.
func NewBuilder(estimator *Estimator) *Builder {
	return &Builder{estimator: estimator, now: time.Now}
}

// Build calcula el ciclo start → intermediate → start. No aplica umbrales.
// forward cotiza exactamente una unidad entera de start; backward cotiza
// la salida raw de forward de vuelta a start.
func (b *Builder) Build(ctx context.Context, start, intermediate domain.Token, forward, backward domain.Quote) (domain.ArbitrageOpportunity, error) {
	startRaw := start.WholeUnit()
	midRaw, err := forward.OutAmountRaw()
	if err != nil {
		return domain.ArbitrageOpportunity{}, fmt.Errorf("scanner.Build: forward: %w", err)
	}
	finalRaw, err := backward.OutAmountRaw()
	if err != nil {
		return domain.ArbitrageOpportunity{}, fmt.Errorf("scanner.Build: backward: %w", err)
	}

	cycle, ok := domain.ComputeCycle(startRaw, midRaw, finalRaw)
	if !ok {
		return domain.ArbitrageOpportunity{}, fmt.Errorf("scanner.Build: %w: start=%d mid=%d final=%d",
			domain.ErrInvalidAmount, startRaw, midRaw, finalRaw)
	}

	now := b.now()
	amountIn, _ := RawToHuman(int64(startRaw), start.Decimals).Float64()

	return domain.ArbitrageOpportunity{
		ID:            newOpportunityID(now, start.Symbol, intermediate.Symbol),
		TokenIn:       start.Ref(),
		TokenOut:      intermediate.Ref(),
		BuyDex:        domain.ExtractDexLabel(forward.RoutePlan),
		SellDex:       domain.ExtractDexLabel(backward.RoutePlan),
		BuyPrice:      cycle.BuyPrice(),
		SellPrice:     cycle.SellPrice(),
		ProfitUSD:     b.estimator.EstimateUSD(ctx, cycle.ProfitRaw, start),
		ProfitPercent: cycle.ProfitPercent,
		AmountIn:      amountIn,
		EstimatedGas:  domain.EstimatedGas(cycleLegs),
		Timestamp:     now,
		Routes: domain.Routes{
			Forward:  forward,
			Backward: backward,
		},
	}, nil
}

// newOpportunityID: tiempo + par + uuid, único aun dentro del mismo milisegundo.
func newOpportunityID(now time.Time, in, out string) string {
	return fmt.Sprintf("triangular-%d-%s-%s-%s", now.UnixMilli(), in, out, uuid.NewString())
}
