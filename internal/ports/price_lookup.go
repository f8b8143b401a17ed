package ports

import "context"

// PriceLookup da el precio unitario en USD de un símbolo.
// ok=false cuando el símbolo no tiene precio; el estimador lo trata como 0.
type PriceLookup interface {
	Price(ctx context.Context, symbol string) (usd float64, ok bool)
}
