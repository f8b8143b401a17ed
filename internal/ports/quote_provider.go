package ports

import (
	"context"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

// QuoteProvider cotiza swaps de un solo sentido contra el routing API.
type QuoteProvider interface {
	// GetQuote nunca falla hacia el caller: cualquier error de transporte,
	// status o decode se reporta como ok=false (sin ruta).
	GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64) (quote domain.Quote, ok bool)
}

// SwapProvider construye la transacción serializada para un quote.
type SwapProvider interface {
	// GetSwapTransaction devuelve la transacción sin firmar en base64.
	GetSwapTransaction(ctx context.Context, quote domain.Quote, userPublicKey string) (string, error)
}
