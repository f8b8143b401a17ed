package ports

import (
	"context"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

// ChainClient es la frontera con el RPC de Solana.
type ChainClient interface {
	// GetBalance devuelve el balance nativo en lamports.
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetTokenHoldings devuelve los balances SPL no nulos del owner.
	GetTokenHoldings(ctx context.Context, owner string) ([]domain.Holding, error)

	// SendRawTransaction envía una transacción firmada y devuelve su firma.
	SendRawTransaction(ctx context.Context, raw []byte) (string, error)

	// ConfirmTransaction bloquea hasta que la firma se confirma, falla
	// on-chain o expira ctx.
	ConfirmTransaction(ctx context.Context, signature string) error
}
