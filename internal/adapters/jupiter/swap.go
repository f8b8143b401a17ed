package jupiter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

const swapPath = "/swap"

// GetSwapTransaction pide al API la transacción de swap para quote, pagada
// por userPublicKey. Devuelve la transacción sin firmar en base64.
// Todos los errores envuelven domain.ErrSwapBuild.
func (c *Client) GetSwapTransaction(ctx context.Context, quote domain.Quote, userPublicKey string) (string, error) {
	quoteJSON, err := json.Marshal(quote)
	if err != nil {
		return "", fmt.Errorf("jupiter.GetSwapTransaction: %w: marshal quote: %w", domain.ErrSwapBuild, err)
	}

	body := swapRequest{
		QuoteResponse:             quoteJSON,
		UserPublicKey:             userPublicKey,
		WrapAndUnwrapSol:          true,
		DynamicComputeUnitLimit:   true,
		PrioritizationFeeLamports: "auto",
	}

	var resp swapResponse
	if err := c.post(ctx, c.base+swapPath, body, &resp); err != nil {
		return "", fmt.Errorf("jupiter.GetSwapTransaction: %w: %w", domain.ErrSwapBuild, err)
	}
	if resp.SwapTransaction == "" {
		return "", fmt.Errorf("jupiter.GetSwapTransaction: %w: empty swapTransaction", domain.ErrSwapBuild)
	}
	return resp.SwapTransaction, nil
}
