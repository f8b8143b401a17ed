package jupiter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

const quotePath = "/quote"

// Quote pide una cotización exact-in de amount unidades raw de inputMint.
// Una respuesta de "sin ruta" se reporta como domain.ErrNoRoute.
func (c *Client) Quote(ctx context.Context, inputMint, outputMint string, amount uint64) (domain.Quote, error) {
	params := url.Values{}
	params.Set("inputMint", inputMint)
	params.Set("outputMint", outputMint)
	params.Set("amount", strconv.FormatUint(amount, 10))
	params.Set("slippageBps", strconv.Itoa(c.slippageBps))
	params.Set("onlyDirectRoutes", "false")

	var raw json.RawMessage
	if err := c.get(ctx, c.base+quotePath+"?"+params.Encode(), &raw); err != nil {
		if isNoRoute(err) {
			return domain.Quote{}, fmt.Errorf("jupiter.Quote: %w: %w", domain.ErrNoRoute, err)
		}
		return domain.Quote{}, fmt.Errorf("jupiter.Quote: %w", err)
	}

	var dto quoteResponse
	if err := json.Unmarshal(raw, &dto); err != nil {
		return domain.Quote{}, fmt.Errorf("jupiter.Quote: decode: %w", err)
	}
	q, err := mapQuote(dto, raw)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("jupiter.Quote: %w", err)
	}
	return q, nil
}

// GetQuote implementa ports.QuoteProvider: cualquier fallo se reporta como
// ok=false. El scan no distingue "sin ruta" de "API caída".
func (c *Client) GetQuote(ctx context.Context, inputMint, outputMint string, amount uint64) (domain.Quote, bool) {
	q, err := c.Quote(ctx, inputMint, outputMint, amount)
	if err != nil {
		slog.Debug("quote unavailable",
			"input", inputMint,
			"output", outputMint,
			"amount", amount,
			"err", err,
		)
		return domain.Quote{}, false
	}
	return q, true
}
