// Package solana es el adapter JSON-RPC del cluster de Solana.
package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

const (
	DefaultEndpoint     = rpc.MainNetBeta_RPC
	defaultPollInterval = 500 * time.Millisecond
)

// ErrTransactionFailed lo devuelve ConfirmTransaction cuando el cluster
// reporta un error de ejecución para la firma.
var ErrTransactionFailed = errors.New("transaction failed on-chain")

// ClientConfig configura el adapter RPC.
type ClientConfig struct {
	Endpoint string
	// PollInterval entre llamadas a getSignatureStatuses al confirmar.
	PollInterval time.Duration
}

// Client implementa ports.ChainClient sobre el cliente rpc de solana-go.
type Client struct {
	rpc          *rpc.Client
	registry     *domain.Registry
	pollInterval time.Duration
}

// NewClient crea el adapter. registry resuelve los símbolos de los holdings;
// nil usa el registro por defecto.
func NewClient(cfg ClientConfig, registry *domain.Registry) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if registry == nil {
		registry = domain.DefaultRegistry()
	}
	return &Client{
		rpc:          rpc.New(cfg.Endpoint),
		registry:     registry,
		pollInterval: cfg.PollInterval,
	}
}

// GetBalance devuelve el balance nativo confirmado en lamports.
func (c *Client) GetBalance(ctx context.Context, address string) (uint64, error) {
	pk, err := solanago.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("solana.GetBalance: parse address: %w", err)
	}
	out, err := c.rpc.GetBalance(ctx, pk, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("solana.GetBalance: %w", err)
	}
	return out.Value, nil
}

// parsedTokenAccount es la forma jsonParsed de una cuenta SPL.
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			TokenAmount struct {
				Amount   string `json:"amount"`
				Decimals int32  `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// GetTokenHoldings lista los balances SPL no nulos del owner.
// Las cuentas del mismo mint se suman.
func (c *Client) GetTokenHoldings(ctx context.Context, owner string) ([]domain.Holding, error) {
	pk, err := solanago.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, fmt.Errorf("solana.GetTokenHoldings: parse owner: %w", err)
	}
	programID := solanago.TokenProgramID
	out, err := c.rpc.GetTokenAccountsByOwner(ctx, pk,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{
			Commitment: rpc.CommitmentConfirmed,
			Encoding:   solanago.EncodingJSONParsed,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("solana.GetTokenHoldings: %w", err)
	}

	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, acc := range out.Value {
		if acc == nil || acc.Account.Data == nil {
			continue
		}
		var parsed parsedTokenAccount
		if err := json.Unmarshal(acc.Account.Data.GetRawJSON(), &parsed); err != nil {
			slog.Debug("skipping unparsable token account", "account", acc.Pubkey.String(), "err", err)
			continue
		}
		info := parsed.Parsed.Info
		raw, err := decimal.NewFromString(info.TokenAmount.Amount)
		if err != nil || info.Mint == "" || raw.IsZero() {
			continue
		}
		amount := raw.Shift(-info.TokenAmount.Decimals)
		if _, ok := totals[info.Mint]; !ok {
			order = append(order, info.Mint)
		}
		totals[info.Mint] = totals[info.Mint].Add(amount)
	}

	holdings := make([]domain.Holding, 0, len(order))
	for _, mint := range order {
		var symbol string
		if tok, ok := c.registry.ByMint(mint); ok {
			symbol = tok.Symbol
		}
		amount, _ := totals[mint].Float64()
		holdings = append(holdings, domain.Holding{Mint: mint, Symbol: symbol, Amount: amount})
	}
	return holdings, nil
}

// SendRawTransaction envía una transacción firmada.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	sig, err := c.rpc.SendRawTransaction(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("solana.SendRawTransaction: %w", err)
	}
	return sig.String(), nil
}

// ConfirmTransaction consulta el estado de la firma hasta que llega a
// confirmed o finalized.
func (c *Client) ConfirmTransaction(ctx context.Context, signature string) error {
	sig, err := solanago.SignatureFromBase58(signature)
	if err != nil {
		return fmt.Errorf("solana.ConfirmTransaction: parse signature: %w", err)
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		done, err := c.checkStatus(ctx, sig)
		if done || err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("solana.ConfirmTransaction: %s: %w", signature, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (c *Client) checkStatus(ctx context.Context, sig solanago.Signature) (bool, error) {
	out, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
	if err != nil {
		// transitorio: se sigue consultando hasta que expire ctx
		slog.Debug("signature status unavailable", "sig", sig.String(), "err", err)
		return false, nil
	}
	if len(out.Value) == 0 || out.Value[0] == nil {
		return false, nil
	}
	st := out.Value[0]
	if st.Err != nil {
		return true, fmt.Errorf("solana.ConfirmTransaction: %w: %v", ErrTransactionFailed, st.Err)
	}
	switch st.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return true, nil
	}
	return false, nil
}
