package solana_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/atomicswipe/internal/adapters/solana"
	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

const owner = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// rpcServer answers JSON-RPC calls with handler(method, params) as result.
func rpcServer(t *testing.T, handler func(method string, params []json.RawMessage) any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  handler(req.Method, req.Params),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(srv *httptest.Server) *solana.Client {
	return solana.NewClient(solana.ClientConfig{Endpoint: srv.URL, PollInterval: time.Millisecond}, nil)
}

func TestGetBalance(t *testing.T) {
	srv := rpcServer(t, func(method string, params []json.RawMessage) any {
		assert.Equal(t, "getBalance", method)
		assert.JSONEq(t, `"`+owner+`"`, string(params[0]))
		return map[string]any{"context": map[string]any{"slot": 1}, "value": 2_500_000_000}
	})

	lamports, err := newClient(srv).GetBalance(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, uint64(2_500_000_000), lamports)
	assert.InDelta(t, 2.5, domain.LamportsToSOL(lamports), 1e-12)
}

func TestGetBalance_InvalidAddress(t *testing.T) {
	srv := rpcServer(t, func(string, []json.RawMessage) any { return nil })
	_, err := newClient(srv).GetBalance(context.Background(), "not-base58!")
	assert.Error(t, err)
}

func tokenAccount(mint, amount string, decimals int) map[string]any {
	return map[string]any{
		"pubkey": solanago.NewWallet().PublicKey().String(),
		"account": map[string]any{
			"lamports":   2039280,
			"owner":      solanago.TokenProgramID.String(),
			"executable": false,
			"rentEpoch":  0,
			"data": map[string]any{
				"program": "spl-token",
				"space":   165,
				"parsed": map[string]any{
					"type": "account",
					"info": map[string]any{
						"mint":  mint,
						"owner": owner,
						"tokenAmount": map[string]any{
							"amount":   amount,
							"decimals": decimals,
						},
					},
				},
			},
		},
	}
}

func TestGetTokenHoldings(t *testing.T) {
	unknown := solanago.NewWallet().PublicKey().String()
	srv := rpcServer(t, func(method string, params []json.RawMessage) any {
		assert.Equal(t, "getTokenAccountsByOwner", method)
		assert.Contains(t, string(params[1]), solanago.TokenProgramID.String())
		assert.Contains(t, string(params[2]), "jsonParsed")
		return map[string]any{
			"context": map[string]any{"slot": 1},
			"value": []any{
				tokenAccount(domain.MintUSDC, "12500000", 6),
				tokenAccount(unknown, "0", 9),
				tokenAccount(domain.MintUSDC, "500000", 6),
				tokenAccount(unknown, "1000000000", 9),
				nil,
				map[string]any{"pubkey": unknown, "account": map[string]any{"lamports": 0, "owner": solanago.TokenProgramID.String()}},
			},
		}
	})

	holdings, err := newClient(srv).GetTokenHoldings(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	assert.Equal(t, domain.MintUSDC, holdings[0].Mint)
	assert.Equal(t, "USDC", holdings[0].Symbol)
	assert.InDelta(t, 13.0, holdings[0].Amount, 1e-9)

	assert.Equal(t, unknown, holdings[1].Mint)
	assert.Empty(t, holdings[1].Symbol)
	assert.InDelta(t, 1.0, holdings[1].Amount, 1e-9)
}

func TestSendRawTransaction(t *testing.T) {
	want := solanago.Signature{1, 2, 3}
	srv := rpcServer(t, func(method string, params []json.RawMessage) any {
		assert.Equal(t, "sendTransaction", method)
		return want.String()
	})

	sig, err := newClient(srv).SendRawTransaction(context.Background(), []byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, want.String(), sig)
}

func statusResult(status any) any {
	return map[string]any{
		"context": map[string]any{"slot": 1},
		"value":   []any{status},
	}
}

func TestConfirmTransaction_PollsUntilConfirmed(t *testing.T) {
	var calls atomic.Int32
	srv := rpcServer(t, func(method string, _ []json.RawMessage) any {
		assert.Equal(t, "getSignatureStatuses", method)
		switch calls.Add(1) {
		case 1:
			return statusResult(nil)
		case 2:
			return statusResult(map[string]any{"slot": 1, "err": nil, "confirmationStatus": "processed"})
		default:
			return statusResult(map[string]any{"slot": 1, "err": nil, "confirmationStatus": "confirmed"})
		}
	})

	err := newClient(srv).ConfirmTransaction(context.Background(), solanago.Signature{9}.String())
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestConfirmTransaction_OnChainError(t *testing.T) {
	srv := rpcServer(t, func(string, []json.RawMessage) any {
		return statusResult(map[string]any{
			"slot":               1,
			"err":                map[string]any{"InstructionError": []any{0, "Custom"}},
			"confirmationStatus": "confirmed",
		})
	})

	err := newClient(srv).ConfirmTransaction(context.Background(), solanago.Signature{9}.String())
	assert.ErrorIs(t, err, solana.ErrTransactionFailed)
}

func TestConfirmTransaction_Deadline(t *testing.T) {
	srv := rpcServer(t, func(string, []json.RawMessage) any { return statusResult(nil) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := newClient(srv).ConfirmTransaction(ctx, solanago.Signature{9}.String())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
