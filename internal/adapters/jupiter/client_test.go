package jupiter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alejandrodnm/atomicswipe/internal/adapters/jupiter"
	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(srv *httptest.Server) *jupiter.Client {
	return jupiter.NewClient(jupiter.ClientConfig{
		BaseURL:       srv.URL,
		SlippageBps:   50,
		RatePerSecond: 1000,
		RetryWait:     time.Millisecond,
	})
}

func loadFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("../../../testdata/fixtures/jupiter_quote_sol_usdc.json")
	require.NoError(t, err)
	return data
}

func TestQuote_Success(t *testing.T) {
	data := loadFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, domain.MintSOL, q.Get("inputMint"))
		assert.Equal(t, domain.MintUSDC, q.Get("outputMint"))
		assert.Equal(t, "1000000000", q.Get("amount"))
		assert.Equal(t, "50", q.Get("slippageBps"))
		assert.Equal(t, "false", q.Get("onlyDirectRoutes"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	defer srv.Close()

	client := newTestClient(srv)
	quote, ok := client.GetQuote(context.Background(), domain.MintSOL, domain.MintUSDC, 1_000_000_000)
	require.True(t, ok)

	out, err := quote.OutAmountRaw()
	require.NoError(t, err)
	assert.Equal(t, uint64(150_123_456), out)
	assert.InDelta(t, 0.0001, quote.PriceImpactPct, 1e-12)
	require.Len(t, quote.RoutePlan, 1)
	assert.Equal(t, domain.DexRaydium, domain.ExtractDexLabel(quote.RoutePlan))

	// el JSON original se conserva para /swap
	assert.JSONEq(t, string(data), string(quote.Raw))
}

func TestQuote_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Could not find any route","errorCode":"COULD_NOT_FIND_ANY_ROUTE"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)

	_, err := client.Quote(context.Background(), "a", "b", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoRoute)

	var apiErr *jupiter.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	_, ok := client.GetQuote(context.Background(), "a", "b", 1)
	assert.False(t, ok)
}

func TestQuote_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad mint"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Quote(context.Background(), "a", "b", 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoRoute)
	assert.Contains(t, err.Error(), "bad mint")
	assert.Equal(t, int32(1), calls.Load())
}

func TestQuote_RetriesServerErrors(t *testing.T) {
	data := loadFixture(t)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	_, ok := newTestClient(srv).GetQuote(context.Background(), domain.MintSOL, domain.MintUSDC, 1)
	assert.True(t, ok)
	assert.Equal(t, int32(3), calls.Load())
}

func TestQuote_ServerErrorExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, ok := newTestClient(srv).GetQuote(context.Background(), "a", "b", 1)
	assert.False(t, ok)
	assert.Equal(t, int32(4), calls.Load())
}

func TestQuote_InvalidOutAmount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"inputMint":"a","inAmount":"1","outputMint":"b","outAmount":"NaN","routePlan":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Quote(context.Background(), "a", "b", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestQuote_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	_, ok := newTestClient(srv).GetQuote(context.Background(), "a", "b", 1)
	assert.False(t, ok)
}

func TestQuote_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, ok := newTestClient(srv).GetQuote(ctx, "a", "b", 1)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGetSwapTransaction_Success(t *testing.T) {
	data := loadFixture(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/quote" {
			w.Write(data)
			return
		}
		assert.Equal(t, "/swap", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, string(data), string(body["quoteResponse"]))
		assert.JSONEq(t, `"Payer1111"`, string(body["userPublicKey"]))
		assert.JSONEq(t, `true`, string(body["wrapAndUnwrapSol"]))
		assert.JSONEq(t, `true`, string(body["dynamicComputeUnitLimit"]))
		assert.JSONEq(t, `"auto"`, string(body["prioritizationFeeLamports"]))

		w.Write([]byte(`{"swapTransaction":"AQID","lastValidBlockHeight":123}`))
	}))
	defer srv.Close()

	client := newTestClient(srv)
	quote, ok := client.GetQuote(context.Background(), domain.MintSOL, domain.MintUSDC, 1_000_000_000)
	require.True(t, ok)

	tx, err := client.GetSwapTransaction(context.Background(), quote, "Payer1111")
	require.NoError(t, err)
	assert.Equal(t, "AQID", tx)
}

func TestGetSwapTransaction_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty transaction", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"swapTransaction":""}`))
		}},
		{"client error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":"invalid quote"}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestClient(srv).GetSwapTransaction(context.Background(), domain.Quote{InAmount: "1", OutAmount: "1"}, "Payer")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrSwapBuild)
		})
	}
}
