package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

func dialHub(t *testing.T, h *Hub) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(h.HandleWS))
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func TestHub_RegistersAndUnregisters(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	conn, closeAll := dialHub(t, h)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var ev struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "deck", ev.Type)
	assert.JSONEq(t, `[]`, string(ev.Data))
	assert.Equal(t, 1, h.clientCount())

	h.OnDeck(nil)
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "deck", ev.Type)
	assert.JSONEq(t, `[]`, string(ev.Data))

	closeAll()
	assert.Eventually(t, func() bool { return h.clientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	h := NewHub(func() []domain.ArbitrageOpportunity {
		return []domain.ArbitrageOpportunity{{ID: "a"}}
	})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.Run(ctx) }()

	conn, closeAll := dialHub(t, h)
	defer closeAll()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"id":"a"`)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	h := NewHub(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			h.OnOpportunity(domain.ArbitrageOpportunity{ID: "x"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked without a running hub")
	}
}
