// Package server expone la sesión por HTTP (gin) y WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/alejandrodnm/atomicswipe/internal/metrics"
	"github.com/alejandrodnm/atomicswipe/internal/ports"
	"github.com/alejandrodnm/atomicswipe/internal/session"
)

// Server conecta las rutas HTTP con una sesión.
type Server struct {
	sess     *session.Session
	registry *domain.Registry
	journal  ports.Journal
	metrics *metrics.Metrics
	hub     *Hub
	engine  *gin.Engine

	// base es el contexto de los scans lanzados en background.
	base context.Context
}

// New arma el router. registry nil usa el registro por defecto. journal, m y
// hub pueden ser nil; sus rutas responden entonces 404 o 503.
func New(ctx context.Context, sess *session.Session, registry *domain.Registry, journal ports.Journal, m *metrics.Metrics, hub *Hub) *Server {
	if registry == nil {
		registry = domain.DefaultRegistry()
	}
	s := &Server{
		sess:     sess,
		registry: registry,
		journal:  journal,
		metrics:  m,
		hub:      hub,
		engine:   gin.New(),
		base:     ctx,
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/api/health", s.health)

	api := s.engine.Group("/api")
	api.GET("/opportunities", s.listOpportunities)
	api.GET("/opportunities/:id", s.getOpportunity)
	api.POST("/opportunities/:id/accept", s.accept)
	api.POST("/opportunities/:id/skip", s.skip)
	api.POST("/scan", s.scan)
	api.GET("/tokens", s.tokens)
	api.GET("/wallet", s.wallet)
	api.POST("/wallet/connect", s.connectWallet)
	api.POST("/wallet/disconnect", s.disconnectWallet)
	api.GET("/decisions", s.decisions)
	api.GET("/scans", s.scans)

	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	if s.hub != nil {
		s.engine.GET("/ws", gin.WrapF(s.hub.HandleWS))
	}
}

// Handler devuelve el router, para tests y listeners propios.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe sirve en addr hasta que ctx se cancela y luego cierra ordenadamente.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server.ListenAndServe: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server.ListenAndServe: shutdown: %w", err)
		}
		return nil
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	snap := s.sess.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"scanning":   snap.Loading,
		"hasScanned": snap.HasScanned,
		"cards":      len(snap.Deck),
	})
}

func (s *Server) listOpportunities(c *gin.Context) {
	snap := s.sess.Snapshot()
	if snap.Deck == nil {
		snap.Deck = []domain.ArbitrageOpportunity{}
	}
	if c.Query("reset") == "true" {
		s.sess.ResetNewCount()
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) getOpportunity(c *gin.Context) {
	opp, ok := s.sess.Get(c.Param("id"))
	if !ok {
		writeError(c, fmt.Errorf("%s: %w", c.Param("id"), domain.ErrOpportunityNotFound))
		return
	}
	c.JSON(http.StatusOK, opp)
}

func (s *Server) accept(c *gin.Context) {
	res, err := s.sess.Accept(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) skip(c *gin.Context) {
	if err := s.sess.Skip(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type scanRequest struct {
	// Holdings desde los que escanear. Vacío usa los de la wallet si
	// UseWallet está activo, si no el set por defecto.
	Holdings  []domain.Holding `json:"holdings"`
	UseWallet bool             `json:"useWallet"`
}

// scan lanza un refresh en background y responde enseguida.
func (s *Server) scan(c *gin.Context) {
	var req scanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	holdings := req.Holdings
	if len(holdings) == 0 && req.UseWallet {
		var err error
		holdings, err = s.sess.TokenHoldings(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
	}

	done, ok := s.sess.StartRefresh(s.base, holdings)
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "scan already in progress"})
		return
	}
	go func() {
		res := <-done
		slog.Debug("api scan finished", "outcome", res.Outcome, "found", len(res.Opportunities))
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "scanning", "tokens": len(holdings)})
}

type tokenView struct {
	Symbol       string `json:"symbol"`
	Mint         string `json:"mint"`
	Decimals     uint8  `json:"decimals"`
	Logo         string `json:"logo,omitempty"`
	HighPriority bool   `json:"highPriority"`
}

// tokens lista el universo conocido; highPriority marca el set por defecto del scan.
func (s *Server) tokens(c *gin.Context) {
	hp := make(map[string]bool)
	for _, t := range s.registry.HighPriority() {
		hp[t.Mint] = true
	}
	popular := s.registry.Popular()
	out := make([]tokenView, 0, len(popular))
	for _, t := range popular {
		out = append(out, tokenView{
			Symbol:       t.Symbol,
			Mint:         t.Mint,
			Decimals:     t.Decimals,
			Logo:         t.Logo,
			HighPriority: hp[t.Mint],
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) wallet(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Wallet())
}

func (s *Server) connectWallet(c *gin.Context) {
	state, err := s.sess.ConnectWallet(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) disconnectWallet(c *gin.Context) {
	if err := s.sess.DisconnectWallet(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.sess.Wallet())
}

func (s *Server) decisions(c *gin.Context) {
	if s.journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal disabled"})
		return
	}
	out, err := s.journal.Decisions(c.Request.Context(), queryLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if out == nil {
		out = []domain.Decision{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) scans(c *gin.Context) {
	if s.journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal disabled"})
		return
	}
	out, err := s.journal.Scans(c.Request.Context(), queryLimit(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if out == nil {
		out = []domain.ScanSummary{}
	}
	c.JSON(http.StatusOK, out)
}

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || n <= 0 || n > 500 {
		return 50
	}
	return n
}

// writeError traduce errores de dominio y de ejecución a respuestas JSON explícitas.
func writeError(c *gin.Context, err error) {
	var execErr *session.ExecutionError
	switch {
	case errors.As(err, &execErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      err.Error(),
			"stage":      execErr.Stage,
			"leg":        execErr.Leg,
			"partial":    execErr.Partial,
			"signatures": execErr.Signatures,
		})
	case errors.Is(err, domain.ErrOpportunityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrWalletNotConnected):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrWalletUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
