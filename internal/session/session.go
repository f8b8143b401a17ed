// Package session es el estado de una sesión de swipe: el mazo de cartas,
// la wallet conectada y las decisiones del usuario sobre cada carta.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/alejandrodnm/atomicswipe/internal/metrics"
	"github.com/alejandrodnm/atomicswipe/internal/ports"
	"github.com/alejandrodnm/atomicswipe/internal/scanner"
)

// ErrScanFailed es el mensaje que ve el usuario cuando un scan falla entero.
var ErrScanFailed = errors.New("failed to scan opportunities")

// Listener recibe los cambios del mazo. Las llamadas son síncronas; una
// implementación lenta debe delegar a su propia goroutine.
type Listener interface {
	OnOpportunity(opp domain.ArbitrageOpportunity)
	OnDeck(deck []domain.ArbitrageOpportunity)
}

// OpportunityScanner es lo que la sesión necesita del scanner.
type OpportunityScanner interface {
	Scan(ctx context.Context, holdings []domain.Holding, onFound func(domain.ArbitrageOpportunity)) scanner.Result
}

// Deps agrupa los colaboradores de la sesión. Journal y Metrics son opcionales.
type Deps struct {
	Scanner   OpportunityScanner
	Swaps     ports.SwapProvider
	Chain     ports.ChainClient
	Wallet    ports.Wallet
	Journal   ports.Journal
	Metrics   *metrics.Metrics
	Listeners []Listener
}

// Config contiene los tiempos de ejecución.
type Config struct {
	// ConfirmTimeout acota la espera de confirmación de cada pata.
	ConfirmTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{ConfirmTimeout: 60 * time.Second}
}

// Snapshot es una copia consistente del estado visible.
type Snapshot struct {
	Deck       []domain.ArbitrageOpportunity `json:"deck"`
	Loading    bool                          `json:"loading"`
	Error      string                        `json:"error,omitempty"`
	HasScanned bool                          `json:"hasScanned"`
	NewCount   int                           `json:"newCount"`
	Wallet     domain.WalletState            `json:"wallet"`
}

// Session coordina scans, mazo, wallet y ejecución. Segura para uso concurrente.
type Session struct {
	cfg  Config
	deps Deps

	mu         sync.RWMutex
	deck       []domain.ArbitrageOpportunity
	loading    bool
	errMsg     string
	hasScanned bool
	newCount   int
	holdings   []domain.Holding
	wallet     domain.WalletState
	// decided son los ids sacados del mazo durante el scan en curso; la
	// lista final del scanner no los conoce y no deben volver.
	decided map[string]struct{}

	execMu sync.Mutex // una ejecución a la vez
}

func New(cfg Config, deps Deps) *Session {
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = DefaultConfig().ConfirmTimeout
	}
	return &Session{cfg: cfg, deps: deps, decided: make(map[string]struct{})}
}

// AddListener registra un listener. Llamar antes del primer Refresh.
func (s *Session) AddListener(l Listener) {
	s.mu.Lock()
	s.deps.Listeners = append(s.deps.Listeners, l)
	s.mu.Unlock()
}

// Refresh vacía el mazo y lo reconstruye con un scan nuevo. Las cartas llegan
// incrementalmente a los listeners; al final el mazo es la lista validada.
// Si ya hay un scan en curso devuelve OutcomeRejected sin tocar el mazo.
func (s *Session) Refresh(ctx context.Context, holdings []domain.Holding) scanner.Result {
	prev, ok := s.beginScan(holdings)
	if !ok {
		slog.Info("scan already in progress")
		return scanner.Result{Outcome: scanner.OutcomeRejected}
	}
	return s.runScan(ctx, holdings, prev)
}

// StartRefresh lanza el scan en background. Con un scan ya en curso devuelve
// ok=false sin lanzar nada; si no, el canal recibe el resultado al terminar.
func (s *Session) StartRefresh(ctx context.Context, holdings []domain.Holding) (<-chan scanner.Result, bool) {
	prev, ok := s.beginScan(holdings)
	if !ok {
		return nil, false
	}
	done := make(chan scanner.Result, 1)
	go func() {
		done <- s.runScan(ctx, holdings, prev)
	}()
	return done, true
}

// beginScan marca loading bajo el lock y devuelve el mazo previo.
func (s *Session) beginScan(holdings []domain.Holding) ([]domain.ArbitrageOpportunity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return nil, false
	}
	prev := s.deck
	s.loading = true
	s.errMsg = ""
	s.deck = nil
	s.decided = make(map[string]struct{})
	s.holdings = slices.Clone(holdings)
	return prev, true
}

func (s *Session) runScan(ctx context.Context, holdings []domain.Holding, prev []domain.ArbitrageOpportunity) scanner.Result {
	res := s.deps.Scanner.Scan(ctx, holdings, s.addOpportunity)

	s.mu.Lock()
	s.loading = false
	switch res.Outcome {
	case scanner.OutcomeCompleted:
		s.deck = slices.DeleteFunc(slices.Clone(res.Opportunities), func(o domain.ArbitrageOpportunity) bool {
			_, gone := s.decided[o.ID]
			return gone
		})
		s.hasScanned = true
	case scanner.OutcomeFailed:
		s.deck = nil
		s.errMsg = ErrScanFailed.Error()
		s.hasScanned = true
	case scanner.OutcomeRejected:
		s.deck = prev
	case scanner.OutcomeCancelled:
		// se conservan las cartas que ya habían llegado
	}
	deck := slices.Clone(s.deck)
	s.mu.Unlock()

	s.deps.Metrics.DeckSize(len(deck))
	s.recordScan(ctx, res)
	if res.Outcome == scanner.OutcomeCompleted || res.Outcome == scanner.OutcomeFailed {
		s.notifyDeck(deck)
	}
	return res
}

// addOpportunity es el callback incremental del scanner.
func (s *Session) addOpportunity(opp domain.ArbitrageOpportunity) {
	s.mu.Lock()
	_, gone := s.decided[opp.ID]
	if gone || slices.ContainsFunc(s.deck, func(o domain.ArbitrageOpportunity) bool { return o.ID == opp.ID }) {
		s.mu.Unlock()
		return
	}
	i, _ := slices.BinarySearchFunc(s.deck, opp, func(a, b domain.ArbitrageOpportunity) int {
		if domain.RanksBefore(a, b) {
			return -1
		}
		return 1
	})
	s.deck = slices.Insert(s.deck, i, opp)
	s.newCount++
	n := len(s.deck)
	s.mu.Unlock()

	s.deps.Metrics.DeckSize(n)
	s.notifyOpportunity(opp)
}

func (s *Session) listeners() []Listener {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.deps.Listeners)
}

func (s *Session) notifyOpportunity(opp domain.ArbitrageOpportunity) {
	for _, l := range s.listeners() {
		safeCall(func() { l.OnOpportunity(opp) })
	}
}

func (s *Session) notifyDeck(deck []domain.ArbitrageOpportunity) {
	for _, l := range s.listeners() {
		safeCall(func() { l.OnDeck(slices.Clone(deck)) })
	}
}

// safeCall aísla a la sesión de un listener que entra en pánico.
func safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("listener panicked", "panic", r)
		}
	}()
	fn()
}

func (s *Session) recordScan(ctx context.Context, res scanner.Result) {
	if s.deps.Journal == nil {
		return
	}
	sum := domain.ScanSummary{
		At:       time.Now(),
		Outcome:  string(res.Outcome),
		Tokens:   res.Tokens,
		Pairs:    res.PairsEvaluated,
		Found:    len(res.Opportunities),
		Duration: res.Duration,
	}
	if len(res.Opportunities) > 0 {
		sum.BestProfitUSD = res.Opportunities[0].ProfitUSD
	}
	if err := s.deps.Journal.RecordScan(context.WithoutCancel(ctx), sum); err != nil {
		slog.Warn("journal scan failed", "err", err)
	}
}

// Deck devuelve una copia del mazo ordenado.
func (s *Session) Deck() []domain.ArbitrageOpportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.deck)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Deck:       slices.Clone(s.deck),
		Loading:    s.loading,
		Error:      s.errMsg,
		HasScanned: s.hasScanned,
		NewCount:   s.newCount,
		Wallet:     s.wallet,
	}
}

func (s *Session) ResetNewCount() {
	s.mu.Lock()
	s.newCount = 0
	s.mu.Unlock()
}

// Holdings devuelve los holdings del último Refresh.
func (s *Session) Holdings() []domain.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.holdings)
}

// Get busca una carta por id.
func (s *Session) Get(id string) (domain.ArbitrageOpportunity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return domain.ArbitrageOpportunity{}, false
	}
	return s.deck[i], true
}

func (s *Session) indexOf(id string) int {
	return slices.IndexFunc(s.deck, func(o domain.ArbitrageOpportunity) bool { return o.ID == id })
}

// take saca la carta del mazo.
func (s *Session) take(id string) (domain.ArbitrageOpportunity, bool) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.ArbitrageOpportunity{}, false
	}
	opp := s.deck[i]
	s.deck = slices.Delete(s.deck, i, i+1)
	s.decided[id] = struct{}{}
	n := len(s.deck)
	s.mu.Unlock()

	s.deps.Metrics.DeckSize(n)
	return opp, true
}

// Skip descarta la carta y registra la decisión.
func (s *Session) Skip(ctx context.Context, id string) error {
	opp, ok := s.take(id)
	if !ok {
		return fmt.Errorf("session.Skip: %s: %w", id, domain.ErrOpportunityNotFound)
	}
	s.journal(ctx, domain.NewDecision(opp, domain.DecisionSkipped))
	slog.Info("card skipped", "cycle", opp.CycleLabel(), "profit_usd", opp.ProfitUSD)
	return nil
}

// journal registra una decisión; un fallo del journal no afecta a la sesión.
func (s *Session) journal(ctx context.Context, d domain.Decision) {
	if s.deps.Journal == nil {
		return
	}
	if _, err := s.deps.Journal.Record(context.WithoutCancel(ctx), d); err != nil {
		slog.Warn("journal decision failed", "id", d.OpportunityID, "kind", d.Kind, "err", err)
	}
}
