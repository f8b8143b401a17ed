package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/alejandrodnm/atomicswipe/internal/metrics"
	"github.com/alejandrodnm/atomicswipe/internal/ports"
)

// Config contiene la configuración del scanner.
type Config struct {
	Filter FilterConfig
	// PairDelay es la pausa después de evaluar cada par (start, intermedio).
	PairDelay time.Duration
	// TokenDelay es la pausa después de cada token de inicio.
	TokenDelay time.Duration
	// QuoteTimeout acota cada request de quote. 0 = sin límite propio.
	QuoteTimeout time.Duration
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		Filter:       DefaultFilterConfig(),
		PairDelay:    200 * time.Millisecond,
		TokenDelay:   300 * time.Millisecond,
		QuoteTimeout: 10 * time.Second,
	}
}

// State es el estado del scanner.
type State int

const (
	StateIdle State = iota
	StateScanning
)

func (s State) String() string {
	if s == StateScanning {
		return "scanning"
	}
	return "idle"
}

// Outcome describe cómo terminó un scan.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeRejected  Outcome = "rejected"  // ya había un scan activo
	OutcomeFailed    Outcome = "failed"    // fallo fuera del loop por par
	OutcomeCancelled Outcome = "cancelled" // ctx cancelado a mitad de scan
)

// Result es el resultado de un scan. Opportunities está vacío salvo en
// OutcomeCompleted.
type Result struct {
	Opportunities  []domain.ArbitrageOpportunity
	Outcome        Outcome
	Err            error
	Tokens         int
	PairsEvaluated int
	PairsSkipped   int
	Duration       time.Duration
}

// Scanner es el orquestador del scan de arbitraje triangular.
// Un solo scan a la vez: una llamada concurrente se rechaza, no se encola.
type Scanner struct {
	cfg      Config
	quotes   ports.QuoteProvider
	registry *domain.Registry
	builder  *Builder
	filter   *Filter
	metrics  *metrics.Metrics

	mu    sync.Mutex
	state State
}

// New crea un Scanner con todas las dependencias inyectadas.
// registry nil usa el registro por defecto; m puede ser nil.
func New(
	cfg Config,
	quotes ports.QuoteProvider,
	prices ports.PriceLookup,
	registry *domain.Registry,
	m *metrics.Metrics,
) *Scanner {
	if registry == nil {
		registry = domain.DefaultRegistry()
	}
	return &Scanner{
		cfg:      cfg,
		quotes:   quotes,
		registry: registry,
		builder:  NewBuilder(NewEstimator(prices)),
		filter:   NewFilter(cfg.Filter),
		metrics:  m,
	}
}

// State devuelve el estado actual.
func (s *Scanner) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Scanner) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateScanning {
		return false
	}
	s.state = StateScanning
	return true
}

func (s *Scanner) end() {
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}

// Scan busca ciclos start → intermedio → start para cada token candidato.
// Los candidatos son los holdings resueltos contra el registro, o el set de
// alta prioridad si holdings está vacío. Cada oportunidad aceptada se entrega
// a onFound (puede ser nil) en el momento en que se encuentra.
//
// Scan nunca devuelve error: los fallos por par se registran y se saltan, y
// un fallo global devuelve Result con OutcomeFailed y lista vacía.
func (s *Scanner) Scan(ctx context.Context, holdings []domain.Holding, onFound func(domain.ArbitrageOpportunity)) (res Result) {
	if !s.begin() {
		slog.Info("scan already in progress")
		s.metrics.ScanFinished(string(OutcomeRejected), 0)
		return Result{Outcome: OutcomeRejected}
	}
	start := time.Now()
	defer s.end()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("scanner.Scan: %v", r)
			slog.Error("scan failed", "err", err)
			res = Result{Outcome: OutcomeFailed, Err: err}
		}
		res.Duration = time.Since(start)
		s.metrics.ScanFinished(string(res.Outcome), res.Duration)
	}()

	candidates := s.candidates(holdings)
	slog.Info("scan starting", "tokens", len(candidates), "user_tokens", len(holdings) > 0)

	run := &scanRun{
		onFound: onFound,
		seen:    make(map[string]bool),
	}
	for _, tok := range candidates {
		if err := s.scanToken(ctx, tok, run); err != nil {
			return s.cancelled(err, run)
		}
		if err := sleep(ctx, s.cfg.TokenDelay); err != nil {
			return s.cancelled(err, run)
		}
	}

	opps := s.filter.Finalize(run.found)
	slog.Info("scan complete",
		"found", len(run.found),
		"valid", len(opps),
		"pairs", run.pairs,
		"skipped", run.skipped,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return Result{
		Opportunities:  opps,
		Outcome:        OutcomeCompleted,
		Tokens:         len(candidates),
		PairsEvaluated: run.pairs,
		PairsSkipped:   run.skipped,
	}
}

// scanRun acumula el estado de un scan en curso.
type scanRun struct {
	onFound func(domain.ArbitrageOpportunity)
	found   []domain.ArbitrageOpportunity
	seen    map[string]bool // CycleKey
	pairs   int
	skipped int
}

func (s *Scanner) cancelled(err error, run *scanRun) Result {
	slog.Info("scan cancelled", "err", err, "found", len(run.found))
	return Result{
		Outcome:        OutcomeCancelled,
		Err:            err,
		PairsEvaluated: run.pairs,
		PairsSkipped:   run.skipped,
	}
}

// candidates resuelve los tokens de inicio del scan.
func (s *Scanner) candidates(holdings []domain.Holding) []domain.Token {
	if len(holdings) == 0 {
		return s.registry.HighPriority()
	}
	return s.registry.Resolve(holdings)
}

// scanToken evalúa start contra cada intermedio de alta prioridad.
// Solo devuelve error si ctx se canceló.
func (s *Scanner) scanToken(ctx context.Context, start domain.Token, run *scanRun) error {
	slog.Debug("finding triangular arbitrage", "token", start.Symbol)

	for _, mid := range s.registry.HighPriority() {
		if mid.Mint == start.Mint {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		opp, found, evaluated := s.evaluatePair(ctx, start, mid)
		if found && !run.seen[opp.CycleKey()] {
			run.seen[opp.CycleKey()] = true
			run.found = append(run.found, opp)
			s.metrics.OpportunityFound()
			slog.Info("opportunity found",
				"cycle", opp.CycleLabel(),
				"profit_usd", opp.ProfitUSD,
				"profit_pct", opp.ProfitPercent,
			)
			emit(run.onFound, opp)
		}
		if !evaluated {
			if ctx.Err() == nil {
				run.skipped++
			}
			continue
		}
		run.pairs++

		if err := sleep(ctx, s.cfg.PairDelay); err != nil {
			return err
		}
	}
	return nil
}

// evaluatePair cotiza ida y vuelta y aplica el gate. evaluated es false si
// faltó algún quote o la evaluación falló; un panic aquí no aborta el scan.
func (s *Scanner) evaluatePair(ctx context.Context, start, mid domain.Token) (opp domain.ArbitrageOpportunity, found, evaluated bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("pair evaluation failed", "pair", pairLabel(start, mid), "panic", r)
			opp, found, evaluated = domain.ArbitrageOpportunity{}, false, false
		}
	}()

	amountIn := start.WholeUnit()
	if amountIn == 0 {
		return opp, false, false
	}

	forward, ok := s.quote(ctx, start.Mint, mid.Mint, amountIn)
	if !ok {
		return opp, false, false
	}
	midAmount, err := forward.OutAmountRaw()
	if err != nil || midAmount == 0 {
		slog.Debug("unusable forward quote", "pair", pairLabel(start, mid), "out", forward.OutAmount)
		return opp, false, false
	}

	backward, ok := s.quote(ctx, mid.Mint, start.Mint, midAmount)
	if !ok {
		return opp, false, false
	}

	s.metrics.PairEvaluated()
	opp, err = s.builder.Build(ctx, start, mid, forward, backward)
	if err != nil {
		slog.Debug("build failed", "pair", pairLabel(start, mid), "err", err)
		return opp, false, true
	}
	return opp, s.filter.Passes(opp), true
}

// quote pide un quote con el timeout por request configurado.
func (s *Scanner) quote(ctx context.Context, in, out string, amount uint64) (domain.Quote, bool) {
	if s.cfg.QuoteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.QuoteTimeout)
		defer cancel()
	}
	q, ok := s.quotes.GetQuote(ctx, in, out, amount)
	s.metrics.QuoteRequested(ok)
	return q, ok
}

// emit entrega la oportunidad al subscriber. Un panic del subscriber se
// registra y no corta el scan.
func emit(onFound func(domain.ArbitrageOpportunity), opp domain.ArbitrageOpportunity) {
	if onFound == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("opportunity subscriber panicked", "id", opp.ID, "panic", r)
		}
	}()
	onFound(opp)
}

// sleep espera d respetando el contexto.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func pairLabel(start, mid domain.Token) string {
	return start.Symbol + "→" + mid.Symbol
}
