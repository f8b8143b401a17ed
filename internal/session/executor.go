package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

// Stage es el paso de ejecución en el que falló una pata.
type Stage string

const (
	StageBuild   Stage = "build"
	StageSign    Stage = "sign"
	StageSubmit  Stage = "submit"
	StageConfirm Stage = "confirm"
)

// Leg identifica la pata del ciclo.
type Leg string

const (
	LegForward  Leg = "forward"
	LegBackward Leg = "backward"
)

// ExecutionError describe un fallo de ejecución. Signatures contiene las
// transacciones que llegaron a enviarse; Partial indica que la pata de ida
// se confirmó pero la vuelta no, y el usuario tiene el token intermedio.
type ExecutionError struct {
	Stage      Stage
	Leg        Leg
	Signatures []string
	Partial    bool
	Err        error
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("%s leg %s: %v", e.Leg, e.Stage, e.Err)
	if e.Partial {
		msg += " (forward leg landed, holding intermediate token)"
	}
	return msg
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// ExecutionResult es el resultado de aceptar una carta.
type ExecutionResult struct {
	Opportunity domain.ArbitrageOpportunity `json:"opportunity"`
	Signatures  []string                    `json:"signatures"`
}

// Accept ejecuta el ciclo de la carta: ida y luego vuelta, cada una
// construida, firmada, enviada y confirmada. La carta sale del mazo con
// cualquier resultado salvo wallet desconectada o id desconocido.
func (s *Session) Accept(ctx context.Context, id string) (ExecutionResult, error) {
	payer, ok := s.deps.Wallet.PublicKey()
	if !ok {
		return ExecutionResult{}, fmt.Errorf("session.Accept: %w", domain.ErrWalletNotConnected)
	}

	s.execMu.Lock()
	defer s.execMu.Unlock()

	opp, ok := s.take(id)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("session.Accept: %s: %w", id, domain.ErrOpportunityNotFound)
	}
	s.journal(ctx, domain.NewDecision(opp, domain.DecisionAccepted))
	slog.Info("executing cycle", "cycle", opp.CycleLabel(), "profit_usd", opp.ProfitUSD, "payer", payer)

	sigs, err := s.execute(ctx, opp, payer)
	res := ExecutionResult{Opportunity: opp, Signatures: sigs}

	if err != nil {
		d := domain.NewDecision(opp, domain.DecisionFailed)
		d.Signatures = sigs
		d.Error = err.Error()
		s.journal(ctx, d)

		result := "failed"
		var execErr *ExecutionError
		if errors.As(err, &execErr) && execErr.Partial {
			result = "partial"
		}
		s.deps.Metrics.Executed(result)
		slog.Error("execution failed", "cycle", opp.CycleLabel(), "err", err, "signatures", sigs)
		return res, err
	}

	d := domain.NewDecision(opp, domain.DecisionExecuted)
	d.Signatures = sigs
	s.journal(ctx, d)
	s.deps.Metrics.Executed("ok")
	slog.Info("cycle executed", "cycle", opp.CycleLabel(), "signatures", sigs)

	if _, err := s.RefreshBalance(ctx); err != nil {
		slog.Warn("balance refresh failed", "err", err)
	}
	return res, nil
}

func (s *Session) execute(ctx context.Context, opp domain.ArbitrageOpportunity, payer string) ([]string, error) {
	var sigs []string
	legs := []struct {
		leg   Leg
		quote domain.Quote
	}{
		{LegForward, opp.Routes.Forward},
		{LegBackward, opp.Routes.Backward},
	}
	for _, l := range legs {
		sig, stage, err := s.executeLeg(ctx, l.quote, payer)
		if sig != "" {
			sigs = append(sigs, sig)
		}
		if err != nil {
			return sigs, &ExecutionError{
				Stage:      stage,
				Leg:        l.leg,
				Signatures: sigs,
				Partial:    l.leg == LegBackward,
				Err:        err,
			}
		}
	}
	return sigs, nil
}

// executeLeg devuelve la firma en cuanto la transacción se envió, aunque
// la confirmación falle después.
func (s *Session) executeLeg(ctx context.Context, quote domain.Quote, payer string) (string, Stage, error) {
	encoded, err := s.deps.Swaps.GetSwapTransaction(ctx, quote, payer)
	if err != nil {
		return "", StageBuild, err
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", StageBuild, fmt.Errorf("%w: decode transaction: %v", domain.ErrSwapBuild, err)
	}

	signed, err := s.deps.Wallet.SignTransaction(ctx, raw)
	if err != nil {
		return "", StageSign, fmt.Errorf("%w: %w", domain.ErrSignFailed, err)
	}

	sig, err := s.deps.Chain.SendRawTransaction(ctx, signed)
	if err != nil {
		return "", StageSubmit, fmt.Errorf("%w: %w", domain.ErrSubmitFailed, err)
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmTimeout)
	defer cancel()
	if err := s.deps.Chain.ConfirmTransaction(cctx, sig); err != nil {
		return sig, StageConfirm, fmt.Errorf("%w: %w", domain.ErrConfirmFailed, err)
	}
	return sig, "", nil
}
