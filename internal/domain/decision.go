package domain

import "time"

// DecisionKind es el veredicto del usuario (o del executor) sobre una carta.
type DecisionKind string

const (
	DecisionAccepted DecisionKind = "accepted"
	DecisionSkipped  DecisionKind = "skipped"
	DecisionExecuted DecisionKind = "executed"
	DecisionFailed   DecisionKind = "failed"
)

// Decision es una entrada del journal de la sesión.
type Decision struct {
	ID            int64        `json:"id,omitempty"`
	OpportunityID string       `json:"opportunityId"`
	Cycle         string       `json:"cycle"`
	Kind          DecisionKind `json:"kind"`
	ProfitUSD     float64      `json:"profitUsd"`
	Signatures    []string     `json:"signatures,omitempty"`
	Error         string       `json:"error,omitempty"`
	At            time.Time    `json:"at"`
}

// NewDecision arma una decisión a partir de la oportunidad.
func NewDecision(opp ArbitrageOpportunity, kind DecisionKind) Decision {
	return Decision{
		OpportunityID: opp.ID,
		Cycle:         opp.CycleLabel(),
		Kind:          kind,
		ProfitUSD:     opp.ProfitUSD,
		At:            time.Now().UTC(),
	}
}
