package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Routes guarda los dos quotes que se ejecutan al aceptar la oportunidad.
type Routes struct {
	Forward  Quote `json:"forward"`
	Backward Quote `json:"backward"`
}

// ArbitrageOpportunity es un ciclo rentable A → B → A listo para mostrarse
// como carta. Es el contrato de hand-off con la capa de presentación.
type ArbitrageOpportunity struct {
	ID            string    `json:"id"`
	TokenIn       TokenRef  `json:"tokenIn"`
	TokenOut      TokenRef  `json:"tokenOut"`
	BuyDex        string    `json:"buyDex"`
	SellDex       string    `json:"sellDex"`
	BuyPrice      float64   `json:"buyPrice"`
	SellPrice     float64   `json:"sellPrice"`
	ProfitUSD     float64   `json:"profitUsd"`
	ProfitPercent float64   `json:"profitPercent"`
	AmountIn      float64   `json:"amountIn"`     // cantidad humana del token de inicio
	EstimatedGas  float64   `json:"estimatedGas"` // SOL
	Timestamp     time.Time `json:"-"`
	Routes        Routes    `json:"routes"`
}

type opportunityAlias ArbitrageOpportunity

type opportunityJSON struct {
	opportunityAlias
	Timestamp int64 `json:"timestamp"` // unix millis
}

// MarshalJSON emite el timestamp en milisegundos unix.
func (o ArbitrageOpportunity) MarshalJSON() ([]byte, error) {
	return json.Marshal(opportunityJSON{
		opportunityAlias: opportunityAlias(o),
		Timestamp:        o.Timestamp.UnixMilli(),
	})
}

// UnmarshalJSON acepta el timestamp en milisegundos unix.
func (o *ArbitrageOpportunity) UnmarshalJSON(data []byte) error {
	var aux opportunityJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*o = ArbitrageOpportunity(aux.opportunityAlias)
	o.Timestamp = time.UnixMilli(aux.Timestamp)
	return nil
}

// CycleKey identifica el ciclo independientemente del momento del scan.
func (o ArbitrageOpportunity) CycleKey() string {
	return o.TokenIn.Mint + ">" + o.TokenOut.Mint
}

// CycleLabel devuelve el ciclo legible, ej. "SOL → USDC → SOL".
func (o ArbitrageOpportunity) CycleLabel() string {
	return fmt.Sprintf("%s → %s → %s", o.TokenIn.Symbol, o.TokenOut.Symbol, o.TokenIn.Symbol)
}

// Valid es la validación final: profit y gas deben ser números finitos.
func (o ArbitrageOpportunity) Valid() bool {
	return isFinite(o.ProfitUSD) && isFinite(o.EstimatedGas)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// SortByProfit ordena in-place por ProfitUSD descendente. Empates:
// ProfitPercent desc, TokenIn.Symbol, TokenOut.Symbol, ID.
func SortByProfit(opps []ArbitrageOpportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		return profitLess(opps[j], opps[i])
	})
}

// profitLess reporta si a va después de b en el orden del mazo.
func profitLess(a, b ArbitrageOpportunity) bool {
	if a.ProfitUSD != b.ProfitUSD {
		return a.ProfitUSD < b.ProfitUSD
	}
	if a.ProfitPercent != b.ProfitPercent {
		return a.ProfitPercent < b.ProfitPercent
	}
	if a.TokenIn.Symbol != b.TokenIn.Symbol {
		return a.TokenIn.Symbol > b.TokenIn.Symbol
	}
	if a.TokenOut.Symbol != b.TokenOut.Symbol {
		return a.TokenOut.Symbol > b.TokenOut.Symbol
	}
	return a.ID > b.ID
}

// RanksBefore reporta si a se muestra antes que b en el mazo.
func RanksBefore(a, b ArbitrageOpportunity) bool {
	return profitLess(b, a)
}
