package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Quote es una cotización del routing API para un swap de un solo sentido.
// Las cantidades son enteros raw como string, tal cual los devuelve la API.
type Quote struct {
	InputMint            string          `json:"inputMint"`
	InAmount             string          `json:"inAmount"`
	OutputMint           string          `json:"outputMint"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold,omitempty"`
	SwapMode             string          `json:"swapMode,omitempty"`
	SlippageBps          int             `json:"slippageBps"`
	PriceImpactPct       float64         `json:"priceImpactPct,string"`
	RoutePlan            []RoutePlanStep `json:"routePlan"`
	ContextSlot          uint64          `json:"contextSlot,omitempty"`

	// Raw es el JSON original de la API. Se reenvía intacto a /swap.
	Raw json.RawMessage `json:"-"`
}

// RoutePlanStep es un hop del plan de ruta.
type RoutePlanStep struct {
	SwapInfo *SwapInfo `json:"swapInfo,omitempty"`
	Percent  int       `json:"percent"`
}

// SwapInfo describe el pool/AMM usado en un hop.
type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount"`
	FeeMint    string `json:"feeMint"`
}

// InAmountRaw parsea InAmount como entero sin signo.
func (q Quote) InAmountRaw() (uint64, error) {
	return parseRaw("inAmount", q.InAmount)
}

// OutAmountRaw parsea OutAmount como entero sin signo.
func (q Quote) OutAmountRaw() (uint64, error) {
	return parseRaw("outAmount", q.OutAmount)
}

// MarshalJSON reenvía el JSON original cuando existe, para que el quote
// entregado a /swap sea exactamente el que devolvió la API.
func (q Quote) MarshalJSON() ([]byte, error) {
	if len(q.Raw) > 0 {
		return q.Raw, nil
	}
	type plain Quote
	return json.Marshal(plain(q))
}

// UnmarshalJSON decodifica el quote y conserva el JSON original.
func (q *Quote) UnmarshalJSON(data []byte) error {
	type plain Quote
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*q = Quote(p)
	q.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func parseRaw(field, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidAmount, field, s)
	}
	return v, nil
}
