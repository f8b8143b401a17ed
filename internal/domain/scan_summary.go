package domain

import "time"

// ScanSummary es el resumen persistido de un scan: una fila por ejecución.
type ScanSummary struct {
	At            time.Time     `json:"at"`
	Outcome       string        `json:"outcome"`
	Tokens        int           `json:"tokens"`
	Pairs         int           `json:"pairs"`
	Found         int           `json:"found"`
	BestProfitUSD float64       `json:"bestProfitUsd"`
	Duration      time.Duration `json:"duration"`
}
