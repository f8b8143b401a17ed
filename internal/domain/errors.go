package domain

import "errors"

var (
	// ErrNoRoute indica que la API no encontró ruta para el par.
	ErrNoRoute = errors.New("no route found")
	// ErrInvalidAmount indica una cantidad raw no parseable.
	ErrInvalidAmount = errors.New("invalid raw amount")

	// ErrWalletUnavailable: no hay keypair configurado para conectar.
	ErrWalletUnavailable = errors.New("wallet unavailable")
	// ErrWalletNotConnected: la operación requiere una wallet conectada.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// Fallos de ejecución. Nunca se silencian: hay fondos reales en juego.
	ErrSwapBuild     = errors.New("swap transaction build failed")
	ErrSignFailed    = errors.New("transaction signing failed")
	ErrSubmitFailed  = errors.New("transaction submission failed")
	ErrConfirmFailed = errors.New("transaction confirmation failed")

	// ErrOpportunityNotFound: el id no está en el mazo actual.
	ErrOpportunityNotFound = errors.New("opportunity not found")
)
