package domain

import "strings"

// Etiquetas de DEX que se muestran en las cartas.
const (
	DexRaydium = "Raydium"
	DexOrca    = "Orca"
	DexMeteora = "Meteora"
	DexJupiter = "Jupiter"
	DexUnknown = "Unknown"
)

// ExtractDexLabel reduce un plan de ruta a una etiqueta de DEX mirando solo
// el primer hop. Plan vacío o primer hop sin swapInfo → "Unknown".
// Etiquetas no reconocidas se agrupan como "Jupiter".
func ExtractDexLabel(plan []RoutePlanStep) string {
	if len(plan) == 0 || plan[0].SwapInfo == nil {
		return DexUnknown
	}
	label := strings.ToLower(plan[0].SwapInfo.Label)
	switch {
	case strings.Contains(label, "raydium"):
		return DexRaydium
	case strings.Contains(label, "orca"):
		return DexOrca
	case strings.Contains(label, "meteora"):
		return DexMeteora
	default:
		return DexJupiter
	}
}
