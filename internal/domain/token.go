package domain

import "strings"

// maxDecimals es el máximo de decimales cuya unidad entera (10^d) cabe en un uint64.
const maxDecimals = 19

// Token es un activo SPL conocido por el registro estático.
// Inmutable: el registro lo entrega por valor.
type Token struct {
	Symbol      string
	Mint        string
	Decimals    uint8
	Logo        string
	CoingeckoID string // opcional
}

// TokenRef es el snapshot del token que viaja dentro de una oportunidad.
// Nunca es una referencia viva al registro.
type TokenRef struct {
	Symbol   string `json:"symbol"`
	Mint     string `json:"mint"`
	Logo     string `json:"logo"`
	Decimals uint8  `json:"decimals"`
}

// Ref copia los campos de presentación del token.
func (t Token) Ref() TokenRef {
	return TokenRef{
		Symbol:   t.Symbol,
		Mint:     t.Mint,
		Logo:     t.Logo,
		Decimals: t.Decimals,
	}
}

// WholeUnit devuelve 10^decimals: la cantidad raw de exactamente una unidad del token.
// Devuelve 0 si los decimales no caben en un uint64.
func (t Token) WholeUnit() uint64 {
	if t.Decimals > maxDecimals {
		return 0
	}
	unit := uint64(1)
	for i := uint8(0); i < t.Decimals; i++ {
		unit *= 10
	}
	return unit
}

// Holding es un balance reportado por la wallet del usuario.
// Es la forma en que el usuario entrega su lista de tokens al scan.
type Holding struct {
	Mint   string  `json:"mint"`
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
}

// genericDecimals son los decimales asumidos para mints fuera del registro.
const genericDecimals = 9

// GenericToken construye la entrada genérica para un mint desconocido:
// 9 decimales y el logo por defecto.
func GenericToken(mint, symbol string) Token {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		symbol = shortMint(mint)
	}
	return Token{
		Symbol:   symbol,
		Mint:     mint,
		Decimals: genericDecimals,
		Logo:     DefaultLogo,
	}
}

func shortMint(mint string) string {
	if len(mint) <= 4 {
		return mint
	}
	return mint[:4] + "…"
}
