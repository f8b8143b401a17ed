package domain

// Registry indexa el universo estático de tokens.
// Es de solo lectura después de construido; seguro para uso concurrente.
type Registry struct {
	popular      []Token
	highPriority []Token
	byMint       map[string]Token
	bySymbol     map[string]Token
}

// NewRegistry construye un registro a partir de una lista de tokens y los
// símbolos de alta prioridad. Mints repetidos se quedan con la primera entrada;
// símbolos de prioridad desconocidos se ignoran.
func NewRegistry(tokens []Token, highPriority []string) *Registry {
	r := &Registry{
		byMint:   make(map[string]Token, len(tokens)),
		bySymbol: make(map[string]Token, len(tokens)),
	}
	for _, t := range tokens {
		if _, dup := r.byMint[t.Mint]; dup {
			continue
		}
		r.byMint[t.Mint] = t
		if _, ok := r.bySymbol[t.Symbol]; !ok {
			r.bySymbol[t.Symbol] = t
		}
		r.popular = append(r.popular, t)
	}
	for _, sym := range highPriority {
		if t, ok := r.bySymbol[sym]; ok {
			r.highPriority = append(r.highPriority, t)
		}
	}
	return r
}

// DefaultRegistry devuelve el registro con PopularTokens y HighPrioritySymbols.
func DefaultRegistry() *Registry {
	return NewRegistry(PopularTokens, HighPrioritySymbols)
}

// Popular devuelve una copia del universo completo.
func (r *Registry) Popular() []Token {
	return append([]Token(nil), r.popular...)
}

// HighPriority devuelve una copia del set de alta liquidez, en orden.
func (r *Registry) HighPriority() []Token {
	return append([]Token(nil), r.highPriority...)
}

// ByMint busca un token por mint.
func (r *Registry) ByMint(mint string) (Token, bool) {
	t, ok := r.byMint[mint]
	return t, ok
}

// BySymbol busca un token por símbolo (case-sensitive: wBTC ≠ WBTC).
func (r *Registry) BySymbol(symbol string) (Token, bool) {
	t, ok := r.bySymbol[symbol]
	return t, ok
}

// Resolve mapea los holdings del usuario a tokens del registro.
// Un mint desconocido produce un token genérico (9 decimales, logo por defecto).
// Mints repetidos aparecen una sola vez, en el orden de la primera aparición.
func (r *Registry) Resolve(holdings []Holding) []Token {
	seen := make(map[string]bool, len(holdings))
	out := make([]Token, 0, len(holdings))
	for _, h := range holdings {
		if h.Mint == "" || seen[h.Mint] {
			continue
		}
		seen[h.Mint] = true
		if t, ok := r.byMint[h.Mint]; ok {
			out = append(out, t)
			continue
		}
		out = append(out, GenericToken(h.Mint, h.Symbol))
	}
	return out
}
