package domain

// WalletState es el estado de la wallet visible para la UI.
type WalletState struct {
	PublicKey  string  `json:"publicKey,omitempty"`
	Balance    float64 `json:"balance"` // SOL
	Connected  bool    `json:"connected"`
	WalletName string  `json:"walletName,omitempty"`
}
