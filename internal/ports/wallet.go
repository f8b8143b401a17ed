package ports

import "context"

// Wallet es la frontera de firma. Las claves nunca salen de la implementación.
type Wallet interface {
	// Connect devuelve la clave pública de la wallet en base58.
	Connect(ctx context.Context) (string, error)
	Disconnect(ctx context.Context) error

	// PublicKey devuelve la clave conectada; ok=false si no hay wallet.
	PublicKey() (string, bool)

	// SignTransaction firma una transacción serializada y la devuelve serializada.
	SignTransaction(ctx context.Context, raw []byte) ([]byte, error)

	// SignMessage devuelve la firma ed25519 cruda sobre msg.
	SignMessage(ctx context.Context, msg []byte) ([]byte, error)

	Name() string
}
