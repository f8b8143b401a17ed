// Package wallet implementa ports.Wallet con una keypair ed25519 local.
package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

const keypairName = "Local Keypair"

// KeypairConfig indica de dónde sale la clave privada. KeypairPath gana
// sobre PrivateKey si están los dos.
type KeypairConfig struct {
	// KeypairPath es un archivo JSON de solana-keygen.
	KeypairPath string
	// PrivateKey es la clave secreta de 64 bytes en base58.
	PrivateKey string
}

// Keypair es una wallet con la clave en memoria.
type Keypair struct {
	cfg KeypairConfig

	mu  sync.RWMutex
	key solanago.PrivateKey
}

// NewKeypair no toca la clave hasta Connect.
func NewKeypair(cfg KeypairConfig) *Keypair {
	return &Keypair{cfg: cfg}
}

// Connect carga la clave y devuelve la clave pública en base58.
func (k *Keypair) Connect(_ context.Context) (string, error) {
	key, err := k.load()
	if err != nil {
		return "", err
	}

	k.mu.Lock()
	k.key = key
	k.mu.Unlock()

	pub := key.PublicKey().String()
	slog.Info("wallet connected", "wallet", keypairName, "pubkey", pub)
	return pub, nil
}

func (k *Keypair) load() (solanago.PrivateKey, error) {
	switch {
	case k.cfg.KeypairPath != "":
		key, err := solanago.PrivateKeyFromSolanaKeygenFile(k.cfg.KeypairPath)
		if err != nil {
			return nil, fmt.Errorf("wallet.Connect: read keypair file: %w", err)
		}
		return key, nil
	case k.cfg.PrivateKey != "":
		key, err := solanago.PrivateKeyFromBase58(k.cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("wallet.Connect: decode private key: %w", err)
		}
		return key, nil
	default:
		return nil, fmt.Errorf("wallet.Connect: no keypair configured: %w", domain.ErrWalletUnavailable)
	}
}

// Disconnect suelta la clave de memoria.
func (k *Keypair) Disconnect(_ context.Context) error {
	k.mu.Lock()
	k.key = nil
	k.mu.Unlock()
	slog.Info("wallet disconnected", "wallet", keypairName)
	return nil
}

func (k *Keypair) PublicKey() (string, bool) {
	key, ok := k.current()
	if !ok {
		return "", false
	}
	return key.PublicKey().String(), true
}

func (k *Keypair) Name() string { return keypairName }

func (k *Keypair) current() (solanago.PrivateKey, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if len(k.key) == 0 {
		return nil, false
	}
	return k.key, true
}

// SignTransaction decodifica la transacción, completa el slot de firma de
// esta wallet y la vuelve a serializar. Los demás slots no se tocan.
func (k *Keypair) SignTransaction(_ context.Context, raw []byte) ([]byte, error) {
	key, ok := k.current()
	if !ok {
		return nil, domain.ErrWalletNotConnected
	}

	tx, err := solanago.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("wallet.SignTransaction: decode: %w", err)
	}

	pub := key.PublicKey()
	signers := int(tx.Message.Header.NumRequiredSignatures)
	if signers > len(tx.Message.AccountKeys) {
		return nil, fmt.Errorf("wallet.SignTransaction: header declares %d signers for %d keys", signers, len(tx.Message.AccountKeys))
	}
	slot := -1
	for i, acc := range tx.Message.AccountKeys[:signers] {
		if acc.Equals(pub) {
			slot = i
			break
		}
	}
	if slot < 0 {
		return nil, fmt.Errorf("wallet.SignTransaction: %s is not a required signer", pub)
	}

	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("wallet.SignTransaction: marshal message: %w", err)
	}
	sig, err := key.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("wallet.SignTransaction: sign: %w", err)
	}

	for len(tx.Signatures) < signers {
		tx.Signatures = append(tx.Signatures, solanago.Signature{})
	}
	tx.Signatures[slot] = sig

	out, err := tx.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("wallet.SignTransaction: marshal: %w", err)
	}
	return out, nil
}

// SignMessage devuelve la firma ed25519 de 64 bytes sobre msg.
func (k *Keypair) SignMessage(_ context.Context, msg []byte) ([]byte, error) {
	key, ok := k.current()
	if !ok {
		return nil, domain.ErrWalletNotConnected
	}
	sig, err := key.Sign(msg)
	if err != nil {
		return nil, fmt.Errorf("wallet.SignMessage: %w", err)
	}
	return sig[:], nil
}
