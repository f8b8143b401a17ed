package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
)

// ConnectWallet conecta la wallet y carga su balance. Un fallo al leer el
// balance no impide la conexión: el balance queda en 0.
func (s *Session) ConnectWallet(ctx context.Context) (domain.WalletState, error) {
	pub, err := s.deps.Wallet.Connect(ctx)
	if err != nil {
		return domain.WalletState{}, fmt.Errorf("session.ConnectWallet: %w", err)
	}

	state := domain.WalletState{
		PublicKey:  pub,
		Connected:  true,
		WalletName: s.deps.Wallet.Name(),
	}
	if lamports, err := s.deps.Chain.GetBalance(ctx, pub); err != nil {
		slog.Warn("balance fetch failed", "pubkey", pub, "err", err)
	} else {
		state.Balance = domain.LamportsToSOL(lamports)
	}

	s.mu.Lock()
	s.wallet = state
	s.mu.Unlock()
	return state, nil
}

// DisconnectWallet limpia el estado aunque la wallet devuelva error; el error
// se devuelve igual.
func (s *Session) DisconnectWallet(ctx context.Context) error {
	err := s.deps.Wallet.Disconnect(ctx)
	s.mu.Lock()
	s.wallet = domain.WalletState{}
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("session.DisconnectWallet: %w", err)
	}
	return nil
}

// Wallet devuelve el estado actual.
func (s *Session) Wallet() domain.WalletState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallet
}

// RefreshBalance vuelve a leer el balance. Sin wallet conectada no hace nada.
func (s *Session) RefreshBalance(ctx context.Context) (domain.WalletState, error) {
	state := s.Wallet()
	if !state.Connected {
		return state, nil
	}
	lamports, err := s.deps.Chain.GetBalance(ctx, state.PublicKey)
	if err != nil {
		return state, fmt.Errorf("session.RefreshBalance: %w", err)
	}

	s.mu.Lock()
	s.wallet.Balance = domain.LamportsToSOL(lamports)
	state = s.wallet
	s.mu.Unlock()
	return state, nil
}

// TokenHoldings devuelve SOL más los balances SPL de la wallet, listos para Refresh.
func (s *Session) TokenHoldings(ctx context.Context) ([]domain.Holding, error) {
	state := s.Wallet()
	if !state.Connected {
		return nil, fmt.Errorf("session.TokenHoldings: %w", domain.ErrWalletNotConnected)
	}

	var holdings []domain.Holding
	if lamports, err := s.deps.Chain.GetBalance(ctx, state.PublicKey); err == nil && lamports > 0 {
		holdings = append(holdings, domain.Holding{
			Mint:   domain.MintSOL,
			Symbol: "SOL",
			Amount: domain.LamportsToSOL(lamports),
		})
	}

	spl, err := s.deps.Chain.GetTokenHoldings(ctx, state.PublicKey)
	if err != nil {
		return holdings, fmt.Errorf("session.TokenHoldings: %w", err)
	}
	return append(holdings, spl...), nil
}
