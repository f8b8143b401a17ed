package session_test

import (
	"context"
	"errors"
	"sync"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/alejandrodnm/atomicswipe/internal/scanner"
)

// --- scanner ---

type fakeScanner struct {
	mu       sync.Mutex
	emit     []domain.ArbitrageOpportunity
	result   scanner.Result
	calls    int
	holdings [][]domain.Holding
	block    chan struct{}
	started  chan struct{}
	// afterEmit corre con el scan todavía en curso, antes de devolver result.
	afterEmit func()
}

func (f *fakeScanner) Scan(ctx context.Context, holdings []domain.Holding, onFound func(domain.ArbitrageOpportunity)) scanner.Result {
	f.mu.Lock()
	f.calls++
	f.holdings = append(f.holdings, holdings)
	emit, res, block, started, afterEmit := f.emit, f.result, f.block, f.started, f.afterEmit
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	for _, o := range emit {
		onFound(o)
	}
	if afterEmit != nil {
		afterEmit()
	}
	return res
}

func (f *fakeScanner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// --- swaps ---

type fakeSwaps struct {
	mu    sync.Mutex
	txs   map[string]string // quote.InputMint → base64 tx
	err   map[string]error
	calls []domain.Quote
}

func (f *fakeSwaps) GetSwapTransaction(_ context.Context, q domain.Quote, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, q)
	if err := f.err[q.InputMint]; err != nil {
		return "", err
	}
	return f.txs[q.InputMint], nil
}

// --- chain ---

type fakeChain struct {
	mu         sync.Mutex
	balance    uint64
	balanceErr error
	holdings   []domain.Holding
	sent       [][]byte
	sendErr    error
	confirmErr map[string]error
}

func (f *fakeChain) GetBalance(context.Context, string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balance, f.balanceErr
}

func (f *fakeChain) GetTokenHoldings(context.Context, string) ([]domain.Holding, error) {
	return f.holdings, nil
}

func (f *fakeChain) SendRawTransaction(_ context.Context, raw []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sent = append(f.sent, raw)
	return "sig-" + string(raw), nil
}

func (f *fakeChain) ConfirmTransaction(_ context.Context, sig string) error {
	return f.confirmErr[sig]
}

// --- wallet ---

type fakeWallet struct {
	mu        sync.Mutex
	pub       string
	connected     bool
	signErr       error
	disconnectErr error
}

func (f *fakeWallet) Connect(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pub == "" {
		return "", domain.ErrWalletUnavailable
	}
	f.connected = true
	return f.pub, nil
}

func (f *fakeWallet) Disconnect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return f.disconnectErr
}

func (f *fakeWallet) PublicKey() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pub, f.connected
}

// SignTransaction marca el payload con un sufijo "+signed".
func (f *fakeWallet) SignTransaction(_ context.Context, raw []byte) ([]byte, error) {
	if f.signErr != nil {
		return nil, f.signErr
	}
	return append(raw, []byte("+signed")...), nil
}

func (f *fakeWallet) SignMessage(context.Context, []byte) ([]byte, error) {
	return make([]byte, 64), nil
}

func (f *fakeWallet) Name() string { return "Fake Wallet" }

// --- journal ---

type fakeJournal struct {
	mu        sync.Mutex
	decisions []domain.Decision
	scans     []domain.ScanSummary
	fail      bool
}

func (f *fakeJournal) Record(_ context.Context, d domain.Decision) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, errors.New("disk full")
	}
	f.decisions = append(f.decisions, d)
	return int64(len(f.decisions)), nil
}

func (f *fakeJournal) Decisions(context.Context, int) ([]domain.Decision, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Decision(nil), f.decisions...), nil
}

func (f *fakeJournal) RecordScan(_ context.Context, s domain.ScanSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, s)
	return nil
}

func (f *fakeJournal) Scans(context.Context, int) ([]domain.ScanSummary, error) {
	return f.scans, nil
}

func (f *fakeJournal) Close() error { return nil }

func (f *fakeJournal) kinds() []domain.DecisionKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.DecisionKind
	for _, d := range f.decisions {
		out = append(out, d.Kind)
	}
	return out
}

// --- listener ---

type recordingListener struct {
	mu    sync.Mutex
	opps  []string
	decks [][]domain.ArbitrageOpportunity
	panic bool
}

func (l *recordingListener) OnOpportunity(opp domain.ArbitrageOpportunity) {
	if l.panic {
		panic("boom")
	}
	l.mu.Lock()
	l.opps = append(l.opps, opp.ID)
	l.mu.Unlock()
}

func (l *recordingListener) OnDeck(deck []domain.ArbitrageOpportunity) {
	if l.panic {
		panic("boom")
	}
	l.mu.Lock()
	l.decks = append(l.decks, deck)
	l.mu.Unlock()
}
