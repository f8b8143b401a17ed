package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// highValueUSD marca las cartas que merecen atención inmediata.
const highValueUSD = 10.0

// Console implementa ports.Notifier y session.Listener sobre un io.Writer.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el mazo en el modo configurado.
func (c *Console) Notify(_ context.Context, deck []domain.ArbitrageOpportunity) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(deck) == 0 {
		fmt.Fprintf(c.out, "[%s] no opportunities found\n", time.Now().Format("15:04:05"))
		return nil
	}
	if c.table {
		c.printTable(deck)
	} else {
		c.printCompact(deck)
	}
	return nil
}

// OnOpportunity imprime una línea por descubrimiento.
func (c *Console) OnOpportunity(opp domain.ArbitrageOpportunity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mark := " "
	if opp.ProfitUSD >= highValueUSD {
		mark = "!"
	}
	fmt.Fprintf(c.out, "[%s]%s new %s  $%.4f (%.3f%%)  %s/%s\n",
		opp.Timestamp.Format("15:04:05"), mark, opp.CycleLabel(),
		opp.ProfitUSD, opp.ProfitPercent, opp.BuyDex, opp.SellDex)
}

// OnDeck imprime el mazo final del scan.
func (c *Console) OnDeck(deck []domain.ArbitrageOpportunity) {
	_ = c.Notify(context.Background(), deck)
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(deck []domain.ArbitrageOpportunity) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d cards", time.Now().Format("15:04:05"), len(deck))
	for i, opp := range deck {
		if i >= 4 {
			break
		}
		fmt.Fprintf(&sb, " | %s→%s $%.2f", opp.TokenIn.Symbol, opp.TokenOut.Symbol, opp.ProfitUSD)
	}
	fmt.Fprintln(c.out, sb.String())
}

func (c *Console) printTable(deck []domain.ArbitrageOpportunity) {
	fmt.Fprintf(c.out, "\n[%s] %d opportunities\n", time.Now().Format("15:04:05"), len(deck))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Cycle", "Buy", "Sell", "Profit $", "Profit %", "Amount", "Gas SOL")
	for i, opp := range deck {
		table.Append(
			fmt.Sprintf("%d", i+1),
			opp.CycleLabel(),
			opp.BuyDex,
			opp.SellDex,
			fmt.Sprintf("$%.4f", opp.ProfitUSD),
			fmt.Sprintf("%.3f%%", opp.ProfitPercent),
			fmt.Sprintf("%g %s", opp.AmountIn, opp.TokenIn.Symbol),
			fmt.Sprintf("%.3f", opp.EstimatedGas),
		)
	}
	table.Render()
	fmt.Fprintln(c.out, "  Profit $ = ganancia estimada del ciclo | Gas = fee estimado de ambas patas")
}

// PrintCard imprime el detalle de una carta: las dos patas con sus montos.
func (c *Console) PrintCard(opp domain.ArbitrageOpportunity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "\n--- %s ---\n", opp.CycleLabel())
	fmt.Fprintf(c.out, "  id:      %s\n", opp.ID)
	fmt.Fprintf(c.out, "  1. BUY   %s on %s: %s → %s (impact %.4f%%)\n",
		opp.TokenOut.Symbol, opp.BuyDex,
		opp.Routes.Forward.InAmount, opp.Routes.Forward.OutAmount, opp.Routes.Forward.PriceImpactPct)
	fmt.Fprintf(c.out, "  2. SELL  %s on %s: %s → %s (impact %.4f%%)\n",
		opp.TokenOut.Symbol, opp.SellDex,
		opp.Routes.Backward.InAmount, opp.Routes.Backward.OutAmount, opp.Routes.Backward.PriceImpactPct)
	fmt.Fprintf(c.out, "  price:   buy %.6g  sell %.6g\n", opp.BuyPrice, opp.SellPrice)
	fmt.Fprintf(c.out, "  >>> PROFIT: $%.4f (%.4f%%)  gas ~%.3f SOL\n\n",
		opp.ProfitUSD, opp.ProfitPercent, opp.EstimatedGas)
}

// PrintExecution imprime el resultado de ejecutar una carta.
func (c *Console) PrintExecution(opp domain.ArbitrageOpportunity, signatures []string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err == nil {
		fmt.Fprintf(c.out, "  OK  %s executed\n", opp.CycleLabel())
	} else {
		fmt.Fprintf(c.out, "  FAIL %s: %v\n", opp.CycleLabel(), err)
		if errors.Is(err, domain.ErrWalletNotConnected) {
			fmt.Fprintln(c.out, "       connect a wallet first (WALLET_KEYPAIR_PATH or WALLET_PRIVATE_KEY)")
		}
	}
	for _, sig := range signatures {
		fmt.Fprintf(c.out, "       https://solscan.io/tx/%s\n", sig)
	}
}

// PrintWallet imprime el estado de la wallet.
func (c *Console) PrintWallet(w domain.WalletState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !w.Connected {
		fmt.Fprintln(c.out, "  wallet: not connected")
		return
	}
	fmt.Fprintf(c.out, "  wallet: %s (%s) %.4f SOL\n", shortKey(w.PublicKey), w.WalletName, w.Balance)
}

// PrintDecisions imprime el historial del journal.
func (c *Console) PrintDecisions(decisions []domain.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(decisions) == 0 {
		fmt.Fprintln(c.out, "  no decisions recorded")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("When", "Cycle", "Decision", "Profit $", "Error")
	for _, d := range decisions {
		table.Append(
			d.At.Local().Format("01-02 15:04:05"),
			d.Cycle,
			string(d.Kind),
			fmt.Sprintf("$%.4f", d.ProfitUSD),
			truncate(d.Error, 40),
		)
	}
	table.Render()
}

func shortKey(k string) string {
	if len(k) <= 10 {
		return k
	}
	return k[:4] + "…" + k[len(k)-4:]
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
