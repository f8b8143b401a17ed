package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alejandrodnm/atomicswipe/internal/adapters/notify"
	"github.com/alejandrodnm/atomicswipe/internal/ports"
	"github.com/alejandrodnm/atomicswipe/internal/session"
)

const deckHelp = "[a]ccept  [s]kip  [r]efresh  [w]allet  [c]onnect  [d]isconnect  [h]istory  [q]uit"

// runInteractive es el modo swipe: muestra la carta de arriba y espera una
// decisión por línea de stdin.
func runInteractive(ctx context.Context, sess *session.Session, console *notify.Console, journal ports.Journal, in io.Reader) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(strings.ToLower(sc.Text())):
			case <-ctx.Done():
				return
			}
		}
	}()

	sess.Refresh(ctx, holdings(ctx, sess))
	for {
		showTop(sess, console)
		fmt.Print("> ")

		var cmd string
		select {
		case <-ctx.Done():
			return
		case l, ok := <-lines:
			if !ok {
				return
			}
			cmd = l
		}

		switch cmd {
		case "a", "accept":
			acceptTop(ctx, sess, console)
		case "s", "skip":
			if deck := sess.Deck(); len(deck) > 0 {
				if err := sess.Skip(ctx, deck[0].ID); err != nil {
					slog.Warn("skip failed", "err", err)
				}
			}
		case "r", "refresh":
			sess.Refresh(ctx, holdings(ctx, sess))
		case "w", "wallet":
			state, err := sess.RefreshBalance(ctx)
			if err != nil {
				slog.Warn("balance refresh failed", "err", err)
			}
			console.PrintWallet(state)
		case "c", "connect":
			state, err := sess.ConnectWallet(ctx)
			if err != nil {
				fmt.Printf("  connect failed: %v\n", err)
				continue
			}
			console.PrintWallet(state)
		case "d", "disconnect":
			if err := sess.DisconnectWallet(ctx); err != nil {
				fmt.Printf("  disconnect: %v\n", err)
			}
			console.PrintWallet(sess.Wallet())
		case "h", "history":
			decisions, err := journal.Decisions(ctx, 20)
			if err != nil {
				slog.Warn("failed to read decisions", "err", err)
				continue
			}
			console.PrintDecisions(decisions)
		case "q", "quit", "exit":
			return
		case "":
		default:
			fmt.Println("  " + deckHelp)
		}
	}
}

func showTop(sess *session.Session, console *notify.Console) {
	snap := sess.Snapshot()
	switch {
	case snap.Error != "":
		fmt.Printf("  %s, [r]efresh to retry\n", snap.Error)
	case len(snap.Deck) == 0:
		fmt.Println("  deck empty, [r]efresh to scan again")
	default:
		fmt.Printf("  %d cards\n", len(snap.Deck))
		console.PrintCard(snap.Deck[0])
		fmt.Println("  " + deckHelp)
	}
}

func acceptTop(ctx context.Context, sess *session.Session, console *notify.Console) {
	deck := sess.Deck()
	if len(deck) == 0 {
		return
	}
	opp := deck[0]
	res, err := sess.Accept(ctx, opp.ID)
	if err != nil {
		var execErr *session.ExecutionError
		var sigs []string
		if errors.As(err, &execErr) {
			sigs = execErr.Signatures
		}
		console.PrintExecution(opp, sigs, err)
		return
	}
	console.PrintExecution(res.Opportunity, res.Signatures, nil)
}
