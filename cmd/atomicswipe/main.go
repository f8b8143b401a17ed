package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alejandrodnm/atomicswipe/config"
	"github.com/alejandrodnm/atomicswipe/internal/adapters/cache"
	"github.com/alejandrodnm/atomicswipe/internal/adapters/jupiter"
	"github.com/alejandrodnm/atomicswipe/internal/adapters/notify"
	"github.com/alejandrodnm/atomicswipe/internal/adapters/prices"
	"github.com/alejandrodnm/atomicswipe/internal/adapters/solana"
	"github.com/alejandrodnm/atomicswipe/internal/adapters/storage"
	"github.com/alejandrodnm/atomicswipe/internal/adapters/wallet"
	"github.com/alejandrodnm/atomicswipe/internal/domain"
	"github.com/alejandrodnm/atomicswipe/internal/metrics"
	"github.com/alejandrodnm/atomicswipe/internal/ports"
	"github.com/alejandrodnm/atomicswipe/internal/scanner"
	"github.com/alejandrodnm/atomicswipe/internal/server"
	"github.com/alejandrodnm/atomicswipe/internal/session"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan, print the deck and exit")
	serve := flag.Bool("serve", false, "serve the HTTP API and WebSocket stream")
	interactive := flag.Bool("interactive", false, "swipe the deck from the terminal")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full deck table (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("atomicswipe starting",
		"config", *configPath,
		"rpc", cfg.Solana.RPCEndpoint,
		"jupiter", cfg.Jupiter.BaseURL,
		"min_profit_usd", cfg.Scanner.MinProfitUSD,
		"min_profit_pct", cfg.Scanner.MinProfitPercent,
		"once", *once,
		"serve", *serve,
		"interactive", *interactive,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	m := metrics.New()
	m.Registry().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry := domain.DefaultRegistry()

	var priceLookup ports.PriceLookup = prices.NewStatic(cfg.Prices)
	var publisher *cache.Publisher
	if cfg.Redis.Addr != "" {
		rc, err := cache.New(ctx, cache.ClientConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Warn("redis unavailable, using static prices", "err", err, "addr", cfg.Redis.Addr)
		} else {
			defer rc.Close()
			priceLookup = cache.NewPriceLookup(rc, priceLookup)
			publisher = cache.NewPublisher(rc)
		}
	}

	jup := jupiter.NewClient(jupiter.ClientConfig{
		BaseURL:       cfg.Jupiter.BaseURL,
		SlippageBps:   cfg.Jupiter.SlippageBps,
		RatePerSecond: cfg.Jupiter.RatePerSecond,
		Timeout:       cfg.JupiterTimeout(),
	})

	scanCfg := scanner.DefaultConfig()
	scanCfg.Filter = scanner.FilterConfig{
		MinProfitUSD:     cfg.Scanner.MinProfitUSD,
		MinProfitPercent: cfg.Scanner.MinProfitPercent,
	}
	scanCfg.PairDelay = cfg.PairDelay()
	scanCfg.TokenDelay = cfg.TokenDelay()
	scanCfg.QuoteTimeout = cfg.QuoteTimeout()
	scan := scanner.New(scanCfg, jup, priceLookup, registry, m)

	chain := solana.NewClient(solana.ClientConfig{Endpoint: cfg.Solana.RPCEndpoint}, registry)
	keypair := wallet.NewKeypair(wallet.KeypairConfig{
		KeypairPath: cfg.Wallet.KeypairPath,
		PrivateKey:  cfg.Wallet.PrivateKey,
	})

	journal, err := storage.NewSQLiteJournal(cfg.Storage.JournalDSN)
	if err != nil {
		slog.Error("failed to open journal", "err", err, "dsn", cfg.Storage.JournalDSN)
		os.Exit(1)
	}
	defer journal.Close()

	console := notify.NewConsole(*table)
	sess := session.New(session.Config{ConfirmTimeout: cfg.ConfirmTimeout()}, session.Deps{
		Scanner: scan,
		Swaps:   jup,
		Chain:   chain,
		Wallet:  keypair,
		Journal: journal,
		Metrics: m,
	})
	sess.AddListener(console)
	if publisher != nil {
		sess.AddListener(publisher)
	}

	connectWallet(ctx, sess, console, cfg.Wallet)

	switch {
	case *once:
		runOnce(ctx, sess, console)
	case *interactive:
		runInteractive(ctx, sess, console, journal, os.Stdin)
	case *serve:
		runServer(ctx, sess, registry, journal, m, cfg)
	default:
		runWatch(ctx, sess, cfg)
	}

	slog.Info("atomicswipe stopped cleanly")
}

// connectWallet conecta la keypair local si hay una configurada.
func connectWallet(ctx context.Context, sess *session.Session, console *notify.Console, cfg config.WalletConfig) {
	if cfg.KeypairPath == "" && cfg.PrivateKey == "" {
		slog.Info("no wallet configured, scanning default tokens")
		return
	}
	state, err := sess.ConnectWallet(ctx)
	if err != nil {
		slog.Warn("wallet connect failed", "err", err)
		return
	}
	console.PrintWallet(state)
}

// holdings devuelve los tokens de la wallet, o nil para el set por defecto.
func holdings(ctx context.Context, sess *session.Session) []domain.Holding {
	if !sess.Wallet().Connected {
		return nil
	}
	h, err := sess.TokenHoldings(ctx)
	if err != nil {
		slog.Warn("failed to load wallet holdings, using what was found", "err", err, "count", len(h))
	}
	return h
}

func runOnce(ctx context.Context, sess *session.Session, notifier ports.Notifier) {
	res := sess.Refresh(ctx, holdings(ctx, sess))
	if res.Outcome == scanner.OutcomeFailed {
		slog.Error("scan failed", "err", res.Err)
		os.Exit(1)
	}
	if err := notifier.Notify(ctx, sess.Deck()); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}

// runWatch escanea y sigue refrescando hasta que llegue una señal.
func runWatch(ctx context.Context, sess *session.Session, cfg *config.Config) {
	h := holdings(ctx, sess)
	sess.Refresh(ctx, h)
	if len(h) == 0 {
		slog.Info("no wallet holdings, auto refresh stays idle; use -serve or -interactive to rescan")
	}

	stop, err := sess.StartAutoRefresh(ctx, cfg.RefreshInterval())
	if err != nil {
		slog.Error("failed to start auto refresh", "err", err)
		os.Exit(1)
	}
	defer stop()
	<-ctx.Done()
}

func runServer(ctx context.Context, sess *session.Session, registry *domain.Registry, journal ports.Journal, m *metrics.Metrics, cfg *config.Config) {
	hub := server.NewHub(sess.Deck)
	sess.AddListener(hub)
	go hub.Run(ctx)

	stop, err := sess.StartAutoRefresh(ctx, cfg.RefreshInterval())
	if err != nil {
		slog.Error("failed to start auto refresh", "err", err)
		os.Exit(1)
	}
	defer stop()

	go sess.Refresh(ctx, holdings(ctx, sess))

	srv := server.New(ctx, sess, registry, journal, m, hub)
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		slog.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
