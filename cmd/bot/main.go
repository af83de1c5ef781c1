package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RizzyDope/paper-trading-bot/internal/config"
	"github.com/RizzyDope/paper-trading-bot/internal/control"
	"github.com/RizzyDope/paper-trading-bot/internal/engine"
	"github.com/RizzyDope/paper-trading-bot/internal/execution"
	"github.com/RizzyDope/paper-trading-bot/internal/market"
	"github.com/RizzyDope/paper-trading-bot/internal/model"
	"github.com/RizzyDope/paper-trading-bot/internal/notifier"
	"github.com/RizzyDope/paper-trading-bot/internal/recorder"
	"github.com/RizzyDope/paper-trading-bot/internal/risk"
	"github.com/RizzyDope/paper-trading-bot/internal/scheduler"
	"github.com/RizzyDope/paper-trading-bot/internal/stats"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] trading bot starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init risk engine and trade stats
	riskEngine := risk.NewEngine(cfg.Risk.StartingEquity, cfg.Risk.RiskPerTrade,
		cfg.Risk.MaxDailyLoss, cfg.Risk.MaxDrawdown)
	perf := stats.NewPerformanceTracker(cfg.Risk.StartingEquity)
	ledger := execution.NewRejectionLedger()
	tradeControl := control.New()

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init exchange gateway
	var gateway execution.Gateway
	switch cfg.Exchange.Mode {
	case "bybit":
		gateway = execution.NewBybitGateway(cfg.Exchange.BaseURL, cfg.Exchange.APIKey, cfg.Exchange.APISecret)
	default:
		gateway = execution.NewPaperGateway(0.001)
	}
	log.Printf("[INFO] exchange mode: %s", cfg.Exchange.Mode)

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var observer execution.TradeObserver
	if cfg.Telegram.BotToken != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.AllowedChatID)
		observer = notifier.NewPusher(ctx, tn)
	} else {
		log.Println("[WARN] no telegram token configured, running without notifications")
	}

	// Init order manager
	manager := execution.NewManager(gateway, riskEngine, perf, ledger, rec, observer)

	// Reconcile with the exchange before taking any decisions
	startupCtx, startupCancel := context.WithTimeout(ctx, 30*time.Second)
	for _, symbol := range cfg.Symbols {
		if err := manager.EnsureSymbol(startupCtx, symbol, cfg.Exchange.Leverage); err != nil {
			log.Printf("[WARN] %s symbol setup: %v", symbol, err)
		}
		if err := manager.Resync(startupCtx, symbol); err != nil {
			log.Printf("[WARN] %s startup resync: %v", symbol, err)
		}
	}
	startupCancel()

	// Init feed health and per-symbol engines
	feed := market.NewFeedHealth(time.Now)
	backfill := market.NewBackfillClient(cfg.Exchange.BaseURL)

	engines := make(map[string]*engine.SymbolEngine, len(cfg.Symbols))
	engineList := make([]*engine.SymbolEngine, 0, len(cfg.Symbols))
	for _, symbol := range cfg.Symbols {
		e := engine.NewSymbolEngine(engine.Config{
			Symbol:       symbol,
			StoreDepth:   cfg.Candles.StoreDepth,
			EntryTF:      cfg.Candles.EntryTF,
			StructureTF:  cfg.Candles.StructureTF,
			BiasTF:       cfg.Candles.BiasTF,
			EntryAllowed: cfg.EntryAllowedAt,
			Feed:         feed,
			Control:      tradeControl,
			Risk:         riskEngine,
			Executor:     manager,
			Ledger:       ledger,
			Backfill:     backfill,
		})
		engines[symbol] = e
		engineList = append(engineList, e)
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, tn, rec, riskEngine, perf, manager, tradeControl, feed, engineList)
	if err := sched.RegisterAll(); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Start the price stream. Every tick feeds the symbol's candle builders
	// and the order manager's stop/target checks.
	stream := market.NewPriceStream(cfg.Exchange.WSURL, cfg.Symbols, feed, func(tick model.Tick) {
		if e, ok := engines[tick.Symbol]; ok {
			e.OnTick(tick)
		}
		manager.OnTick(tick)
	})
	go stream.Run(ctx)

	log.Printf("[INFO] trading bot running for %v. Press Ctrl+C to stop.", cfg.Symbols)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] trading bot stopped")
}
