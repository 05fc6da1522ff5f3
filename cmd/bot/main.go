package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cabarcas/TradingBot/internal/config"
	"github.com/cabarcas/TradingBot/internal/engine"
	"github.com/cabarcas/TradingBot/internal/exchange"
	"github.com/cabarcas/TradingBot/internal/execution"
	"github.com/cabarcas/TradingBot/internal/ledger"
	"github.com/cabarcas/TradingBot/internal/metrics"
	"github.com/cabarcas/TradingBot/internal/sink"
	"github.com/cabarcas/TradingBot/internal/util"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := util.NewLogger("info", false)
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel, cfg.App.PrettyLogs)

	_ = metrics.Serve(cfg.App.MetricsAddr)
	log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	feed := exchange.NewFeed(cfg.Exchange.Provider, log)
	gw := exchange.NewPaperGateway(
		feed,
		cfg.Paper.StartingBalance,
		log,
		exchange.WithFillAfterPolls(cfg.Paper.FillAfterPolls),
		exchange.WithBootstrapCandles(cfg.Paper.BootstrapCandles),
	)

	execOpts := []execution.Option{
		execution.WithPollInterval(time.Duration(cfg.Execution.PollIntervalMs) * time.Millisecond),
		execution.WithGatewayRate(cfg.Execution.GatewayRate, cfg.Execution.GatewayBurst),
	}
	if cfg.Paper.JournalPath != "" {
		journal, err := ledger.NewJSONLJournal(cfg.Paper.JournalPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open trade journal")
		}
		defer journal.Close()
		execOpts = append(execOpts, execution.WithJournal(journal))
	}
	exec := execution.NewManager(gw, log, execOpts...)

	snk := sink.NewMemory()
	eng, err := engine.FromConfig(ctx, cfg, gw, exec, log, snk)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap strategies")
	}

	log.Info().Str("env", cfg.App.Env).Str("provider", cfg.Exchange.Provider).Msg("trading engine started")

	if err := eng.Run(ctx); err != nil {
		log.Error().Err(err).Msg("engine stopped")
		os.Exit(1)
	}

	for _, inst := range eng.Instances() {
		snap := inst.Snapshot()
		log.Info().
			Str("strategy", snap.Strategy).
			Int("candles", len(snap.Candles)).
			Int("trades", len(snap.Trades)).
			Bool("ongoing_position", snap.OngoingPosition).
			Msg("final state")
	}
	log.Info().Msg("shutdown complete")
}
