// Command fearbot backtests and paper-trades sentiment-driven DCA
// strategies on the crypto Fear & Greed index.
//
// Usage:
//
//	fearbot -mode setup
//	fearbot -mode backtest -config config.yaml
//	fearbot -mode paper -config config.yaml
//	fearbot -mode signal -config config.yaml
//
// The hyperliquid price venue additionally requires the
// HYPERLIQUID_PRIVATE_KEY environment variable.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fearproto/fearbot/config"
	"github.com/fearproto/fearbot/internal/clients"
	"github.com/fearproto/fearbot/internal/domain"
	"github.com/fearproto/fearbot/internal/render"
	"github.com/fearproto/fearbot/internal/services/backtest"
	"github.com/fearproto/fearbot/internal/services/indicators"
	"github.com/fearproto/fearbot/internal/services/marketdata"
	"github.com/fearproto/fearbot/internal/services/paper"
	"github.com/fearproto/fearbot/internal/services/pricer"
	"github.com/fearproto/fearbot/internal/services/strategy"
	"github.com/fearproto/fearbot/internal/setup"
	"github.com/fearproto/fearbot/internal/storage/journal"
	"github.com/fearproto/fearbot/internal/storage/positions"
)

func main() {
	mode := flag.String("mode", "backtest", "one of: backtest, paper, signal, setup")
	configPath := flag.String("config", "", "path to yaml config")
	flag.Parse()

	if *mode == "setup" {
		out := *configPath
		if out == "" {
			out = "config.yaml"
		}
		if err := setup.RunTUI(out); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "backtest":
		err = runBacktest(ctx, cfg, logger)
	case "paper":
		err = runPaper(ctx, cfg, logger)
	case "signal":
		err = runSignal(ctx, cfg, logger)
	default:
		logger.Fatal("unknown mode", zap.String("mode", *mode))
	}
	if err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
}

func runBacktest(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	cache, err := marketdata.NewFileCache(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return err
	}

	history := marketdata.NewHistoryService(
		marketdata.NewBinanceHistory(clients.NewBinance("", "")),
		marketdata.NewFearGreedClient("", nil),
		cache,
		logger,
	)

	sentiments, prices, err := history.History(ctx, cfg.Pair, cfg.StartDate, cfg.EndDate)
	if err != nil {
		return err
	}

	result, err := backtest.NewEngine(logger).Run(cfg.RunConfig(), sentiments, prices)
	if err != nil {
		return err
	}

	return printResult(cfg.Output, result)
}

func runPaper(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	strat, err := strategy.New(cfg.Strategy, cfg.Params)
	if err != nil {
		return err
	}

	priceSource, err := buildPricer(cfg)
	if err != nil {
		return err
	}

	store, err := positions.NewStore(cfg.StateDir, cfg.Pair)
	if err != nil {
		return err
	}

	decisionLog, err := journal.New(cfg.JournalDir)
	if err != nil {
		return err
	}
	defer decisionLog.Close()

	runner, err := paper.NewRunner(paper.Config{
		Pair:           cfg.Pair,
		Strategy:       strat,
		Pricer:         priceSource,
		Sentiment:      marketdata.NewFearGreedClient("", nil),
		Store:          store,
		Journal:        decisionLog,
		InitialCapital: cfg.InitialCapital,
		FeeRate:        cfg.FeeRate,
		SlippageRate:   cfg.SlippageRate,
		PollInterval:   cfg.PollInterval,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}

func runSignal(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	strat, err := strategy.New(cfg.Strategy, cfg.Params)
	if err != nil {
		return err
	}

	priceSource, err := buildPricer(cfg)
	if err != nil {
		return err
	}

	price, err := priceSource.GetPrice(ctx, cfg.Pair)
	if err != nil {
		return err
	}

	fng := marketdata.NewFearGreedClient("", nil)
	sentiment, err := fng.Latest(ctx)
	if err != nil {
		return err
	}

	date := time.Now().UTC().Format(domain.DateLayout)
	snap := domain.MarketSnapshot{
		Date:           date,
		Sentiment:      sentiment,
		SentimentLabel: domain.SentimentLabel(sentiment),
		Price:          price,
		PortfolioValue: cfg.InitialCapital,
		TotalInvested:  decimal.Zero,
	}
	sig := strat.Evaluate(snap)

	fmt.Printf("pair:       %s\n", cfg.Pair.String())
	fmt.Printf("price:      %s\n", price.String())
	fmt.Printf("sentiment:  %d (%s)\n", sentiment, snap.SentimentLabel)
	fmt.Printf("strategy:   %s\n", strat.Name())
	fmt.Printf("action:     %s\n", sig.Action.String())
	fmt.Printf("confidence: %.2f\n", sig.Confidence)
	fmt.Printf("reason:     %s\n", sig.Reason)
	if sig.Action != domain.ActionHold {
		fmt.Printf("amount:     %s\n", sig.Amount.String())
	}

	printTechnicalContext(ctx, cfg, logger)
	return nil
}

// printTechnicalContext is advisory output; failures are logged, not fatal.
func printTechnicalContext(ctx context.Context, cfg config.Config, logger *zap.Logger) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -60)

	history := marketdata.NewBinanceHistory(clients.NewBinance("", ""))
	closes, err := history.DailyCloses(ctx, cfg.Pair,
		start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	if err != nil {
		logger.Warn("technical context unavailable", zap.Error(err))
		return
	}

	dates := make([]string, 0, len(closes))
	for date := range closes {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	ordered := make([]decimal.Decimal, len(dates))
	for i, date := range dates {
		ordered[i] = closes[date]
	}

	techCtx, err := indicators.Compute(ordered)
	if err != nil {
		logger.Warn("technical context unavailable", zap.Error(err))
		return
	}

	fmt.Printf("\ntrend:      %s (price %s vs EMA20 %s)\n",
		techCtx.Trend, techCtx.Price.StringFixed(2), techCtx.EMA20.StringFixed(2))
	fmt.Printf("RSI14:      %.1f\n", techCtx.RSI14)
}

func buildPricer(cfg config.Config) (pricer.Pricer, error) {
	switch cfg.Venue {
	case "binance":
		return pricer.NewBinancePricer(clients.NewBinance("", "")), nil
	case "bybit":
		return pricer.NewBybitPricer(clients.NewBybit("", "")), nil
	case "hyperliquid":
		key := os.Getenv("HYPERLIQUID_PRIVATE_KEY")
		if key == "" {
			return nil, fmt.Errorf("HYPERLIQUID_PRIVATE_KEY environment variable must be set for the hyperliquid venue")
		}
		client, err := clients.NewHyperliquid(key, "")
		if err != nil {
			return nil, err
		}
		return pricer.NewHyperliquidPricer(client.Exchange().Info()), nil
	default:
		return nil, fmt.Errorf("unknown venue %q, choose one of: binance, bybit, hyperliquid", cfg.Venue)
	}
}

func printResult(format string, result *domain.RunResult) error {
	switch format {
	case "json":
		out, err := render.JSON(result)
		if err != nil {
			return err
		}
		fmt.Println(out)
	case "markdown":
		fmt.Println(render.Markdown(result))
	default:
		fmt.Println(render.Terminal(result))
	}
	return nil
}
