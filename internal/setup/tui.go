// Package setup provides the interactive configuration wizard.
package setup

import (
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fearproto/fearbot/config"
	"github.com/fearproto/fearbot/internal/domain"
	"github.com/fearproto/fearbot/internal/services/strategy"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)
)

// RunTUI walks through the configuration questions and writes the result
// to the given path as YAML.
func RunTUI(outputPath string) error {
	var (
		strategyName string
		pairStr      string
		startDate    string
		endDate      string
		capitalStr   string
		feeStr       string
		slippageStr  string
		venue        string
		confirm      bool
	)

	defaults := config.Default()
	pairStr = defaults.Pair.String()
	startDate = defaults.StartDate
	endDate = defaults.EndDate
	capitalStr = defaults.InitialCapital.String()
	feeStr = defaults.FeeRate.String()
	slippageStr = defaults.SlippageRate.String()

	clearScreen()
	fmt.Println(headerStyle.Render("FEARBOT CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Sentiment-driven DCA, configured step by step.\n"))

	fmt.Println(stepStyle.Render("STEP 1: STRATEGY"))
	options := make([]huh.Option[string], 0, len(strategy.Names()))
	for _, name := range strategy.Names() {
		options = append(options, huh.NewOption(name, name))
	}
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose your strategy").
				Options(options...).
				Value(&strategyName),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render("FEARBOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: ASSET"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Trading Pair").
				Description("Must contain underscore (e.g. BTC_USDT)").
				Value(&pairStr).
				Validate(func(s string) error {
					_, err := config.PairFromString(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render("FEARBOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: BACKTEST WINDOW"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Start date").
				Description("YYYY-MM-DD").
				Value(&startDate).
				Validate(validateDate),
			huh.NewInput().
				Title("End date").
				Description("YYYY-MM-DD").
				Value(&endDate).
				Validate(validateDate),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render("FEARBOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 4: CAPITAL & COSTS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Initial capital (quote currency)").
				Value(&capitalStr).
				Validate(validatePositiveDecimal),
			huh.NewInput().
				Title("Fee rate").
				Description("e.g. 0.001 for 0.1%").
				Value(&feeStr).
				Validate(validateNonNegativeDecimal),
			huh.NewInput().
				Title("Slippage rate").
				Value(&slippageStr).
				Validate(validateNonNegativeDecimal),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render("FEARBOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 5: LIVE PRICE VENUE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Price source for paper trading and live signals").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Hyperliquid", "hyperliquid"),
				).
				Value(&venue),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen()
	fmt.Println(headerStyle.Render("FEARBOT CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("REVIEW"))
	fmt.Printf("  strategy:  %s\n  pair:      %s\n  window:    %s → %s\n  capital:   %s\n  venue:     %s\n\n",
		strategyName, pairStr, startDate, endDate, capitalStr, venue)
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Write configuration to %s?", outputPath)).
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return errors.New("setup aborted")
	}

	cfg := defaults
	cfg.Strategy = strategyName
	cfg.Pair, _ = config.PairFromString(pairStr)
	cfg.StartDate = startDate
	cfg.EndDate = endDate
	cfg.InitialCapital, _ = decimal.NewFromString(capitalStr)
	cfg.FeeRate, _ = decimal.NewFromString(feeStr)
	cfg.SlippageRate, _ = decimal.NewFromString(slippageStr)
	cfg.Venue = venue

	if err := config.Save(outputPath, cfg); err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("DONE"))
	fmt.Printf("Wrote %s. Run a backtest with: fearbot -mode backtest -config %s\n", outputPath, outputPath)
	return nil
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
}

func validateDate(s string) error {
	if _, err := time.Parse(domain.DateLayout, s); err != nil {
		return errors.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return nil
}

func validatePositiveDecimal(s string) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return errors.Errorf("not a number: %q", s)
	}
	if v.LessThanOrEqual(decimal.Zero) {
		return errors.New("must be positive")
	}
	return nil
}

func validateNonNegativeDecimal(s string) error {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return errors.Errorf("not a number: %q", s)
	}
	if v.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}
