// Package render formats a finished run for humans and machines: a styled
// terminal summary, a markdown table, or plain JSON.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"github.com/fearproto/fearbot/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#5A5A5A", Dark: "#A0A0A0"}).
			Width(22)

	valueStyle = lipgloss.NewStyle().Bold(true)

	gainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}).
			Bold(true)

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D94F4F", Dark: "#FF7C7C"}).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63")).
			Bold(true).
			MarginTop(1)
)

// JSON returns the report serialized with indentation.
func JSON(result *domain.RunResult) (string, error) {
	payload, err := json.MarshalIndent(result.Report(), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encode report")
	}
	return string(payload), nil
}

// Terminal returns a styled summary for interactive use.
func Terminal(result *domain.RunResult) string {
	report := result.Report()

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("BACKTEST  %s  %s → %s",
		strings.ToUpper(report.Strategy), report.StartDate, report.EndDate)))
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("RETURNS") + "\n")
	writeRow(&b, "Total return", signedPct(report.TotalReturnPct))
	writeRow(&b, "Annualized", signedPct(report.AnnualizedReturnPct))
	writeRow(&b, "Buy & hold", signedPct(report.BTCHoldReturnPct))
	writeRow(&b, "Alpha", signedPct(report.Alpha))

	b.WriteString(sectionStyle.Render("RISK") + "\n")
	writeRow(&b, "Sharpe", fmt.Sprintf("%.2f", report.SharpeRatio))
	writeRow(&b, "Sortino", fmt.Sprintf("%.2f", report.SortinoRatio))
	writeRow(&b, "Max drawdown", signedPct(report.MaxDrawdownPct))
	writeRow(&b, "Calmar", fmt.Sprintf("%.2f", report.CalmarRatio))

	b.WriteString(sectionStyle.Render("TRADES") + "\n")
	writeRow(&b, "Total trades", fmt.Sprintf("%d", report.TotalTrades))
	writeRow(&b, "Win rate", fmt.Sprintf("%.1f%%", report.WinRatePct))
	writeRow(&b, "Avg win / loss", fmt.Sprintf("%.2f%% / %.2f%%", report.AvgWinPct, report.AvgLossPct))
	writeRow(&b, "Profit factor", fmt.Sprintf("%.2f", report.ProfitFactor))
	writeRow(&b, "Avg hold", fmt.Sprintf("%.1f days", report.AvgHoldDays))

	if len(report.Trades) > 0 {
		b.WriteString(sectionStyle.Render("CLOSED POSITIONS") + "\n")
		for _, trade := range report.Trades {
			pnl := gainStyle.Render(fmt.Sprintf("%+.2f%%", trade.PnLPct))
			if trade.PnLPct < 0 {
				pnl = lossStyle.Render(fmt.Sprintf("%+.2f%%", trade.PnLPct))
			}
			b.WriteString(fmt.Sprintf("  %s → %s  %s  (%d days, sentiment %d at entry)\n",
				trade.EntryDate, trade.ExitDate, pnl, trade.HoldDays, trade.SentimentAtEntry))
		}
	}

	return b.String()
}

// Markdown returns the report as a markdown document.
func Markdown(result *domain.RunResult) string {
	report := result.Report()

	var b strings.Builder
	fmt.Fprintf(&b, "# Backtest: %s (%s → %s)\n\n", report.Strategy, report.StartDate, report.EndDate)

	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total return | %.2f%% |\n", report.TotalReturnPct)
	fmt.Fprintf(&b, "| Annualized return | %.2f%% |\n", report.AnnualizedReturnPct)
	fmt.Fprintf(&b, "| Sharpe | %.2f |\n", report.SharpeRatio)
	fmt.Fprintf(&b, "| Sortino | %.2f |\n", report.SortinoRatio)
	fmt.Fprintf(&b, "| Max drawdown | %.2f%% |\n", report.MaxDrawdownPct)
	fmt.Fprintf(&b, "| Calmar | %.2f |\n", report.CalmarRatio)
	fmt.Fprintf(&b, "| Win rate | %.1f%% |\n", report.WinRatePct)
	fmt.Fprintf(&b, "| Profit factor | %.2f |\n", report.ProfitFactor)
	fmt.Fprintf(&b, "| Total trades | %d |\n", report.TotalTrades)
	fmt.Fprintf(&b, "| Avg hold days | %.1f |\n", report.AvgHoldDays)
	fmt.Fprintf(&b, "| Buy & hold return | %.2f%% |\n", report.BTCHoldReturnPct)
	fmt.Fprintf(&b, "| Alpha | %.2f |\n", report.Alpha)

	if len(report.Trades) > 0 {
		b.WriteString("\n## Trades\n\n")
		b.WriteString("| Entry | Exit | PnL | Hold days | Sentiment at entry |\n|---|---|---|---|---|\n")
		for _, trade := range report.Trades {
			fmt.Fprintf(&b, "| %s | %s | %+.2f%% | %d | %d |\n",
				trade.EntryDate, trade.ExitDate, trade.PnLPct, trade.HoldDays, trade.SentimentAtEntry)
		}
	}

	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label) + " " + valueStyle.Render(value) + "\n")
}

func signedPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
