// Package report renders a backtest results record as a human-readable text
// report.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/quantbench/quantbench/internal/types"
)

const separatorWidth = 80

// Render writes the full text report for one run: strategy information,
// return and risk metrics, trade statistics and the closed trade table.
func Render(w io.Writer, result types.Result) error {
	sep := strings.Repeat("=", separatorWidth)

	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, "Backtest Report")
	fmt.Fprintln(w, sep)
	fmt.Fprintf(w, "Generated: %s\n", result.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Strategy")
	fmt.Fprintf(w, "  Name:   %s\n", result.StrategyName)
	fmt.Fprintf(w, "  Symbol: %s\n", result.Symbol)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Returns")
	fmt.Fprintf(w, "  Initial Capital:  $%.2f\n", result.InitialCapital)
	fmt.Fprintf(w, "  Final Value:      $%.2f\n", result.FinalValue)
	fmt.Fprintf(w, "  Total PnL:        $%.2f\n", result.FinalValue-result.InitialCapital)
	fmt.Fprintf(w, "  Total Return:     %.2f%%\n", result.TotalReturn*100)
	fmt.Fprintf(w, "  Buy & Hold:       %.2f%%\n", result.BuyHoldReturn*100)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Risk")
	fmt.Fprintf(w, "  Sharpe Ratio:     %.2f\n", result.SharpeRatio)
	fmt.Fprintf(w, "  Max Drawdown:     %.2f%%\n", result.MaxDrawdown*100)
	fmt.Fprintf(w, "  Sortino Ratio:    %.2f\n", result.Extended.SortinoRatio)
	fmt.Fprintf(w, "  Calmar Ratio:     %.2f\n", result.Extended.CalmarRatio)
	fmt.Fprintf(w, "  Ann. Return:      %.2f%%\n", result.Extended.AnnualizedReturn*100)
	fmt.Fprintf(w, "  Ann. Volatility:  %.2f%%\n", result.Extended.AnnualizedVolatility*100)
	fmt.Fprintf(w, "  VaR (95%%):        %.2f%%\n", result.Extended.ValueAtRisk*100)
	fmt.Fprintf(w, "  CVaR (95%%):       %.2f%%\n", result.Extended.ConditionalVaR*100)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Trades")
	fmt.Fprintf(w, "  Total:      %d\n", result.TotalTrades)
	fmt.Fprintf(w, "  Winning:    %d\n", result.WinningTrades)
	fmt.Fprintf(w, "  Losing:     %d\n", result.LosingTrades)
	fmt.Fprintf(w, "  Win Rate:   %.2f%%\n", result.WinRate*100)
	fmt.Fprintf(w, "  Avg Win:    $%.2f\n", result.AvgWin)
	fmt.Fprintf(w, "  Avg Loss:   $%.2f\n", result.AvgLoss)
	fmt.Fprintf(w, "  Profit Factor: %s\n", formatProfitFactor(result.ProfitFactor))
	fmt.Fprintln(w)

	if len(result.Trades) > 0 {
		renderTradeTable(w, result.Trades)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, sep)

	return nil
}

func renderTradeTable(w io.Writer, trades []types.ClosedTrade) {
	table := tablewriter.NewWriter(w)
	table.Header("Entry", "Exit", "Qty", "Entry $", "Exit $", "PnL", "PnL %")

	for _, trade := range trades {
		table.Append(
			trade.EntryTime.Format("2006-01-02"),
			trade.ExitTime.Format("2006-01-02"),
			fmt.Sprintf("%.0f", trade.Quantity),
			fmt.Sprintf("%.2f", trade.EntryPrice),
			fmt.Sprintf("%.2f", trade.ExitPrice),
			fmt.Sprintf("%.2f", trade.PnL),
			fmt.Sprintf("%.2f%%", trade.PnLPct*100),
		)
	}

	table.Render()
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "INF"
	}

	return fmt.Sprintf("%.2f", pf)
}
