package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ExtendedMetrics is the optional tier of risk statistics. Every ratio
// degrades to 0 on a zero denominator instead of erroring.
type ExtendedMetrics struct {
	// Annualized return via (1+totalReturn)^(252/tradingDays) - 1.
	AnnualizedReturn float64 `yaml:"annualized_return"`
	// Annualized volatility: stddev(dailyReturn) * sqrt(252).
	AnnualizedVolatility float64 `yaml:"annualized_volatility"`
	// Sample stddev of the negative daily returns only.
	DownsideDeviation float64 `yaml:"downside_deviation"`
	SortinoRatio      float64 `yaml:"sortino_ratio"`
	CalmarRatio       float64 `yaml:"calmar_ratio"`
	// Empirical percentile VaR/CVaR of the daily return distribution.
	ValueAtRisk        float64 `yaml:"value_at_risk"`
	ConditionalVaR     float64 `yaml:"conditional_var"`
	Skewness           float64 `yaml:"skewness"`
	Kurtosis           float64 `yaml:"kurtosis"`
}

// Result is the terminal output of one backtest run. Created once at the end
// of a run; immutable thereafter.
type Result struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp    time.Time `yaml:"timestamp"`
	StrategyName string    `yaml:"strategy_name"`
	Symbol       string    `yaml:"symbol"`

	InitialCapital float64 `yaml:"initial_capital"`
	FinalValue     float64 `yaml:"final_value"`
	TotalReturn    float64 `yaml:"total_return"`
	SharpeRatio    float64 `yaml:"sharpe_ratio"`
	// MaxDrawdown is the minimum of the drawdown series, a non-positive number.
	MaxDrawdown float64 `yaml:"max_drawdown"`

	TotalTrades   int     `yaml:"total_trades"`
	WinningTrades int     `yaml:"winning_trades"`
	LosingTrades  int     `yaml:"losing_trades"`
	WinRate       float64 `yaml:"win_rate"`
	AvgWin        float64 `yaml:"avg_win"`
	AvgLoss       float64 `yaml:"avg_loss"`
	ProfitFactor  float64 `yaml:"profit_factor"`

	BuyHoldReturn float64 `yaml:"buy_hold_return"`

	Extended ExtendedMetrics `yaml:"extended"`

	EquityCurve []EquityPoint `yaml:"equity_curve"`
	Trades      []ClosedTrade `yaml:"trades"`
}

// WriteResult marshals the result to YAML and writes it to the given path.
func WriteResult(path string, result Result) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result to file: %w", err)
	}

	return nil
}
