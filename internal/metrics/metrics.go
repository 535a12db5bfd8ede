// Package metrics derives performance statistics from a completed run's
// equity curve and trade ledger. Every ratio degrades to a defined fallback
// (usually 0) on a degenerate input; nothing in this package returns an
// error.
package metrics

import (
	"math"
	"sort"

	"github.com/quantbench/quantbench/internal/types"
)

// Calculator holds the annualization and tail-risk conventions. The zero
// value is not usable; construct with NewCalculator.
type Calculator struct {
	// TradingDays is the annualization factor for daily data.
	TradingDays int
	// RiskFreeRate is an annual rate subtracted from returns for the
	// Sharpe and Sortino ratios.
	RiskFreeRate float64
	// Confidence is the VaR/CVaR confidence level.
	Confidence float64
}

func NewCalculator() Calculator {
	return Calculator{
		TradingDays:  252,
		RiskFreeRate: 0,
		Confidence:   0.95,
	}
}

// Input bundles everything the calculator needs from a finished run. Bars
// are only read for the buy-and-hold benchmark.
type Input struct {
	StrategyName   string
	Symbol         string
	InitialCapital float64
	EquityCurve    []types.EquityPoint
	Trades         []types.Trade
	Bars           []types.Bar
}

// Calculate produces the results record for one run. An empty equity curve
// yields zeroed metrics with FinalValue equal to the initial capital.
func (c Calculator) Calculate(in Input) types.Result {
	result := types.Result{
		StrategyName:   in.StrategyName,
		Symbol:         in.Symbol,
		InitialCapital: in.InitialCapital,
		FinalValue:     in.InitialCapital,
		EquityCurve:    in.EquityCurve,
	}

	values := make([]float64, len(in.EquityCurve))
	for i, point := range in.EquityCurve {
		values[i] = point.PortfolioValue
	}

	if len(values) > 0 {
		result.FinalValue = values[len(values)-1]
	}

	if in.InitialCapital > 0 {
		result.TotalReturn = (result.FinalValue - in.InitialCapital) / in.InitialCapital
	}

	returns := dailyReturns(values)

	result.SharpeRatio = c.sharpe(returns)
	result.MaxDrawdown = maxDrawdown(values)

	c.tradeStats(&result, in.Trades)

	if len(in.Bars) > 0 && in.Bars[0].Close != 0 {
		first := in.Bars[0].Close
		last := in.Bars[len(in.Bars)-1].Close
		result.BuyHoldReturn = (last - first) / first
	}

	result.Extended = c.extended(returns, result.TotalReturn, result.MaxDrawdown, len(values))

	return result
}

func (c Calculator) tradeStats(result *types.Result, trades []types.Trade) {
	var (
		completed           int
		grossWin, grossLoss float64
		closedTrades        []types.ClosedTrade
	)

	for _, trade := range trades {
		if !trade.Closed() {
			continue
		}

		completed++

		if closed, ok := trade.ToClosed(); ok {
			closedTrades = append(closedTrades, closed)
		}

		pnl := trade.PnL.Unwrap()
		switch {
		case pnl > 0:
			result.WinningTrades++
			grossWin += pnl
		case pnl < 0:
			result.LosingTrades++
			grossLoss += -pnl
		}
	}

	result.TotalTrades = completed
	result.Trades = closedTrades

	if completed > 0 {
		result.WinRate = float64(result.WinningTrades) / float64(completed)
	}

	if result.WinningTrades > 0 {
		result.AvgWin = grossWin / float64(result.WinningTrades)
	}

	if result.LosingTrades > 0 {
		result.AvgLoss = -grossLoss / float64(result.LosingTrades)
	}

	// Profit factor is 0 with no trades, +Inf when there are winners but
	// no realized gross loss.
	switch {
	case grossLoss > 0:
		result.ProfitFactor = grossWin / grossLoss
	case grossWin > 0:
		result.ProfitFactor = math.Inf(1)
	}
}

func (c Calculator) sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	excess := make([]float64, len(returns))
	daily := c.RiskFreeRate / float64(c.TradingDays)
	for i, r := range returns {
		excess[i] = r - daily
	}

	sd := sampleStd(excess)
	if sd == 0 {
		return 0
	}

	return math.Sqrt(float64(c.TradingDays)) * mean(excess) / sd
}

func (c Calculator) extended(returns []float64, totalReturn, maxDD float64, curveLen int) types.ExtendedMetrics {
	var ext types.ExtendedMetrics

	if curveLen > 0 {
		years := float64(curveLen) / float64(c.TradingDays)
		if years > 0 && 1+totalReturn > 0 {
			ext.AnnualizedReturn = math.Pow(1+totalReturn, 1/years) - 1
		}
	}

	if len(returns) >= 2 {
		ext.AnnualizedVolatility = sampleStd(returns) * math.Sqrt(float64(c.TradingDays))
	}

	var negative []float64
	for _, r := range returns {
		if r < 0 {
			negative = append(negative, r)
		}
	}

	if len(negative) >= 2 {
		ext.DownsideDeviation = sampleStd(negative) * math.Sqrt(float64(c.TradingDays))
	}

	ext.SortinoRatio = c.sortino(returns)

	if maxDD != 0 {
		ext.CalmarRatio = ext.AnnualizedReturn / math.Abs(maxDD)
	}

	if len(returns) > 0 {
		ext.ValueAtRisk = percentile(returns, (1-c.Confidence)*100)

		var tailSum float64
		var tailN int
		for _, r := range returns {
			if r <= ext.ValueAtRisk {
				tailSum += r
				tailN++
			}
		}

		if tailN > 0 {
			ext.ConditionalVaR = tailSum / float64(tailN)
		}
	}

	ext.Skewness = skewness(returns)
	ext.Kurtosis = excessKurtosis(returns)

	return ext
}

func (c Calculator) sortino(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	excess := make([]float64, len(returns))
	daily := c.RiskFreeRate / float64(c.TradingDays)
	for i, r := range returns {
		excess[i] = r - daily
	}

	var downside []float64
	for _, r := range excess {
		if r < 0 {
			downside = append(downside, r)
		}
	}

	if len(downside) < 2 {
		return 0
	}

	sd := sampleStd(downside)
	if sd == 0 {
		return 0
	}

	return math.Sqrt(float64(c.TradingDays)) * mean(excess) / sd
}

// dailyReturns computes simple period returns between consecutive equity
// snapshots. A zero prior value contributes a 0 return.
func dailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			returns = append(returns, 0)

			continue
		}

		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}

	return returns
}

// maxDrawdown is the minimum of (value - runningMax) / runningMax, a
// non-positive number. 0 for monotone or empty curves.
func maxDrawdown(values []float64) float64 {
	var maxDD float64
	runningMax := math.Inf(-1)

	for _, v := range values {
		if v > runningMax {
			runningMax = v
		}

		if runningMax > 0 {
			dd := (v - runningMax) / runningMax
			if dd < maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// sampleStd is the n-1 standard deviation.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)

	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(values)-1))
}

// percentile matches the linear interpolation convention of most numeric
// libraries: rank = p/100 * (n-1), interpolated between neighbors.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))

	if lo == hi {
		return sorted[lo]
	}

	frac := rank - float64(lo)

	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// skewness is the biased population skewness m3 / m2^1.5.
func skewness(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)

	var m2, m3 float64
	for _, v := range values {
		d := v - m
		m2 += d * d
		m3 += d * d * d
	}

	n := float64(len(values))
	m2 /= n
	m3 /= n

	if m2 == 0 {
		return 0
	}

	return m3 / math.Pow(m2, 1.5)
}

// excessKurtosis is the biased population kurtosis m4 / m2^2 - 3.
func excessKurtosis(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	m := mean(values)

	var m2, m4 float64
	for _, v := range values {
		d := v - m
		m2 += d * d
		m4 += d * d * d * d
	}

	n := float64(len(values))
	m2 /= n
	m4 /= n

	if m2 == 0 {
		return 0
	}

	return m4/(m2*m2) - 3
}
