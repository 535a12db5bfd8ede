package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/quantbench/quantbench/internal/types"
	"github.com/stretchr/testify/suite"
)

type MetricsTestSuite struct {
	suite.Suite
	calc Calculator
}

func (suite *MetricsTestSuite) SetupTest() {
	suite.calc = NewCalculator()
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsTestSuite))
}

func (suite *MetricsTestSuite) curve(values ...float64) []types.EquityPoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]types.EquityPoint, len(values))

	for i, v := range values {
		points[i] = types.EquityPoint{
			Time:           base.AddDate(0, 0, i),
			PortfolioValue: v,
			Cash:           v,
		}
	}

	return points
}

func (suite *MetricsTestSuite) closedTrade(pnl float64) types.Trade {
	trade := types.Trade{
		ID:         "t",
		Symbol:     "AAPL",
		Direction:  types.TradeDirectionLong,
		EntryTime:  time.Now(),
		EntryPrice: 100,
		Quantity:   1,
	}
	trade.ExitTime = optional.Some(time.Now())
	trade.ExitPrice = optional.Some(100 + pnl)
	trade.PnL = optional.Some(pnl)
	trade.PnLPct = optional.Some(pnl / 100)

	return trade
}

func (suite *MetricsTestSuite) TestFlatCurveDegenerates() {
	result := suite.calc.Calculate(Input{
		InitialCapital: 100000,
		EquityCurve:    suite.curve(100000, 100000),
	})

	suite.Equal(0.0, result.SharpeRatio)
	suite.Equal(0.0, result.MaxDrawdown)
	suite.Equal(0.0, result.WinRate)
	suite.Equal(0.0, result.TotalReturn)
	suite.Equal(0.0, result.ProfitFactor)
}

func (suite *MetricsTestSuite) TestEmptyInput() {
	result := suite.calc.Calculate(Input{InitialCapital: 100000})

	suite.Equal(100000.0, result.FinalValue)
	suite.Equal(0.0, result.TotalReturn)
	suite.Equal(0.0, result.SharpeRatio)
	suite.Equal(0, result.TotalTrades)
}

func (suite *MetricsTestSuite) TestMaxDrawdown() {
	// Peak 120, trough 90: drawdown = (90-120)/120 = -0.25.
	result := suite.calc.Calculate(Input{
		InitialCapital: 100,
		EquityCurve:    suite.curve(100, 120, 90, 110),
	})

	suite.InDelta(-0.25, result.MaxDrawdown, 1e-12)
}

func (suite *MetricsTestSuite) TestMonotoneCurveHasZeroDrawdown() {
	result := suite.calc.Calculate(Input{
		InitialCapital: 100,
		EquityCurve:    suite.curve(100, 110, 120, 130),
	})

	suite.Equal(0.0, result.MaxDrawdown)
	suite.Greater(result.SharpeRatio, 0.0)
}

func (suite *MetricsTestSuite) TestSharpeMatchesHandComputation() {
	values := []float64{100, 110, 99, 105}
	returns := []float64{0.1, -0.1, 6.0 / 99.0}

	m := (returns[0] + returns[1] + returns[2]) / 3

	var ss float64
	for _, r := range returns {
		ss += (r - m) * (r - m)
	}
	sd := math.Sqrt(ss / 2)

	expected := math.Sqrt(252) * m / sd

	result := suite.calc.Calculate(Input{
		InitialCapital: 100,
		EquityCurve:    suite.curve(values...),
	})

	suite.InDelta(expected, result.SharpeRatio, 1e-9)
}

func (suite *MetricsTestSuite) TestTradeStats() {
	trades := []types.Trade{
		suite.closedTrade(10),
		suite.closedTrade(20),
		suite.closedTrade(-5),
		{ID: "open", Symbol: "AAPL"},
	}

	result := suite.calc.Calculate(Input{
		InitialCapital: 100,
		EquityCurve:    suite.curve(100, 125),
		Trades:         trades,
	})

	suite.Equal(3, result.TotalTrades)
	suite.Equal(2, result.WinningTrades)
	suite.Equal(1, result.LosingTrades)
	suite.InDelta(2.0/3.0, result.WinRate, 1e-12)
	suite.Equal(15.0, result.AvgWin)
	suite.Equal(-5.0, result.AvgLoss)
	suite.InDelta(6.0, result.ProfitFactor, 1e-12)
	suite.Len(result.Trades, 3)
}

func (suite *MetricsTestSuite) TestZeroPnLTradeIsNeitherWinNorLoss() {
	result := suite.calc.Calculate(Input{
		InitialCapital: 100,
		EquityCurve:    suite.curve(100, 100),
		Trades:         []types.Trade{suite.closedTrade(0)},
	})

	suite.Equal(1, result.TotalTrades)
	suite.Equal(0, result.WinningTrades)
	suite.Equal(0, result.LosingTrades)
	suite.Equal(0.0, result.WinRate)
}

func (suite *MetricsTestSuite) TestProfitFactorInfiniteWithoutLosses() {
	result := suite.calc.Calculate(Input{
		InitialCapital: 100,
		EquityCurve:    suite.curve(100, 110),
		Trades:         []types.Trade{suite.closedTrade(10)},
	})

	suite.True(math.IsInf(result.ProfitFactor, 1))
}

func (suite *MetricsTestSuite) TestBuyHoldReturn() {
	bars := []types.Bar{
		{Time: time.Now(), Close: 100},
		{Time: time.Now(), Close: 150},
	}

	result := suite.calc.Calculate(Input{
		InitialCapital: 100,
		EquityCurve:    suite.curve(100, 100),
		Bars:           bars,
	})

	suite.InDelta(0.5, result.BuyHoldReturn, 1e-12)
}

func (suite *MetricsTestSuite) TestPercentileInterpolation() {
	values := []float64{1, 2, 3, 4}

	suite.Equal(1.0, percentile(values, 0))
	suite.Equal(4.0, percentile(values, 100))
	suite.InDelta(2.5, percentile(values, 50), 1e-12)
	// rank = 0.05 * 3 = 0.15 between the first two values.
	suite.InDelta(1.15, percentile(values, 5), 1e-12)
}

func (suite *MetricsTestSuite) TestValueAtRiskTail() {
	values := suite.curve(100, 101, 99, 102, 98, 103, 97, 104)

	result := suite.calc.Calculate(Input{
		InitialCapital: 100,
		EquityCurve:    values,
	})

	suite.Less(result.Extended.ValueAtRisk, 0.0)
	suite.LessOrEqual(result.Extended.ConditionalVaR, result.Extended.ValueAtRisk)
}

func (suite *MetricsTestSuite) TestExtendedDegenerates() {
	result := suite.calc.Calculate(Input{
		InitialCapital: 100,
		EquityCurve:    suite.curve(100, 100, 100),
	})

	suite.Equal(0.0, result.Extended.AnnualizedReturn)
	suite.Equal(0.0, result.Extended.AnnualizedVolatility)
	suite.Equal(0.0, result.Extended.SortinoRatio)
	suite.Equal(0.0, result.Extended.CalmarRatio)
	suite.Equal(0.0, result.Extended.Skewness)
	suite.Equal(0.0, result.Extended.Kurtosis)
}

func (suite *MetricsTestSuite) TestAnnualizedReturn() {
	// 252 equity points over one year doubling the capital.
	values := make([]float64, 252)
	for i := range values {
		values[i] = 100 + 100*float64(i)/251
	}

	result := suite.calc.Calculate(Input{
		InitialCapital: 100,
		EquityCurve:    suite.curve(values...),
	})

	suite.InDelta(1.0, result.Extended.AnnualizedReturn, 1e-9)
}

func (suite *MetricsTestSuite) TestSampleStd() {
	suite.Equal(0.0, sampleStd([]float64{1}))
	suite.InDelta(1.0, sampleStd([]float64{1, 2, 3}), 1e-12)
}
