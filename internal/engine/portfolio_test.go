package engine

import (
	"testing"
	"time"

	"github.com/quantbench/quantbench/internal/logger"
	"github.com/quantbench/quantbench/internal/types"
	"github.com/stretchr/testify/suite"
)

type PortfolioTestSuite struct {
	suite.Suite
	logger *logger.Logger
}

func (suite *PortfolioTestSuite) SetupSuite() {
	suite.logger = logger.NewNopLogger()
}

func TestPortfolioSuite(t *testing.T) {
	suite.Run(t, new(PortfolioTestSuite))
}

func (suite *PortfolioTestSuite) newPortfolio(capital, commission, slippage float64) *Portfolio {
	return NewPortfolio(capital, commission, slippage, NewFixedFractionSizer(0.95), suite.logger)
}

func (suite *PortfolioTestSuite) openTrade(symbol string, entryTime time.Time, entryPrice float64) types.Trade {
	return types.Trade{
		ID:         "t1",
		Symbol:     symbol,
		Direction:  types.TradeDirectionLong,
		EntryTime:  entryTime,
		EntryPrice: entryPrice,
		Quantity:   0,
	}
}

func (suite *PortfolioTestSuite) TestBuyFinalizesQuantity() {
	p := suite.newPortfolio(100000, 0, 0)
	now := time.Now()

	p.OpenTrade(suite.openTrade("AAPL", now, 100))
	p.Execute("AAPL", types.SignalTypeBuy, 100, now, map[string]float64{"AAPL": 100})

	suite.Equal(5000.0, p.Cash())
	suite.Equal(950.0, p.Position("AAPL"))

	trades := p.Trades()
	suite.Require().Len(trades, 1)
	suite.Equal(950.0, trades[0].Quantity)
	suite.False(trades[0].Closed())
}

func (suite *PortfolioTestSuite) TestBuySuppressedOnInsufficientCash() {
	p := suite.newPortfolio(1000, 0, 0)
	now := time.Now()

	p.OpenTrade(suite.openTrade("AAPL", now, 10000))
	p.Execute("AAPL", types.SignalTypeBuy, 10000, now, map[string]float64{"AAPL": 10000})

	suite.Equal(1000.0, p.Cash())
	suite.Equal(0.0, p.Position("AAPL"))

	// The placeholder trade stays open with its zero quantity.
	trades := p.Trades()
	suite.Require().Len(trades, 1)
	suite.Equal(0.0, trades[0].Quantity)
	suite.False(trades[0].Closed())
}

func (suite *PortfolioTestSuite) TestSellWithNoPositionIsNoOp() {
	p := suite.newPortfolio(100000, 0, 0)
	now := time.Now()

	p.Execute("AAPL", types.SignalTypeSell, 100, now, map[string]float64{"AAPL": 100})

	suite.Equal(100000.0, p.Cash())
	suite.Empty(p.Trades())
}

func (suite *PortfolioTestSuite) TestSellClosesMostRecentOpenTrade() {
	p := suite.newPortfolio(100000, 0, 0)
	entryTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exitTime := entryTime.AddDate(0, 0, 1)

	p.OpenTrade(suite.openTrade("AAPL", entryTime, 100))
	p.Execute("AAPL", types.SignalTypeBuy, 100, entryTime, map[string]float64{"AAPL": 100})
	p.Execute("AAPL", types.SignalTypeSell, 110, exitTime, map[string]float64{"AAPL": 110})

	suite.Equal(109500.0, p.Cash())
	suite.Equal(0.0, p.Position("AAPL"))

	trades := p.Trades()
	suite.Require().Len(trades, 1)
	suite.Require().True(trades[0].Closed())
	suite.Equal(exitTime, trades[0].ExitTime.Unwrap())
	suite.InDelta(9500.0, trades[0].PnL.Unwrap(), 1e-9)
}

func (suite *PortfolioTestSuite) TestCashNeverNegativeAfterBuy() {
	p := suite.newPortfolio(100, 0.001, 0.0001)
	now := time.Now()

	for _, price := range []float64{1, 10, 50, 99, 101} {
		p.OpenTrade(suite.openTrade("AAPL", now, price))
		p.Execute("AAPL", types.SignalTypeBuy, price, now, map[string]float64{"AAPL": price})
		suite.GreaterOrEqual(p.Cash(), 0.0)
		p.Execute("AAPL", types.SignalTypeSell, price, now, map[string]float64{"AAPL": price})
	}
}

func (suite *PortfolioTestSuite) TestValueAtMissingPrice() {
	p := suite.newPortfolio(100000, 0, 0)
	now := time.Now()

	p.OpenTrade(suite.openTrade("AAPL", now, 100))
	p.Execute("AAPL", types.SignalTypeBuy, 100, now, map[string]float64{"AAPL": 100})

	// A held symbol with no quoted price contributes nothing.
	suite.Equal(p.Cash(), p.ValueAt(map[string]float64{}))
}

func (suite *PortfolioTestSuite) TestRecordEquitySnapshotsPositions() {
	p := suite.newPortfolio(100000, 0, 0)
	now := time.Now()

	p.OpenTrade(suite.openTrade("AAPL", now, 100))
	p.Execute("AAPL", types.SignalTypeBuy, 100, now, map[string]float64{"AAPL": 100})
	p.RecordEquity(now, map[string]float64{"AAPL": 100})
	p.Execute("AAPL", types.SignalTypeSell, 100, now, map[string]float64{"AAPL": 100})
	p.RecordEquity(now, map[string]float64{"AAPL": 100})

	curve := p.EquityCurve()
	suite.Require().Len(curve, 2)
	suite.Equal(950.0, curve[0].Positions["AAPL"])
	suite.Equal(0.0, curve[1].Positions["AAPL"])
	suite.Equal(100000.0, curve[0].PortfolioValue)
	suite.Equal(100000.0, curve[1].PortfolioValue)
}
