package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestCloseComputesPnL() {
	entryTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exitTime := entryTime.AddDate(0, 0, 5)

	trade := Trade{
		ID:         "t1",
		Symbol:     "AAPL",
		Direction:  TradeDirectionLong,
		EntryTime:  entryTime,
		EntryPrice: 100,
		Quantity:   950,
	}

	suite.False(trade.Closed())

	trade.Close(exitTime, 110)

	suite.True(trade.Closed())
	suite.Equal(exitTime, trade.ExitTime.Unwrap())
	suite.Equal(110.0, trade.ExitPrice.Unwrap())
	suite.InDelta(9500.0, trade.PnL.Unwrap(), 1e-9)
	suite.InDelta(0.1, trade.PnLPct.Unwrap(), 1e-12)
}

func (suite *TradeTestSuite) TestCloseWithLoss() {
	trade := Trade{
		ID:         "t2",
		Symbol:     "AAPL",
		Direction:  TradeDirectionLong,
		EntryTime:  time.Now(),
		EntryPrice: 100,
		Quantity:   10,
	}

	trade.Close(time.Now(), 90)

	suite.InDelta(-100.0, trade.PnL.Unwrap(), 1e-9)
	suite.InDelta(-0.1, trade.PnLPct.Unwrap(), 1e-12)
}

func (suite *TradeTestSuite) TestToClosedOnOpenTrade() {
	trade := Trade{ID: "t3", Symbol: "AAPL"}

	_, ok := trade.ToClosed()
	suite.False(ok)
}

func (suite *TradeTestSuite) TestToClosedResolvesFields() {
	entryTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exitTime := entryTime.AddDate(0, 0, 1)

	trade := Trade{
		ID:         "t4",
		Symbol:     "AAPL",
		Direction:  TradeDirectionLong,
		EntryTime:  entryTime,
		EntryPrice: 50,
		Quantity:   2,
	}
	trade.Close(exitTime, 60)

	closed, ok := trade.ToClosed()
	suite.Require().True(ok)
	suite.Equal("t4", closed.ID)
	suite.Equal(exitTime, closed.ExitTime)
	suite.Equal(60.0, closed.ExitPrice)
	suite.InDelta(20.0, closed.PnL, 1e-9)
	suite.InDelta(0.2, closed.PnLPct, 1e-12)
}
