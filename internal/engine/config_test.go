package engine

import (
	"testing"
	"time"

	"github.com/quantbench/quantbench/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestParseConfigAppliesDefaults() {
	content := `
initial_capital: 100000
commission: 0.001
slippage: 0.0001
symbol: AAPL
strategy:
  name: ma_crossover
  params:
    short_window: 10
    long_window: 30
`

	config, err := ParseConfig([]byte(content))
	suite.Require().NoError(err)

	suite.Equal(100000.0, config.InitialCapital)
	suite.Equal("AAPL", config.Symbol)
	suite.Equal(SizingPolicyFixedFraction, config.Sizing.Policy)
	suite.Equal(0.95, config.Sizing.Fraction)
	suite.Equal("ma_crossover", config.Strategy.Name)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
}

func (suite *ConfigTestSuite) TestParseConfigTimeRange() {
	content := `
initial_capital: 50000
symbol: BTC-USD
strategy:
  name: momentum
start_time: 2024-01-01T00:00:00Z
end_time: 2024-06-30T00:00:00Z
`

	config, err := ParseConfig([]byte(content))
	suite.Require().NoError(err)

	suite.Require().True(config.StartTime.IsSome())
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap())
	suite.Require().True(config.EndTime.IsSome())
	suite.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), config.EndTime.Unwrap())
}

func (suite *ConfigTestSuite) TestParseConfigInvalid() {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing symbol", content: "initial_capital: 1000\nstrategy:\n  name: rsi\n"},
		{name: "zero capital", content: "initial_capital: 0\nsymbol: AAPL\nstrategy:\n  name: rsi\n"},
		{name: "negative commission", content: "initial_capital: 1000\ncommission: -0.1\nsymbol: AAPL\nstrategy:\n  name: rsi\n"},
		{name: "not yaml", content: "{{"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := ParseConfig([]byte(tt.content))
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func (suite *ConfigTestSuite) TestGenerateSchema() {
	var config Config

	schema, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	suite.Contains(schema, "initial_capital")
	suite.Contains(schema, "fixed_fraction")
	suite.Contains(schema, "kelly")
	suite.Contains(schema, "date-time")
}

func (suite *ConfigTestSuite) TestTestConfigIsValid() {
	config := TestConfig("AAPL", 100000)
	suite.NoError(config.Validate())
}
