package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/quantbench/quantbench/pkg/errors"
	"gopkg.in/yaml.v3"
)

type SizingPolicy string

const (
	// SizingPolicyFixedFraction buys floor(fraction * portfolioValue / price)
	// units. This is the default policy with fraction 0.95.
	SizingPolicyFixedFraction SizingPolicy = "fixed_fraction"
	// SizingPolicyKelly sizes by a clamped half-Kelly fraction.
	SizingPolicyKelly SizingPolicy = "kelly"
)

var AllSizingPolicies = []any{
	SizingPolicyFixedFraction,
	SizingPolicyKelly,
}

// SizingConfig selects and parameterizes the position sizing policy.
type SizingConfig struct {
	Policy   SizingPolicy `yaml:"policy" json:"policy" jsonschema:"title=Sizing Policy,description=Position sizing policy applied to accepted buy signals"`
	Fraction float64      `yaml:"fraction" json:"fraction" jsonschema:"title=Fraction,description=Fraction of portfolio value budgeted per entry,minimum=0,maximum=1"`
	// Kelly inputs.
	WinRate float64 `yaml:"win_rate" json:"win_rate" jsonschema:"minimum=0,maximum=1"`
	AvgWin  float64 `yaml:"avg_win" json:"avg_win" jsonschema:"minimum=0"`
	AvgLoss float64 `yaml:"avg_loss" json:"avg_loss" jsonschema:"minimum=0"`
}

// StrategyConfig names a strategy from the closed set and carries its raw
// parameter node; the strategy factory decodes and validates it.
type StrategyConfig struct {
	Name   string    `yaml:"name" json:"name" validate:"required" jsonschema:"title=Strategy Name"`
	Params yaml.Node `yaml:"params" json:"-"`
}

// Config carries every tunable of one backtest run. All values reach the
// portfolio and simulator as explicit constructor arguments; nothing is
// defaulted inside business logic.
type Config struct {
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" validate:"required,gt=0" jsonschema:"title=Initial Capital,description=Starting capital for the backtest in USD,minimum=0"`
	// Commission is a fraction charged on both entry and exit, e.g. 0.001 = 10 bps.
	Commission float64 `yaml:"commission" json:"commission" validate:"gte=0,lt=1" jsonschema:"title=Commission,minimum=0,maximum=1"`
	// Slippage is a fraction applied adversely to fills.
	Slippage float64        `yaml:"slippage" json:"slippage" validate:"gte=0,lt=1" jsonschema:"title=Slippage,minimum=0,maximum=1"`
	Symbol   string         `yaml:"symbol" json:"symbol" validate:"required" jsonschema:"title=Symbol"`
	Sizing   SizingConfig   `yaml:"sizing" json:"sizing"`
	Strategy StrategyConfig `yaml:"strategy" json:"strategy" validate:"required"`

	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start bound for the bar series"`
	EndTime   optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end bound for the bar series"`
}

// UnmarshalYAML implements custom unmarshaling for Config.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type config struct {
		InitialCapital float64        `yaml:"initial_capital"`
		Commission     float64        `yaml:"commission"`
		Slippage       float64        `yaml:"slippage"`
		Symbol         string         `yaml:"symbol"`
		Sizing         SizingConfig   `yaml:"sizing"`
		Strategy       StrategyConfig `yaml:"strategy"`
		StartTime      *time.Time     `yaml:"start_time"`
		EndTime        *time.Time     `yaml:"end_time"`
	}

	var cfg config
	if err := unmarshal(&cfg); err != nil {
		return err
	}

	c.InitialCapital = cfg.InitialCapital
	c.Commission = cfg.Commission
	c.Slippage = cfg.Slippage
	c.Symbol = cfg.Symbol
	c.Sizing = cfg.Sizing
	c.Strategy = cfg.Strategy

	if cfg.StartTime != nil {
		c.StartTime = optional.Some(*cfg.StartTime)
	}

	if cfg.EndTime != nil {
		c.EndTime = optional.Some(*cfg.EndTime)
	}

	return nil
}

// ParseConfig unmarshals, defaults and validates a YAML config document.
func ParseConfig(content []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Sizing.Policy == "" {
		c.Sizing.Policy = SizingPolicyFixedFraction
	}

	if c.Sizing.Policy == SizingPolicyFixedFraction && c.Sizing.Fraction == 0 {
		c.Sizing.Fraction = 0.95
	}
}

// Validate validates the Config struct.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "engine.SizingPolicy") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: AllSizingPolicies,
				}
			}

			if strings.Contains(t.String(), "yaml.Node") {
				return &jsonschema.Schema{
					Type: "object",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-config"
	schema.Description = "Configuration schema for one backtest run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the Config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schemaBytes, err := json.MarshalIndent(c.GenerateSchema(), "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a frictionless config suitable for tests.
func TestConfig(symbol string, initialCapital float64) Config {
	return Config{
		InitialCapital: initialCapital,
		Commission:     0,
		Slippage:       0,
		Symbol:         symbol,
		Sizing: SizingConfig{
			Policy:   SizingPolicyFixedFraction,
			Fraction: 0.95,
		},
		Strategy:  StrategyConfig{Name: "ma_crossover"},
		StartTime: optional.None[time.Time](),
		EndTime:   optional.None[time.Time](),
	}
}
