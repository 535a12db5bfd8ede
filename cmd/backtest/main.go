package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/moznion/go-optional"
	"github.com/quantbench/quantbench/internal/datasource"
	"github.com/quantbench/quantbench/internal/engine"
	"github.com/quantbench/quantbench/internal/logger"
	"github.com/quantbench/quantbench/internal/report"
	"github.com/quantbench/quantbench/internal/store"
	"github.com/quantbench/quantbench/internal/strategy"
	"github.com/quantbench/quantbench/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// runAction loads the config and market data, runs one backtest and writes
// the report, the YAML result and the Parquet export.
func runAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	outputDir := cmd.String("output")

	appLog, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLog.Sync()

	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	config, err := engine.ParseConfig(content)
	if err != nil {
		return err
	}

	if symbol := cmd.String("symbol"); symbol != "" {
		config.Symbol = symbol
	}

	strat, err := strategy.New(config.Strategy.Name, &config.Strategy.Params)
	if err != nil {
		return err
	}

	source, err := datasource.NewDuckDBDataSource(appLog)
	if err != nil {
		return err
	}
	defer source.Close()

	if err := source.Initialize(dataPath); err != nil {
		return err
	}

	bars, err := source.ReadAll()
	if err != nil {
		return err
	}

	backtester, err := engine.NewBacktestEngine(config, strat, appLog)
	if err != nil {
		return err
	}

	bar := progressbar.Default(int64(len(bars)))
	onBar := optional.Some[engine.OnBarCallback](func(processed, total int) {
		_ = bar.Set(processed)
	})

	result, err := backtester.Run(bars, onBar)
	if err != nil {
		return err
	}

	if err := report.Render(os.Stdout, result); err != nil {
		return err
	}

	if outputDir == "" {
		return nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	resultPath := filepath.Join(outputDir, "result.yaml")
	if err := types.WriteResult(resultPath, result); err != nil {
		return err
	}

	resultStore, err := store.NewResultStore(appLog)
	if err != nil {
		return err
	}
	defer resultStore.Close()

	if err := resultStore.SaveResult(result); err != nil {
		return err
	}

	return resultStore.Write(outputDir)
}

// schemaAction prints the JSON schema of the backtest config.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	var config engine.Config

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run an event-driven backtest over historical market data",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a backtest from a config file and a data file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the YAML backtest config",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to the market data file (CSV or Parquet)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory for the result YAML and Parquet export",
						Value:   "results",
					},
					&cli.StringFlag{
						Name:  "symbol",
						Usage: "Override the symbol from the config",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the backtest config",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
