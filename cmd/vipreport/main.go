// Command vipreport builds the VIP customer report: it joins the customers CSV
// with the orders table of a SQLite database, sums spend per customer and
// writes the customers above the threshold, highest first, to a CSV file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TranTienDanh-05/Lab2-etl/internal/config"
	"github.com/TranTienDanh-05/Lab2-etl/internal/logger"
	"github.com/TranTienDanh-05/Lab2-etl/internal/seed"
	"github.com/TranTienDanh-05/Lab2-etl/internal/vip"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vipreport",
		Short: "Report customers whose total spend exceeds a threshold",
		Long: `vipreport reads customers from a CSV file and orders from the "orders"
table of a SQLite database, joins them, sums spend per customer and writes
the customers above the threshold, highest first, to a CSV report.

When the orders database does not exist it is created with sample data,
unless --no-seed is given.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdout)
		},
	}
	cmd.SetOut(stdout)

	def := config.Default()
	f := cmd.Flags()
	f.String("config", "", "YAML file with run settings")
	f.String("customers", def.CustomersPath, "customers CSV file")
	f.String("orders-db", def.OrdersDB, "SQLite database holding the orders table")
	f.String("output", def.OutputPath, "report CSV to write")
	f.Float64("threshold", def.Threshold, "minimum total spend, exclusive")
	f.String("log-mode", def.LogMode, "log format: dev or prod")
	f.Int("batch-size", def.BatchSize, "orders per load batch")
	f.Bool("no-seed", false, "fail instead of creating a missing orders database")

	return cmd
}

// resolveConfig layers explicitly set flags over the config file over defaults.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	cfg := config.Default()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}

	stringFlags := map[string]*string{
		"customers": &cfg.CustomersPath,
		"orders-db": &cfg.OrdersDB,
		"output":    &cfg.OutputPath,
		"log-mode":  &cfg.LogMode,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("threshold") {
		if cfg.Threshold, err = flags.GetFloat64("threshold"); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("batch-size") {
		if cfg.BatchSize, err = flags.GetInt("batch-size"); err != nil {
			return config.Config{}, err
		}
	}
	noSeed, err := flags.GetBool("no-seed")
	if err != nil {
		return config.Config{}, err
	}
	if noSeed {
		cfg.Seed = false
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if cfg.Seed {
		if _, err := seed.EnsureOrders(ctx, cfg.OrdersDB, log); err != nil {
			return err
		}
	}

	_, err = vip.Run(ctx, cfg, log, stdout)
	return err
}
