package vip_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TranTienDanh-05/Lab2-etl/internal/config"
	"github.com/TranTienDanh-05/Lab2-etl/internal/logger"
	"github.com/TranTienDanh-05/Lab2-etl/internal/report"
	"github.com/TranTienDanh-05/Lab2-etl/internal/seed"
	"github.com/TranTienDanh-05/Lab2-etl/internal/source"
	"github.com/TranTienDanh-05/Lab2-etl/internal/vip"
)

// fixture lays out customers.csv and orders.db in a temp dir and returns a
// config pointing at them.
func fixture(t *testing.T, customersCSV string, orders []report.Order) config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.CustomersPath = filepath.Join(dir, "customers.csv")
	cfg.OrdersDB = filepath.Join(dir, "orders.db")
	cfg.OutputPath = filepath.Join(dir, "final_report.csv")

	require.NoError(t, os.WriteFile(cfg.CustomersPath, []byte(customersCSV), 0o644))
	require.NoError(t, seed.Create(context.Background(), cfg.OrdersDB, orders))
	return cfg
}

const aliceBob = "id,name,email\n1,Alice,a@x.com\n2,Bob,b@x.com\n"

func readOutput(t *testing.T, cfg config.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.OutputPath)
	require.NoError(t, err)
	return string(data)
}

func TestRun_AliceBob(t *testing.T) {
	cfg := fixture(t, aliceBob, []report.Order{
		{ID: 1, CustomerID: 1, Amount: 300},
		{ID: 2, CustomerID: 1, Amount: 250},
		{ID: 3, CustomerID: 2, Amount: 100},
	})
	var console bytes.Buffer

	rows, err := vip.Run(context.Background(), cfg, logger.Nop(), &console)
	require.NoError(t, err)
	require.Equal(t, []report.Row{{Name: "Alice", Email: "a@x.com", Total: 550}}, rows)
	require.Equal(t, "Customer Name,Email,Total Spent\nAlice,a@x.com,550\n", readOutput(t, cfg))

	out := console.String()
	for _, line := range []string{
		"STARTED ETL PROCESS...",
		"   -> Loaded 2 customers from CSV.",
		"   -> Loaded 3 orders from SQLite.",
		"[2] Transforming data...",
		"--- FINAL REPORT ---",
		"Report saved to '" + cfg.OutputPath + "'",
	} {
		require.Contains(t, out, line)
	}
}

func TestRun_NoVIPWritesHeaderOnly(t *testing.T) {
	cfg := fixture(t, aliceBob, []report.Order{
		{ID: 1, CustomerID: 1, Amount: 100},
		{ID: 2, CustomerID: 2, Amount: 500},
	})

	rows, err := vip.Run(context.Background(), cfg, logger.Nop(), &bytes.Buffer{})
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Equal(t, "Customer Name,Email,Total Spent\n", readOutput(t, cfg))
}

func TestRun_NoOrders(t *testing.T) {
	cfg := fixture(t, aliceBob, nil)
	var console bytes.Buffer

	rows, err := vip.Run(context.Background(), cfg, logger.Nop(), &console)
	require.NoError(t, err)
	require.Empty(t, rows)
	require.Equal(t, "Customer Name,Email,Total Spent\n", readOutput(t, cfg))
	require.Contains(t, console.String(), "[2] Transforming data...")
}

func TestRun_UnmatchedOrder(t *testing.T) {
	cfg := fixture(t, aliceBob, []report.Order{
		{ID: 1, CustomerID: 1, Amount: 600},
		{ID: 2, CustomerID: 9, Amount: 750},
	})

	rows, err := vip.Run(context.Background(), cfg, logger.Nop(), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, []report.Row{
		{Name: "", Email: "", Total: 750},
		{Name: "Alice", Email: "a@x.com", Total: 600},
	}, rows)
	require.Equal(t, "Customer Name,Email,Total Spent\n,,750\nAlice,a@x.com,600\n", readOutput(t, cfg))
}

func TestRun_SmallBatchesMatchBuild(t *testing.T) {
	var orders []report.Order
	for i := range 57 {
		orders = append(orders, report.Order{ID: int64(i + 1), CustomerID: int64(i%3 + 1), Amount: float64(10 + i)})
	}
	csv := "id,name,email\n1,Alice,a@x.com\n2,Bob,b@x.com\n3,Carol,c@x.com\n"
	cfg := fixture(t, csv, orders)
	cfg.BatchSize = 4

	rows, err := vip.Run(context.Background(), cfg, logger.Nop(), &bytes.Buffer{})
	require.NoError(t, err)

	customers, err := source.DecodeCustomers(bytes.NewBufferString(csv))
	require.NoError(t, err)
	require.Equal(t, report.Build(customers, orders, cfg.Threshold), rows)
}

func TestRun_MissingCustomersFile(t *testing.T) {
	cfg := fixture(t, aliceBob, []report.Order{{ID: 1, CustomerID: 1, Amount: 900}})
	require.NoError(t, os.Remove(cfg.CustomersPath))
	require.NoError(t, os.WriteFile(cfg.OutputPath, []byte("previous"), 0o644))
	var console bytes.Buffer

	_, err := vip.Run(context.Background(), cfg, logger.Nop(), &console)
	require.ErrorIs(t, err, source.ErrNotFound)

	var srcErr *source.Error
	require.True(t, errors.As(err, &srcErr))
	require.Equal(t, source.Customers, srcErr.Source)

	require.Equal(t, "previous", readOutput(t, cfg), "existing report must not be overwritten")
	require.Contains(t, console.String(), "Error reading CSV")
	require.NotContains(t, console.String(), "FINAL REPORT")
}

func TestRun_MissingOrdersDatabase(t *testing.T) {
	cfg := fixture(t, aliceBob, nil)
	require.NoError(t, os.Remove(cfg.OrdersDB))
	var console bytes.Buffer

	_, err := vip.Run(context.Background(), cfg, logger.Nop(), &console)

	var srcErr *source.Error
	require.True(t, errors.As(err, &srcErr))
	require.Equal(t, source.Orders, srcErr.Source)

	_, statErr := os.Stat(cfg.OutputPath)
	require.True(t, os.IsNotExist(statErr), "no report may be created")
	require.Contains(t, console.String(), "Error reading DB")
}

func TestRun_Cancelled(t *testing.T) {
	cfg := fixture(t, aliceBob, []report.Order{{ID: 1, CustomerID: 1, Amount: 900}})
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	var console bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, err := vip.Run(ctx, cfg, log, &console)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, rows)

	_, statErr := os.Stat(cfg.OutputPath)
	require.True(t, os.IsNotExist(statErr), "an interrupted run writes no report")
	require.NotContains(t, console.String(), "FINAL REPORT")

	failed := logs.FilterMessage("stage failed").All()
	require.Len(t, failed, 1)
	require.Equal(t, "extract", failed[0].ContextMap()["stage"])
	require.Len(t, logs.FilterMessage("report run failed").All(), 1)
	require.Empty(t, logs.FilterMessage("report run complete").All())
}

func TestRun_MissingOutputDirectory(t *testing.T) {
	cfg := fixture(t, aliceBob, []report.Order{{ID: 1, CustomerID: 1, Amount: 900}})
	cfg.OutputPath = filepath.Join(filepath.Dir(cfg.OutputPath), "nope", "final_report.csv")

	_, err := vip.Run(context.Background(), cfg, logger.Nop(), &bytes.Buffer{})
	require.ErrorContains(t, err, "finish")
}

func TestRun_CustomThreshold(t *testing.T) {
	cfg := fixture(t, aliceBob, []report.Order{
		{ID: 1, CustomerID: 1, Amount: 300},
		{ID: 2, CustomerID: 2, Amount: 100},
	})
	cfg.Threshold = 50

	rows, err := vip.Run(context.Background(), cfg, logger.Nop(), &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Alice", rows[0].Name)
}
