package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TranTienDanh-05/Lab2-etl/internal/seed"
)

func TestRootCmd_SeedsAndReports(t *testing.T) {
	dir := t.TempDir()
	customers := filepath.Join(dir, "customers.csv")
	ordersDB := filepath.Join(dir, "orders.db")
	output := filepath.Join(dir, "final_report.csv")
	require.NoError(t, os.WriteFile(customers, []byte(
		"id,name,email\n1,Alice,alice@example.com\n2,Bob,bob@example.com\n3,Charlie,charlie@example.com\n"), 0o644))

	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout)
	cmd.SetArgs([]string{"--customers", customers, "--orders-db", ordersDB, "--output", output})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	_, err := os.Stat(ordersDB)
	require.NoError(t, err, "missing database is seeded")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	// Sample orders: Charlie 875, Alice 750, Bob 350.
	require.Equal(t,
		"Customer Name,Email,Total Spent\n"+
			"Charlie,charlie@example.com,875\n"+
			"Alice,alice@example.com,750\n",
		string(data))
	require.Contains(t, stdout.String(), "--- FINAL REPORT ---")
}

func TestRootCmd_NoSeedFailsWithoutDatabase(t *testing.T) {
	dir := t.TempDir()
	customers := filepath.Join(dir, "customers.csv")
	require.NoError(t, os.WriteFile(customers, []byte("id,name,email\n"), 0o644))
	output := filepath.Join(dir, "final_report.csv")

	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--customers", customers,
		"--orders-db", filepath.Join(dir, "orders.db"),
		"--output", output,
		"--no-seed",
	})
	require.Error(t, cmd.ExecuteContext(context.Background()))

	_, err := os.Stat(output)
	require.True(t, os.IsNotExist(err))
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestResolveConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "vipreport.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output: from-file.csv\nthreshold: 900\n"), 0o644))

	cmd := newRootCmd(&bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgPath, "--threshold", "100"}))

	cfg, err := resolveConfig(cmd)
	require.NoError(t, err)
	require.Equal(t, "from-file.csv", cfg.OutputPath, "file beats default")
	require.Equal(t, 100.0, cfg.Threshold, "flag beats file")
	require.Equal(t, "customers.csv", cfg.CustomersPath, "default kept")
	require.True(t, cfg.Seed)
}

func TestResolveConfig_Invalid(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})
	require.NoError(t, cmd.ParseFlags([]string{"--batch-size", "0"}))

	_, err := resolveConfig(cmd)
	require.Error(t, err)
}

func TestSampleOrdersCoverFixture(t *testing.T) {
	totals := map[int64]float64{}
	for _, o := range seed.SampleOrders {
		totals[o.CustomerID] += o.Amount
	}
	require.Equal(t, 750.0, totals[1])
	require.Equal(t, 350.0, totals[2])
	require.Equal(t, 875.0, totals[3])
}
