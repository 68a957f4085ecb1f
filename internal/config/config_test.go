package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TranTienDanh-05/Lab2-etl/internal/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vipreport.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, "customers.csv", cfg.CustomersPath)
	require.Equal(t, "orders.db", cfg.OrdersDB)
	require.Equal(t, "final_report.csv", cfg.OutputPath)
	require.Equal(t, 500.0, cfg.Threshold)
	require.True(t, cfg.Seed)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "output: out/vip.csv\nthreshold: 1000\nseed: false\n")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "out/vip.csv", cfg.OutputPath)
	require.Equal(t, 1000.0, cfg.Threshold)
	require.False(t, cfg.Seed)
	require.Equal(t, "customers.csv", cfg.CustomersPath, "unset keys keep defaults")
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := config.Load(writeFile(t, ""))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoad_UnknownKey(t *testing.T) {
	_, err := config.Load(writeFile(t, "treshold: 10\n"))
	require.Error(t, err)
}

func TestLoad_Missing(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := map[string]func(*config.Config){
		"empty customers": func(c *config.Config) { c.CustomersPath = "" },
		"empty orders":    func(c *config.Config) { c.OrdersDB = "" },
		"empty output":    func(c *config.Config) { c.OutputPath = "" },
		"negative limit":  func(c *config.Config) { c.Threshold = -1 },
		"zero batch":      func(c *config.Config) { c.BatchSize = 0 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
