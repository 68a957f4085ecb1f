// Package config holds the settings of a report run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TranTienDanh-05/Lab2-etl/internal/report"
)

// Default file locations, relative to the working directory.
const (
	DefaultCustomersPath = "customers.csv"
	DefaultOrdersDB      = "orders.db"
	DefaultOutputPath    = "final_report.csv"
	DefaultLogMode       = "dev"
	DefaultBatchSize     = 100
)

// Config is the full set of options for one run. Paths are taken as given.
type Config struct {
	CustomersPath string  `yaml:"customers"`
	OrdersDB      string  `yaml:"orders_db"`
	OutputPath    string  `yaml:"output"`
	Threshold     float64 `yaml:"threshold"`
	LogMode       string  `yaml:"log_mode"`
	BatchSize     int     `yaml:"batch_size"`
	// Seed creates and fills the orders database when it does not exist.
	Seed bool `yaml:"seed"`
}

// Default returns the settings of a run invoked without any options.
func Default() Config {
	return Config{
		CustomersPath: DefaultCustomersPath,
		OrdersDB:      DefaultOrdersDB,
		OutputPath:    DefaultOutputPath,
		Threshold:     report.DefaultThreshold,
		LogMode:       DefaultLogMode,
		BatchSize:     DefaultBatchSize,
		Seed:          true,
	}
}

// Load reads a YAML file on top of Default. Keys absent from the file keep
// their default; unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.CustomersPath == "":
		return errors.New("config: customers path is empty")
	case c.OrdersDB == "":
		return errors.New("config: orders database path is empty")
	case c.OutputPath == "":
		return errors.New("config: output path is empty")
	case c.Threshold < 0:
		return fmt.Errorf("config: threshold %v is negative", c.Threshold)
	case c.BatchSize < 1:
		return fmt.Errorf("config: batch size %d must be at least 1", c.BatchSize)
	}
	return nil
}
