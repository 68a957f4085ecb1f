// Package seed initialises the orders database on first run.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/TranTienDanh-05/Lab2-etl/internal/logger"
	"github.com/TranTienDanh-05/Lab2-etl/internal/report"
)

// Order is the orders table model.
type Order struct {
	ID         int64   `gorm:"primaryKey"`
	CustomerID int64   `gorm:"not null;index"`
	Amount     float64 `gorm:"not null"`
}

func (Order) TableName() string { return "orders" }

// SampleOrders is the data written into a freshly created database.
var SampleOrders = []report.Order{
	{ID: 1, CustomerID: 1, Amount: 300},
	{ID: 2, CustomerID: 2, Amount: 150},
	{ID: 3, CustomerID: 1, Amount: 450},
	{ID: 4, CustomerID: 3, Amount: 800},
	{ID: 5, CustomerID: 4, Amount: 120},
	{ID: 6, CustomerID: 2, Amount: 200},
	{ID: 7, CustomerID: 5, Amount: 50},
	{ID: 8, CustomerID: 4, Amount: 90},
	{ID: 9, CustomerID: 3, Amount: 75},
}

// EnsureOrders creates the database at path with the orders table and
// SampleOrders when no file exists there. An existing file is left untouched.
// It reports whether the database was created.
func EnsureOrders(ctx context.Context, path string, log *logger.Logger) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		log.Debug("orders database present", "path", path)
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, fmt.Errorf("stat orders database: %w", err)
	}

	log.Info("orders database missing, initialising", "path", path)
	if err := Create(ctx, path, SampleOrders); err != nil {
		_ = os.Remove(path)
		log.Error("failed to initialise orders database", "path", path, "error", err)
		return false, err
	}
	log.Info("orders database initialised", "path", path, "orders", len(SampleOrders))
	return true, nil
}

// Create migrates the orders table in the database at path and inserts orders
// in a single transaction.
func Create(ctx context.Context, path string, orders []report.Order) error {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open orders database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("orders database handle: %w", err)
	}
	defer sqlDB.Close()

	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&Order{}); err != nil {
		return fmt.Errorf("migrate orders table: %w", err)
	}
	if len(orders) == 0 {
		return nil
	}

	rows := make([]Order, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, Order{ID: o.ID, CustomerID: o.CustomerID, Amount: o.Amount})
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert orders: %w", err)
		}
		return nil
	})
}
