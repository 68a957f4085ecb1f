package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/TranTienDanh-05/Lab2-etl/internal/report"
)

const ordersQuery = `SELECT id, customer_id, amount FROM orders ORDER BY id`

// openDB opens the orders database. Replaced in tests.
var openDB = func(path string) (*sqlx.DB, error) {
	return sqlx.Open("sqlite3", "file:"+path+"?mode=ro")
}

// ReadOrders loads every row of the orders table in the SQLite file at path.
// The database is opened read-only and closed before returning, whether or
// not the query succeeded.
func ReadOrders(ctx context.Context, path string) (orders []report.Order, err error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fail(Orders, path, err)
	}

	db, err := openDB(path)
	if err != nil {
		return nil, fail(Orders, path, err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fail(Orders, path, fmt.Errorf("close: %w", cerr))
		}
	}()

	if err := db.SelectContext(ctx, &orders, ordersQuery); err != nil {
		// The file can vanish between the stat above and the first connection;
		// the driver then only says it cannot open the file.
		if _, statErr := os.Stat(path); errors.Is(statErr, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fail(Orders, path, err)
	}
	return orders, nil
}
