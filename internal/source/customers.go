package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"github.com/jszwec/csvutil"

	"github.com/TranTienDanh-05/Lab2-etl/internal/report"
)

var customerColumns = []string{"id", "name", "email"}

// ReadCustomers loads every row of the customers CSV at path. The header must
// name the id, name and email columns; other columns are ignored.
func ReadCustomers(path string) ([]report.Customer, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fail(Customers, path, err)
	}
	defer f.Close()

	customers, err := DecodeCustomers(f)
	if err != nil {
		return nil, fail(Customers, path, err)
	}
	return customers, nil
}

// DecodeCustomers decodes customers CSV from r.
func DecodeCustomers(r io.Reader) ([]report.Customer, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file: missing header")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for _, col := range customerColumns {
		if !slices.Contains(dec.Header(), col) {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var customers []report.Customer
	for {
		var c report.Customer
		err := dec.Decode(&c)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, nil
}
