package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/jszwec/csvutil"
)

// WriteCSV writes rows to path with a header row and no index column. The
// file is written next to path under a temporary name and renamed into place,
// so path is either left untouched or holds the complete report.
func WriteCSV(path string, rows []Row) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := Encode(tmp, rows); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename report file: %w", err)
	}
	return nil
}

// Encode writes rows as CSV to w. The header is written even when rows is
// empty.
func Encode(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	enc.Register(func(v float64) ([]byte, error) {
		return []byte(FormatTotal(v)), nil
	})
	if err := enc.EncodeHeader(Row{}); err != nil {
		return fmt.Errorf("encode report header: %w", err)
	}
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode report row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}

// Render prints rows as an aligned table.
func Render(w io.Writer, rows []Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", ColumnName, ColumnEmail, ColumnTotal)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Email, FormatTotal(r.Total))
	}
	return tw.Flush()
}

// FormatTotal formats an amount with the fewest digits that represent it
// exactly.
func FormatTotal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
