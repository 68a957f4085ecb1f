// Package report holds the customer/order data model and the transform that
// turns orders into the VIP spend report: a left join of orders to customers,
// a per-(name, email) sum, a threshold filter and a descending sort.
package report

import (
	"cmp"
	"slices"
)

// DefaultThreshold is the spend a customer must exceed to appear in the report.
const DefaultThreshold = 500.0

// Report column labels.
const (
	ColumnName  = "Customer Name"
	ColumnEmail = "Email"
	ColumnTotal = "Total Spent"
)

// Customer is a row of the customers file.
type Customer struct {
	ID    int64  `csv:"id"`
	Name  string `csv:"name"`
	Email string `csv:"email"`
}

// Order is a row of the orders table.
type Order struct {
	ID         int64   `db:"id"`
	CustomerID int64   `db:"customer_id"`
	Amount     float64 `db:"amount"`
}

// Purchase is an order enriched with its customer. Name and Email are empty
// and Matched is false when no customer has the order's CustomerID.
type Purchase struct {
	Order
	Name    string
	Email   string
	Matched bool
}

// Row is one line of the report.
type Row struct {
	Name  string  `csv:"Customer Name"`
	Email string  `csv:"Email"`
	Total float64 `csv:"Total Spent"`
}

// Index builds the join index of customers by ID. When IDs repeat, the last
// customer wins.
func Index(customers []Customer) map[int64]Customer {
	idx := make(map[int64]Customer, len(customers))
	for _, c := range customers {
		idx[c.ID] = c
	}
	return idx
}

// Join left-joins a single order to the customer index.
func Join(o Order, idx map[int64]Customer) Purchase {
	c, ok := idx[o.CustomerID]
	if !ok {
		return Purchase{Order: o}
	}
	return Purchase{Order: o, Name: c.Name, Email: c.Email, Matched: true}
}

type groupKey struct {
	name  string
	email string
}

// Aggregator sums purchase amounts per (name, email). The zero value is ready
// to use. It is not safe for concurrent use.
type Aggregator struct {
	totals map[groupKey]float64
	count  int
}

// Add folds purchases into the running totals.
func (a *Aggregator) Add(purchases ...Purchase) {
	if a.totals == nil {
		a.totals = make(map[groupKey]float64)
	}
	for _, p := range purchases {
		a.totals[groupKey{name: p.Name, email: p.Email}] += p.Amount
	}
	a.count += len(purchases)
}

// Purchases returns how many purchases were added.
func (a *Aggregator) Purchases() int { return a.count }

// Totals returns the unfiltered aggregation ordered by name, then email.
func (a *Aggregator) Totals() []Row {
	rows := make([]Row, 0, len(a.totals))
	for k, total := range a.totals {
		rows = append(rows, Row{Name: k.name, Email: k.email, Total: total})
	}
	slices.SortFunc(rows, func(x, y Row) int {
		return cmp.Or(cmp.Compare(x.Name, y.Name), cmp.Compare(x.Email, y.Email))
	})
	return rows
}

// VIP keeps the rows whose total strictly exceeds threshold.
func VIP(rows []Row, threshold float64) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.Total > threshold {
			out = append(out, r)
		}
	}
	return out
}

// SortByTotal orders rows by total, highest first. Ties keep their relative
// order.
func SortByTotal(rows []Row) {
	slices.SortStableFunc(rows, func(x, y Row) int {
		return cmp.Compare(y.Total, x.Total)
	})
}

// Build runs the whole transform over in-memory inputs.
func Build(customers []Customer, orders []Order, threshold float64) []Row {
	idx := Index(customers)
	var agg Aggregator
	for _, o := range orders {
		agg.Add(Join(o, idx))
	}
	rows := VIP(agg.Totals(), threshold)
	SortByTotal(rows)
	return rows
}
