// Package dashboard computes the monthly financial summary shown on the
// dashboard: income and expense totals, balance, the current credit-card
// statement, the reserve bucket and the per-category breakdown.
//
// Everything here is pure and synchronous. Inputs are never mutated.
package dashboard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

const (
	DefaultReserveCategory = "Caixinha"
	DefaultClosingDay      = 12
	DefaultDueDay          = 19
)

// Rules are the business constants of an aggregation.
type Rules struct {
	// ReserveCategory names the savings bucket, matched by exact name.
	ReserveCategory string
	// ClosingDay is the day of month the credit-card bill closes.
	ClosingDay int
	// DueDay is when the bill is due in the following month. It does not
	// affect the statement window.
	DueDay int
}

// DefaultRules returns the Rupia Wallet defaults.
func DefaultRules() Rules {
	return Rules{
		ReserveCategory: DefaultReserveCategory,
		ClosingDay:      DefaultClosingDay,
		DueDay:          DefaultDueDay,
	}
}

// Aggregate builds the monthly summary for transactions already scoped to the
// selected period.
//
// An expense whose category does not resolve still counts toward TotalExpense
// but is left out of CategoryTotals.
func Aggregate(transactions []domain.Transaction, categories []domain.Category, referenceMonth int, today time.Time, rules Rules) domain.AggregationResult {
	window := StatementWindow(referenceMonth, today, rules.ClosingDay)

	res := domain.AggregationResult{
		TotalIncome:           decimal.Zero,
		TotalExpense:          decimal.Zero,
		CurrentStatementTotal: decimal.Zero,
		ReserveTotal:          decimal.Zero,
		StatementWindow:       window,
	}

	acc := newAccumulator(categories)
	for _, t := range transactions {
		if t.Kind == domain.KindIncome {
			res.TotalIncome = res.TotalIncome.Add(t.Amount)
			continue
		}
		if t.Kind != domain.KindExpense {
			continue
		}

		res.TotalExpense = res.TotalExpense.Add(t.Amount)

		if cat, ok := acc.add(t); ok && cat.Name == rules.ReserveCategory {
			res.ReserveTotal = res.ReserveTotal.Add(t.Amount)
		}
		if t.PaymentMethod == domain.PaymentCreditCard && window.Contains(t.Date) {
			res.CurrentStatementTotal = res.CurrentStatementTotal.Add(t.Amount)
		}
	}

	res.Balance = res.TotalIncome.Sub(res.TotalExpense)
	res.CategoryTotals = acc.totals()
	return res
}

// accumulator groups expenses by resolved category.
type accumulator struct {
	byID    map[string]domain.Category
	entries map[string]*domain.CategoryTotal
}

func newAccumulator(categories []domain.Category) *accumulator {
	byID := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return &accumulator{
		byID:    byID,
		entries: make(map[string]*domain.CategoryTotal),
	}
}

func (a *accumulator) add(t domain.Transaction) (domain.Category, bool) {
	cat, ok := a.byID[t.CategoryID]
	if !ok || t.CategoryID == "" {
		return domain.Category{}, false
	}
	e, ok := a.entries[cat.ID]
	if !ok {
		e = &domain.CategoryTotal{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Color:        cat.Color,
			Icon:         cat.Icon,
			Total:        decimal.Zero,
		}
		a.entries[cat.ID] = e
	}
	e.Total = e.Total.Add(t.Amount)
	e.Transactions = append(e.Transactions, t)
	return cat, true
}

// totals returns the entries sorted by total descending, then name ascending.
func (a *accumulator) totals() []domain.CategoryTotal {
	out := make([]domain.CategoryTotal, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, *e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		if out[i].CategoryName != out[j].CategoryName {
			return out[i].CategoryName < out[j].CategoryName
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}
