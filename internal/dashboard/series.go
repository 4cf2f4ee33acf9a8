package dashboard

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

// ExcludeCategories drops categories whose name matches one of names exactly.
// The dashboard uses it to hide the "CORREÇÃO" adjustment category before
// aggregating.
func ExcludeCategories(categories []domain.Category, names ...string) []domain.Category {
	if len(names) == 0 {
		return categories
	}
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	out := make([]domain.Category, 0, len(categories))
	for _, c := range categories {
		if _, ok := skip[c.Name]; ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FilterPeriod keeps the transactions dated inside period.
func FilterPeriod(transactions []domain.Transaction, period domain.YearMonth) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if period.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// FilterRange keeps the transactions dated between the first day of from and
// the last day of to, inclusive.
func FilterRange(transactions []domain.Transaction, from, to domain.YearMonth) []domain.Transaction {
	start, end := from.Start(), to.End()
	out := make([]domain.Transaction, 0, len(transactions))
	for _, t := range transactions {
		d := domain.TruncateDay(t.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// MonthlySeries sums income and expense per calendar month, ascending.
func MonthlySeries(transactions []domain.Transaction) []domain.MonthTotals {
	byMonth := make(map[domain.YearMonth]*domain.MonthTotals)
	for _, t := range transactions {
		p := domain.YearMonthOf(t.Date)
		m, ok := byMonth[p]
		if !ok {
			m = &domain.MonthTotals{Period: p, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[p] = m
		}
		switch t.Kind {
		case domain.KindIncome:
			m.Income = m.Income.Add(t.Amount)
		case domain.KindExpense:
			m.Expense = m.Expense.Add(t.Amount)
		}
	}

	out := make([]domain.MonthTotals, 0, len(byMonth))
	for _, m := range byMonth {
		m.Balance = m.Income.Sub(m.Expense)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out
}

// FillMonths returns one entry per month from from to to, inclusive, taking
// totals from series and zeros for months without transactions.
func FillMonths(series []domain.MonthTotals, from, to domain.YearMonth) []domain.MonthTotals {
	byMonth := make(map[domain.YearMonth]domain.MonthTotals, len(series))
	for _, m := range series {
		byMonth[m.Period] = m
	}
	var out []domain.MonthTotals
	for p := from; !to.Before(p); p = p.Next() {
		m, ok := byMonth[p]
		if !ok {
			m = domain.MonthTotals{Period: p, Income: decimal.Zero, Expense: decimal.Zero, Balance: decimal.Zero}
		}
		out = append(out, m)
	}
	return out
}

// CategoryTotals is the per-category breakdown on its own, for ranges that
// span more than one statement.
func CategoryTotals(transactions []domain.Transaction, categories []domain.Category) []domain.CategoryTotal {
	acc := newAccumulator(categories)
	for _, t := range transactions {
		if t.Kind == domain.KindExpense {
			acc.add(t)
		}
	}
	return acc.totals()
}
