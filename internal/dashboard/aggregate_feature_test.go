package dashboard_test

import (
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/dashboard"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeAggregateScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

type aggregateFeature struct {
	categories   []domain.Category
	transactions []domain.Transaction
	month        int
	today        time.Time
	result       domain.AggregationResult
}

func initializeAggregateScenario(ctx *godog.ScenarioContext) {
	f := &aggregateFeature{}

	ctx.Step(`^the categories:$`, f.theCategories)
	ctx.Step(`^the transactions:$`, f.theTransactions)
	ctx.Step(`^no transactions$`, f.noTransactions)
	ctx.Step(`^today is "([^"]*)" and the viewed month is (\d+)$`, f.todayIs)
	ctx.Step(`^I aggregate$`, f.iAggregate)
	ctx.Step(`^the total income is "([^"]*)"$`, f.decimalIs(func(r domain.AggregationResult) string { return r.TotalIncome.String() }))
	ctx.Step(`^the total expense is "([^"]*)"$`, f.decimalIs(func(r domain.AggregationResult) string { return r.TotalExpense.String() }))
	ctx.Step(`^the balance is "([^"]*)"$`, f.decimalIs(func(r domain.AggregationResult) string { return r.Balance.String() }))
	ctx.Step(`^the current statement total is "([^"]*)"$`, f.decimalIs(func(r domain.AggregationResult) string { return r.CurrentStatementTotal.String() }))
	ctx.Step(`^the reserve total is "([^"]*)"$`, f.decimalIs(func(r domain.AggregationResult) string { return r.ReserveTotal.String() }))
	ctx.Step(`^the statement window is "([^"]*)" to "([^"]*)"$`, f.theStatementWindowIs)
	ctx.Step(`^the category totals are:$`, f.theCategoryTotalsAre)
	ctx.Step(`^there are no category totals$`, f.thereAreNoCategoryTotals)
}

// rows maps every data row of a table to header -> cell.
func rows(table *godog.Table) []map[string]string {
	if len(table.Rows) == 0 {
		return nil
	}
	header := table.Rows[0].Cells
	out := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		m := make(map[string]string, len(header))
		for i, cell := range row.Cells {
			m[header[i].Value] = strings.TrimSpace(cell.Value)
		}
		out = append(out, m)
	}
	return out
}

func (f *aggregateFeature) theCategories(table *godog.Table) error {
	for _, r := range rows(table) {
		f.categories = append(f.categories, domain.Category{
			ID:    r["id"],
			Name:  r["name"],
			Kind:  domain.CategoryExpense,
			Color: r["color"],
		})
	}
	return nil
}

func (f *aggregateFeature) theTransactions(table *godog.Table) error {
	for _, r := range rows(table) {
		date, err := time.Parse(domain.DateLayout, r["date"])
		if err != nil {
			return err
		}
		f.transactions = append(f.transactions, domain.Transaction{
			ID:            r["id"],
			Date:          date,
			Amount:        dec(r["amount"]),
			Kind:          domain.Kind(r["kind"]),
			PaymentMethod: domain.PaymentMethod(r["payment"]),
			CategoryID:    r["category"],
		})
	}
	return nil
}

func (f *aggregateFeature) noTransactions() error {
	f.transactions = nil
	return nil
}

func (f *aggregateFeature) todayIs(today string, month string) error {
	t, err := time.Parse(domain.DateLayout, today)
	if err != nil {
		return err
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return err
	}
	f.today, f.month = t, m
	return nil
}

func (f *aggregateFeature) iAggregate() error {
	f.result = dashboard.Aggregate(f.transactions, f.categories, f.month, f.today, dashboard.DefaultRules())
	return nil
}

func (f *aggregateFeature) decimalIs(get func(domain.AggregationResult) string) func(string) error {
	return func(want string) error {
		if got := get(f.result); !dec(got).Equal(dec(want)) {
			return fmt.Errorf("expected %s, got %s", want, got)
		}
		return nil
	}
}

func (f *aggregateFeature) theStatementWindowIs(start, end string) error {
	w := f.result.StatementWindow
	if got := w.Start.Format(domain.DateLayout); got != start {
		return fmt.Errorf("expected window start %s, got %s", start, got)
	}
	if got := w.End.Format(domain.DateLayout); got != end {
		return fmt.Errorf("expected window end %s, got %s", end, got)
	}
	return nil
}

func (f *aggregateFeature) theCategoryTotalsAre(table *godog.Table) error {
	want := rows(table)
	got := f.result.CategoryTotals
	if len(got) != len(want) {
		return fmt.Errorf("expected %d category totals, got %d", len(want), len(got))
	}
	for i, w := range want {
		g := got[i]
		if g.CategoryName != w["category"] {
			return fmt.Errorf("row %d: expected category %s, got %s", i, w["category"], g.CategoryName)
		}
		if !g.Total.Equal(dec(w["total"])) {
			return fmt.Errorf("row %d: expected total %s, got %s", i, w["total"], g.Total)
		}
		ids := make([]string, 0, len(g.Transactions))
		for _, tx := range g.Transactions {
			ids = append(ids, tx.ID)
		}
		if strings.Join(ids, ",") != w["transactions"] {
			return fmt.Errorf("row %d: expected transactions %s, got %s", i, w["transactions"], strings.Join(ids, ","))
		}
	}
	return nil
}

func (f *aggregateFeature) thereAreNoCategoryTotals() error {
	if len(f.result.CategoryTotals) != 0 {
		return fmt.Errorf("expected no category totals, got %d", len(f.result.CategoryTotals))
	}
	return nil
}
