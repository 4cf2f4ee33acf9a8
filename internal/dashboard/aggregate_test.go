package dashboard_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/dashboard"
	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func expense(id, amount, categoryID string, pm domain.PaymentMethod, date string) domain.Transaction {
	return domain.Transaction{
		ID:            id,
		Date:          day(date),
		Amount:        dec(amount),
		Kind:          domain.KindExpense,
		PaymentMethod: pm,
		CategoryID:    categoryID,
	}
}

func income(id, amount, date string) domain.Transaction {
	return domain.Transaction{
		ID:            id,
		Date:          day(date),
		Amount:        dec(amount),
		Kind:          domain.KindIncome,
		PaymentMethod: domain.PaymentPix,
	}
}

func assertDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", name, want, got)
	}
}

func TestAggregate_Empty(t *testing.T) {
	res := dashboard.Aggregate(nil, nil, 6, day("2024-06-20"), dashboard.DefaultRules())

	assertDec(t, "income", res.TotalIncome, "0")
	assertDec(t, "expense", res.TotalExpense, "0")
	assertDec(t, "balance", res.Balance, "0")
	assertDec(t, "statement", res.CurrentStatementTotal, "0")
	assertDec(t, "reserve", res.ReserveTotal, "0")
	if res.CategoryTotals == nil || len(res.CategoryTotals) != 0 {
		t.Errorf("expected empty non-nil category totals, got %#v", res.CategoryTotals)
	}
}

func TestAggregate_ExampleScenario(t *testing.T) {
	tx := expense("t1", "100", "1", domain.PaymentCreditCard, "2024-06-05")
	txs := []domain.Transaction{tx, income("t2", "50", "2024-06-02")}
	cats := []domain.Category{{ID: "1", Name: "Food", Kind: domain.CategoryExpense, Color: "#ff0000"}}

	res := dashboard.Aggregate(txs, cats, 6, day("2024-06-20"), dashboard.DefaultRules())

	assertDec(t, "income", res.TotalIncome, "50")
	assertDec(t, "expense", res.TotalExpense, "100")
	assertDec(t, "balance", res.Balance, "-50")
	assertDec(t, "statement", res.CurrentStatementTotal, "0")

	if got := res.StatementWindow.String(); got != "[2024-06-12, 2024-07-11]" {
		t.Errorf("unexpected window %s", got)
	}
	if len(res.CategoryTotals) != 1 {
		t.Fatalf("expected 1 category total, got %d", len(res.CategoryTotals))
	}
	ct := res.CategoryTotals[0]
	if ct.CategoryID != "1" || ct.CategoryName != "Food" || ct.Color != "#ff0000" {
		t.Errorf("unexpected category entry %+v", ct)
	}
	assertDec(t, "category total", ct.Total, "100")
	if len(ct.Transactions) != 1 || ct.Transactions[0].ID != "t1" {
		t.Errorf("expected drill-down to t1, got %+v", ct.Transactions)
	}
}

func TestAggregate_OrphanCategory(t *testing.T) {
	txs := []domain.Transaction{
		expense("t1", "30", "1", domain.PaymentCash, "2024-06-01"),
		expense("t2", "70", "missing", domain.PaymentCash, "2024-06-02"),
		expense("t3", "5", "", domain.PaymentCash, "2024-06-03"),
	}
	cats := []domain.Category{{ID: "1", Name: "Food"}}

	res := dashboard.Aggregate(txs, cats, 6, day("2024-06-20"), dashboard.DefaultRules())

	assertDec(t, "expense", res.TotalExpense, "105")
	if len(res.CategoryTotals) != 1 {
		t.Fatalf("expected only the resolved category, got %d entries", len(res.CategoryTotals))
	}
	for _, ct := range res.CategoryTotals {
		for _, tx := range ct.Transactions {
			if tx.ID == "t2" || tx.ID == "t3" {
				t.Errorf("orphan transaction %s leaked into %s", tx.ID, ct.CategoryName)
			}
		}
	}
}

func TestAggregate_ConservationAndCategorySums(t *testing.T) {
	txs := []domain.Transaction{
		expense("a", "10.10", "1", domain.PaymentPix, "2024-03-01"),
		expense("b", "20.20", "2", domain.PaymentDebitCard, "2024-03-02"),
		expense("c", "0.70", "1", domain.PaymentCreditCard, "2024-03-15"),
		expense("d", "99.99", "nope", domain.PaymentCash, "2024-03-20"),
		income("e", "1000", "2024-03-05"),
	}
	cats := []domain.Category{{ID: "1", Name: "Food"}, {ID: "2", Name: "Fuel"}, {ID: "3", Name: "Unused"}}

	res := dashboard.Aggregate(txs, cats, 3, day("2024-03-25"), dashboard.DefaultRules())

	assertDec(t, "expense", res.TotalExpense, "130.99")
	assertDec(t, "income", res.TotalIncome, "1000")
	assertDec(t, "balance", res.Balance, "869.01")

	sums := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if tx.Kind == domain.KindExpense {
			sums[tx.CategoryID] = sums[tx.CategoryID].Add(tx.Amount)
		}
	}
	if len(res.CategoryTotals) != 2 {
		t.Fatalf("expected 2 entries (unused category excluded), got %d", len(res.CategoryTotals))
	}
	for _, ct := range res.CategoryTotals {
		if !ct.Total.Equal(sums[ct.CategoryID]) {
			t.Errorf("category %s: expected %s, got %s", ct.CategoryID, sums[ct.CategoryID], ct.Total)
		}
		var drill decimal.Decimal
		for _, tx := range ct.Transactions {
			drill = drill.Add(tx.Amount)
		}
		if !drill.Equal(ct.Total) {
			t.Errorf("category %s: drill-down sums to %s, total %s", ct.CategoryID, drill, ct.Total)
		}
	}
}

func TestAggregate_StatementTotal(t *testing.T) {
	txs := []domain.Transaction{
		expense("before", "1", "1", domain.PaymentCreditCard, "2024-06-11"),
		expense("start", "2", "1", domain.PaymentCreditCard, "2024-06-12"),
		expense("end", "4", "1", domain.PaymentCreditCard, "2024-07-11"),
		expense("after", "8", "1", domain.PaymentCreditCard, "2024-07-12"),
		expense("pix", "16", "1", domain.PaymentPix, "2024-06-20"),
		expense("orphan", "32", "x", domain.PaymentCreditCard, "2024-06-20"),
	}
	cats := []domain.Category{{ID: "1", Name: "Food"}}

	res := dashboard.Aggregate(txs, cats, 6, day("2024-06-12"), dashboard.DefaultRules())

	assertDec(t, "statement", res.CurrentStatementTotal, "38")
}

func TestAggregate_ReserveBucket(t *testing.T) {
	txs := []domain.Transaction{
		expense("r1", "200", "9", domain.PaymentPix, "2024-06-01"),
		expense("r2", "50", "9", domain.PaymentCreditCard, "2024-06-15"),
		expense("f", "40", "1", domain.PaymentCash, "2024-06-02"),
	}
	cats := []domain.Category{{ID: "9", Name: "Caixinha"}, {ID: "1", Name: "caixinha"}}

	res := dashboard.Aggregate(txs, cats, 6, day("2024-06-20"), dashboard.DefaultRules())

	assertDec(t, "reserve", res.ReserveTotal, "250")
	assertDec(t, "statement", res.CurrentStatementTotal, "50")
	assertDec(t, "expense", res.TotalExpense, "290")
}

func TestAggregate_SortOrder(t *testing.T) {
	txs := []domain.Transaction{
		expense("1", "10", "b", domain.PaymentCash, "2024-06-01"),
		expense("2", "50", "c", domain.PaymentCash, "2024-06-01"),
		expense("3", "10", "a", domain.PaymentCash, "2024-06-01"),
		expense("4", "25", "d", domain.PaymentCash, "2024-06-01"),
	}
	cats := []domain.Category{
		{ID: "a", Name: "Zoo"},
		{ID: "b", Name: "Bakery"},
		{ID: "c", Name: "Rent"},
		{ID: "d", Name: "Market"},
	}

	res := dashboard.Aggregate(txs, cats, 6, day("2024-06-20"), dashboard.DefaultRules())

	want := []string{"Rent", "Market", "Bakery", "Zoo"}
	if len(res.CategoryTotals) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(res.CategoryTotals))
	}
	for i, name := range want {
		if res.CategoryTotals[i].CategoryName != name {
			t.Errorf("position %d: expected %s, got %s", i, name, res.CategoryTotals[i].CategoryName)
		}
	}
}

func TestAggregate_DoesNotMutateInputs(t *testing.T) {
	txs := []domain.Transaction{
		expense("1", "10", "a", domain.PaymentCash, "2024-06-01"),
		expense("2", "20", "a", domain.PaymentCash, "2024-06-02"),
	}
	cats := []domain.Category{{ID: "a", Name: "Food"}}

	res := dashboard.Aggregate(txs, cats, 6, day("2024-06-20"), dashboard.DefaultRules())
	res.CategoryTotals[0].Transactions[0].Description = "changed"

	if txs[0].Description != "" {
		t.Error("mutating the result must not touch the input slice")
	}
}

func TestAggregate_BalanceNotClamped(t *testing.T) {
	txs := []domain.Transaction{
		income("i", "10", "2024-06-01"),
		expense("e", "25.50", "", domain.PaymentCash, "2024-06-02"),
	}
	res := dashboard.Aggregate(txs, nil, 6, day("2024-06-20"), dashboard.DefaultRules())
	assertDec(t, "balance", res.Balance, "-15.50")
}
