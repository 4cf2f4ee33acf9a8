package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Dashboard: aggregation results and API responses
// ============================================================

// CategoryTotal is one row of the per-category expense breakdown with
// drill-down to the contributing transactions.
type CategoryTotal struct {
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Color        string          `json:"color"`
	Icon         string          `json:"icon,omitempty"`
	Total        decimal.Decimal `json:"total"`
	TotalDisplay string          `json:"totalDisplay,omitempty"` // "R$ 1.234,56"
	Transactions []Transaction   `json:"transactions"`
}

// AggregationResult is the derived monthly summary. Balance is income minus
// expense and may be negative.
type AggregationResult struct {
	TotalIncome           decimal.Decimal `json:"totalIncome"`
	TotalExpense          decimal.Decimal `json:"totalExpense"`
	Balance               decimal.Decimal `json:"balance"`
	CurrentStatementTotal decimal.Decimal `json:"currentStatementTotal"`
	StatementWindow       StatementWindow `json:"statementWindow"`
	ReserveTotal          decimal.Decimal `json:"reserveTotal"`
	CategoryTotals        []CategoryTotal `json:"categoryTotals"`
}

// SummaryDisplay carries the summary amounts formatted in pt-BR.
type SummaryDisplay struct {
	TotalIncome           string `json:"totalIncome"`
	TotalExpense          string `json:"totalExpense"`
	Balance               string `json:"balance"`
	CurrentStatementTotal string `json:"currentStatementTotal"`
	ReserveTotal          string `json:"reserveTotal"`
}

// DashboardView is returned by GET /v1/dashboard.
type DashboardView struct {
	Period      YearMonth         `json:"period"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Degraded    bool              `json:"degraded,omitempty"`
	Summary     AggregationResult `json:"summary"`
	Display     SummaryDisplay    `json:"display"`
}

// MonthTotals is one point of the income/expense series.
type MonthTotals struct {
	Period  YearMonth       `json:"period"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// HistoryView is returned by GET /v1/dashboard/history.
type HistoryView struct {
	From           YearMonth       `json:"from"`
	To             YearMonth       `json:"to"`
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	Months         []MonthTotals   `json:"months"`
	CategoryTotals []CategoryTotal `json:"categoryTotals"`
}
