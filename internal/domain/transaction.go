package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Transactions & Categories
// ============================================================

// Kind is the direction of a transaction.
type Kind string

const (
	KindIncome  Kind = "INCOME"
	KindExpense Kind = "EXPENSE"
)

// Valid reports whether k is a known transaction kind.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// PaymentMethod is how a transaction was paid.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentPix        PaymentMethod = "PIX"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
)

// Valid reports whether p is a known payment method.
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentPix, PaymentCreditCard, PaymentDebitCard:
		return true
	}
	return false
}

// CategoryKind tells whether a category groups expenses or income.
type CategoryKind string

const (
	CategoryExpense CategoryKind = "EXPENSE_CATEGORY"
	CategoryIncome  CategoryKind = "INCOME_CATEGORY"
)

// Valid reports whether c is a known category kind.
func (c CategoryKind) Valid() bool {
	return c == CategoryExpense || c == CategoryIncome
}

// Transaction is a single income or expense record owned by the upstream API.
// Amount is never negative; the direction is carried by Kind.
type Transaction struct {
	ID            string          `json:"id"`
	Date          time.Time       `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          Kind            `json:"kind"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CategoryID    string          `json:"categoryId,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// Category is a user-defined grouping for transactions.
// Color and Icon are display tokens passed through unchanged.
type Category struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Kind  CategoryKind `json:"kind"`
	Color string       `json:"color"`
	Icon  string       `json:"icon,omitempty"`
}

// ============================================================
// Write-side inputs (frontend forms)
// ============================================================

// AmountText is a monetary amount typed by the user. It decodes from either a
// JSON string ("1.234,56", "12.50") or a JSON number (12.5).
type AmountText string

func (a *AmountText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = AmountText(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number: %w", err)
	}
	*a = AmountText(n.String())
	return nil
}

// TransactionInput is the body for creating or updating a transaction.
// AmountCents is the digit string kept by the currency input mask
// ("123456" is 1.234,56) and is used only when Amount is empty.
type TransactionInput struct {
	Date          string        `json:"date"` // yyyy-mm-dd
	Amount        AmountText    `json:"amount"`
	AmountCents   string        `json:"amountCents,omitempty"`
	Kind          Kind          `json:"kind"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CategoryID    string        `json:"categoryId"`
	Description   string        `json:"description"`
}

// CategoryInput is the body for creating or updating a category.
type CategoryInput struct {
	Name  string       `json:"name"`
	Kind  CategoryKind `json:"kind"`
	Color string       `json:"color"`
	Icon  string       `json:"icon"`
}

// TransactionFilter narrows the search/listing view. Zero values mean "any".
// From and To are inclusive civil dates.
type TransactionFilter struct {
	From          time.Time
	To            time.Time
	Kind          Kind
	PaymentMethod PaymentMethod
	CategoryID    string
	Query         string
	Page          int
	PageSize      int
}
