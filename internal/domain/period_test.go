package domain_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/tecnomaub/rupia-wallet-bfa/internal/domain"
)

func TestParseYearMonth(t *testing.T) {
	p, err := domain.ParseYearMonth("2024-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Year != 2024 || p.Month != time.June {
		t.Errorf("expected 2024-06, got %s", p)
	}

	for _, bad := range []string{"", "2024-13", "06/2024", "2024-6-1"} {
		_, err := domain.ParseYearMonth(bad)
		var ve *domain.ErrValidation
		if !errors.As(err, &ve) || ve.Field != "month" {
			t.Errorf("%q: expected month validation error, got %v", bad, err)
		}
	}
}

func TestYearMonth_Bounds(t *testing.T) {
	feb := domain.YearMonth{Year: 2024, Month: time.February}

	if got := feb.End(); !got.Equal(domain.Date(2024, 2, 29)) {
		t.Errorf("expected leap-year end 2024-02-29, got %s", got.Format(domain.DateLayout))
	}
	if !feb.Contains(domain.Date(2024, 2, 1)) || feb.Contains(domain.Date(2024, 3, 1)) {
		t.Error("unexpected Contains result")
	}

	dec := domain.YearMonth{Year: 2023, Month: time.December}
	if dec.Next() != (domain.YearMonth{Year: 2024, Month: time.January}) {
		t.Errorf("expected 2024-01, got %s", dec.Next())
	}
	if (domain.YearMonth{Year: 2024, Month: time.January}).Prev() != dec {
		t.Error("expected Prev to wrap to December")
	}
	if !dec.Before(feb) || feb.Before(dec) {
		t.Error("unexpected Before result")
	}
}

func TestYearMonth_JSON(t *testing.T) {
	var v struct {
		Period domain.YearMonth `json:"period"`
	}
	if err := json.Unmarshal([]byte(`{"period":"2024-11"}`), &v); err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"period":"2024-11"}` {
		t.Errorf("unexpected round trip %s", b)
	}
}

func TestStatementWindow_Contains(t *testing.T) {
	w := domain.StatementWindow{Start: domain.Date(2024, 6, 12), End: domain.Date(2024, 7, 11)}

	if !w.Contains(time.Date(2024, 7, 11, 23, 59, 0, 0, time.UTC)) {
		t.Error("expected the end day to be inclusive at day precision")
	}
	if !w.Contains(domain.Date(2024, 6, 12)) {
		t.Error("expected the start day to be inclusive")
	}
	if w.Contains(domain.Date(2024, 6, 11)) || w.Contains(domain.Date(2024, 7, 12)) {
		t.Error("expected days outside the window to be excluded")
	}
	if w.String() != "[2024-06-12, 2024-07-11]" {
		t.Errorf("unexpected String %s", w)
	}
}

func TestAmountText_UnmarshalJSON(t *testing.T) {
	tests := map[string]domain.AmountText{
		`"1.234,56"`: "1.234,56",
		`" 12.50 "`:  "12.50",
		`12.5`:       "12.5",
		`null`:       "",
	}
	for in, want := range tests {
		var a domain.AmountText
		if err := json.Unmarshal([]byte(in), &a); err != nil {
			t.Fatalf("%s: unexpected error %v", in, err)
		}
		if a != want {
			t.Errorf("%s: expected %q, got %q", in, want, a)
		}
	}

	var a domain.AmountText
	if err := json.Unmarshal([]byte(`true`), &a); err == nil {
		t.Error("expected error for a boolean")
	}
}
